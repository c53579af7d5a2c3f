// Package portfolio holds the canonical document model: one profile plus the
// named entry collections the public site renders from.
package portfolio

import "encoding/json"

// Collection names, in display order. Insertion order inside each collection
// is the display order.
const (
	CollectionProjects         = "projects"
	CollectionCertificates     = "certificates"
	CollectionMemories         = "memories"
	CollectionEducation        = "education"
	CollectionResumeExperience = "resumeExperience"
	CollectionResumeSkills     = "resumeSkills"
	CollectionSkills           = "skills"
	CollectionExperience       = "experience"
	CollectionBlog             = "blog"
)

func CollectionNames() []string {
	return []string{
		CollectionProjects,
		CollectionCertificates,
		CollectionMemories,
		CollectionEducation,
		CollectionResumeExperience,
		CollectionResumeSkills,
		CollectionSkills,
		CollectionExperience,
		CollectionBlog,
	}
}

type Profile struct {
	FullName  string `json:"fullName,omitempty"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Birthday  string `json:"birthday,omitempty"`
	Location  string `json:"location,omitempty"`
	AboutText string `json:"aboutText,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// Document is the single canonical aggregate. It is mutated exclusively
// through the document manager; everything else reads copies.
type Document struct {
	Profile          Profile `json:"profile"`
	Projects         []Entry `json:"projects"`
	Certificates     []Entry `json:"certificates"`
	Memories         []Entry `json:"memories"`
	Education        []Entry `json:"education"`
	ResumeExperience []Entry `json:"resumeExperience"`
	ResumeSkills     []Entry `json:"resumeSkills"`
	Skills           []Entry `json:"skills"`
	Experience       []Entry `json:"experience"`
	Blog             []Entry `json:"blog"`
}

// DefaultDocument is the empty document adopted when no stored data exists
// anywhere, and the replacement written by a confirmed clear.
func DefaultDocument() *Document {
	return &Document{
		Projects:         []Entry{},
		Certificates:     []Entry{},
		Memories:         []Entry{},
		Education:        []Entry{},
		ResumeExperience: []Entry{},
		ResumeSkills:     []Entry{},
		Skills:           []Entry{},
		Experience:       []Entry{},
		Blog:             []Entry{},
	}
}

// Collection returns a pointer to the named collection, or nil when the name
// is unknown.
func (d *Document) Collection(name string) *[]Entry {
	switch name {
	case CollectionProjects:
		return &d.Projects
	case CollectionCertificates:
		return &d.Certificates
	case CollectionMemories:
		return &d.Memories
	case CollectionEducation:
		return &d.Education
	case CollectionResumeExperience:
		return &d.ResumeExperience
	case CollectionResumeSkills:
		return &d.ResumeSkills
	case CollectionSkills:
		return &d.Skills
	case CollectionExperience:
		return &d.Experience
	case CollectionBlog:
		return &d.Blog
	}
	return nil
}

func IsValidCollection(name string) bool {
	for _, n := range CollectionNames() {
		if n == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the document carries no content at all: empty
// profile and every collection empty. Export refuses such documents.
func (d *Document) IsEmpty() bool {
	if !d.Profile.IsEmpty() {
		return false
	}
	for _, name := range CollectionNames() {
		if c := d.Collection(name); c != nil && len(*c) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy through a JSON round trip. Entries are free-form
// maps, so the round trip is the reliable way to detach them.
func (d *Document) Clone() *Document {
	raw, err := json.Marshal(d)
	if err != nil {
		// The document is built from JSON-safe values only.
		panic("portfolio: document not serializable: " + err.Error())
	}
	out := DefaultDocument()
	if err := json.Unmarshal(raw, out); err != nil {
		panic("portfolio: document round trip failed: " + err.Error())
	}
	out.normalize()
	return out
}

// normalize replaces nil collections with empty ones so a decoded document
// always has the full shape.
func (d *Document) normalize() {
	for _, name := range CollectionNames() {
		if c := d.Collection(name); c != nil && *c == nil {
			*c = []Entry{}
		}
	}
}

// DecodeDocument parses a serialized document and normalizes its shape.
func DecodeDocument(raw []byte) (*Document, error) {
	doc := DefaultDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	doc.normalize()
	return doc, nil
}
