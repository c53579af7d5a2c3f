package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
)

// Section names, one per cacheable page fragment.
const (
	SectionProfile      = "profile"
	SectionAbout        = "about"
	SectionProjects     = "projects"
	SectionCertificates = "certificates"
	SectionMemories     = "memories"
	SectionResume       = "resume"
)

// Placeholder assets for entries created without media.
const (
	defaultProjectImage = "/assets/images/project-1.jpg"
	defaultProjectURL   = "#"
	defaultMemoryImage  = "/assets/images/memory-1.jpg"
)

func Sections() []string {
	return []string{
		SectionProfile,
		SectionAbout,
		SectionProjects,
		SectionCertificates,
		SectionMemories,
		SectionResume,
	}
}

//go:embed templates/*.html
var templateFS embed.FS

var fragments *template.Template

func init() {
	funcMap := template.FuncMap{
		// Data URIs and same-page anchors come from our own validation
		// layer and would be rejected by the URL sanitizer. Everything
		// else stays subject to it, so schemes like javascript: are
		// still neutralized.
		"safeURL": func(s string) any {
			if strings.HasPrefix(s, "data:") || s == "#" {
				return template.URL(s)
			}
			return s
		},
		"safeCSS": func(s string) template.CSS { return template.CSS(s) },
	}
	fragments = template.Must(template.New("fragments").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

type profileView struct {
	FullName string
	Title    string
	Email    string
	Phone    string
	Birthday string
	Location string
	Avatar   string
}

type aboutView struct {
	Paragraphs []string
}

type projectView struct {
	Title    string
	Category string
	Image    string
	URL      string
}

type cardView struct {
	Title       string
	Issuer      string
	Date        string
	Image       string
	Description string
}

type timelineView struct {
	Title       string
	Period      string
	Description string
}

type skillView struct {
	Name  string
	Level string
	Width string
}

type resumeView struct {
	Education  []timelineView
	Experience []timelineView
	Skills     []skillView
}

// field reads a string field from an entry, empty when absent or non-string.
func field(e portfolio.Entry, key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

func fieldOr(e portfolio.Entry, key, fallback string) string {
	if v := field(e, key); v != "" {
		return v
	}
	return fallback
}

// Render produces the HTML fragment for one section of the document. Output
// depends only on the document, so rendering twice yields identical bytes.
func Render(doc *portfolio.Document, section string) (string, error) {
	data, err := viewFor(doc, section)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, section+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", section, err)
	}
	return buf.String(), nil
}

// RenderAll renders every section, keyed by section name.
func RenderAll(doc *portfolio.Document) (map[string]string, error) {
	out := make(map[string]string, len(Sections()))
	for _, section := range Sections() {
		html, err := Render(doc, section)
		if err != nil {
			return nil, err
		}
		out[section] = html
	}
	return out, nil
}

func viewFor(doc *portfolio.Document, section string) (any, error) {
	switch section {
	case SectionProfile:
		return profileView{
			FullName: doc.Profile.FullName,
			Title:    doc.Profile.Title,
			Email:    doc.Profile.Email,
			Phone:    doc.Profile.Phone,
			Birthday: doc.Profile.Birthday,
			Location: doc.Profile.Location,
			Avatar:   doc.Profile.Avatar,
		}, nil

	case SectionAbout:
		var paragraphs []string
		for _, p := range strings.Split(doc.Profile.AboutText, "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				paragraphs = append(paragraphs, p)
			}
		}
		return aboutView{Paragraphs: paragraphs}, nil

	case SectionProjects:
		views := make([]projectView, 0, len(doc.Projects))
		for _, e := range doc.Projects {
			views = append(views, projectView{
				Title:    field(e, "title"),
				Category: field(e, "category"),
				Image:    fieldOr(e, "image", defaultProjectImage),
				URL:      fieldOr(e, "url", defaultProjectURL),
			})
		}
		return struct{ Projects []projectView }{views}, nil

	case SectionCertificates:
		views := make([]cardView, 0, len(doc.Certificates))
		for _, e := range doc.Certificates {
			views = append(views, cardView{
				Title:       field(e, "title"),
				Issuer:      field(e, "issuer"),
				Date:        field(e, "date"),
				Description: field(e, "description"),
			})
		}
		return struct{ Certificates []cardView }{views}, nil

	case SectionMemories:
		views := make([]cardView, 0, len(doc.Memories))
		for _, e := range doc.Memories {
			views = append(views, cardView{
				Title:       field(e, "title"),
				Date:        field(e, "date"),
				Image:       fieldOr(e, "image", defaultMemoryImage),
				Description: field(e, "description"),
			})
		}
		return struct{ Memories []cardView }{views}, nil

	case SectionResume:
		view := resumeView{
			Education:  timelineViews(doc.Education),
			Experience: timelineViews(doc.ResumeExperience),
		}
		for _, e := range doc.ResumeSkills {
			level := fieldOr(e, "level", "0")
			view.Skills = append(view.Skills, skillView{
				Name:  field(e, "name"),
				Level: level,
				Width: "width: " + level + "%",
			})
		}
		return view, nil

	default:
		return nil, fmt.Errorf("unknown render section %q", section)
	}
}

func timelineViews(entries []portfolio.Entry) []timelineView {
	views := make([]timelineView, 0, len(entries))
	for _, e := range entries {
		views = append(views, timelineView{
			Title:       field(e, "title"),
			Period:      field(e, "period"),
			Description: field(e, "description"),
		})
	}
	return views
}
