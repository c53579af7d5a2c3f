package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
)

// requiredFields lists what a new entry must carry per collection. Anything
// not listed just needs a title.
var requiredFields = map[string][]string{
	portfolio.CollectionProjects:     {"title", "category"},
	portfolio.CollectionCertificates: {"title", "issuer", "date"},
	portfolio.CollectionMemories:     {"title", "image"},
}

func requiredFor(collection string) []string {
	if fields, ok := requiredFields[collection]; ok {
		return fields
	}
	return []string{"title"}
}

func validateEntryFields(collection string, fields map[string]any, isCreate bool) error {
	if isCreate {
		for _, name := range requiredFor(collection) {
			v, ok := fields[name]
			if !ok {
				return apperror.NewInvalidInput(fmt.Sprintf("field %q is required for %s", name, collection), nil)
			}
			if s, isString := v.(string); isString && s == "" {
				return apperror.NewInvalidInput(fmt.Sprintf("field %q must not be empty for %s", name, collection), nil)
			}
		}
	}

	// Embedded images are validated before anything reaches the document.
	for _, name := range []string{"image", "avatar"} {
		if s, ok := fields[name].(string); ok && portfolio.IsDataURI(s) {
			if err := portfolio.ValidateImageDataURI(s); err != nil {
				return apperror.NewInvalidInput("embedded image rejected", err)
			}
		}
	}
	return nil
}

type CreateEntryInput struct {
	Collection string
	Fields     map[string]any
}

type CreateEntryOutput struct {
	Entry  portfolio.Entry
	Result SaveResult
}

func (m *Manager) CreateEntry(ctx context.Context, input CreateEntryInput) (*CreateEntryOutput, error) {
	if !portfolio.IsValidCollection(input.Collection) {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", input.Collection), nil)
	}
	if err := validateEntryFields(input.Collection, input.Fields, true); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	entry := portfolio.Entry{}
	for k, v := range input.Fields {
		entry[k] = v
	}
	entry["id"] = m.idGen.Next()

	c := m.doc.Collection(input.Collection)
	*c = append(*c, entry)

	result, err := m.persistLocked(ctx, portfolio.ReasonSave)
	if err != nil {
		return nil, err
	}
	return &CreateEntryOutput{Entry: entry.Merge(nil), Result: result}, nil
}

type UpdateEntryInput struct {
	Collection string
	ID         int64
	Fields     map[string]any
}

type UpdateEntryOutput struct {
	// Updated is false when the id was not found: the edit raced a delete
	// and loses quietly.
	Updated bool
	Entry   portfolio.Entry
	Result  SaveResult
}

func (m *Manager) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*UpdateEntryOutput, error) {
	if !portfolio.IsValidCollection(input.Collection) {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", input.Collection), nil)
	}
	if err := validateEntryFields(input.Collection, input.Fields, false); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	c := m.doc.Collection(input.Collection)
	for i, entry := range *c {
		id, ok := entry.ID()
		if !ok || id != input.ID {
			continue
		}
		merged := entry.Merge(input.Fields)
		(*c)[i] = merged

		result, err := m.persistLocked(ctx, portfolio.ReasonSave)
		if err != nil {
			return nil, err
		}
		return &UpdateEntryOutput{Updated: true, Entry: merged.Merge(nil), Result: result}, nil
	}

	m.logger.Warn("Update target not found, ignoring edit",
		zap.String("collection", input.Collection),
		zap.Int64("entry_id", input.ID),
	)
	return &UpdateEntryOutput{Updated: false}, nil
}

type DeleteEntryInput struct {
	Collection string
	ID         int64
}

type DeleteEntryOutput struct {
	Deleted bool
	Result  SaveResult
}

// DeleteEntry removes the entry with the given id. Confirmation is the
// caller's responsibility; the manager just mutates.
func (m *Manager) DeleteEntry(ctx context.Context, input DeleteEntryInput) (*DeleteEntryOutput, error) {
	if !portfolio.IsValidCollection(input.Collection) {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", input.Collection), nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	c := m.doc.Collection(input.Collection)
	kept := make([]portfolio.Entry, 0, len(*c))
	deleted := false
	for _, entry := range *c {
		if id, ok := entry.ID(); ok && id == input.ID {
			deleted = true
			continue
		}
		kept = append(kept, entry)
	}
	if !deleted {
		return &DeleteEntryOutput{Deleted: false}, nil
	}
	*c = kept

	result, err := m.persistLocked(ctx, portfolio.ReasonSave)
	if err != nil {
		return nil, err
	}
	return &DeleteEntryOutput{Deleted: true, Result: result}, nil
}

type UpdateProfileInput struct {
	Profile portfolio.Profile
}

type UpdateProfileOutput struct {
	Profile portfolio.Profile
	Result  SaveResult
}

func (m *Manager) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	if input.Profile.Avatar != "" && portfolio.IsDataURI(input.Profile.Avatar) {
		if err := portfolio.ValidateImageDataURI(input.Profile.Avatar); err != nil {
			return nil, apperror.NewInvalidInput("avatar image rejected", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	m.doc.Profile = input.Profile

	result, err := m.persistLocked(ctx, portfolio.ReasonSave)
	if err != nil {
		return nil, err
	}
	return &UpdateProfileOutput{Profile: m.doc.Profile, Result: result}, nil
}
