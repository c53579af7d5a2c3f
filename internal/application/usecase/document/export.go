package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
)

// ExportVersion is the envelope format version stamped on every export.
const ExportVersion = "1.0"

// ExportEnvelope wraps the document for file export. Only the data field is
// required on import; the rest is provenance.
type ExportEnvelope struct {
	ExportedAt   string             `json:"exportedAt"`
	ExportedFrom string             `json:"exportedFrom"`
	Version      string             `json:"version"`
	Data         *portfolio.Document `json:"data"`
}

type ExportOutput struct {
	Filename string
	Payload  []byte
}

// Export serializes the canonical document into the download envelope.
// An entirely empty document is refused with a user-facing warning.
func (m *Manager) Export(ctx context.Context) (*ExportOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	if m.doc.IsEmpty() {
		return nil, apperror.NewEmptyDocument()
	}

	now := time.Now().UTC()
	envelope := ExportEnvelope{
		ExportedAt:   now.Format(time.RFC3339),
		ExportedFrom: m.origin,
		Version:      ExportVersion,
		Data:         m.doc,
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, apperror.NewInternal("failed to serialize export", err)
	}

	return &ExportOutput{
		Filename: fmt.Sprintf("portfolio-data-%s.json", now.Format("2006-01-02")),
		Payload:  payload,
	}, nil
}

type ImportInput struct {
	Payload []byte
	Confirm bool
}

type ImportOutput struct {
	Document *portfolio.Document
}

// Import replaces the canonical document with an uploaded export file.
// The current document is backed up first. The imported one is written to
// the durable local tier only; the remote store catches up on next contact.
func (m *Manager) Import(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	var envelope struct {
		ExportedAt string          `json:"exportedAt"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(input.Payload, &envelope); err != nil {
		return nil, apperror.NewMalformedImport("payload is not valid JSON", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, apperror.NewMalformedImport("missing data property", nil)
	}

	proposed, err := portfolio.DecodeDocument(envelope.Data)
	if err != nil {
		return nil, apperror.NewMalformedImport("data property is not a portfolio document", err)
	}

	if !input.Confirm {
		return nil, apperror.NewConfirmationDeclined("import")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	m.createBackupLocked(ctx)
	m.doc = proposed

	if err := m.local.Set(ctx, portfolio.DocumentKey, m.encodeLocked()); err != nil {
		return nil, apperror.NewStorageUnavailable("durable local", err)
	}
	m.publishChangeLocked(portfolio.ReasonImport)

	return &ImportOutput{Document: m.doc.Clone()}, nil
}
