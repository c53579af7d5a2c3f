package document

import (
	"context"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
)

// ClearConfirmation is the literal a caller must type to clear everything.
// Deliberate friction, not a security boundary.
const ClearConfirmation = "DELETE"

type ClearInput struct {
	Confirm      bool
	Confirmation string
}

type ClearOutput struct {
	Document *portfolio.Document
	Result   SaveResult
}

// Clear wipes the portfolio wholesale: one final backup, then the default
// document. Both confirmation stages must pass or nothing changes, not
// even the backup.
func (m *Manager) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if !input.Confirm || input.Confirmation != ClearConfirmation {
		return nil, apperror.NewConfirmationDeclined("clear")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	m.createBackupLocked(ctx)
	m.doc = portfolio.DefaultDocument()

	result, err := m.persistLocked(ctx, portfolio.ReasonClear)
	if err != nil {
		return nil, err
	}
	return &ClearOutput{Document: m.doc.Clone(), Result: result}, nil
}
