package portfolio

import (
	"context"
	"time"
)

// DocumentKey is the durable local tier key holding the serialized canonical
// document.
const DocumentKey = "portfolioData"

// SessionKey holds the admin session record, in the durable or ephemeral
// tier depending on the remember-me choice.
const SessionKey = "adminSession"

// LocalStore is one key-value storage tier. A missing key is not an error;
// it is reported through the found flag. Storage failures surface as errors
// and are the caller's concern.
type LocalStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Keys lists all keys under the given prefix. The backup retention
	// sweep depends on it.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// RemoteStore is the optional durable document store keyed by one fixed
// document id per deployment. Implementations strip transport metadata from
// loaded documents, and an unconfigured store reports Available() == false
// instead of failing calls.
type RemoteStore interface {
	Available() bool
	LoadDocument(ctx context.Context) (doc *Document, found bool, err error)
	SaveDocument(ctx context.Context, doc *Document) error
}

// ChangeEvent announces that the canonical document changed and any derived
// state (rendered fragments, other consumers) should refresh.
type ChangeEvent struct {
	EventType string    `json:"event_type"`
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

const EventDocumentChanged = "document.changed"

// Change reasons.
const (
	ReasonSave    = "save"
	ReasonImport  = "import"
	ReasonClear   = "clear"
	ReasonRestore = "restore"
)

// ChangePublisher broadcasts change events to out-of-process consumers.
type ChangePublisher interface {
	PublishDocumentChanged(ctx context.Context, ev ChangeEvent) error
}
