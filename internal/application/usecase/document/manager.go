// Package document implements the local-first synchronization core: one
// canonical in-memory portfolio document, persisted across the durable local
// tier and the optional remote document store with a fixed precedence.
package document

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/internal/application/service"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/internal/metrics"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
)

var tracer = otel.Tracer("document_manager")

// Manager owns the canonical document. Construct one at startup and inject
// it into the HTTP handlers and the render worker; nothing else holds a
// mutable reference to the document.
type Manager struct {
	local     portfolio.LocalStore
	remote    portfolio.RemoteStore
	publisher portfolio.ChangePublisher
	uploader  service.Uploader
	idGen     *portfolio.IDGenerator
	origin    string
	logger    logger.Logger

	mu           sync.Mutex
	state        State
	doc          *portfolio.Document
	lastBackupMs int64
}

// NewManager wires the sync core. publisher and uploader may be nil: change
// broadcasting and offsite backup copies are then skipped.
func NewManager(
	local portfolio.LocalStore,
	remote portfolio.RemoteStore,
	publisher portfolio.ChangePublisher,
	uploader service.Uploader,
	origin string,
	log logger.Logger,
) *Manager {
	return &Manager{
		local:     local,
		remote:    remote,
		publisher: publisher,
		uploader:  uploader,
		idGen:     portfolio.NewIDGenerator(),
		origin:    origin,
		logger:    log,
		state:     StateUnloaded,
	}
}

// Load resolves the canonical document once at startup. Precedence: the
// remote store wins whenever it answers; the local tier is a cache and
// fallback; with no data anywhere the default document is adopted.
func (m *Manager) Load(ctx context.Context) (*portfolio.Document, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateLoading
	doc := m.resolveDocument(ctx, span.SetAttributes)
	m.doc = doc
	m.state = StateReady

	return doc.Clone(), nil
}

// Reload re-runs the load algorithm on a Ready manager. The render worker
// calls it when a change event arrives or its refresh tick fires.
func (m *Manager) Reload(ctx context.Context) (*portfolio.Document, error) {
	return m.Load(ctx)
}

func (m *Manager) resolveDocument(ctx context.Context, setAttr func(...attribute.KeyValue)) *portfolio.Document {
	// Only an affirmative "no document exists" answer from remote may
	// trigger the upload of local data. After a load error remote might
	// hold a newer document, so pushing the local mirror would clobber it.
	remoteEmpty := false
	if m.remote.Available() {
		remoteDoc, found, err := m.remote.LoadDocument(ctx)
		switch {
		case err != nil:
			m.logger.Warn("Remote load failed, falling back to local tier", zap.Error(err))
		case found:
			// Remote wins; mirror it into the local cache tier.
			m.writeLocal(ctx, remoteDoc)
			setAttr(attribute.String("document.source", "remote"))
			return remoteDoc
		default:
			remoteEmpty = true
		}
	}

	localDoc, found := m.readLocal(ctx)
	if found {
		if remoteEmpty {
			// The document exists only locally while remote answers:
			// push it up so remote catches up.
			if err := m.remote.SaveDocument(ctx, localDoc); err != nil {
				m.logger.Warn("Upload of local document to remote failed", zap.Error(err))
			} else {
				m.logger.Info("Uploaded local document to remote store")
			}
		}
		setAttr(attribute.String("document.source", "local"))
		return localDoc
	}

	setAttr(attribute.String("document.source", "default"))
	return portfolio.DefaultDocument()
}

// Document returns a deep copy of the canonical document. Callers never
// receive the manager's own reference.
func (m *Manager) Document(ctx context.Context) (*portfolio.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}
	return m.doc.Clone(), nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) ensureReadyLocked() error {
	if m.state != StateReady {
		return apperror.NewInternal("document manager not ready", nil)
	}
	return nil
}

// SaveResult reports how a mutation was persisted. Synced false is a
// degraded success: the change landed in the local tier only and is not
// cloud-backed yet.
type SaveResult struct {
	Synced bool `json:"synced"`
}

// persistLocked writes the canonical document: at most one remote attempt,
// then the local tier. Only a failure of every tier is an error; the
// document always survives in memory.
func (m *Manager) persistLocked(ctx context.Context, reason string) (SaveResult, error) {
	ctx, span := tracer.Start(ctx, "persist")
	defer span.End()
	span.SetAttributes(attribute.String("save.reason", reason))

	synced := false
	if m.remote.Available() {
		if err := m.remote.SaveDocument(ctx, m.doc); err != nil {
			m.logger.Warn("Remote save failed, keeping change local-only", zap.Error(err))
		} else {
			synced = true
		}
	}

	localErr := m.local.Set(ctx, portfolio.DocumentKey, m.encodeLocked())
	if localErr != nil {
		m.logger.Error("Durable local tier write failed", localErr)
	}

	if !synced && localErr != nil {
		metrics.RecordDocumentSave("failed")
		return SaveResult{}, apperror.NewStorageUnavailable("durable local", localErr)
	}

	if synced {
		metrics.RecordDocumentSave("synced")
	} else {
		metrics.RecordDocumentSave("local_only")
	}

	m.publishChangeLocked(reason)
	return SaveResult{Synced: synced}, nil
}

func (m *Manager) encodeLocked() string {
	raw, err := json.Marshal(m.doc)
	if err != nil {
		// Documents only ever contain JSON-decoded values.
		panic("document: canonical document not serializable: " + err.Error())
	}
	return string(raw)
}

func (m *Manager) readLocal(ctx context.Context) (*portfolio.Document, bool) {
	value, found, err := m.local.Get(ctx, portfolio.DocumentKey)
	if err != nil {
		m.logger.Warn("Durable local tier read failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	doc, err := portfolio.DecodeDocument([]byte(value))
	if err != nil {
		m.logger.Warn("Locally stored document is corrupt, ignoring it", zap.Error(err))
		return nil, false
	}
	return doc, true
}

func (m *Manager) writeLocal(ctx context.Context, doc *portfolio.Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		m.logger.Error("Failed to serialize document for local tier", err)
		return
	}
	if err := m.local.Set(ctx, portfolio.DocumentKey, string(raw)); err != nil {
		m.logger.Warn("Write-through to durable local tier failed", zap.Error(err))
	}
}

// publishChangeLocked broadcasts asynchronously; a slow broker must not
// stall the save path.
func (m *Manager) publishChangeLocked(reason string) {
	if m.publisher == nil {
		return
	}
	ev := portfolio.ChangeEvent{
		EventType: portfolio.EventDocumentChanged,
		Reason:    reason,
		Source:    m.origin,
		Timestamp: time.Now().UTC(),
	}
	go func() {
		if err := m.publisher.PublishDocumentChanged(context.Background(), ev); err != nil {
			m.logger.Error("Failed to publish document change event", err, zap.String("reason", reason))
		}
	}()
}

// Status describes the sync layer for the admin status endpoint.
type Status struct {
	State           State  `json:"state"`
	RemoteAvailable bool   `json:"remote_available"`
	Mode            string `json:"mode"`
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode := "local-only"
	if m.remote.Available() {
		mode = "remote+cache"
	}
	return Status{
		State:           m.state,
		RemoteAvailable: m.remote.Available(),
		Mode:            mode,
	}
}
