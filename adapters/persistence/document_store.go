package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

var psqlDoc = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// transportMetadataKeys are written into the stored JSON on save and must be
// stripped on load. They are transport concerns, never part of the
// document's logical schema.
var transportMetadataKeys = []string{"lastUpdated", "timestamp", "authorized"}

// PostgresDocumentStore keeps the whole portfolio document as one JSONB row
// under a fixed document id. A nil pool means the store was never
// configured; it then reports unavailable instead of erroring.
type PostgresDocumentStore struct {
	db         *pgxpool.Pool
	documentID string
	logger     logger.Logger
}

func NewPostgresDocumentStore(db *pgxpool.Pool, documentID string, log logger.Logger) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db, documentID: documentID, logger: log}
}

// NewUnavailableDocumentStore stands in when no DB DSN is configured. Every
// call degrades the way the sync layer expects: absent data, never a crash.
func NewUnavailableDocumentStore() *PostgresDocumentStore {
	return &PostgresDocumentStore{}
}

var _ portfolio.RemoteStore = (*PostgresDocumentStore)(nil)

func (s *PostgresDocumentStore) Available() bool {
	return s.db != nil
}

func (s *PostgresDocumentStore) LoadDocument(ctx context.Context) (*portfolio.Document, bool, error) {
	if !s.Available() {
		return nil, false, nil
	}

	query, args, err := psqlDoc.
		Select("data").
		From("portfolio_documents").
		Where(sq.Eq{"id": s.documentID}).
		ToSql()
	if err != nil {
		return nil, false, apperror.NewInternal("failed to build document query", err)
	}

	var raw []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperror.NewRemoteUnreachable("failed to query portfolio document", err)
	}

	doc, err := decodeStoredDocument(raw)
	if err != nil {
		s.logger.Warn("Stored document is not decodable", zap.String("document_id", s.documentID), zap.Error(err))
		return nil, false, apperror.NewRemoteUnreachable("stored document is corrupt", err)
	}
	return doc, true, nil
}

func (s *PostgresDocumentStore) SaveDocument(ctx context.Context, doc *portfolio.Document) error {
	if !s.Available() {
		return apperror.NewRemoteUnreachable("document store not configured", nil)
	}

	raw, err := encodeStoredDocument(doc, time.Now().UTC())
	if err != nil {
		return apperror.NewInternal("failed to encode portfolio document", err)
	}

	query, args, err := psqlDoc.
		Insert("portfolio_documents").
		Columns("id", "data", "updated_at").
		Values(s.documentID, raw, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build document upsert", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewRemoteUnreachable("failed to upsert portfolio document", err)
	}
	return nil
}

// encodeStoredDocument merges transport metadata into the serialized
// document, mirroring what the hosted document store attaches server-side.
func encodeStoredDocument(doc *portfolio.Document, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}

	flat["lastUpdated"] = now.Format(time.RFC3339)
	flat["timestamp"] = now.UnixMilli()
	flat["authorized"] = true

	return json.Marshal(flat)
}

// decodeStoredDocument strips transport metadata before the document is
// treated as canonical application data.
func decodeStoredDocument(raw []byte) (*portfolio.Document, error) {
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	for _, key := range transportMetadataKeys {
		delete(flat, key)
	}
	clean, err := json.Marshal(flat)
	if err != nil {
		return nil, err
	}
	return portfolio.DecodeDocument(clean)
}
