package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

type DocumentStoreIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	store       *PostgresDocumentStore
}

func (s *DocumentStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to init migrations: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	s.dbPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to connect pool: %s", err)
	}

	s.store = NewPostgresDocumentStore(s.dbPool, "portfolio-user", logger.NewNop())
}

func (s *DocumentStoreIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *DocumentStoreIntegrationTestSuite) TestLoadAbsentDocument() {
	emptyStore := NewPostgresDocumentStore(s.dbPool, "never-written", logger.NewNop())
	doc, found, err := emptyStore.LoadDocument(context.Background())
	s.NoError(err)
	s.False(found)
	s.Nil(doc)
}

func (s *DocumentStoreIntegrationTestSuite) TestSaveThenLoadStripsMetadata() {
	ctx := context.Background()

	doc := portfolio.DefaultDocument()
	doc.Profile.FullName = "Integration Owner"
	doc.Certificates = append(doc.Certificates, portfolio.Entry{
		"id": int64(1700000000123), "title": "CKA", "issuer": "CNCF", "date": "2024-03-01",
	})

	s.Require().NoError(s.store.SaveDocument(ctx, doc))

	loaded, found, err := s.store.LoadDocument(ctx)
	s.Require().NoError(err)
	s.Require().True(found)

	s.Equal("Integration Owner", loaded.Profile.FullName)
	s.Require().Len(loaded.Certificates, 1)
	s.Equal("CKA", loaded.Certificates[0]["title"])
	id, ok := loaded.Certificates[0].ID()
	s.True(ok)
	s.Equal(int64(1700000000123), id)
}

func (s *DocumentStoreIntegrationTestSuite) TestSaveOverwritesWholesale() {
	ctx := context.Background()

	first := portfolio.DefaultDocument()
	first.Profile.FullName = "First"
	first.Projects = append(first.Projects, portfolio.Entry{"id": int64(1), "title": "Old", "category": "web"})
	s.Require().NoError(s.store.SaveDocument(ctx, first))

	second := portfolio.DefaultDocument()
	second.Profile.FullName = "Second"
	s.Require().NoError(s.store.SaveDocument(ctx, second))

	loaded, found, err := s.store.LoadDocument(ctx)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("Second", loaded.Profile.FullName)
	s.Empty(loaded.Projects, "previous collections must not leak into the new document")
}

func TestDocumentStoreIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DocumentStoreIntegrationTestSuite))
}
