package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/docuvault/internal/common"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id                TEXT PRIMARY KEY,
	filename          TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	file_path         TEXT NOT NULL,
	file_size         INTEGER,
	file_type         TEXT,
	status            TEXT NOT NULL DEFAULT 'pending',
	uploaded_at       TIMESTAMP NOT NULL,
	processed_at      TIMESTAMP,
	ocr_text          TEXT,
	ocr_confidence    REAL,
	ocr_seconds       REAL,
	document_type     TEXT,
	extracted_data    TEXT,
	llm_model         TEXT,
	llm_seconds       REAL,
	tags              TEXT,
	notes             TEXT,
	is_archived       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status, is_archived);

CREATE TABLE IF NOT EXISTS search_history (
	id             TEXT PRIMARY KEY,
	query          TEXT NOT NULL,
	response       TEXT,
	document_ids   TEXT,
	created_at     TIMESTAMP NOT NULL,
	execution_time REAL
);
`

// Store wraps the embedded SQLite database. SQLite tolerates exactly one
// writer, so every mutating statement runs under the mutex; the access
// pattern is short-lived serialized operations, no long transactions.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// Open opens (or creates) the database file and ensures the schema.
// Pass ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening database", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps the single-writer model honest
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("database ready")
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Info("closing database")
	return s.db.Close()
}

// HealthCheck pings the database to catch path/permission issues early.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}
