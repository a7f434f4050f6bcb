package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS document_analyses (
  fingerprint      CHAR(64)     PRIMARY KEY,
  id               UUID         NOT NULL,
  status           VARCHAR(16)  NOT NULL,
  findings_json    JSONB        NOT NULL DEFAULT '[]',
  high             INT          NOT NULL DEFAULT 0,
  medium           INT          NOT NULL DEFAULT 0,
  low              INT          NOT NULL DEFAULT 0,
  findings_total   INT          NOT NULL DEFAULT 0,
  text_content     TEXT         NOT NULL,
  highlighted_text TEXT         NOT NULL,
  document_url     VARCHAR(512) NOT NULL DEFAULT '',
  created_at       TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_document_analyses_created ON document_analyses (created_at DESC);

CREATE TABLE IF NOT EXISTS pipeline_failures (
  id           BIGSERIAL    PRIMARY KEY,
  fingerprint  VARCHAR(64)  NOT NULL,
  phase        VARCHAR(16)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSONB        NOT NULL DEFAULT '{}',
  created_at   TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pipeline_failures_fp ON pipeline_failures (fingerprint, created_at DESC)
`

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
