package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  fingerprint      CHAR(64)     NOT NULL,
  id               CHAR(36)     NOT NULL,
  status           VARCHAR(16)  NOT NULL,
  findings_json    JSON         NOT NULL,
  high             INT          NOT NULL DEFAULT 0,
  medium           INT          NOT NULL DEFAULT 0,
  low              INT          NOT NULL DEFAULT 0,
  findings_total   INT          NOT NULL DEFAULT 0,
  text_content     MEDIUMTEXT   NOT NULL,
  highlighted_text MEDIUMTEXT   NOT NULL,
  document_url     VARCHAR(512) NOT NULL DEFAULT '',
  created_at       DATETIME     NOT NULL,
  PRIMARY KEY (fingerprint),
  KEY idx_document_analyses_created (created_at)
) DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS pipeline_failures (
  id            BIGINT      NOT NULL AUTO_INCREMENT,
  fingerprint   VARCHAR(64) NOT NULL,
  phase         VARCHAR(16) NOT NULL,
  message       TEXT        NOT NULL,
  details_json  JSON        NOT NULL,
  created_at    DATETIME    NOT NULL,
  PRIMARY KEY (id),
  KEY idx_pipeline_failures_fp (fingerprint, created_at)
) DEFAULT CHARSET=utf8mb4;
`

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
