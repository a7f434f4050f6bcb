package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *failures.Failure) error {
	const q = `
INSERT INTO pipeline_failures (fingerprint, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	details := f.DetailsJSON
	if strings.TrimSpace(details) == "" || !json.Valid([]byte(details)) {
		b, _ := json.Marshal(map[string]string{"raw": details})
		details = string(b)
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, q, f.Fingerprint, string(f.Phase), f.Message, details, created).Scan(&f.ID)
}

func (r *FailureRepository) ListByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*failures.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, fingerprint, phase, message, details_json, created_at
FROM pipeline_failures
WHERE fingerprint = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, fingerprint, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*failures.Failure
	for rows.Next() {
		var f failures.Failure
		if err := rows.Scan(&f.ID, &f.Fingerprint, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
