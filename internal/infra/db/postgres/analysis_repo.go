package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectAnalysis = `
SELECT fingerprint, id, status, findings_json,
       high, medium, low, findings_total,
       text_content, highlighted_text, document_url, created_at
FROM document_analyses`

func (r *AnalysisRepository) Insert(ctx context.Context, res *domain.Result) (bool, error) {
	const q = `
INSERT INTO document_analyses
(fingerprint, id, status, findings_json,
 high, medium, low, findings_total,
 text_content, highlighted_text, document_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (fingerprint) DO NOTHING
`
	findings := res.Findings
	if findings == nil {
		findings = []domain.Finding{}
	}
	b, err := json.Marshal(findings)
	if err != nil {
		return false, fmt.Errorf("encoding findings: %w", err)
	}
	out, err := r.db.ExecContext(ctx, q,
		res.Fingerprint, res.ID, res.Status, string(b),
		res.Counts.High, res.Counts.Medium, res.Counts.Low, res.Counts.Total,
		res.Text, res.HighlightedText, res.DocumentURL, res.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting analysis: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *AnalysisRepository) FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Result, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysis+` WHERE fingerprint=$1 LIMIT 1`, fp)
	res, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return res, err
}

func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectAnalysis+` ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		res, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanAnalysis(row interface{ Scan(...any) error }) (*domain.Result, error) {
	var res domain.Result
	var findings []byte
	if err := row.Scan(
		&res.Fingerprint, &res.ID, &res.Status, &findings,
		&res.Counts.High, &res.Counts.Medium, &res.Counts.Low, &res.Counts.Total,
		&res.Text, &res.HighlightedText, &res.DocumentURL, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.Findings = []domain.Finding{}
	if len(findings) > 0 {
		if err := json.Unmarshal(findings, &res.Findings); err != nil {
			return nil, fmt.Errorf("decoding findings: %w", err)
		}
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return &res, nil
}
