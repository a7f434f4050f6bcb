package mysql

import (
	"context"
	"database/sql"
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

// Insert stores r unless its fingerprint exists. The no-op update leaves
// zero affected rows on conflict, so the caller learns who won.
func (r *AnalysisRepository) Insert(ctx context.Context, res *domain.Result) (bool, error) {
	const q = `
INSERT INTO document_analyses
(fingerprint, id, status, findings_json,
 high, medium, low, findings_total,
 text_content, highlighted_text, document_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE fingerprint = fingerprint;
`
	findings, err := encodeFindings(res.Findings)
	if err != nil {
		return false, fmt.Errorf("encoding findings: %w", err)
	}
	out, err := r.db.ExecContext(ctx, q,
		res.Fingerprint, res.ID, stringOrDash(string(res.Status)), findings,
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

// FindByFingerprint returns domain.ErrNotFound when absent.
func (r *AnalysisRepository) FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Result, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysis+` WHERE fingerprint=? LIMIT 1;`, fp)
	res, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return res, err
}

// Latest analyses, newest first
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectAnalysis+` ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Result, error) {
	var res domain.Result
	var findings []byte
	if err := row.Scan(
		&res.Fingerprint, &res.ID, &res.Status, &findings,
		&res.Counts.High, &res.Counts.Medium, &res.Counts.Low, &res.Counts.Total,
		&res.Text, &res.HighlightedText, &res.DocumentURL, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	f, err := decodeFindings(findings)
	if err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	res.Findings = f
	res.CreatedAt = res.CreatedAt.UTC()
	return &res, nil
}
