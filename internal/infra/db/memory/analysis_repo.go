package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// AnalysisRepository keeps analyses in process memory. Insert is atomic
// with respect to the fingerprint, like the unique key of the SQL stores.
type AnalysisRepository struct {
	mu    sync.RWMutex
	byFP  map[domain.Fingerprint]*domain.Result
	order []domain.Fingerprint
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{byFP: make(map[domain.Fingerprint]*domain.Result)}
}

func (r *AnalysisRepository) FindByFingerprint(_ context.Context, fp domain.Fingerprint) (*domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byFP[fp]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(res), nil
}

func (r *AnalysisRepository) Insert(_ context.Context, res *domain.Result) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byFP[res.Fingerprint]; ok {
		return false, nil
	}
	r.byFP[res.Fingerprint] = clone(res)
	r.order = append(r.order, res.Fingerprint)
	return true, nil
}

// Latest returns the newest analyses first.
func (r *AnalysisRepository) Latest(_ context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Result, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, clone(r.byFP[r.order[i]]))
	}
	return out, nil
}

// Len returns the number of stored analyses.
func (r *AnalysisRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFP)
}

func clone(res *domain.Result) *domain.Result {
	cp := *res
	cp.Findings = append([]domain.Finding{}, res.Findings...)
	return &cp
}
