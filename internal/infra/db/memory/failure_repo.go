package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

// FailureRepository is an append-only in-process failure log.
type FailureRepository struct {
	mu   sync.Mutex
	next int64
	rows []failures.Failure
}

func NewFailureRepository() *FailureRepository { return &FailureRepository{} }

func (r *FailureRepository) Save(_ context.Context, f *failures.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	f.ID = r.next
	r.rows = append(r.rows, *f)
	return nil
}

// ListByFingerprint returns newest first.
func (r *FailureRepository) ListByFingerprint(_ context.Context, fingerprint string, limit int) ([]*failures.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*failures.Failure
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].Fingerprint == fingerprint {
			f := r.rows[i]
			out = append(out, &f)
		}
	}
	return out, nil
}
