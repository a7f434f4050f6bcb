package failures

import (
	"context"
)

// Repository defines persistence for pipeline failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*Failure, error)
}
