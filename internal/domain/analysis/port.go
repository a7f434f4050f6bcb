package analysis

import "context"

// Store port (interface untuk persistence). Keys are unique per fingerprint.
type Store interface {
	// FindByFingerprint returns ErrNotFound when nothing is stored.
	FindByFingerprint(ctx context.Context, fp Fingerprint) (*Result, error)
	// Insert stores r unless a record with the same fingerprint exists.
	// inserted is false when the record was already present; that is not an error.
	Insert(ctx context.Context, r *Result) (inserted bool, err error)
	Latest(ctx context.Context, limit int) ([]*Result, error)
}

// Document is an uploaded file as received by the pipeline.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extractor port: turns document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

// Notifier port: outbound alert for fresh SUSPEITO results.
type Notifier interface {
	Notify(ctx context.Context, r *Result) error
}

// DocumentArchive port (interface untuk penyimpanan dokumen asli).
type DocumentArchive interface {
	Put(ctx context.Context, key string, doc Document) (string, error)
}
