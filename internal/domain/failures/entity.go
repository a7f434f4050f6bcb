package failures

import "time"

// Phase names the pipeline step that failed.
type Phase string

const (
	PhaseExtract Phase = "extract"
	PhaseLookup  Phase = "lookup"
	PhasePersist Phase = "persist"
	PhaseArchive Phase = "archive"
	PhaseNotify  Phase = "notify"
)

// Failure is a persisted, non-fatal pipeline error entry.
type Failure struct {
	ID          int64     `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Phase       Phase     `json:"phase"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
