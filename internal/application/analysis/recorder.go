package analysis

import (
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

// Recorder receives pipeline events for metrics.
type Recorder interface {
	CacheHit()
	Analyzed(status domain.Status)
	Unanalyzable()
	Alert(ok bool)
	Failure(phase failures.Phase)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit() {}
func (nopRecorder) Analyzed(domain.Status) {}
func (nopRecorder) Unanalyzable() {}
func (nopRecorder) Alert(bool) {}
func (nopRecorder) Failure(failures.Phase) {}
