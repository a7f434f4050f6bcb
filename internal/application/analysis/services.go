package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/fiscaliza/internal/application"
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

// FingerprintMode selects what the cache key is computed from.
type FingerprintMode string

const (
	// FingerprintText hashes the extracted text (default).
	FingerprintText FingerprintMode = "text"
	// FingerprintDocument hashes the raw uploaded bytes, so a cache hit
	// also skips extraction.
	FingerprintDocument FingerprintMode = "document"
)

const defaultNotifyTimeout = 10 * time.Second

// Screener runs the rules and the evidence highlighter over one text.
// *screening.Engine is the production implementation.
type Screener interface {
	Screen(text string) (findings []domain.Finding, highlighted string)
}

// Service implements the screening use-cases around the rule engine.
// Store and Engine are required; every other collaborator is optional.
// Service is safe for concurrent use and must not be copied after first use.
type Service struct {
	Store     domain.Store
	Engine    Screener
	Extractor domain.Extractor
	Archive   domain.DocumentArchive
	Notifier  domain.Notifier
	Failures  failures.Repository
	Clock     application.Clock
	Log       zerolog.Logger
	Metrics   Recorder
	Mode      FingerprintMode

	NotifyTimeout time.Duration

	locks   keyedMutex
	pending sync.WaitGroup
}

// Report wraps a result with how it was produced. Result is identical for
// every call on the same content; Cached and Warnings describe this call.
type Report struct {
	Result   *domain.Result `json:"result"`
	Cached   bool           `json:"cached"`
	Warnings []string       `json:"warnings,omitempty"`
}

//
// ==== USE CASES ====
//

// AnalyzeText screens an already extracted text.
func (s *Service) AnalyzeText(ctx context.Context, text string) (*Report, error) {
	if strings.TrimSpace(text) == "" {
		s.metrics().Unanalyzable()
		return nil, domain.ErrUnanalyzable
	}
	fp := domain.FingerprintText(text)
	return s.gate(ctx, fp, nil, func(context.Context) (string, error) { return text, nil })
}

// AnalyzeDocument extracts the text of doc and screens it.
func (s *Service) AnalyzeDocument(ctx context.Context, doc domain.Document) (*Report, error) {
	if len(doc.Data) == 0 {
		s.metrics().Unanalyzable()
		return nil, domain.ErrUnanalyzable
	}
	if s.Extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", domain.ErrExtraction)
	}

	if s.Mode == FingerprintDocument {
		fp := domain.FingerprintBytes(doc.Data)
		return s.gate(ctx, fp, &doc, func(ctx context.Context) (string, error) {
			return s.extract(ctx, doc, fp)
		})
	}

	text, err := s.extract(ctx, doc, "")
	if err != nil {
		return nil, err
	}
	fp := domain.FingerprintText(text)
	return s.gate(ctx, fp, &doc, func(context.Context) (string, error) { return text, nil })
}

// Get ambil 1 analysis by fingerprint
func (s *Service) Get(ctx context.Context, fp domain.Fingerprint) (*domain.Result, error) {
	return s.Store.FindByFingerprint(ctx, fp)
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.Store.Latest(ctx, limit)
}

// FailuresFor lists recorded pipeline failures for a fingerprint.
func (s *Service) FailuresFor(ctx context.Context, fp domain.Fingerprint, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return nil, nil
	}
	return s.Failures.ListByFingerprint(ctx, string(fp), limit)
}

// Wait blocks until in-flight alerts have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

//
// ==== GATE ====
//

// gate serves fp from the store or runs the pipeline once for it. Calls for
// the same fingerprint are serialised in-process; across processes the
// store's conditional insert decides which analysis is the fresh one.
func (s *Service) gate(ctx context.Context, fp domain.Fingerprint, doc *domain.Document, load func(context.Context) (string, error)) (*Report, error) {
	unlock := s.locks.Lock(string(fp))
	defer unlock()

	log := s.Log.With().Str("fingerprint", fp.Short()).Logger()
	rep := &Report{}

	cached, err := s.Store.FindByFingerprint(ctx, fp)
	switch {
	case err == nil:
		s.metrics().CacheHit()
		log.Debug().Str("status", string(cached.Status)).Msg("served from cache")
		return &Report{Result: cached, Cached: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		rep.Warnings = append(rep.Warnings, "cache lookup failed: "+err.Error())
		s.recordFailure(ctx, log, fp, failures.PhaseLookup, err)
	}

	text, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		s.metrics().Unanalyzable()
		return nil, domain.ErrUnanalyzable
	}

	findings, highlighted := s.Engine.Screen(text)
	res := domain.NewResult(uuid.NewString(), fp, text, highlighted, findings, application.Stamp(s.Clock))

	if doc != nil && s.Archive != nil {
		url, err := s.Archive.Put(ctx, archiveKey(fp, doc.Name), *doc)
		if err != nil {
			rep.Warnings = append(rep.Warnings, "document archive failed: "+err.Error())
			s.recordFailure(ctx, log, fp, failures.PhaseArchive, err)
		} else {
			res.DocumentURL = url
		}
	}

	inserted, err := s.Store.Insert(ctx, res)
	switch {
	case err != nil:
		// result is still valid; only the cache entry is missing
		rep.Warnings = append(rep.Warnings, "persist failed: "+err.Error())
		s.recordFailure(ctx, log, fp, failures.PhasePersist, err)
	case !inserted:
		// another writer stored this fingerprint first; its record wins
		stored, ferr := s.Store.FindByFingerprint(ctx, fp)
		if ferr == nil {
			s.metrics().CacheHit()
			return &Report{Result: stored, Cached: true, Warnings: rep.Warnings}, nil
		}
		rep.Warnings = append(rep.Warnings, "reload after conflict failed: "+ferr.Error())
		s.recordFailure(ctx, log, fp, failures.PhaseLookup, ferr)
		rep.Result = res
		return rep, nil
	}

	s.metrics().Analyzed(res.Status)
	log.Info().
		Str("status", string(res.Status)).
		Int("findings", len(res.Findings)).
		Bool("persisted", err == nil).
		Msg("document analyzed")

	if res.Suspicious() {
		s.alert(res)
	}
	rep.Result = res
	return rep, nil
}

func (s *Service) extract(ctx context.Context, doc domain.Document, fp domain.Fingerprint) (string, error) {
	log := s.Log.With().Str("document", doc.Name).Logger()
	text, err := s.Extractor.Extract(ctx, doc)
	if err != nil {
		s.recordFailure(ctx, log, fp, failures.PhaseExtract, err)
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		s.metrics().Unanalyzable()
		s.recordFailure(ctx, log, fp, failures.PhaseExtract, errors.New("extractor returned empty text"))
		return "", domain.ErrUnanalyzable
	}
	return text, nil
}

// alert is fire-and-forget: it never blocks the caller and its outcome
// never changes the returned result.
func (s *Service) alert(res *domain.Result) {
	if s.Notifier == nil {
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	snapshot := *res
	log := s.Log.With().Str("fingerprint", res.Fingerprint.Short()).Logger()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("notifier panicked")
				s.metrics().Alert(false)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.Notifier.Notify(ctx, &snapshot); err != nil {
			s.metrics().Alert(false)
			s.recordFailure(context.Background(), log, snapshot.Fingerprint, failures.PhaseNotify, err)
			return
		}
		s.metrics().Alert(true)
		log.Info().Msg("alert sent")
	}()
}

func (s *Service) recordFailure(ctx context.Context, log zerolog.Logger, fp domain.Fingerprint, phase failures.Phase, cause error) {
	s.metrics().Failure(phase)
	log.Warn().Err(cause).Str("phase", string(phase)).Msg("pipeline step failed")
	if s.Failures == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{"error": cause.Error()})
	f := &failures.Failure{
		Fingerprint: string(fp),
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   application.Stamp(s.Clock),
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		log.Error().Err(err).Msg("failure log unavailable")
	}
}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

// helper
func archiveKey(fp domain.Fingerprint, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("documents/%s/%s%s", fp[:2], fp, ext)
}
