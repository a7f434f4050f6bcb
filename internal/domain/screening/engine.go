package screening

import (
	"sync"

	"github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// Engine runs the detectors over one text. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	detectors   []Detector
	highlighter Highlighter
	cfg         Config
}

// NewEngine compiles the rule set R1..R5 from cfg.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	st, err := newStructure(cfg.IdentifierPattern, cfg.MandatoryTerms)
	if err != nil {
		return nil, err
	}
	return &Engine{
		detectors: []Detector{
			newRepeatedNames(cfg.InstitutionalTerms),
			invalidDates{},
			&suspiciousTerms{terms: cfg.SuspiciousTerms},
			st,
			&waiverCeiling{phrase: cfg.WaiverPhrase, ceilingCents: cfg.WaiverCeilingCents},
		},
		highlighter: Highlighter{Open: cfg.MarkOpen, Close: cfg.MarkClose},
		cfg:         cfg,
	}, nil
}

// Config returns the effective rule parameters.
func (e *Engine) Config() Config { return e.cfg }

// Run executes every detector concurrently and merges their findings in
// rule order, so the output is the same on every call.
func (e *Engine) Run(t Text) []analysis.Finding {
	results := make([][]analysis.Finding, len(e.detectors))
	var wg sync.WaitGroup
	for i, d := range e.detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			results[i] = d.Detect(t)
		}(i, d)
	}
	wg.Wait()

	out := []analysis.Finding{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// Screen normalizes text, runs the rules and highlights the evidence.
func (e *Engine) Screen(text string) (findings []analysis.Finding, highlighted string) {
	findings = e.Run(Normalize(text))
	return findings, e.highlighter.Highlight(text, Evidence(findings))
}

// Evidence lists the literal spans implicated by findings.
func Evidence(findings []analysis.Finding) []string {
	var out []string
	for _, f := range findings {
		if f.MatchedSpan != "" {
			out = append(out, f.MatchedSpan)
		}
	}
	return out
}
