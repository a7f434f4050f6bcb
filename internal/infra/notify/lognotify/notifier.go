// Package lognotify writes alerts to the application log when no channel is configured.
package lognotify

import (
	"context"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

type Notifier struct {
	Log zerolog.Logger
}

func New(log zerolog.Logger) *Notifier { return &Notifier{Log: log} }

func (n *Notifier) Notify(_ context.Context, res *domain.Result) error {
	rules := make([]string, 0, len(res.Findings))
	for _, f := range res.Findings {
		rules = append(rules, f.RuleID)
	}
	n.Log.Warn().
		Str("fingerprint", res.Fingerprint.String()).
		Str("status", string(res.Status)).
		Int("high", res.Counts.High).
		Int("medium", res.Counts.Medium).
		Int("low", res.Counts.Low).
		Strs("rules", rules).
		Msg("suspicious document")
	return nil
}
