package lognotify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

func TestNotify(t *testing.T) {
	var buf bytes.Buffer
	n := New(zerolog.New(&buf))
	res := domain.NewResult("id", domain.FingerprintText("a"), "a", "a",
		[]domain.Finding{{RuleID: "R3_suspicious_term", Severity: domain.SeverityMedium}}, time.Unix(0, 0).UTC())

	require.NoError(t, n.Notify(context.Background(), res))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "SUSPEITO", line["status"])
	assert.Equal(t, []any{"R3_suspicious_term"}, line["rules"])
}
