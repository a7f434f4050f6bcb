package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	appanalysis "github.com/bryanwahyu/fiscaliza/internal/application/analysis"
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/screening"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestAnalyzeJSON(t *testing.T) {
	p := writeDoc(t, "oficio.txt", "Dispensa de licitação no valor de R$ 99.000,00.")
	out, err := run(t, "analyze", p, "--json")
	require.NoError(t, err)

	var rep appanalysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, domain.StatusSuspicious, rep.Result.Status)
	assert.False(t, rep.Cached)
}

func TestAnalyzeSummary(t *testing.T) {
	p := writeDoc(t, "portaria.txt", "Portaria nº 4/2024. Designa servidor.")
	out, err := run(t, "analyze", p, "--highlight")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:      SEGURO")
	assert.Contains(t, out, "No findings.")
	assert.Contains(t, out, "Portaria nº 4/2024")
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := run(t, "analyze", writeDoc(t, "vazio.txt", "  \n"))
	assert.ErrorIs(t, err, domain.ErrUnanalyzable)
}

func TestAnalyzeDocumentWithoutExtractor(t *testing.T) {
	t.Setenv("OCR_SPACE_API_KEY", "")
	_, err := run(t, "analyze", writeDoc(t, "scan.png", "\x89PNG"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestLookupInvalid(t *testing.T) {
	_, err := run(t, "lookup", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRules(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	var cfg screening.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, screening.DefaultWaiverCeilingCents, cfg.WaiverCeilingCents)
	assert.Equal(t, "dispensa de licitação", cfg.WaiverPhrase)
}
