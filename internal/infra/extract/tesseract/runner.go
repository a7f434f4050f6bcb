// Package tesseract runs the local tesseract binary as a text extractor.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

type Runner struct {
	Binary   string
	Language string
	// TempDir tempat file sementara; kosong berarti os.TempDir()
	TempDir string
}

func NewRunner(binary, language string) *Runner {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "por"
	}
	return &Runner{Binary: binary, Language: language}
}

// Extract writes the document to a temp file and reads tesseract's stdout.
func (r *Runner) Extract(ctx context.Context, doc domain.Document) (string, error) {
	f, err := os.CreateTemp(r.TempDir, "fiscaliza-*"+filepath.Ext(doc.Name))
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(doc.Data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.args(f.Name())...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("tesseract exit %d: %s", ee.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run error: %w", err)
	}
	return string(out), nil
}

func (r *Runner) args(path string) []string {
	return []string{path, "stdout", "-l", r.Language}
}
