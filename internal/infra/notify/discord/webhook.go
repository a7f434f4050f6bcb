// Package discord posts screening alerts to a Discord channel webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// Discord rejects message content above this many characters.
const maxContent = 2000

type Webhook struct {
	URL      string
	Username string
	HTTP     *http.Client
}

func New(url string) *Webhook {
	return &Webhook{URL: url, Username: "fiscaliza", HTTP: &http.Client{Timeout: 10 * time.Second}}
}

type payload struct {
	Username string `json:"username,omitempty"`
	Content  string `json:"content"`
}

// Notify implementasi domain.Notifier
func (w *Webhook) Notify(ctx context.Context, res *domain.Result) error {
	if w.URL == "" {
		return errors.New("discord webhook url not configured")
	}
	body, err := json.Marshal(payload{Username: w.Username, Content: Message(res)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	cli := w.HTTP
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Message renders the alert text: status, fingerprint and one line per finding.
func Message(res *domain.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **Documento %s**\n", res.Status)
	fmt.Fprintf(&b, "Hash: `%s`\n", res.Fingerprint)
	fmt.Fprintf(&b, "Achados: %d (alta %d, média %d, baixa %d)\n",
		res.Counts.Total, res.Counts.High, res.Counts.Medium, res.Counts.Low)
	if res.DocumentURL != "" {
		fmt.Fprintf(&b, "Documento: %s\n", res.DocumentURL)
	}
	for _, f := range res.Findings {
		fmt.Fprintf(&b, "- [%s] %s\n", f.Severity, f.Message)
	}
	return truncate(b.String(), maxContent)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
