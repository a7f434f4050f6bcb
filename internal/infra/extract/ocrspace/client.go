// Package ocrspace extracts document text through the OCR.space parse API.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

const DefaultEndpoint = "https://api.ocr.space/parse/image"

type Client struct {
	Endpoint string
	APIKey   string
	Language string
	HTTP     *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		APIKey:   apiKey,
		Language: "por",
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	// string or []string depending on the failure
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

// Extract implementasi domain.Extractor
func (c *Client) Extract(ctx context.Context, doc domain.Document) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("ocr.space api key not configured")
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("language", c.language())
	_ = w.WriteField("scale", "true")
	name := doc.Name
	if name == "" {
		name = "document"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr.space request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ocr.space status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out parseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decoding ocr.space response: %w", err)
	}
	if out.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr.space: %s", errorMessage(out.ErrorMessage))
	}

	parts := make([]string, 0, len(out.ParsedResults))
	for _, p := range out.ParsedResults {
		parts = append(parts, p.ParsedText)
	}
	return strings.Join(parts, "\n"), nil
}

func errorMessage(raw json.RawMessage) string {
	var one string
	if json.Unmarshal(raw, &one) == nil && one != "" {
		return one
	}
	var many []string
	if json.Unmarshal(raw, &many) == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return "processing failed"
}

func (c *Client) endpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *Client) language() string {
	if c.Language == "" {
		return "por"
	}
	return c.Language
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
