package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestRequestShape(t *testing.T) {
	c := &Client{Model: "gpt-4o-mini"}
	req := c.request(domain.Document{Name: "oficio.png", Data: pngHeader})
	assert.Equal(t, 4096, req.MaxTokens)
	assert.Zero(t, req.MaxCompletionTokens)
	require.Len(t, req.Messages, 2)
	parts := req.Messages[1].MultiContent
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))

	c.Model = "o4-mini"
	req = c.request(domain.Document{Data: pngHeader})
	assert.Equal(t, 4096, req.MaxCompletionTokens)
	assert.Zero(t, req.MaxTokens)
}

func TestDataURIKeepsDeclaredType(t *testing.T) {
	got := dataURI(domain.Document{ContentType: "image/jpeg; q=1", Data: []byte("abc")})
	assert.Equal(t, "data:image/jpeg;base64,YWJj", got)
}

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-4o", req["model"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Portaria nº 3  "}}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "", srv.URL+"/v1")
	text, err := c.Extract(context.Background(), domain.Document{Name: "p.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "Portaria nº 3", text)
}

func TestExtractQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"quota","type":"insufficient_quota"}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", openai.GPT4oMini, srv.URL+"/v1")
	_, err := c.Extract(context.Background(), domain.Document{Data: pngHeader})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
}
