package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = io.WriteString(w, ClientFromContext(r.Context()))
})

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"prefeitura": "k1"})(okHandler)

	cases := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"bearer", "/v1/analyses", "Bearer k1", http.StatusOK, "prefeitura"},
		{"raw key", "/v1/analyses", "k1", http.StatusOK, "prefeitura"},
		{"missing", "/v1/analyses", "", http.StatusUnauthorized, ""},
		{"wrong", "/v1/analyses", "Bearer nope", http.StatusUnauthorized, ""},
		{"health open", "/healthz", "", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	defer rl.Stop()
	h := RateLimitMiddleware(rl)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// other address, own bucket
	req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analyses/x", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, float64(404), line["status"])
	assert.Equal(t, "/v1/analyses/x", line["path"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	mux := chi.NewRouter()
	mux.Use(m.Middleware)
	mux.Get("/v1/analyses/{fingerprint}", func(w http.ResponseWriter, r *http.Request) {})
	mux.Handle("/metrics", m.Handler())

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analyses/abc", nil))
	m.CacheHit()
	m.Analyzed(domain.StatusSuspicious)
	m.Alert(false)
	m.Failure(failures.PhasePersist)
	m.Unanalyzable()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `fiscaliza_http_requests_total{code="200",method="GET",route="/v1/analyses/{fingerprint}"} 1`)
	assert.Contains(t, body, "fiscaliza_cache_hits_total 1")
	assert.Contains(t, body, `fiscaliza_analyses_total{status="SUSPEITO"} 1`)
	assert.Contains(t, body, `fiscaliza_alerts_total{outcome="failed"} 1`)
	assert.Contains(t, body, `fiscaliza_pipeline_failures_total{phase="persist"} 1`)
	assert.Contains(t, body, "fiscaliza_unanalyzable_total 1")
}

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"store": CheckFunc(func(context.Context) error { return nil }),
		"minio": CheckFunc(func(context.Context) error { return errors.New("down") }),
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var st HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "unhealthy", st.Status)
	assert.Equal(t, "healthy", st.Checks["store"].Status)
	assert.Equal(t, "down", st.Checks["minio"].Message)
}

func TestHealthHandlerOptionalCheckDegrades(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"store":   CheckFunc(func(context.Context) error { return nil }),
		"archive": Optional(CheckFunc(func(context.Context) error { return errors.New("bucket missing") })),
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var st HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, "degraded", st.Checks["archive"].Status)
	assert.Equal(t, "bucket missing", st.Checks["archive"].Message)
}

func TestHealthHandlerCheckTimeout(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"slow": CheckFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "context canceled")
}

func TestValidators(t *testing.T) {
	fp := strings.Repeat("ab", 32)
	got, err := ValidateFingerprint(" " + strings.ToUpper(fp) + " ")
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint(fp), got)

	_, err = ValidateFingerprint("xyz")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.NoError(t, ValidateUploadName("Ofício 12.PDF"))
	assert.Error(t, ValidateUploadName("run.sh"))
	assert.Error(t, ValidateUploadName(""))

	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "scan.png", SanitizeFilename("scan\x00.png"))
	assert.Equal(t, "", SanitizeFilename(""))

	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 7, ValidateLimit(7))
}
