package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appanalysis "github.com/bryanwahyu/fiscaliza/internal/application/analysis"
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/infra/ai/openai"
	"github.com/bryanwahyu/fiscaliza/internal/middleware"
)

const defaultMaxUpload = 20 << 20

// Options carries the router's optional collaborators.
type Options struct {
	Log            zerolog.Logger
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter
	APIKeys        map[string]string
	AllowedOrigins []string
	MaxUploadBytes int64
	Checkers       map[string]middleware.HealthChecker
}

type Router struct {
	svc       *appanalysis.Service
	log       zerolog.Logger
	maxUpload int64
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc, log: opts.Log, maxUpload: opts.MaxUploadBytes}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(middleware.Logging(opts.Log))
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/healthz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Route("/v1/analyses", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleAnalyze))
		rt.Get("/", r.wrap(r.handleLatest))
		rt.Get("/{fingerprint}", r.wrap(r.handleGet))
		rt.Get("/{fingerprint}/failures", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks errors caused by the request itself.
type badRequest struct{ error }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var (
			bad     badRequest
			tooBig  *http.MaxBytesError
			code    = http.StatusInternalServerError
			message = err.Error()
		)
		switch {
		case errors.As(err, &tooBig):
			code = http.StatusRequestEntityTooLarge
		case errors.As(err, &bad), errors.Is(err, domain.ErrInvalidInput):
			code = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, domain.ErrUnanalyzable):
			code = http.StatusUnprocessableEntity
		case errors.Is(err, openai.ErrQuotaExceeded):
			code = http.StatusTooManyRequests
		case errors.Is(err, domain.ErrExtraction):
			code = http.StatusBadGateway
		default:
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			message = "internal error"
		}
		writeJSON(w, code, map[string]string{"error": message})
	}
}

// POST /v1/analyses
// multipart: file=<document>; json: {"text": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	var (
		rep *appanalysis.Report
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		rep, err = r.analyzeUpload(req)
	case "application/json", "":
		var body struct {
			Text string `json:"text"`
		}
		if derr := json.NewDecoder(req.Body).Decode(&body); derr != nil {
			var tooBig *http.MaxBytesError
			if errors.As(derr, &tooBig) {
				return derr
			}
			return badRequest{fmt.Errorf("invalid json body: %w", derr)}
		}
		rep, err = r.svc.AnalyzeText(req.Context(), body.Text)
	default:
		return badRequest{fmt.Errorf("unsupported content type %q", mediaType)}
	}
	if err != nil {
		return err
	}

	code := http.StatusCreated
	if rep.Cached {
		code = http.StatusOK
	}
	return writeJSON(w, code, rep)
}

func (r *Router) analyzeUpload(req *http.Request) (*appanalysis.Report, error) {
	if err := req.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, err
		}
		return nil, badRequest{fmt.Errorf("invalid multipart body: %w", err)}
	}
	f, hdr, err := req.FormFile("file")
	if err != nil {
		return nil, badRequest{errors.New("no file selected for upload")}
	}
	defer f.Close()

	name := middleware.SanitizeFilename(hdr.Filename)
	if err := middleware.ValidateUploadName(name); err != nil {
		return nil, badRequest{err}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	// plain text needs no extraction
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		if !utf8.Valid(data) {
			return nil, badRequest{errors.New("text file is not valid UTF-8")}
		}
		return r.svc.AnalyzeText(req.Context(), string(data))
	}
	return r.svc.AnalyzeDocument(req.Context(), domain.Document{
		Name:        name,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	})
}

// GET /v1/analyses?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest{fmt.Errorf("invalid limit %q", v)}
		}
		limit = middleware.ValidateLimit(n)
	}

	list, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Result{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/{fingerprint}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	fp, err := middleware.ValidateFingerprint(chi.URLParam(req, "fingerprint"))
	if err != nil {
		return err
	}
	res, err := r.svc.Get(req.Context(), fp)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/analyses/{fingerprint}/failures
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	fp, err := middleware.ValidateFingerprint(chi.URLParam(req, "fingerprint"))
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.FailuresFor(req.Context(), fp, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		return writeJSON(w, http.StatusOK, []any{})
	}
	return writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// headers are gone; an encode error here cannot become a new response
	_ = json.NewEncoder(w).Encode(v)
	return nil
}
