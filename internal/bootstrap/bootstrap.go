// Package bootstrap builds the analysis service and its adapters from config.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/fiscaliza/internal/application"
	appanalysis "github.com/bryanwahyu/fiscaliza/internal/application/analysis"
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
	"github.com/bryanwahyu/fiscaliza/internal/domain/screening"
	"github.com/bryanwahyu/fiscaliza/internal/config"
	"github.com/bryanwahyu/fiscaliza/internal/infra/ai/openai"
	"github.com/bryanwahyu/fiscaliza/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/fiscaliza/internal/infra/db/mysql"
	"github.com/bryanwahyu/fiscaliza/internal/infra/db/postgres"
	"github.com/bryanwahyu/fiscaliza/internal/infra/extract/ocrspace"
	"github.com/bryanwahyu/fiscaliza/internal/infra/extract/tesseract"
	"github.com/bryanwahyu/fiscaliza/internal/infra/notify/discord"
	"github.com/bryanwahyu/fiscaliza/internal/infra/notify/lognotify"
	"github.com/bryanwahyu/fiscaliza/internal/infra/storage"
	"github.com/bryanwahyu/fiscaliza/internal/middleware"
)

// Stores bundles the persistence adapters for one database driver.
type Stores struct {
	Analyses domain.Store
	Failures failures.Repository
	// DB is nil for the memory driver.
	DB *sql.DB
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// bucketChecker is satisfied by archives that can verify their bucket.
type bucketChecker interface {
	Check(ctx context.Context) error
}

// Checkers returns the /healthz checks for the wired service. The store is
// required; extractor and archive only degrade the service when missing.
func Checkers(cfg *config.Config, stores *Stores, svc *appanalysis.Service) map[string]middleware.HealthChecker {
	out := map[string]middleware.HealthChecker{}

	if stores.DB != nil {
		out["store"] = &middleware.DatabaseHealthChecker{DB: stores.DB}
	} else {
		empty := domain.FingerprintText("")
		out["store"] = middleware.CheckFunc(func(ctx context.Context) error {
			_, err := stores.Analyses.FindByFingerprint(ctx, empty)
			if err == nil || errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		})
	}

	provider := cfg.Extractor.Provider
	out["extractor"] = middleware.Optional(middleware.CheckFunc(func(context.Context) error {
		if svc.Extractor == nil {
			return fmt.Errorf("no extractor configured for provider %q; document uploads are rejected", provider)
		}
		return nil
	}))

	if bc, ok := svc.Archive.(bucketChecker); ok {
		out["archive"] = middleware.Optional(middleware.CheckFunc(bc.Check))
	}
	return out
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		if cfg.Database.Migrate {
			if err := mysqlp.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, fmt.Errorf("mysql schema: %w", err)
			}
		}
		return &Stores{
			Analyses: mysqlp.NewAnalysisRepository(db),
			Failures: mysqlp.NewFailureRepository(db),
			DB:       db,
		}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if cfg.Database.Migrate {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, fmt.Errorf("postgres schema: %w", err)
			}
		}
		return &Stores{
			Analyses: postgres.NewAnalysisRepository(db),
			Failures: postgres.NewFailureRepository(db),
			DB:       db,
		}, nil
	default:
		return &Stores{
			Analyses: memory.NewAnalysisRepository(),
			Failures: memory.NewFailureRepository(),
		}, nil
	}
}

// NewExtractor picks the extraction adapter; nil when none is usable.
func NewExtractor(cfg *config.Config) domain.Extractor {
	ex := cfg.Extractor
	switch ex.Provider {
	case "tesseract":
		return tesseract.NewRunner(ex.Tesseract.Binary, ex.Tesseract.Language)
	case "openai":
		if ex.OpenAI.APIKey == "" {
			return nil
		}
		return openai.NewClientWithBaseURL(ex.OpenAI.APIKey, ex.OpenAI.Model, ex.OpenAI.BaseURL)
	default:
		if ex.OCRSpace.APIKey == "" {
			return nil
		}
		c := ocrspace.New(ex.OCRSpace.APIKey)
		if ex.OCRSpace.Endpoint != "" {
			c.Endpoint = ex.OCRSpace.Endpoint
		}
		if ex.OCRSpace.Language != "" {
			c.Language = ex.OCRSpace.Language
		}
		if ex.Timeout > 0 {
			c.HTTP = &http.Client{Timeout: ex.Timeout}
		}
		return c
	}
}

// NewNotifier posts to Discord when a webhook is configured, otherwise logs.
func NewNotifier(cfg *config.Config, log zerolog.Logger) domain.Notifier {
	if cfg.Alert.DiscordWebhookURL == "" {
		return lognotify.New(log)
	}
	return discord.New(cfg.Alert.DiscordWebhookURL)
}

// NewArchive returns nil when MinIO is disabled.
func NewArchive(ctx context.Context, cfg *config.Config) (domain.DocumentArchive, error) {
	m := cfg.Minio
	if !m.Enabled {
		return nil, nil
	}
	a, err := storage.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("minio init: %w", err)
	}
	return a, nil
}

// NewService wires the analysis service. metrics may be nil.
func NewService(cfg *config.Config, stores *Stores, log zerolog.Logger, metrics appanalysis.Recorder) (*appanalysis.Service, error) {
	engine, err := screening.NewEngine(cfg.ScreeningConfig())
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return &appanalysis.Service{
		Store:         stores.Analyses,
		Engine:        engine,
		Extractor:     NewExtractor(cfg),
		Notifier:      NewNotifier(cfg, log),
		Failures:      stores.Failures,
		Clock:         application.SystemClock{},
		Log:           log,
		Metrics:       metrics,
		Mode:          appanalysis.FingerprintMode(cfg.Analysis.FingerprintMode),
		NotifyTimeout: cfg.Alert.Timeout,
	}, nil
}
