package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/fiscaliza/internal/domain/screening"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		APIKeys        []string `yaml:"apiKeys"` // "client:key"
		AllowedOrigins []string `yaml:"allowedOrigins"`
		MaxUploadMB    int      `yaml:"maxUploadMB"`
		RateLimit      struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | memory
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
		Migrate  bool   `yaml:"migrate"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Extractor struct {
		Provider string `yaml:"provider"` // ocrspace | tesseract | openai
		OCRSpace struct {
			APIKey   string `yaml:"apiKey"`
			Endpoint string `yaml:"endpoint"`
			Language string `yaml:"language"`
		} `yaml:"ocrspace"`
		Tesseract struct {
			Binary   string `yaml:"binary"`
			Language string `yaml:"language"`
		} `yaml:"tesseract"`
		OpenAI struct {
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"baseURL"`
		} `yaml:"openai"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"extractor"`

	Alert struct {
		DiscordWebhookURL string        `yaml:"discordWebhookURL"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"alert"`

	Rules struct {
		InstitutionalTerms []string `yaml:"institutionalTerms"`
		SuspiciousTerms    []string `yaml:"suspiciousTerms"`
		WaiverPhrase       string   `yaml:"waiverPhrase"`
		WaiverCeiling      float64  `yaml:"waiverCeiling"` // reais, e.g. 59906.02
		IdentifierPattern  string   `yaml:"identifierPattern"`
		MandatoryTerms     []string `yaml:"mandatoryTerms"`
		MarkOpen           string   `yaml:"markOpen"`
		MarkClose          string   `yaml:"markClose"`
	} `yaml:"rules"`

	Analysis struct {
		FingerprintMode string `yaml:"fingerprintMode"` // text | document
	} `yaml:"analysis"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load baca file config.yaml, lalu override dari environment (.env ikut dibaca).
// A missing file is fine; defaults and environment still apply.
func Load(path string) (*Config, error) {
	// .env opsional
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default config for local development: in-memory store, no archive.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.MaxUploadMB = 20
	c.Server.RateLimit.Capacity = 60
	c.Server.RateLimit.RefillRate = 1
	c.Database.Driver = "memory"
	c.Database.Port = 3306
	c.Minio.BucketName = "documents"
	c.Extractor.Provider = "ocrspace"
	c.Extractor.Timeout = 60 * time.Second
	c.Alert.Timeout = 10 * time.Second
	c.Analysis.FingerprintMode = "text"
	c.Log.Level = "info"
	return &c
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"DB_DRIVER":           &c.Database.Driver,
		"DB_HOST":             &c.Database.Host,
		"DB_USER":             &c.Database.User,
		"DB_PASSWORD":         &c.Database.Password,
		"DB_NAME":             &c.Database.Name,
		"MINIO_ENDPOINT":      &c.Minio.Endpoint,
		"MINIO_ACCESS_KEY":    &c.Minio.AccessKey,
		"MINIO_SECRET_KEY":    &c.Minio.SecretKey,
		"EXTRACTOR_PROVIDER":  &c.Extractor.Provider,
		"OCR_SPACE_API_KEY":   &c.Extractor.OCRSpace.APIKey,
		"OPENAI_API_KEY":      &c.Extractor.OpenAI.APIKey,
		"OPENAI_MODEL":        &c.Extractor.OpenAI.Model,
		"DISCORD_WEBHOOK_URL": &c.Alert.DiscordWebhookURL,
		"FINGERPRINT_MODE":    &c.Analysis.FingerprintMode,
		"LOG_LEVEL":           &c.Log.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	num := map[string]*int{
		"PORT":    &c.Server.Port,
		"DB_PORT": &c.Database.Port,
	}
	for key, dst := range num {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("API_KEYS"); ok {
		c.Server.APIKeys = splitList(v)
	}
	return nil
}

// Validate checks enum fields and rule parameters.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("database.driver: unknown %q (mysql, postgres, memory)", c.Database.Driver)
	}
	switch c.Extractor.Provider {
	case "ocrspace", "tesseract", "openai", "":
	default:
		return fmt.Errorf("extractor.provider: unknown %q (ocrspace, tesseract, openai)", c.Extractor.Provider)
	}
	switch c.Analysis.FingerprintMode {
	case "text", "document":
	default:
		return fmt.Errorf("analysis.fingerprintMode: unknown %q (text, document)", c.Analysis.FingerprintMode)
	}
	if c.Rules.WaiverCeiling < 0 {
		return errors.New("rules.waiverCeiling must not be negative")
	}
	if _, err := c.APIKeyMap(); err != nil {
		return err
	}
	return nil
}

// ScreeningConfig converts the rules section to the screening configuration.
// Unset fields fall back to the built-in defaults.
func (c *Config) ScreeningConfig() screening.Config {
	r := c.Rules
	return screening.Config{
		InstitutionalTerms: r.InstitutionalTerms,
		SuspiciousTerms:    r.SuspiciousTerms,
		WaiverPhrase:       r.WaiverPhrase,
		WaiverCeilingCents: int64(math.Round(r.WaiverCeiling * 100)),
		IdentifierPattern:  r.IdentifierPattern,
		MandatoryTerms:     r.MandatoryTerms,
		MarkOpen:           r.MarkOpen,
		MarkClose:          r.MarkClose,
	}
}

// APIKeyMap parses "client:key" entries.
func (c *Config) APIKeyMap() (map[string]string, error) {
	out := make(map[string]string, len(c.Server.APIKeys))
	for _, entry := range c.Server.APIKeys {
		name, key, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("server.apiKeys: entry must be client:key")
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(key)
	}
	return out, nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
