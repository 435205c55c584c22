/**
* Name: 			config.go
* Description: 		서버 설정 로딩 (.env, YAML, 환경변수)
* Workflow: 		기본값 -> YAML 파일 -> 환경변수 순서로 덮어쓰기, 마지막에 검증
 */
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devJWTSecret = "default_secret_key"

// Config is the root configuration for the API server.
type Config struct {
	HTTPAddr       string
	PublicBaseURL  string
	CORSOrigins    []string
	MaxUploadBytes int64
	AnalyzeRate    int // uploads per minute per user

	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	AI       AIConfig
	RabbitMQ RabbitMQConfig
	Preview  PreviewConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	URL    string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	// 비어 있으면 초대 코드 없이 가입 가능
	SignupInviteCode string
}

// StorageConfig selects the file bucket backend.
type StorageConfig struct {
	Backend      string // "local" or "s3"
	Dir          string
	Bucket       string
	SignedURLTTL time.Duration
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
}

// AIConfig controls the Gemini reviewer. An empty APIKey disables the model
// and every analysis returns the fallback feedback.
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type PreviewConfig struct {
	DPI float64
}

// rawConfig is the YAML shape (snake_case keys, durations as strings).
type rawConfig struct {
	HTTPAddr       string   `yaml:"http_addr"`
	PublicBaseURL  string   `yaml:"public_base_url"`
	CORSOrigins    []string `yaml:"cors_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	AnalyzeRate    int      `yaml:"analyze_rate"`
	Log            struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		ResetTokenTTL string `yaml:"reset_token_ttl"`
		InviteCode    string `yaml:"signup_invite_code"`
	} `yaml:"auth"`
	Storage struct {
		Backend      string `yaml:"backend"`
		Dir          string `yaml:"dir"`
		Bucket       string `yaml:"bucket"`
		SignedURLTTL string `yaml:"signed_url_ttl"`
		S3Endpoint   string `yaml:"s3_endpoint"`
		S3Region     string `yaml:"s3_region"`
		S3AccessKey  string `yaml:"s3_access_key"`
		S3SecretKey  string `yaml:"s3_secret_key"`
	} `yaml:"storage"`
	AI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ai"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Preview struct {
		DPI float64 `yaml:"dpi"`
	} `yaml:"preview"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTPAddr:       ":8080",
		PublicBaseURL:  "http://localhost:8080",
		MaxUploadBytes: 20 << 20,
		AnalyzeRate:    6,
		Log:            LogConfig{Level: "info", Format: "text"},
		Database:       DatabaseConfig{Driver: "sqlite", URL: "./resumesense.db"},
		Auth: AuthConfig{
			TokenTTL:      24 * time.Hour,
			ResetTokenTTL: time.Hour,
		},
		Storage: StorageConfig{
			Backend:      "local",
			Dir:          "data/files",
			Bucket:       "resumes",
			SignedURLTTL: time.Hour,
			S3Region:     "auto",
		},
		AI:       AIConfig{Model: "gemini-2.5-flash", Timeout: 60 * time.Second},
		RabbitMQ: RabbitMQConfig{Exchange: "resume_updates"},
		Preview:  PreviewConfig{DPI: 288},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults, .env and the process environment are used.
func Load(path string) (*Config, error) {
	// .env는 없어도 됨
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.applyYAML([]byte(os.ExpandEnv(string(data)))); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET_KEY is not set, using the development key")
		cfg.Auth.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyYAML(data []byte) error {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.HTTPAddr, raw.HTTPAddr)
	setString(&c.PublicBaseURL, raw.PublicBaseURL)
	if len(raw.CORSOrigins) > 0 {
		c.CORSOrigins = raw.CORSOrigins
	}
	if raw.MaxUploadBytes != 0 {
		c.MaxUploadBytes = raw.MaxUploadBytes
	}
	if raw.AnalyzeRate != 0 {
		c.AnalyzeRate = raw.AnalyzeRate
	}
	setString(&c.Log.Level, raw.Log.Level)
	setString(&c.Log.Format, raw.Log.Format)
	setString(&c.Database.Driver, raw.Database.Driver)
	setString(&c.Database.URL, raw.Database.URL)
	setString(&c.Auth.JWTSecret, raw.Auth.JWTSecret)
	setString(&c.Auth.SignupInviteCode, raw.Auth.InviteCode)
	setString(&c.Storage.Backend, raw.Storage.Backend)
	setString(&c.Storage.Dir, raw.Storage.Dir)
	setString(&c.Storage.Bucket, raw.Storage.Bucket)
	setString(&c.Storage.S3Endpoint, raw.Storage.S3Endpoint)
	setString(&c.Storage.S3Region, raw.Storage.S3Region)
	setString(&c.Storage.S3AccessKey, raw.Storage.S3AccessKey)
	setString(&c.Storage.S3SecretKey, raw.Storage.S3SecretKey)
	setString(&c.AI.APIKey, raw.AI.APIKey)
	setString(&c.AI.Model, raw.AI.Model)
	setString(&c.RabbitMQ.URL, raw.RabbitMQ.URL)
	setString(&c.RabbitMQ.Exchange, raw.RabbitMQ.Exchange)
	if raw.Preview.DPI != 0 {
		c.Preview.DPI = raw.Preview.DPI
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"auth.token_ttl", raw.Auth.TokenTTL, &c.Auth.TokenTTL},
		{"auth.reset_token_ttl", raw.Auth.ResetTokenTTL, &c.Auth.ResetTokenTTL},
		{"storage.signed_url_ttl", raw.Storage.SignedURLTTL, &c.Storage.SignedURLTTL},
		{"ai.timeout", raw.AI.Timeout, &c.AI.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.HTTPAddr, getenv("HTTP_ADDR"))
	setString(&c.PublicBaseURL, getenv("PUBLIC_BASE_URL"))
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	setString(&c.Log.Level, getenv("LOG_LEVEL"))
	setString(&c.Log.Format, getenv("LOG_FORMAT"))
	setString(&c.Database.Driver, getenv("DB_DRIVER"))
	setString(&c.Database.URL, getenv("DB_URL"))
	setString(&c.Auth.JWTSecret, getenv("JWT_SECRET_KEY"))
	setString(&c.Auth.SignupInviteCode, getenv("SIGNUP_INVITE_CODE"))
	setString(&c.Storage.Backend, getenv("STORAGE_BACKEND"))
	setString(&c.Storage.Dir, getenv("STORAGE_DIR"))
	setString(&c.Storage.Bucket, getenv("STORAGE_BUCKET"))
	setString(&c.Storage.S3Endpoint, getenv("S3_ENDPOINT"))
	setString(&c.Storage.S3Region, getenv("S3_REGION"))
	setString(&c.Storage.S3AccessKey, getenv("S3_ACCESS_KEY"))
	setString(&c.Storage.S3SecretKey, getenv("S3_SECRET_KEY"))
	setString(&c.AI.APIKey, getenv("GOOGLE_API_KEY"))
	setString(&c.AI.Model, getenv("GEMINI_MODEL"))
	setString(&c.RabbitMQ.URL, getenv("RABBITMQ_URL"))

	durations := map[string]*time.Duration{
		"TOKEN_TTL":       &c.Auth.TokenTTL,
		"RESET_TOKEN_TTL": &c.Auth.ResetTokenTTL,
		"SIGNED_URL_TTL":  &c.Storage.SignedURLTTL,
		"AI_TIMEOUT":      &c.AI.Timeout,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", key, v, err)
		}
		*dst = d
	}

	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.MaxUploadBytes = n
	}
	if v := getenv("ANALYZE_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ANALYZE_RATE %q: %w", v, err)
		}
		c.AnalyzeRate = n
	}
	if v := getenv("PREVIEW_DPI"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse PREVIEW_DPI %q: %w", v, err)
		}
		c.Preview.DPI = f
	}
	return nil
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required"))
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("storage dir is required for the local backend"))
		}
	case "s3":
		if c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "" {
			errs = append(errs, errors.New("s3 backend requires S3_ACCESS_KEY and S3_SECRET_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required"))
	}

	positive := map[string]time.Duration{
		"token_ttl":       c.Auth.TokenTTL,
		"reset_token_ttl": c.Auth.ResetTokenTTL,
		"signed_url_ttl":  c.Storage.SignedURLTTL,
		"ai timeout":      c.AI.Timeout,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.AnalyzeRate <= 0 {
		errs = append(errs, fmt.Errorf("analyze rate must be positive, got %d", c.AnalyzeRate))
	}
	if c.Preview.DPI <= 0 {
		errs = append(errs, fmt.Errorf("preview dpi must be positive, got %v", c.Preview.DPI))
	}

	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
