package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/envutil"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type PostgresConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxOpen  int
}

// ConnString prefers an explicit DSN over the discrete fields.
func (c PostgresConfig) ConnString() string {
	if strings.TrimSpace(c.DSN) != "" {
		return strings.TrimSpace(c.DSN)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
}

type AnalysisConfig struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	Headers     string
	Insecure    bool
	SampleRatio float64
	Environment string
}

type Config struct {
	LogMode string

	Postgres PostgresConfig
	OpenAI   OpenAIConfig
	Analysis AnalysisConfig
	Otel     OtelConfig

	Concurrency int
	QuestsRoot  string

	// SandboxDSN enables SQL execution evidence when set.
	SandboxDSN            string
	SandboxStatementLimit time.Duration

	RedisAddr    string
	RedisChannel string

	HTTPAddr    string
	CORSOrigins []string
}

// LoadDotEnv loads ./.env when present. Existing variables win.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// LoadConfig resolves configuration from the environment. It is the only place
// configuration is read.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Postgres: PostgresConfig{
			DSN:      envutil.String("POSTGRES_DSN", ""),
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.Int("POSTGRES_PORT", 5432),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", "postgres"),
			Name:     envutil.String("POSTGRES_NAME", "sql_adventure_evaluator"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpen:  envutil.Int("POSTGRES_MAX_OPEN", 10),
		},
		OpenAI: OpenAIConfig{
			APIKey:      envutil.String("OPENAI_API_KEY", ""),
			BaseURL:     envutil.String("OPENAI_BASE_URL", ""),
			Model:       envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:     envutil.Duration("OPENAI_TIMEOUT_SECONDS", 120*time.Second),
			MaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 0),
			Temperature: envutil.Float("OPENAI_TEMPERATURE", 0.2),
		},
		Analysis: AnalysisConfig{
			MaxAttempts:    envutil.Int("ANALYSIS_MAX_ATTEMPTS", 3),
			AttemptTimeout: envutil.Duration("ANALYSIS_ATTEMPT_TIMEOUT", 90*time.Second),
			RetryBackoff:   envutil.Duration("ANALYSIS_RETRY_BACKOFF", 2*time.Second),
		},
		Otel: OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
			Environment: envutil.String("APP_ENV", "development"),
		},
		Concurrency:           envutil.Int("EVAL_CONCURRENCY", 4),
		QuestsRoot:            envutil.String("QUESTS_ROOT", "quests"),
		SandboxDSN:            envutil.String("SANDBOX_POSTGRES_DSN", ""),
		SandboxStatementLimit: envutil.Duration("SANDBOX_STATEMENT_TIMEOUT", 30*time.Second),
		RedisAddr:             envutil.String("REDIS_ADDR", ""),
		RedisChannel:          envutil.String("REDIS_CHANNEL", "sqleval.events"),
		HTTPAddr:              envutil.String("HTTP_ADDR", ":8080"),
		CORSOrigins:           envutil.List("CORS_ALLOW_ORIGINS", nil),
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Analysis.MaxAttempts <= 0 {
		cfg.Analysis.MaxAttempts = 3
	}
	if log != nil {
		log.Debug("Configuration loaded",
			"log_mode", cfg.LogMode,
			"quests_root", cfg.QuestsRoot,
			"concurrency", cfg.Concurrency,
			"openai_model", cfg.OpenAI.Model,
			"openai_api_key", cfg.OpenAI.APIKey,
			"sandbox", cfg.SandboxDSN != "",
			"redis", cfg.RedisAddr != "",
		)
	}
	return cfg
}
