package app

import (
	"context"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/openai"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/redisbus"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/sqlexec"
)

type Clients struct {
	// OpenAI is nil when no API key is configured; analysis then falls back.
	OpenAI   openai.Client
	Executor sqlexec.Executor
	Events   events.Bus
}

// wireClients never fails: every external collaborator here is optional and
// degrades to a no-op when unconfigured or unreachable.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")
	out := Clients{
		Executor: sqlexec.NewNoop(),
		Events:   events.NewNoop(),
	}

	// OpenAI
	if cfg.OpenAI.APIKey != "" {
		temp := cfg.OpenAI.Temperature
		c, err := openai.NewClient(log, openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Timeout:     cfg.OpenAI.Timeout,
			MaxRetries:  cfg.OpenAI.MaxRetries,
			Temperature: &temp,
		})
		if err != nil {
			log.Warn("OpenAI client unavailable; analysis will use fallbacks", "error", err)
		} else {
			out.OpenAI = c
		}
	} else {
		log.Warn("OPENAI_API_KEY not set; analysis will use fallbacks")
	}

	// SQL sandbox
	if cfg.SandboxDSN != "" {
		ex, err := sqlexec.NewPostgres(ctx, log, sqlexec.Config{
			DSN:              cfg.SandboxDSN,
			MaxConns:         int32(cfg.Concurrency),
			StatementTimeout: cfg.SandboxStatementLimit,
		})
		if err != nil {
			log.Warn("SQL sandbox unavailable; execution evidence disabled", "error", err)
		} else {
			out.Executor = ex
		}
	}

	// Redis
	if cfg.RedisAddr != "" {
		bus, err := redisbus.NewEventBus(log, redisbus.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
		if err != nil {
			log.Warn("Redis event bus unavailable; progress events disabled", "error", err)
		} else {
			out.Events = bus
		}
	}

	return out
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Executor != nil {
		c.Executor.Close()
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
}
