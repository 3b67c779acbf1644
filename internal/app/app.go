package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/db"
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/envutil"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    repos.Set
	Clients  Clients
	Services Services

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// New resolves configuration, connects to the evaluation store and wires every
// component. An unreachable store is fatal.
func New(ctx context.Context) (*App, error) {
	LoadDotEnv()
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: "sqleval",
		Environment: cfg.Otel.Environment,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	metrics := observability.NewMetrics(log)

	pg, err := db.NewPostgresService(log, db.PostgresConfig{
		DSN:     cfg.Postgres.ConnString(),
		MaxOpen: cfg.Postgres.MaxOpen,
	})
	if err != nil {
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)
	clientset := wireClients(ctx, log, cfg)

	serviceset, err := wireServices(theDB, log, cfg, metrics, reposet, clientset)
	if err != nil {
		clientset.Close()
		_ = pg.Close()
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Close postgres failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("Shutdown tracing failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
