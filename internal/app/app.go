package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"simventas/internal/activity"
	"simventas/internal/config"
	"simventas/internal/connectors"
	"simventas/internal/inbox"
	"simventas/internal/pipeline"
	"simventas/internal/sales"
	"simventas/internal/scan"
	"simventas/internal/store"
)

// App holds the services every entry point shares, over one store.
type App struct {
	Cfg      config.Config
	Logger   *zap.Logger
	Store    store.Store
	Sales    *sales.Service
	Activity *activity.Log
	Inbox    *inbox.Repo
	Scan     *scan.Service
}

func New(cfg config.Config) (*App, error) {
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	log := activity.New(st)
	svc := sales.NewService(st, logger.Named("sales"), sales.WithRecorder(log))
	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Store:    st,
		Sales:    svc,
		Activity: log,
		Inbox:    inbox.New(st),
		Scan:     scan.NewService(cfg, svc, logger.Named("scan")),
	}, nil
}

func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.Store.Close()
}

func (a *App) Processor() *pipeline.ProcessingService {
	return pipeline.NewProcessingService(a.Inbox, a.Sales, a.Scan, a.Cfg, a.Logger.Named("pipeline"))
}

func (a *App) Fetcher(provider string) (*connectors.FetchService, error) {
	conn, err := connectors.New(a.Cfg, strings.ToLower(strings.TrimSpace(provider)))
	if err != nil {
		return nil, err
	}
	return connectors.NewFetchService(a.Inbox, a.Cfg.RawMailDir, conn, a.Logger.Named("mail")), nil
}

// NewLogger builds a production JSON logger at level (debug, info, warn, error).
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		lvl = parsed
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), nil
	case "", "sqlite":
		return store.OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
