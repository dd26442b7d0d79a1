package main

import (
	"database/sql"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/internal/config"
	"github.com/japaniel/wordweave/internal/logging"
	"github.com/japaniel/wordweave/pkg/db"
	"github.com/japaniel/wordweave/pkg/engine"
	"github.com/japaniel/wordweave/pkg/fetch"
	"github.com/japaniel/wordweave/pkg/history"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/settings"
)

// app holds what every command shares.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	conn   *sql.DB
	store  *settings.Store
	stdout io.Writer
	stderr io.Writer

	resolver lists.Resolver
	cache    *lists.CachingResolver // nil when caching is off
	files    *lists.FileResolver    // nil when lists come over HTTP

	recorder *history.Recorder // nil when history is disabled
}

func newApp(configPath string, stdout, stderr io.Writer) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Log)
	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		store:  settings.NewStore(conn),
		stdout: stdout,
		stderr: stderr,
	}
	if err := a.buildResolver(); err != nil {
		conn.Close()
		return nil, err
	}
	if !cfg.History.Disabled {
		a.recorder = history.NewRecorder(conn, cfg.History.BatchSize, cfg.History.FlushInterval, logger.Named("history"))
	}
	return a, nil
}

func (a *app) buildResolver() error {
	if a.cfg.Lists.BaseURL != "" {
		a.resolver = lists.NewHTTPResolver(a.cfg.Lists.BaseURL, a.logger)
	} else {
		a.files = lists.NewFileResolver(a.cfg.Lists.Dir)
		a.resolver = a.files
	}
	if a.cfg.Lists.CacheSize > 0 {
		c, err := lists.NewCachingResolver(a.resolver, a.cfg.Lists.CacheSize)
		if err != nil {
			return fmt.Errorf("list cache: %w", err)
		}
		a.cache = c
		a.resolver = c
	}
	return nil
}

func (a *app) engineOptions() engine.Options {
	return engine.Options{
		MaxAnnotations: a.cfg.Engine.MaxAnnotations,
		Probability:    a.cfg.Engine.Probability,
		Contextual:     !a.cfg.Engine.PrimaryOnly,
	}
}

func (a *app) newManager(provider settings.Provider) *engine.Manager {
	m := engine.NewManager(a.resolver, provider, a.engineOptions(), a.logger.Named("engine"))
	m.Blocklist = engine.Blocklist(a.cfg.Engine.BlockedDomains)
	return m
}

func (a *app) newFetcher() *fetch.Fetcher {
	return fetch.New(a.cfg.Fetch.Timeout, a.cfg.Fetch.MaxBodyBytes, a.cfg.Fetch.UserAgent, a.logger.Named("fetch"))
}

func (a *app) close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.logger.Warn("history flush failed", zap.Error(err))
		}
	}
	a.conn.Close()
	_ = a.logger.Sync()
}
