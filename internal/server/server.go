// Package server exposes annotation and list management over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/japaniel/wordweave/internal/config"
	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/engine"
	"github.com/japaniel/wordweave/pkg/fetch"
	"github.com/japaniel/wordweave/pkg/history"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/settings"
)

// SettingsStore is the writable settings backend. *settings.Store implements it.
type SettingsStore interface {
	settings.Provider
	SetSelectedLists(ctx context.Context, ids []string) error
	AddPersonalWord(ctx context.Context, r dictionary.Record) (bool, error)
	RemovePersonalWord(ctx context.Context, id int) (bool, error)
	ClearPersonalWords(ctx context.Context) error
}

// Server serves annotated pages and the list settings API.
type Server struct {
	manager  *engine.Manager
	fetcher  *fetch.Fetcher
	store    SettingsStore
	recorder *history.Recorder
	logger   *zap.Logger

	corpusMu sync.Mutex
	corpus   []dictionary.Record
}

// New wires a Server. recorder may be nil to disable exposure history.
func New(manager *engine.Manager, fetcher *fetch.Fetcher, store SettingsStore, recorder *history.Recorder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		manager:  manager,
		fetcher:  fetcher,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/annotate", s.handleAnnotate)
	r.Get("/search", s.handleSearch)
	r.Get("/history", s.handleHistory)

	r.Route("/lists", func(r chi.Router) {
		r.Get("/", s.handleGetLists)
		r.Put("/", s.handlePutLists)
	})
	r.Route("/personal", func(r chi.Router) {
		r.Get("/", s.handleGetPersonal)
		r.Post("/", s.handleAddPersonal)
		r.Delete("/", s.handleClearPersonal)
		r.Delete("/{id}", s.handleRemovePersonal)
	})
	return r
}

// InvalidateCorpus drops the search corpus so the next search reloads it.
func (s *Server) InvalidateCorpus() {
	s.corpusMu.Lock()
	s.corpus = nil
	s.corpusMu.Unlock()
}

func (s *Server) searchCorpus(ctx context.Context) []dictionary.Record {
	s.corpusMu.Lock()
	defer s.corpusMu.Unlock()
	if s.corpus != nil {
		return s.corpus
	}
	// The corpus outlives the request that happens to load it.
	all, err := lists.ResolveAll(context.WithoutCancel(ctx), s.manager.Resolver, s.manager.Catalog)
	if err != nil {
		s.logger.Warn("search corpus incomplete", zap.Error(err))
	}
	if len(all) == 0 {
		// Nothing resolved; retry on the next search.
		return []dictionary.Record{}
	}
	s.corpus = all
	return s.corpus
}

// Run serves on cfg's address until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
