package main

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/japaniel/wordweave/internal/server"
	"github.com/japaniel/wordweave/pkg/lists"
)

func (a *app) serve(ctx context.Context) error {
	manager := a.newManager(a.store)
	if _, err := manager.Watch(ctx); err != nil {
		return err
	}
	defer manager.Stop()

	srv := server.New(manager, a.newFetcher(), a.store, a.recorder, a.logger.Named("server"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, a.cfg.Server)
	})

	if a.cfg.Lists.Watch && a.files != nil {
		w, err := lists.NewWatcher(a.files, a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx, func(id string) {
				if a.cache != nil {
					a.cache.Invalidate(id)
				}
				srv.InvalidateCorpus()
				if _, err := manager.Reset(gctx); err != nil {
					a.logger.Warn("reload after list change failed", zap.String("list", id), zap.Error(err))
				}
			})
		})
	}
	return g.Wait()
}
