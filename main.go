package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpv1 "github.com/yourorg/estate-api/http/v1"
	"github.com/yourorg/estate-api/internal/app"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/internal/hydrator"
	"github.com/yourorg/estate-api/internal/logger"
	"github.com/yourorg/estate-api/internal/refresh"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "estate-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Prepare(ctx); err != nil {
		return err
	}

	var job *hydrator.BulkJob
	if cfg.Importer.InServer {
		if job, err = a.Importer(); err != nil {
			return err
		}
	}

	refresher := refresh.New(cfg.Cache.RefreshCapacity, cfg.Cache.RefreshWorkers,
		httpv1.RefreshFunc(a.Cache, a.Source, a.SourceName))
	defer refresher.Stop()

	router := BuildRouter(Deps{
		CORS:       cfg.CORS,
		RateLimit:  cfg.RateLimit,
		Catalog:    a.Catalog,
		Source:     a.Source,
		SourceName: a.SourceName,
		Cache:      a.Cache,
		Refetch:    refresher.Enqueue,
		Favorites:  a.Favorites,
		Inquiries:  a.Inquiries,
		Ping:       a.Ping,
	})
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("estate-api listening", zap.String("addr", srv.Addr), zap.String("source", a.SourceName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	inv := a.Invalidation()
	g.Go(func() error { return a.Index.Run(gctx) })
	if inv != nil {
		g.Go(func() error { return inv.Run(gctx) })
	}
	if job != nil {
		g.Go(func() error { return job.Run(gctx) })
	}

	return g.Wait()
}
