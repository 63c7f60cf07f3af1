// Command tally serves the Tally REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/dbpool"
	"github.com/tallyhq/tally/internal/logging"
	"github.com/tallyhq/tally/internal/service"
	"github.com/tallyhq/tally/internal/store"
	"github.com/tallyhq/tally/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tally:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, dbpool.Options{
		URI:              cfg.DatabaseURL.Value(),
		Database:         cfg.DatabaseName,
		ReadPreference:   cfg.DBReadPref,
		MinPoolSize:      cfg.DBMinPoolSize,
		MaxPoolSize:      cfg.DBMaxPoolSize,
		ConnectTimeout:   cfg.DBConnectTimeout,
		SocketTimeout:    cfg.DBSocketTimeout,
		MaxIdleTime:      cfg.DBMaxIdleTime,
		LivenessInterval: cfg.DBLivenessInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	log.WithFields(logrus.Fields{"db": pool.String(), "env": cfg.Env}).Info("database connected")

	hub := ws.NewHub(log)
	events := service.NewEventWorker(hub, log, cfg.EventQueueSize)

	base := store.Base{Pool: pool, Log: log, Events: events}
	auditStore := store.NewAuditStore(base)

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:            log,
		DB:             pool,
		Hub:            hub,
		Items:          service.NewItemService(store.NewItemStore(base, auditStore), log),
		Roles:          service.NewRoleService(store.NewRoleStore(base, auditStore), log),
		Users:          service.NewUserService(store.NewUserStore(base, auditStore), log),
		Audit:          service.NewAuditService(auditStore, log),
		CORSOrigins:    cfg.CORSOrigins,
		Version:        config.Version,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		events.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "version": config.Version}).Info("listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown incomplete")
		}

		if err := pool.Close(shutdownCtx); err != nil {
			log.WithError(err).Warn("closing database")
		}

		return nil
	})

	return g.Wait()
}
