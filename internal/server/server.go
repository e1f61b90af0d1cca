// Package server boots the application: configuration, logging, storage,
// queue workers, event listeners, the websocket hub and the HTTP kernel.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/feria/app/jobs"
	"github.com/shashiranjanraj/feria/app/listeners"
	"github.com/shashiranjanraj/feria/app/routes"
	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/cache"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/metrics"
	"github.com/shashiranjanraj/feria/pkg/middleware"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
	"github.com/shashiranjanraj/feria/pkg/notification"
	"github.com/shashiranjanraj/feria/pkg/queue"
	"github.com/shashiranjanraj/feria/pkg/reqid"
	"github.com/shashiranjanraj/feria/pkg/router"
	"github.com/shashiranjanraj/feria/pkg/storage"
	"github.com/shashiranjanraj/feria/pkg/ws"
)

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := mongodb.Connect(); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer mongodb.Close(context.Background()) //nolint:errcheck

	if config.MongoLogSink() {
		sink := logger.NewMongoHandler(mongodb.Collection("logs"))
		defer sink.Close()
		logger.AttachSink(sink)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mongodb.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("boot: redis unavailable, queue falls back to memory", "error", err)
		queue.SetDriver(queue.NewMemoryDriver())
	} else {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	storage.Connect()

	queue.UseCollection(mongodb.Collection("failed_jobs"))
	notification.UseStore(mongodb.Collection("notifications"))
	jobs.RegisterAll()
	queue.StartWorkers(ctx, 4)

	hub := ws.NewHub()
	go hub.Run()
	listeners.Register(hub)

	r := router.New()
	r.Use(
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		metrics.Middleware(),
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	routes.RegisterAPI(r, hub)

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
