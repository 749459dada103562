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

	eventsadapter "github.com/diogoX451/devicedb/internal/adapters/events"
	storeadapter "github.com/diogoX451/devicedb/internal/adapters/store"
	"github.com/diogoX451/devicedb/internal/api"
	"github.com/diogoX451/devicedb/internal/config"
	"github.com/diogoX451/devicedb/internal/core/service"
	"github.com/diogoX451/devicedb/internal/logger"
	"github.com/diogoX451/devicedb/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	tracer, shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		log.Fatal("Failed to setup tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	log.Info("Opening storage...", "driver", cfg.Storage.Driver)
	repo, err := storeadapter.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer repo.Close()

	log.Info("Connecting event bus...", "driver", cfg.Events.Driver)
	eventBus, err := eventsadapter.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect event bus", "driver", cfg.Events.Driver, "error", err)
	}
	defer eventBus.Close()

	devices := service.NewDeviceService(repo, eventBus, log.With("component", "devices"))
	server := api.NewServer(devices, log.With("component", "http"), tracer)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Could not gracefully shutdown the server", "error", err)
		}
		close(done)
	}()

	log.Info("Server is ready to handle requests", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Could not listen", "addr", srv.Addr, "error", err)
	}

	<-done
	log.Info("Server stopped")
}
