// Command kakeibo runs the ledger HTTP API.
//
// Configuration comes from environment variables (optionally via a .env
// file). The server persists through the configured key/value backend and,
// when AMQP_URL is set, publishes mutation events for the export worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kakeibo/internal/cli"
	"kakeibo/internal/events"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/ledger"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg)
	defer store.Close()

	var client *events.Client
	if cfg.AMQPURL != "" {
		var err error
		client, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are best-effort: the API stays up without a broker.
			logger.Warn("AMQP unavailable, mutation events disabled", "error", err)
		} else {
			defer client.Close()
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	opts := []ledger.Option{
		ledger.WithConfirmer(ledger.ContextConfirmer{}),
	}
	if client != nil {
		opts = append(opts, ledger.WithEvents(client))
	}
	svc := ledger.New(store, opts...)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer loadCancel()
	if err := svc.Load(loadCtx); err != nil {
		logger.Error("Failed to load ledger state", "error", err)
		os.Exit(1)
	}

	server := apphttp.NewServer(":"+cfg.Port, svc)
	server.ReadTimeout = 10 * time.Second
	server.WriteTimeout = 10 * time.Second
	server.IdleTimeout = 60 * time.Second
	server.MaxHeaderBytes = 1 << 16

	shutdownComplete := make(chan struct{})
	_, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		close(shutdownComplete)
	})

	logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-shutdownComplete
	<-done
}
