// Command kakeibo-worker consumes ledger mutation events and exports
// created transactions to a Google Sheets spreadsheet.
//
// The worker requires AMQP_URL. Without Google credentials it records
// rows in memory, which is only useful for local smoke testing.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"kakeibo/internal/cli"
	"kakeibo/internal/events"
	"kakeibo/internal/sheets"
	"kakeibo/internal/sheets/google"
	sheetsmem "kakeibo/internal/sheets/memory"
	"kakeibo/internal/worker"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg)
	defer store.Close()

	var appender sheets.RowAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialise Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Exporting to Google Sheets", "spreadsheet", cfg.GoogleSpreadsheetID)
	} else {
		appender = sheetsmem.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, recording rows in memory only")
	}

	w := worker.NewExportWorker(store, appender)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		attempt := 0
		for {
			delay := cfg.ExportInterval

			client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				attempt++
				delay = events.ReconnectDelay(attempt)
				logger.Error("AMQP connection failed, backing off",
					"error", err, "attempt", attempt, "delay", delay)
			} else {
				attempt = 0
				logger.Info("Consuming mutation events", "queue", cfg.AMQPQueue)
				err = w.Run(ctx, client)
				client.Close()
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Consumer stopped, reconnecting", "error", err)
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
