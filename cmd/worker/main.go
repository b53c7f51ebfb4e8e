// Command worker drains pending receipts from BigQuery through the
// ingestion pipeline. It complements the API server, which ingests
// receipts inline via its job queue: the worker picks up receipts the
// server missed, for example after a crash mid-ingestion.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"

	infraBQ "github.com/dpratama/keuangan-pintar/internal/infra/bigquery"
	"github.com/dpratama/keuangan-pintar/internal/logger"
	"github.com/dpratama/keuangan-pintar/internal/pipeline"
)

func main() {
	var (
		projectID = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
		datasetID = flag.String("dataset", envOr("BQ_DATASET", "keuangan"), "BigQuery dataset ID")
		interval  = flag.Duration("interval", time.Minute, "poll interval for pending receipts")
		batchSize = flag.Int("batch", 25, "max receipts per poll")
	)
	flag.Parse()

	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("-project flag or GCP_PROJECT is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create BigQuery client")
	}
	defer client.Close()

	receipts := infraBQ.NewReceiptRepositoryWithClient(client, *datasetID)
	transactions := infraBQ.NewTransactionRepositoryWithClient(client, *datasetID)
	pipe := pipeline.New(receipts, transactions, logger.WithComponent(log, "pipeline"))

	log.Info().
		Str("project", *projectID).
		Str("dataset", *datasetID).
		Dur("interval", *interval).
		Msg("worker started")

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down worker")
		cancel()
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	// Drain once at startup, then on every tick.
	drain(ctx, receipts, pipe, *batchSize, log)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker exited")
			return
		case <-ticker.C:
			drain(ctx, receipts, pipe, *batchSize, log)
		}
	}
}

func drain(ctx context.Context, receipts *infraBQ.ReceiptRepository, pipe *pipeline.Pipeline, batchSize int, log zerolog.Logger) {
	pending, err := receipts.ListPending(ctx, batchSize)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("failed to list pending receipts")
		}
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Info().Int("count", len(pending)).Msg("processing pending receipts")
	for _, rc := range pending {
		if ctx.Err() != nil {
			return
		}
		tx, err := pipe.Run(ctx, rc)
		if err != nil {
			// Run already marked the receipt failed.
			log.Error().Err(err).Str("receipt_id", rc.ID).Msg("ingestion failed")
			continue
		}
		log.Info().
			Str("receipt_id", rc.ID).
			Str("transaction_id", tx.ID).
			Int64("amount", tx.Amount).
			Msg("receipt ingested")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
