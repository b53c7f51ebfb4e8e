package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bq "cloud.google.com/go/bigquery"

	"github.com/dpratama/keuangan-pintar/internal/advisor"
	"github.com/dpratama/keuangan-pintar/internal/api/handlers"
	"github.com/dpratama/keuangan-pintar/internal/api/middleware"
	"github.com/dpratama/keuangan-pintar/internal/gcsuploader"
	infraBQ "github.com/dpratama/keuangan-pintar/internal/infra/bigquery"
	"github.com/dpratama/keuangan-pintar/internal/jobs"
	"github.com/dpratama/keuangan-pintar/internal/jobs/inmemory"
	"github.com/dpratama/keuangan-pintar/internal/logger"
	"github.com/dpratama/keuangan-pintar/internal/pipeline"
)

func main() {
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		project = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		dataset = flag.String("dataset", envOr("BQ_DATASET", "keuangan"), "BigQuery dataset (or set BQ_DATASET env)")
		bucket  = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for receipt images (or set GCS_BUCKET env)")
		workers = flag.Int("workers", 5, "Concurrent ingestion workers")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}

	ctx := context.Background()

	bqClient, err := bq.NewClient(ctx, *project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer bqClient.Close()

	transactions := infraBQ.NewTransactionRepositoryWithClient(bqClient, *dataset)
	receipts := infraBQ.NewReceiptRepositoryWithClient(bqClient, *dataset)

	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - receipt image uploads will fail")
	}
	uploader, err := gcsuploader.New(ctx, *bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer uploader.Close()

	// Job infrastructure and the ingestion pipeline behind it.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	ingestion := pipeline.New(receipts, transactions, logger.WithComponent(log, "pipeline"))

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		ingestJob, ok := job.(*jobs.IngestReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", ingestJob.JobID).
			Str("receipt_id", ingestJob.ReceiptID).
			Msg("Processing ingestion job")

		receipt, err := receipts.Get(ctx, ingestJob.ReceiptID)
		if err != nil {
			return fmt.Errorf("loading receipt %s: %w", ingestJob.ReceiptID, err)
		}

		if _, err := ingestion.Run(ctx, receipt); err != nil {
			return err
		}
		return nil
	}

	go func() {
		log.Info().Int("workers", *workers).Msg("Starting ingestion workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	adv := advisor.New(transactions, logger.WithComponent(log, "advisor"))

	extractHandler := handlers.NewExtractHandler(log)
	receiptsHandler := handlers.NewReceiptsHandler(receipts, jobQueue, uploader, log)
	transactionsHandler := handlers.NewTransactionsHandler(transactions, log)
	reportsHandler := handlers.NewReportsHandler(transactions, adv, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/extract/transcript", extractHandler.ExtractTranscript)
	mux.HandleFunc("POST /api/extract/receipt", extractHandler.ExtractReceipt)
	mux.HandleFunc("POST /api/receipts", receiptsHandler.CreateReceipt)
	mux.HandleFunc("POST /api/receipts/upload/{id}", func(w http.ResponseWriter, r *http.Request) {
		receiptID := r.PathValue("id")
		if receiptID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Receipt ID is required")
			return
		}
		receiptsHandler.UploadImage(w, r, receiptID)
	})
	mux.HandleFunc("GET /api/receipts/{id}/image", func(w http.ResponseWriter, r *http.Request) {
		receiptsHandler.DownloadImage(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/transactions", transactionsHandler.CreateTransaction)
	mux.HandleFunc("GET /api/transactions", transactionsHandler.ListTransactions)
	mux.HandleFunc("GET /api/advice", reportsHandler.Advice)
	mux.HandleFunc("GET /api/export/csv", reportsHandler.ExportCSV)
	mux.HandleFunc("GET /api/export/pdf", reportsHandler.ExportPDF)
	mux.HandleFunc("GET /api/health", handlers.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
