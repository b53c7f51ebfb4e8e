package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dpratama/keuangan-pintar/internal/advisor"
	"github.com/dpratama/keuangan-pintar/internal/export"
	"github.com/dpratama/keuangan-pintar/internal/extract"
	infraBQ "github.com/dpratama/keuangan-pintar/internal/infra/bigquery"
	"github.com/dpratama/keuangan-pintar/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "receipt":
		runReceipt(log)
	case "export":
		runExport(log)
	case "advice":
		runAdvice(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Keuangan Pintar CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract   Extract a transaction draft from an Indonesian transcript")
	fmt.Println("  receipt   Extract a transaction draft from receipt OCR text (stdin or -file)")
	fmt.Println("  export    Export stored transactions as CSV or PDF")
	fmt.Println("  advice    Print spending advice for a month")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	text := fs.String("text", "", "Transcript text, e.g. \"makan di warung seratus ribu\"")
	fs.Parse(os.Args[2:])

	if *text == "" && fs.NArg() > 0 {
		*text = fs.Arg(0)
	}
	if *text == "" {
		log.Fatal().Msg("transcript text is required (-text)")
	}

	draft := extract.FromTranscript(*text)
	if draft == nil {
		log.Fatal().Msg("empty transcript, nothing to extract")
	}
	printJSON(draft)
}

func runReceipt(log zerolog.Logger) {
	fs := flag.NewFlagSet("receipt", flag.ExitOnError)
	file := fs.String("file", "", "File holding the OCR text (default: stdin)")
	fs.Parse(os.Args[2:])

	var data []byte
	var err error
	if *file != "" {
		data, err = os.ReadFile(*file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("reading OCR text")
	}

	draft := extract.FromReceiptText(string(data))
	if draft == nil {
		log.Fatal().Msg("empty OCR text, nothing to extract")
	}
	printJSON(draft)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
	dataset := fs.String("dataset", envOr("BQ_DATASET", "keuangan"), "BigQuery dataset")
	format := fs.String("format", "csv", "Output format: csv or pdf")
	out := fs.String("out", "", "Output file (default: stdout for csv, laporan.pdf for pdf)")
	start := fs.String("start", "", "Start date YYYY-MM-DD (default: 30 days ago)")
	end := fs.String("end", "", "End date YYYY-MM-DD (default: today)")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}

	ctx := context.Background()
	repo, err := infraBQ.NewTransactionRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("creating transaction repository")
	}
	defer repo.Close()

	startDate, endDate, err := parseRange(*start, *end)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid date range")
	}

	txs, err := repo.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("listing transactions")
	}

	switch *format {
	case "csv":
		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				log.Fatal().Err(err).Msg("creating output file")
			}
			defer f.Close()
			w = f
		}
		if err := export.WriteCSV(w, txs); err != nil {
			log.Fatal().Err(err).Msg("writing CSV")
		}
	case "pdf":
		name := *out
		if name == "" {
			name = "laporan.pdf"
		}
		f, err := os.Create(name)
		if err != nil {
			log.Fatal().Err(err).Msg("creating output file")
		}
		defer f.Close()
		if err := export.WritePDF(f, txs); err != nil {
			log.Fatal().Err(err).Msg("writing PDF")
		}
		log.Info().Str("file", name).Int("transactions", len(txs)).Msg("report written")
	default:
		log.Fatal().Str("format", *format).Msg("unknown format")
	}
}

func runAdvice(log zerolog.Logger) {
	fs := flag.NewFlagSet("advice", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
	dataset := fs.String("dataset", envOr("BQ_DATASET", "keuangan"), "BigQuery dataset")
	year := fs.Int("year", time.Now().Year(), "Year")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}
	if *month < 1 || *month > 12 {
		log.Fatal().Int("month", *month).Msg("month must be 1-12")
	}

	ctx := context.Background()
	repo, err := infraBQ.NewTransactionRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("creating transaction repository")
	}
	defer repo.Close()

	adv := advisor.New(repo, log)
	text, err := adv.Advise(ctx, *year, *month)
	if err != nil {
		log.Fatal().Err(err).Msg("generating advice")
	}
	fmt.Println(text)
}

func parseRange(start, end string) (civil.Date, civil.Date, error) {
	now := time.Now()
	startDate := civil.DateOf(now.AddDate(0, 0, -30))
	endDate := civil.DateOf(now)

	var err error
	if start != "" {
		startDate, err = civil.ParseDate(start)
		if err != nil {
			return startDate, endDate, fmt.Errorf("start date: %w", err)
		}
	}
	if end != "" {
		endDate, err = civil.ParseDate(end)
		if err != nil {
			return startDate, endDate, fmt.Errorf("end date: %w", err)
		}
	}
	if endDate.Before(startDate) {
		return startDate, endDate, fmt.Errorf("end date before start date")
	}
	return startDate, endDate, nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
