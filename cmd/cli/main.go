package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/config"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/gcs"
	"github.com/wkoning/portfolio-tracker/internal/importer"
	infraBQ "github.com/wkoning/portfolio-tracker/internal/infra/bigquery"
	"github.com/wkoning/portfolio-tracker/internal/logger"
	"github.com/wkoning/portfolio-tracker/internal/prices"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		runImport(log)
	case "sync":
		runSync(log)
	case "upload":
		runUpload(log)
	case "ingest":
		runIngest(log)
	case "prices":
		runPrices(log)
	case "inspect":
		runInspect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Portfolio Tracker CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  import    Parse and reconcile a workbook without writing anything")
	fmt.Println("  sync      Import a workbook and replace the stored portfolio")
	fmt.Println("  upload    Archive a workbook to GCS")
	fmt.Println("  ingest    Fetch an archived workbook from GCS and sync it")
	fmt.Println("  prices    Refresh live prices for the stored holdings")
	fmt.Println("  inspect   Print the stored holdings, transactions and history")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Path to the workbook (.xlsx)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read workbook")
	}

	// Dry run: no database, so no known user names for the history
	// unpivot and no profile matching.
	im := &importer.Importer{Log: log}
	portfolio, report, err := im.Import(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	printImportReport(report)
	printHoldings(portfolio.Holdings)
}

func runSync(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	file := fs.String("file", "", "Path to the workbook (.xlsx)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read workbook")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	syncWorkbook(ctx, data, log)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	cfg := config.FromEnv()
	bucket := fs.String("bucket", cfg.Bucket, "GCS bucket name (or set GCS_BUCKET env)")
	file := fs.String("file", "", "Path to the workbook (.xlsx)")
	fs.Parse(os.Args[2:])

	if *bucket == "" || *file == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	ctx := logger.WithContext(context.Background(), log)

	uri, err := gcs.Client{}.UploadWorkbookFile(ctx, *bucket, gcs.ObjectName(*file), *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *file, uri)
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	uri := fs.String("uri", "", "gs:// URI of an archived workbook")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Error: --uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("uri", *uri).Msg("Fetching archived workbook")

	data, err := gcs.Client{}.Fetch(ctx, *uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}

	syncWorkbook(ctx, data, log)
}

func syncWorkbook(ctx context.Context, data []byte, log zerolog.Logger) {
	repo, err := infraBQ.NewRepository(ctx, config.FromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	profiles, err := repo.ListProfiles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list profiles")
	}
	userNames := make([]string, len(profiles))
	for i, p := range profiles {
		userNames[i] = p.FullName
	}

	im := &importer.Importer{UserNames: userNames, Log: log}
	portfolio, report, err := im.Import(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	printImportReport(report)

	syncReport, syncErr := importer.Sync(ctx, repo, portfolio, log)
	if syncReport != nil {
		fmt.Println("\n=== Sync Steps ===")
		for _, step := range syncReport.Steps {
			status := "ok"
			if !step.OK {
				status = "FAILED: " + step.Error
			}
			fmt.Printf("  %-20s %s\n", step.Name, status)
		}
		if syncReport.DroppedTransactions > 0 || syncReport.DroppedHistory > 0 {
			fmt.Printf("  dropped: %d transactions, %d history rows (no matching profile)\n",
				syncReport.DroppedTransactions, syncReport.DroppedHistory)
		}
	}
	if syncErr != nil {
		log.Fatal().Err(syncErr).Msg("Sync failed; stored state may be partially replaced")
	}

	fmt.Println("\nSync completed successfully.")
}

func runPrices(log zerolog.Logger) {
	fs := flag.NewFlagSet("prices", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, config.FromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	holdings, err := repo.ListAssets(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list assets")
	}

	priced := prices.NewService(log).Apply(ctx, holdings)
	printHoldings(priced)
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, config.FromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	holdings, err := repo.ListAssets(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list assets")
	}
	printHoldings(holdings)

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}
	fmt.Printf("\n=== Transactions (%d) ===\n", len(txs))
	for _, t := range txs {
		fmt.Printf("  %s  %-10s  %10s  %s\n",
			t.Date.Format("2006-01-02"), t.Type, t.Amount.StringFixed(2), t.Description)
	}

	history, err := repo.ListHistory(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list history")
	}
	fmt.Printf("\n=== History (%d) ===\n", len(history))
	for _, rec := range history {
		fmt.Printf("  %s  user=%s  value=%s  invested=%s\n",
			rec.Date.Format("2006-01-02"), rec.UserID, rec.Value.StringFixed(2), rec.Invested.StringFixed(2))
	}
}

func printImportReport(report *importer.Report) {
	fmt.Println("\n=== Import Report ===")
	fmt.Printf("  transactions: %d (skipped %d)\n", report.Transactions, report.SkippedTransactions)
	fmt.Printf("  holdings:     %d (skipped %d)\n", report.Holdings, report.SkippedHoldings)
	fmt.Printf("  history rows: %d\n", report.HistoryRecords)
	if report.DefaultedDates > 0 {
		fmt.Printf("  defaulted dates: %d (source cells missing or unparseable)\n", report.DefaultedDates)
	}
}

func printHoldings(holdings []domain.Holding) {
	fmt.Printf("\n=== Holdings (%d) ===\n", len(holdings))
	for _, h := range holdings {
		line := fmt.Sprintf("  %-8s %-24s %14s", h.Symbol, h.Name, h.Amount.String())
		if !h.CurrentPrice.IsZero() {
			line += fmt.Sprintf("  @ %s = %s", h.CurrentPrice.StringFixed(2), h.Value.StringFixed(2))
		}
		fmt.Println(line)
	}

	breakdown := domain.NewClassifier().Breakdown(holdings)
	total := decimal.Zero
	for _, entry := range breakdown {
		total = total.Add(entry.Value)
	}
	if total.IsPositive() {
		fmt.Printf("\n  total: %s\n", total.StringFixed(2))
		for _, entry := range breakdown {
			percent := entry.Ratio.Mul(decimal.NewFromInt(100))
			fmt.Printf("  %-8s %14s  (%s%%)\n", entry.Class, entry.Value.StringFixed(2), percent.StringFixed(1))
		}
	}
}
