package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func defaultConfDir() string {
	return os.Getenv("HOME") + "/.into-ynab"
}

func usage() {
	fmt.Println("into-ynab reconciles Amazon order-history CSV exports with a YNAB budget.")
	fmt.Println()
	fmt.Println("Usage: into-ynab <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  convert   Amazon export CSV -> canonical CSV with AI categorization")
	fmt.Println("  import    canonical CSV -> YNAB account (splits, duplicate window)")
	fmt.Println("  apply     assign categories to uncategorized YNAB transactions from the CSV")
	fmt.Println("  cleanup   delete remote (amount, date) duplicates and verify categories")
	fmt.Println()
	fmt.Println("Run 'into-ynab <command> -h' for command flags.")
}

func mustParseDay(fs *flag.FlagSet, name, value string) time.Time {
	tm, err := time.Parse(stamp, value)
	if err != nil {
		oerr(fmt.Sprintf("Invalid -%s date %q, want YYYY-MM-DD", name, value))
		fs.PrintDefaults()
		os.Exit(1)
	}
	return tm
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	switch cmd := os.Args[1]; cmd {
	case "convert":
		fs := flag.NewFlagSet("convert", flag.ExitOnError)
		input := fs.String("csv", "", "Path of the Amazon order-history export CSV.")
		output := fs.String("o", "amazon_ynab_ready.csv", "Output CSV path.")
		noAI := fs.Bool("no-ai", false, "Skip AI categorization (leave Category as Uncategorized).")
		conf := fs.String("conf", defaultConfDir(), "Config directory holding config.yaml.")
		fs.Parse(os.Args[2:])
		if *input == "" {
			oerr("Please specify the Amazon export CSV with -csv")
			fs.PrintDefaults()
			os.Exit(1)
		}
		cfg := loadConfig(*conf)
		runConvert(ctx, cfg, convertOpts{input: *input, output: *output, noAI: *noAI})

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		csvFile := fs.String("csv", "", "Canonical CSV to import (default from config).")
		within := fs.Int("within", -1, "Duplicate window in days (default from config).")
		conf := fs.String("conf", defaultConfDir(), "Config directory holding config.yaml.")
		fs.Parse(os.Args[2:])
		cfg := loadConfig(*conf)
		opts := importOpts{csvFile: *csvFile, within: *within}
		if opts.csvFile == "" {
			opts.csvFile = cfg.CSVFile
		}
		if opts.within < 0 {
			opts.within = cfg.DupDays
		}
		runImport(ctx, cfg, opts)

	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		csvFile := fs.String("csv", "", "Canonical CSV with categories (default from config).")
		since := fs.String("since", today.AddDate(0, 0, -90).Format(stamp),
			"Only consider remote transactions on or after this date (YYYY-MM-DD).")
		review := fs.Bool("review", false, "Interactively categorize transactions nothing could match.")
		bayesThreshold := fs.Float64("bayes-threshold", 1.1,
			"Accept local classifier predictions at or above this confidence (<=1.0 enables it).")
		conf := fs.String("conf", defaultConfDir(), "Config directory holding config.yaml.")
		fs.Parse(os.Args[2:])
		cfg := loadConfig(*conf)
		opts := applyOpts{
			csvFile:        *csvFile,
			since:          mustParseDay(fs, "since", *since),
			review:         *review,
			bayesThreshold: *bayesThreshold,
		}
		if opts.csvFile == "" {
			opts.csvFile = cfg.CSVFile
		}
		runApply(ctx, cfg, opts)

	case "cleanup":
		fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
		from := fs.String("from", today.AddDate(0, 0, -90).Format(stamp),
			"Start of the cleanup window (YYYY-MM-DD).")
		to := fs.String("to", today.Format(stamp), "End of the cleanup window (YYYY-MM-DD).")
		conf := fs.String("conf", defaultConfDir(), "Config directory holding config.yaml.")
		fs.Parse(os.Args[2:])
		cfg := loadConfig(*conf)
		opts := cleanupOpts{
			from: mustParseDay(fs, "from", *from),
			to:   mustParseDay(fs, "to", *to),
		}
		if opts.to.Before(opts.from) {
			oerr("-to is before -from")
			os.Exit(1)
		}
		runCleanup(ctx, cfg, opts)

	case "-h", "--help", "help":
		usage()

	default:
		oerr(fmt.Sprintf("Unknown command: %v", cmd))
		usage()
		os.Exit(1)
	}
}
