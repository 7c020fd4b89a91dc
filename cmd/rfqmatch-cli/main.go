package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rfqmatch/rfq"
)

type cliOptions struct {
	configPath     string
	rfqPath        string
	referencePath  string
	rfqIDColumn    string
	rfqGradeColumn string
	refGradeColumn string
	outputPath     string
	outputDir      string
	reportPath     string
	stdout         bool
	verbose        bool
}

func main() {
	// .env is optional; flags take precedence over environment defaults.
	_ = godotenv.Load()

	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rfqmatch-cli: %v\n", err)
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "rfqmatch-cli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.rfqPath, "rfq", os.Getenv("RFQMATCH_RFQ"), "CSV/TSV/XLSX file with RFQ line items")
	flag.StringVar(&opts.referencePath, "reference", os.Getenv("RFQMATCH_REFERENCE"), "CSV/TSV/XLSX file with the grade reference table")
	flag.StringVar(&opts.rfqIDColumn, "rfq-id-column", "", "Override for the RFQ id column (header name or 1-based #N)")
	flag.StringVar(&opts.rfqGradeColumn, "rfq-grade-column", "", "Override for the RFQ grade column (header name or 1-based #N)")
	flag.StringVar(&opts.refGradeColumn, "reference-grade-column", "", "Override for the reference grade column (header name or 1-based #N)")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write the top-3 matches (default uses --output-dir/top3.csv)")
	flag.StringVar(&opts.outputDir, "output-dir", "results", "Directory where results are written when --output is omitted")
	flag.StringVar(&opts.reportPath, "report", "", "Optional XLSX analyst report path")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print the highest scoring pairs to STDOUT")
	flag.BoolVar(&opts.verbose, "v", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --rfq FILE --reference FILE [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.rfqPath = strings.TrimSpace(opts.rfqPath)
	opts.referencePath = strings.TrimSpace(opts.referencePath)
	opts.rfqIDColumn = strings.TrimSpace(opts.rfqIDColumn)
	opts.rfqGradeColumn = strings.TrimSpace(opts.rfqGradeColumn)
	opts.refGradeColumn = strings.TrimSpace(opts.refGradeColumn)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)
	opts.reportPath = strings.TrimSpace(opts.reportPath)

	if opts.rfqPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --rfq file")
	}
	if opts.referencePath == "" {
		flag.Usage()
		return opts, errors.New("missing required --reference file")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := rfq.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rfqs, err := rfq.LoadRFQTableWith(opts.rfqPath, rfq.ColumnOverrides{
		ID:    opts.rfqIDColumn,
		Grade: opts.rfqGradeColumn,
	})
	if err != nil {
		return fmt.Errorf("read rfq table: %w", err)
	}
	refs, err := rfq.LoadReferenceTableWith(opts.referencePath, opts.refGradeColumn)
	if err != nil {
		return fmt.Errorf("read reference table: %w", err)
	}

	service := rfq.NewService(cfg, logger)
	result, err := service.Run(context.Background(), rfqs, refs)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := rfq.WriteTopMatchesCSV(outputPath, result.Matches); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Printf("Wrote %d similarity pairs to %s\n", len(result.Matches), outputPath)

	if opts.reportPath != "" {
		info := rfq.RunInfo{
			ID:           result.RunID,
			GeneratedAt:  time.Now(),
			RFQCount:     len(rfqs.Records),
			MappedGrades: len(result.Mapping),
		}
		if err := rfq.WriteReportXLSX(opts.reportPath, result.Matches, info); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Wrote analyst report to %s\n", opts.reportPath)
	}

	if opts.stdout {
		printSummary(result.Matches)
	}
	return nil
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "results"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	return filepath.Join(absDir, "top3.csv"), nil
}

func printSummary(matches []rfq.Match) {
	matches = append([]rfq.Match(nil), matches...)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	limit := 10
	if len(matches) < limit {
		limit = len(matches)
	}
	fmt.Println()
	fmt.Println("Highest scoring pairs:")
	for i := 0; i < limit; i++ {
		m := matches[i]
		fmt.Printf("  %s -> %s (score=%.3f dim=%.3f cat=%.3f prop=%.3f)\n",
			m.RFQID, m.MatchID, m.Score, m.DimScore, m.CatScore, m.PropScore)
	}
}
