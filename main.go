package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// runOptions holds the parsed command line
type runOptions struct {
	configFile     string
	showDetails    bool
	generatePDF    bool
	generateCSV    bool
	runSensitivity bool
	runSustainable bool
	workers        int
	logLevel       string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Retirement Strategy Simulator

Simulates a household's RRSP, TFSA and non-registered accounts from today to the
end of the plan, comparing every contribution and withdrawal policy pair. The best
strategy is the one that pays the least lifetime tax.

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                           Rank strategies using config.yaml (or the built-in demo)
  %s -config plan.toml         Use a TOML configuration file
  %s -details                  Show year-by-year table for the best strategy
  %s -pdf -csv                 Write reports to output.dir/<run-id>/
  %s -sensitivity              Re-rank strategies across a range of return rates
  %s -sustainable              Find the highest spending each strategy can sustain
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	opts := runOptions{}
	flag.StringVar(&opts.configFile, "config", "config.yaml", "Path to YAML or TOML configuration file")
	flag.BoolVar(&opts.showDetails, "details", false, "Show year-by-year breakdown for the best strategy")
	flag.BoolVar(&opts.generatePDF, "pdf", false, "Write a PDF report for the best strategy")
	flag.BoolVar(&opts.generateCSV, "csv", false, "Write CSV files for the ranking and the best strategy's history")
	flag.BoolVar(&opts.runSensitivity, "sensitivity", false, "Run the return-rate sensitivity sweep")
	flag.BoolVar(&opts.runSustainable, "sustainable", false, "Search for the highest sustainable spending per strategy")
	flag.IntVar(&opts.workers, "workers", 0, "Strategy pairs simulated in parallel (overrides config)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfigOrDefault loads the file, falling back to the embedded demo when it does not exist
func loadConfigOrDefault(path string) (*Config, bool, error) {
	config, err := LoadConfig(path)
	if err == nil {
		return config, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("loading config: %w", err)
	}
	config, err = LoadDefaultConfig()
	if err != nil {
		return nil, false, err
	}
	applyEnvOverrides(config)
	return config, true, nil
}

func run(opts runOptions, out io.Writer) error {
	config, usedDefault, err := loadConfigOrDefault(opts.configFile)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		config.Optimizer.Workers = opts.workers
	}
	if opts.logLevel != "" {
		config.Logging.Level = opts.logLevel
	}

	runID := uuid.New().String()
	logger := NewLogger(config.GetLogLevel()).WithRunID(runID)
	if usedDefault {
		logger.Info().Str("path", opts.configFile).Msg("config file not found, using built-in demo household")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	profile, err := config.BuildProfile()
	if err != nil {
		return err
	}
	registry := config.PolicyRegistry()
	contributions, err := registry.SelectContributions(config.Optimizer.ContributionPolicies)
	if err != nil {
		return err
	}
	withdrawals, err := registry.SelectWithdrawals(config.Optimizer.WithdrawalPolicies)
	if err != nil {
		return err
	}

	PrintHeader(out, config)

	if opts.runSensitivity {
		analysis, err := RunSensitivityAnalysis(config, registry, logger)
		if err != nil {
			return err
		}
		PrintSensitivity(out, analysis)
		return nil
	}

	if opts.runSustainable {
		results, err := RunAllSustainableSearches(profile, contributions, withdrawals, SustainableParams{
			YearsWorking:  config.YearsWorking(),
			AnnualSavings: config.Plan.AnnualSavings,
			Tax:           config.TaxCalculator(),
			Assumptions:   config.GetAssumptions(),
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		PrintSustainable(out, results)
		return nil
	}

	optimizer := NewOptimizer(config.TaxCalculator(), config.GetAssumptions())
	optimizer.Workers = config.GetWorkers()
	optimizer.Logger = logger

	fmt.Fprintf(out, "Running %d strategy pairs...\n\n", len(contributions)*len(withdrawals))
	results, err := optimizer.Optimize(profile, contributions, withdrawals,
		config.YearsWorking(), config.Plan.AnnualSavings, config.Plan.AnnualSpending)
	if err != nil {
		return err
	}

	PrintComparison(out, results)
	best, err := Best(results)
	if err != nil {
		return err
	}
	PrintStrategyResult(out, best, opts.showDetails)

	if !opts.generatePDF && !opts.generateCSV {
		return nil
	}

	dir := filepath.Join(config.GetOutputDir(), runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if opts.generatePDF {
		data, err := GenerateStrategyPDFReport(config, best)
		if err != nil {
			return fmt.Errorf("generating PDF: %w", err)
		}
		path := filepath.Join(dir, "best-strategy.pdf")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("PDF report written")
	}

	if opts.generateCSV {
		if err := writeCSVFile(filepath.Join(dir, "ranking.csv"), func(w io.Writer) error {
			return ExportResultsCSV(w, results)
		}); err != nil {
			return err
		}
		if err := writeCSVFile(filepath.Join(dir, "best-history.csv"), func(w io.Writer) error {
			return ExportHistoryCSV(w, best.History)
		}); err != nil {
			return err
		}
		logger.Info().Str("dir", dir).Msg("CSV files written")
	}

	fmt.Fprintf(out, "Reports written to %s\n", dir)
	return nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
