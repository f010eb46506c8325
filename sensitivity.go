package main

import (
	"fmt"
	"math"
	"time"
)

// SensitivityResult holds the optimizer outcome at one return rate
type SensitivityResult struct {
	ReturnRate   float64
	BestStrategy string // Lowest lifetime tax pair
	TotalTax     float64
	FinalWealth  float64
	RuinAge      *int
	AllRunOut    bool // True only if every pair is ruined
	Successful   int  // Pairs that never ran out
	AllResults   []StrategyResult
	ReportDir    string // Subdirectory name for this rate's reports
}

// SensitivityAnalysis holds the complete return-rate sweep
type SensitivityAnalysis struct {
	Results     []SensitivityResult
	ReturnRates []float64
	Timestamp   string
}

// buildReturnRates generates rates from min to max inclusive with the given step
func buildReturnRates(min, max, step float64) []float64 {
	var rates []float64
	for r := min; r <= max+0.0001; r += step { // small epsilon for float comparison
		rates = append(rates, r)
	}
	return rates
}

// RunSensitivityAnalysis runs the optimizer once per return rate in the configured range
func RunSensitivityAnalysis(config *Config, registry *PolicyRegistry, logger *Logger) (*SensitivityAnalysis, error) {
	if err := config.ValidateSensitivity(); err != nil {
		return nil, err
	}
	profile, err := config.BuildProfile()
	if err != nil {
		return nil, err
	}
	contributions, err := registry.SelectContributions(config.Optimizer.ContributionPolicies)
	if err != nil {
		return nil, err
	}
	withdrawals, err := registry.SelectWithdrawals(config.Optimizer.WithdrawalPolicies)
	if err != nil {
		return nil, err
	}

	log := orSilent(logger)
	min, max, step := config.GetSensitivityRange()
	rates := buildReturnRates(min, max, step)
	tax := config.TaxCalculator()

	analysis := &SensitivityAnalysis{
		ReturnRates: rates,
		Results:     make([]SensitivityResult, 0, len(rates)),
		Timestamp:   time.Now().Format("2006-01-02_1504"),
	}

	for _, rate := range rates {
		assumptions := config.GetAssumptions()
		assumptions.ReturnRate = rate

		opt := NewOptimizer(tax, assumptions)
		opt.Workers = config.GetWorkers()
		opt.Logger = logger

		results, err := opt.Optimize(profile, contributions, withdrawals,
			config.YearsWorking(), config.Plan.AnnualSavings, config.Plan.AnnualSpending)
		if err != nil {
			return nil, fmt.Errorf("return rate %.4f: %w", rate, err)
		}

		sr := SensitivityResult{
			ReturnRate: rate,
			AllResults: results,
			AllRunOut:  true,
			// Use math.Round to avoid floating point precision issues
			ReportDir: fmt.Sprintf("r%02d", int(math.Round(rate*100))),
		}
		for _, r := range results {
			if r.Success {
				sr.Successful++
				sr.AllRunOut = false
			}
		}
		if best, err := Best(results); err == nil {
			sr.BestStrategy = best.Label()
			sr.TotalTax = best.TotalTaxPaid
			sr.FinalWealth = best.FinalWealth
			sr.RuinAge = best.RuinAge
		} else {
			sr.AllRunOut = false
		}

		log.Debug().
			Float64("return_rate", rate).
			Str("best", sr.BestStrategy).
			Int("successful", sr.Successful).
			Msg("sensitivity point complete")

		analysis.Results = append(analysis.Results, sr)
	}

	return analysis, nil
}
