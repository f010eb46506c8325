package main

import (
	"fmt"
)

// SustainableParams controls the sustainable-spending search
type SustainableParams struct {
	YearsWorking  int
	AnnualSavings float64
	Tax           *TaxCalculator
	Assumptions   Assumptions
	Logger        *Logger

	Low           float64 // Lowest spending tried (default 1,000)
	High          float64 // Highest spending tried (default 500,000)
	Tolerance     float64 // Stop once the bracket is this narrow (default 100)
	MaxIterations int     // Default 100
}

func (p SustainableParams) withDefaults() SustainableParams {
	if p.Low <= 0 {
		p.Low = 1000
	}
	if p.High <= p.Low {
		p.High = 500000
	}
	if p.Tolerance <= 0 {
		p.Tolerance = 100
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = 100
	}
	return p
}

// SustainableResult is the highest spending that never ruins the household
type SustainableResult struct {
	ContributionPolicy string
	WithdrawalPolicy   string
	Spending           float64 // 0 when even Low ruins the household
	Feasible           bool
	Iterations         int
	Result             StrategyResult // Lifecycle at Spending (at Low when infeasible)
}

// FindSustainableSpending binary-searches the largest annual spending for which the
// full lifecycle ends without ruin
func FindSustainableSpending(base *Profile, contrib NamedContributionPolicy, withdraw NamedWithdrawalPolicy, params SustainableParams) (SustainableResult, error) {
	params = params.withDefaults()
	log := orSilent(params.Logger)

	sim, err := NewSimulator(base, params.Tax, params.Assumptions)
	if err != nil {
		return SustainableResult{}, err
	}
	sim.Logger = params.Logger

	run := func(spending float64) (StrategyResult, error) {
		result, err := sim.RunFullLifecycle(contrib.Policy, withdraw.Policy, params.YearsWorking, params.AnnualSavings, spending)
		if err != nil {
			return StrategyResult{}, fmt.Errorf("lifecycle at spending %.2f: %w", spending, err)
		}
		result.ContributionPolicy = contrib.Name
		result.WithdrawalPolicy = withdraw.Name
		return result, nil
	}

	found := SustainableResult{
		ContributionPolicy: contrib.Name,
		WithdrawalPolicy:   withdraw.Name,
	}

	lowResult, err := run(params.Low)
	if err != nil {
		return SustainableResult{}, err
	}
	if !lowResult.Success {
		found.Result = lowResult
		return found, nil
	}

	highResult, err := run(params.High)
	if err != nil {
		return SustainableResult{}, err
	}
	if highResult.Success {
		found.Spending = params.High
		found.Feasible = true
		found.Result = highResult
		return found, nil
	}

	low, high := params.Low, params.High
	best := lowResult
	iterations := 0

	for iterations < params.MaxIterations && high-low > params.Tolerance {
		iterations++
		mid := (low + high) / 2

		result, err := run(mid)
		if err != nil {
			return SustainableResult{}, err
		}
		if result.Success {
			low = mid
			best = result
		} else {
			high = mid
		}
	}

	log.Debug().
		Str("contribution", contrib.Name).
		Str("withdrawal", withdraw.Name).
		Float64("spending", low).
		Int("iterations", iterations).
		Msg("sustainable spending found")

	found.Spending = low
	found.Feasible = true
	found.Iterations = iterations
	found.Result = best
	return found, nil
}

// RunAllSustainableSearches searches every contribution x withdrawal pair in cross-product order
func RunAllSustainableSearches(base *Profile, contributions []NamedContributionPolicy, withdrawals []NamedWithdrawalPolicy, params SustainableParams) ([]SustainableResult, error) {
	results := make([]SustainableResult, 0, len(contributions)*len(withdrawals))
	for _, c := range contributions {
		for _, w := range withdrawals {
			r, err := FindSustainableSpending(base, c, w, params)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// FindBestSustainable returns the index of the highest feasible spending.
// Lower lifetime tax breaks ties; -1 means nothing was feasible.
func FindBestSustainable(results []SustainableResult) int {
	bestIdx := -1
	for i, r := range results {
		if !r.Feasible {
			continue
		}
		if bestIdx < 0 {
			bestIdx = i
			continue
		}
		best := results[bestIdx]
		if r.Spending > best.Spending ||
			(r.Spending == best.Spending && r.Result.TotalTaxPaid < best.Result.TotalTaxPaid) {
			bestIdx = i
		}
	}
	return bestIdx
}
