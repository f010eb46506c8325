package main

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Optimizer runs every contribution/withdrawal pair and ranks them by lifetime tax
type Optimizer struct {
	Tax         *TaxCalculator // Read-only, shared by all workers
	Assumptions Assumptions
	Workers     int // Pairs simulated concurrently; values below 1 mean sequential
	Logger      *Logger
}

// NewOptimizer creates a sequential optimizer
func NewOptimizer(tax *TaxCalculator, assumptions Assumptions) *Optimizer {
	return &Optimizer{Tax: tax, Assumptions: assumptions, Workers: 1}
}

// Optimize simulates the cross product of contribution x withdrawal policies.
// Each pair gets its own simulator over a copy of base, so base is never mutated.
// Results are sorted ascending by total tax paid; ties keep cross-product order.
func (o *Optimizer) Optimize(
	base *Profile,
	contributions []NamedContributionPolicy,
	withdrawals []NamedWithdrawalPolicy,
	yearsWorking int,
	annualSavings, annualSpending float64,
) ([]StrategyResult, error) {
	if base == nil {
		return nil, invalidArgf("base profile is required")
	}
	if yearsWorking < 0 {
		return nil, invalidArgf("years working must be non-negative, got %d", yearsWorking)
	}
	if annualSavings < 0 {
		return nil, invalidArgf("annual savings must be non-negative, got %.2f", annualSavings)
	}
	if annualSpending <= 0 {
		return nil, invalidArgf("annual spending must be positive, got %.2f", annualSpending)
	}

	log := orSilent(o.Logger)
	tax := o.Tax
	if tax == nil {
		tax = NewTaxCalculator(DefaultRegion)
	}

	results := make([]StrategyResult, len(contributions)*len(withdrawals))
	if len(results) == 0 {
		return results, nil
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for ci, contrib := range contributions {
		for wi, withdraw := range withdrawals {
			idx := ci*len(withdrawals) + wi
			contrib, withdraw := contrib, withdraw
			g.Go(func() error {
				sim, err := NewSimulator(base, tax, o.Assumptions)
				if err != nil {
					return err
				}
				result, err := sim.RunFullLifecycle(contrib.Policy, withdraw.Policy, yearsWorking, annualSavings, annualSpending)
				if err != nil {
					return fmt.Errorf("%s / %s: %w", contrib.Name, withdraw.Name, err)
				}
				result.ContributionPolicy = contrib.Name
				result.WithdrawalPolicy = withdraw.Name
				results[idx] = result

				event := log.Debug().
					Str("contribution", contrib.Name).
					Str("withdrawal", withdraw.Name).
					Float64("total_tax", result.TotalTaxPaid).
					Float64("final_wealth", result.FinalWealth)
				if result.RuinAge != nil {
					event = event.Int("ruin_age", *result.RuinAge)
				}
				event.Msg("strategy simulated")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalTaxPaid < results[j].TotalTaxPaid
	})
	return results, nil
}

// Best returns the lowest-tax result from a ranked list
func Best(results []StrategyResult) (StrategyResult, error) {
	if len(results) == 0 {
		return StrategyResult{}, invalidArgf("no strategy results to choose from")
	}
	return results[0], nil
}
