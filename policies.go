package main

import "math"

// Illustrative annual contribution caps
const (
	DefaultTaxFreeCap     = 7500.0
	DefaultTaxDeferredCap = 35000.0
)

// smoothFraction is the share of the tax-deferred balance the smooth policy offers first
const smoothFraction = 0.04

// ContributionState is what a contribution policy sees at the start of a working year
type ContributionState struct {
	Age                    int
	AnnualSavingsAvailable float64
	Balances               Balances
}

// WithdrawalState is what a withdrawal policy sees at the start of a retirement year
type WithdrawalState struct {
	Age           int
	TargetNetCash float64 // Inflation-adjusted spending target
	CPPIncome     float64
	OASIncome     float64
	Balances      Balances
}

// ContributionPolicy splits a year's savings across the three accounts.
// Implementations must be pure and return non-negative amounts.
type ContributionPolicy func(state ContributionState) Balances

// WithdrawalPolicy decides how much to take from each account in a retirement year.
// Implementations must be pure and return non-negative amounts.
type WithdrawalPolicy func(state WithdrawalState) Balances

// ContributionLimits holds the per-account annual caps
type ContributionLimits struct {
	TaxFreeCap     float64 `yaml:"tax_free_cap" toml:"tax_free_cap"`
	TaxDeferredCap float64 `yaml:"tax_deferred_cap" toml:"tax_deferred_cap"`
}

// DefaultContributionLimits returns the TFSA/RRSP style caps
func DefaultContributionLimits() ContributionLimits {
	return ContributionLimits{TaxFreeCap: DefaultTaxFreeCap, TaxDeferredCap: DefaultTaxDeferredCap}
}

func (l ContributionLimits) capFor(kind AccountKind) float64 {
	switch kind {
	case TaxFree:
		return l.TaxFreeCap
	case TaxDeferred:
		return l.TaxDeferredCap
	default:
		return math.Inf(1)
	}
}

// fillInOrder tops up each capped account in turn and routes the rest to taxable
func fillInOrder(limits ContributionLimits, order ...AccountKind) ContributionPolicy {
	return func(state ContributionState) Balances {
		var alloc Balances
		remaining := math.Max(state.AnnualSavingsAvailable, 0)
		for _, kind := range order {
			amount := math.Min(remaining, math.Max(limits.capFor(kind), 0))
			alloc.Set(kind, amount)
			remaining -= amount
		}
		alloc.Taxable += remaining
		return alloc
	}
}

// ContribTaxFreeFirst fills the tax-free cap, then the tax-deferred cap, then taxable
func ContribTaxFreeFirst(limits ContributionLimits) ContributionPolicy {
	return fillInOrder(limits, TaxFree, TaxDeferred)
}

// ContribTaxDeferredFirst fills the tax-deferred cap, then the tax-free cap, then taxable
func ContribTaxDeferredFirst(limits ContributionLimits) ContributionPolicy {
	return fillInOrder(limits, TaxDeferred, TaxFree)
}

// Shortfall is the spending left to fund from accounts after benefits
func Shortfall(state WithdrawalState) float64 {
	return math.Max(state.TargetNetCash-(state.CPPIncome+state.OASIncome), 0)
}

// drawInOrder takes min(remaining, balance) from each account in turn
func drawInOrder(order ...AccountKind) WithdrawalPolicy {
	return func(state WithdrawalState) Balances {
		var alloc Balances
		remaining := Shortfall(state)
		for _, kind := range order {
			amount := math.Min(remaining, math.Max(state.Balances.Get(kind), 0))
			alloc.Set(kind, amount)
			remaining -= amount
		}
		return alloc
	}
}

// SpendTaxableFirst draws taxable, then tax-deferred, then tax-free
func SpendTaxableFirst(state WithdrawalState) Balances {
	return drawInOrder(Taxable, TaxDeferred, TaxFree)(state)
}

// SpendTaxDeferredFirst draws tax-deferred, then taxable, then tax-free
func SpendTaxDeferredFirst(state WithdrawalState) Balances {
	return drawInOrder(TaxDeferred, Taxable, TaxFree)(state)
}

// SpendSmooth offers 4% of the tax-deferred balance first, then taxable, then tax-free
func SpendSmooth(state WithdrawalState) Balances {
	var alloc Balances
	remaining := Shortfall(state)

	deferred := math.Max(state.Balances.TaxDeferred, 0)
	alloc.TaxDeferred = math.Min(remaining, math.Min(smoothFraction*deferred, deferred))
	remaining -= alloc.TaxDeferred

	alloc.Taxable = math.Min(remaining, math.Max(state.Balances.Taxable, 0))
	remaining -= alloc.Taxable

	alloc.TaxFree = math.Min(remaining, math.Max(state.Balances.TaxFree, 0))
	return alloc
}
