package main

import (
	"fmt"
	"math"
)

// Default economic assumptions for a full lifecycle run
const (
	DefaultReturnRate    = 0.05
	DefaultInflationRate = 0.02
	// DefaultRuinThreshold is the total wealth below which the household counts as ruined
	DefaultRuinThreshold = 1000.0
)

// Assumptions holds the economic inputs shared by every year of a run
type Assumptions struct {
	ReturnRate    float64
	InflationRate float64
	RuinThreshold float64 // Total wealth below this counts as ruin
}

// DefaultAssumptions returns 5% returns, 2% inflation and a 1,000 ruin threshold
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ReturnRate:    DefaultReturnRate,
		InflationRate: DefaultInflationRate,
		RuinThreshold: DefaultRuinThreshold,
	}
}

// Simulator advances one household through accumulation and decumulation.
// It owns a private copy of the profile; the caller's profile is never touched.
type Simulator struct {
	Tax         *TaxCalculator
	Assumptions Assumptions
	Logger      *Logger

	original *Profile
	profile  *Profile
	history  []YearRecord
	state    SimulatorState
}

// NewSimulator creates a simulator over a copy of profile
func NewSimulator(profile *Profile, tax *TaxCalculator, assumptions Assumptions) (*Simulator, error) {
	if profile == nil {
		return nil, invalidArgf("profile is required")
	}
	if tax == nil {
		tax = NewTaxCalculator(DefaultRegion)
	}
	if assumptions.RuinThreshold <= 0 {
		assumptions.RuinThreshold = DefaultRuinThreshold
	}
	s := &Simulator{
		Tax:         tax,
		Assumptions: assumptions,
		original:    profile.Clone(),
	}
	s.Reset()
	return s, nil
}

// Reset restores the working profile from the original and clears history
func (s *Simulator) Reset() {
	s.profile = s.original.Clone()
	s.history = nil
	s.state = StateUninitialized
}

// State returns where the current run is in its lifecycle
func (s *Simulator) State() SimulatorState {
	return s.state
}

// Profile returns a copy of the working profile
func (s *Simulator) Profile() *Profile {
	return s.profile.Clone()
}

// History returns a copy of the year records produced so far
func (s *Simulator) History() []YearRecord {
	out := make([]YearRecord, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Simulator) log() *Logger {
	return orSilent(s.Logger)
}

// checkAllocation rejects negative or non-finite amounts from a policy
func checkAllocation(alloc Balances, phase Phase, age int) error {
	for _, kind := range AllAccountKinds {
		v := alloc.Get(kind)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidArgf("%s policy returned %.2f for %s at age %d", phase, v, kind.Key(), age)
		}
	}
	return nil
}

func growAll(p *Profile, rate float64) {
	for _, kind := range AllAccountKinds {
		p.Account(kind).GrowAt(rate)
	}
}

// RunAccumulation runs the working years: contribute, then grow at returnRate.
// The run is applied to a scratch copy and committed only if every year succeeds.
func (s *Simulator) RunAccumulation(policy ContributionPolicy, yearsToRetirement int, annualSavings, returnRate float64) error {
	if s.state == StateDecumulating || s.state == StateComplete {
		return ErrPhaseOrder
	}
	if policy == nil {
		return invalidArgf("contribution policy is required")
	}
	if yearsToRetirement < 0 {
		return invalidArgf("years to retirement must be non-negative, got %d", yearsToRetirement)
	}
	if annualSavings < 0 {
		return invalidArgf("annual savings must be non-negative, got %.2f", annualSavings)
	}

	s.log().Debug().
		Int("age", s.profile.CurrentAge).
		Int("years", yearsToRetirement).
		Float64("annual_savings", annualSavings).
		Msg("accumulation started")

	p := s.profile.Clone()
	records := make([]YearRecord, 0, yearsToRetirement)

	for year := 0; year < yearsToRetirement; year++ {
		age := p.CurrentAge + year
		alloc := policy(ContributionState{
			Age:                    age,
			AnnualSavingsAvailable: annualSavings,
			Balances:               p.AllBalances(),
		})
		if err := checkAllocation(alloc, PhaseAccumulation, age); err != nil {
			return err
		}

		for _, kind := range AllAccountKinds {
			if amount := alloc.Get(kind); amount > 0 {
				if err := p.Account(kind).Deposit(amount); err != nil {
					return fmt.Errorf("deposit to %s at age %d: %w", kind.Key(), age, err)
				}
			}
		}
		growAll(p, returnRate)

		records = append(records, YearRecord{
			Age:           age + 1,
			Phase:         PhaseAccumulation,
			TotalWealth:   p.TotalBalance(),
			EndBalances:   p.AllBalances(),
			Contributions: alloc,
		})
	}
	p.CurrentAge += yearsToRetirement

	s.profile = p
	s.history = append(s.history, records...)
	s.state = StateAccumulating

	s.log().Debug().
		Int("age", p.CurrentAge).
		Float64("total_wealth", p.TotalBalance()).
		Msg("accumulation finished")
	return nil
}

// RunDecumulation runs each year of the remaining horizon: withdraw, tax, grow.
// The spending target rises by inflationRate after every year.
func (s *Simulator) RunDecumulation(policy WithdrawalPolicy, annualSpending, inflationRate, returnRate float64) error {
	if s.state == StateDecumulating || s.state == StateComplete {
		return ErrPhaseOrder
	}
	if policy == nil {
		return invalidArgf("withdrawal policy is required")
	}
	if annualSpending <= 0 {
		return invalidArgf("annual spending must be positive, got %.2f", annualSpending)
	}

	p := s.profile.Clone()
	horizon := p.RetirementHorizon()
	benefits := p.AnnualGovBenefits()

	s.log().Debug().
		Int("age", p.CurrentAge).
		Int("horizon", horizon).
		Float64("annual_spending", annualSpending).
		Msg("decumulation started")

	records := make([]YearRecord, 0, horizon)
	spending := annualSpending

	for year := 0; year < horizon; year++ {
		age := p.CurrentAge + year
		alloc := policy(WithdrawalState{
			Age:           age,
			TargetNetCash: spending,
			CPPIncome:     p.CPPAnnual,
			OASIncome:     p.OASAnnual,
			Balances:      p.AllBalances(),
		})
		if err := checkAllocation(alloc, PhaseDecumulation, age); err != nil {
			return err
		}

		var taken Balances
		var taxableIncome, gross float64
		for _, kind := range AllAccountKinds {
			if amount := alloc.Get(kind); amount > 0 {
				taxable, cash := p.Account(kind).Withdraw(amount)
				taken.Set(kind, cash)
				taxableIncome += taxable
				gross += cash
			}
		}

		taxPaid := s.Tax.TaxOn(taxableIncome)
		growAll(p, returnRate)

		records = append(records, YearRecord{
			Age:             age + 1,
			Phase:           PhaseDecumulation,
			TotalWealth:     p.TotalBalance(),
			EndBalances:     p.AllBalances(),
			Spending:        spending,
			Withdrawals:     taken,
			GrossWithdrawal: gross,
			TaxableIncome:   taxableIncome,
			TaxPaid:         taxPaid,
			GovBenefits:     benefits,
			NetCashFlow:     gross - taxPaid + benefits,
		})

		spending *= 1 + inflationRate
	}
	p.CurrentAge += horizon

	s.profile = p
	s.history = append(s.history, records...)
	s.state = StateComplete

	s.log().Debug().
		Int("age", p.CurrentAge).
		Float64("total_wealth", p.TotalBalance()).
		Msg("decumulation finished")
	return nil
}

// RunFullLifecycle resets, runs both phases with the simulator's assumptions and scores the run
func (s *Simulator) RunFullLifecycle(contrib ContributionPolicy, withdraw WithdrawalPolicy, yearsWorking int, annualSavings, annualSpending float64) (StrategyResult, error) {
	switch {
	case contrib == nil:
		return StrategyResult{}, invalidArgf("contribution policy is required")
	case withdraw == nil:
		return StrategyResult{}, invalidArgf("withdrawal policy is required")
	case yearsWorking < 0:
		return StrategyResult{}, invalidArgf("years working must be non-negative, got %d", yearsWorking)
	case annualSavings < 0:
		return StrategyResult{}, invalidArgf("annual savings must be non-negative, got %.2f", annualSavings)
	case annualSpending <= 0:
		return StrategyResult{}, invalidArgf("annual spending must be positive, got %.2f", annualSpending)
	}

	s.Reset()
	if err := s.RunAccumulation(contrib, yearsWorking, annualSavings, s.Assumptions.ReturnRate); err != nil {
		return StrategyResult{}, err
	}
	if err := s.RunDecumulation(withdraw, annualSpending, s.Assumptions.InflationRate, s.Assumptions.ReturnRate); err != nil {
		return StrategyResult{}, err
	}
	return s.Result(), nil
}

// Result scores the history produced so far
func (s *Simulator) Result() StrategyResult {
	return scoreHistory(s.History(), s.Assumptions.RuinThreshold, s.profile.TotalBalance())
}

// scoreHistory derives tax, final/peak wealth and ruin age from a chronological history.
// fallbackWealth is used for final and peak wealth when the history is empty.
func scoreHistory(history []YearRecord, ruinThreshold, fallbackWealth float64) StrategyResult {
	result := StrategyResult{
		FinalWealth: fallbackWealth,
		PeakWealth:  fallbackWealth,
		History:     history,
	}

	if len(history) > 0 {
		result.FinalWealth = history[len(history)-1].TotalWealth
		result.PeakWealth = math.Inf(-1)
	}

	for _, rec := range history {
		if rec.Phase == PhaseDecumulation {
			result.TotalTaxPaid += rec.TaxPaid
		}
		if rec.TotalWealth > result.PeakWealth {
			result.PeakWealth = rec.TotalWealth
		}
		if result.RuinAge == nil && rec.TotalWealth < ruinThreshold {
			age := rec.Age
			result.RuinAge = &age
		}
	}

	result.Success = result.RuinAge == nil
	return result
}
