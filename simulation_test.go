package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYoungProfile() *Profile {
	return NewProfile("Test", 30, 95, 10000, 7000,
		NewAccount("RRSP", TaxDeferred, 10000, 0.05),
		NewAccount("TFSA", TaxFree, 5000, 0.05),
		NewAccount("Savings", Taxable, 2000, 0.05),
	)
}

func newRetireeProfile(currentAge, endAge int) *Profile {
	return NewProfile("Retiree", currentAge, endAge, 10000, 7000,
		NewAccount("RRSP", TaxDeferred, 300000, 0.05),
		NewAccount("TFSA", TaxFree, 100000, 0.05),
		NewAccount("Savings", Taxable, 50000, 0.05),
	)
}

func newTestSimulator(t *testing.T, p *Profile) *Simulator {
	t.Helper()
	sim, err := NewSimulator(p, NewTaxCalculator("ON"), DefaultAssumptions())
	require.NoError(t, err)
	return sim
}

// =============================================================================
// Accumulation
// =============================================================================

func TestSimulator_Accumulation(t *testing.T) {
	t.Run("Given a 30 year old, When two working years run, Then balances grow and age advances to 32", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())

		err := sim.RunAccumulation(ContribTaxFreeFirst(DefaultContributionLimits()), 2, 20000, 0.05)
		require.NoError(t, err)

		history := sim.History()
		require.Len(t, history, 2)
		assert.Equal(t, 31, history[0].Age)
		assert.Equal(t, 32, history[1].Age)
		assert.Equal(t, PhaseAccumulation, history[0].Phase)

		// Year 1: TFSA 5000+7500, RRSP 10000+12500, Savings 2000, all grown 5%
		assert.InDelta(t, 13125, history[0].EndBalances.TaxFree, moneyTolerance)
		assert.InDelta(t, 23625, history[0].EndBalances.TaxDeferred, moneyTolerance)
		assert.InDelta(t, 2100, history[0].EndBalances.Taxable, moneyTolerance)
		assert.InDelta(t, 38850, history[0].TotalWealth, moneyTolerance)
		assert.Equal(t, Balances{TaxFree: 7500, TaxDeferred: 12500}, history[0].Contributions)

		assert.InDelta(t, 61792.5, history[1].TotalWealth, moneyTolerance)

		p := sim.Profile()
		assert.Equal(t, 32, p.CurrentAge)
		assert.Greater(t, p.TaxFreeAccount.Balance, 5000.0)
		assert.Equal(t, StateAccumulating, sim.State())
	})

	t.Run("Given a phase return rate, When accumulating, Then it overrides each account's stored rate", func(t *testing.T) {
		p := newYoungProfile()
		p.TaxDeferredAccount.AnnualReturn = 0.50
		sim := newTestSimulator(t, p)

		require.NoError(t, sim.RunAccumulation(ContribTaxFreeFirst(DefaultContributionLimits()), 1, 0, 0))

		assert.Equal(t, 10000.0, sim.Profile().TaxDeferredAccount.Balance)
	})

	t.Run("Given zero years, When accumulating, Then nothing is recorded", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())

		require.NoError(t, sim.RunAccumulation(ContribTaxFreeFirst(DefaultContributionLimits()), 0, 20000, 0.05))

		assert.Empty(t, sim.History())
		assert.Equal(t, 30, sim.Profile().CurrentAge)
	})
}

func TestSimulator_Accumulation_RejectsBadInput(t *testing.T) {
	policy := ContribTaxFreeFirst(DefaultContributionLimits())

	tests := []struct {
		name    string
		years   int
		savings float64
	}{
		{"negative years", -1, 20000},
		{"negative savings", 1, -10000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sim := newTestSimulator(t, newYoungProfile())
			require.NoError(t, sim.RunAccumulation(policy, 1, 1000, 0.05))
			before := sim.Profile()

			err := sim.RunAccumulation(policy, tc.years, tc.savings, 0.05)

			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Len(t, sim.History(), 1)
			assert.Equal(t, before, sim.Profile())
		})
	}

	t.Run("nil policy", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())
		assert.ErrorIs(t, sim.RunAccumulation(nil, 1, 1000, 0.05), ErrInvalidArgument)
	})
}

// =============================================================================
// Decumulation
// =============================================================================

func TestSimulator_Decumulation_ThreeYears(t *testing.T) {
	t.Run("Given a 3 year horizon and zero inflation, When decumulating, Then 3 increasing decumulation records are produced", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))

		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05))

		history := sim.History()
		require.Len(t, history, 3)
		for i, rec := range history {
			assert.Equal(t, 66+i, rec.Age)
			assert.Equal(t, PhaseDecumulation, rec.Phase)
			assert.GreaterOrEqual(t, rec.TaxPaid, 0.0)
			assert.Equal(t, 50000.0, rec.Spending)
			assert.Equal(t, 17000.0, rec.GovBenefits)
		}
		assert.Equal(t, StateComplete, sim.State())
		assert.Equal(t, 68, sim.Profile().CurrentAge)
	})

	t.Run("Given the first retirement year, When it is recorded, Then cash flow and tax match the policy", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))

		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05))
		first := sim.History()[0]

		// Shortfall 50000 - 17000 = 33000, all from non-registered, taxed at 15% + 11.5%
		assert.InDelta(t, 33000, first.GrossWithdrawal, moneyTolerance)
		assert.InDelta(t, 33000, first.Withdrawals.Taxable, moneyTolerance)
		assert.InDelta(t, 33000, first.TaxableIncome, moneyTolerance)
		assert.InDelta(t, 8745, first.TaxPaid, moneyTolerance)
		assert.InDelta(t, 33000-8745+17000, first.NetCashFlow, moneyTolerance)
		assert.InDelta(t, 315000, first.EndBalances.TaxDeferred, moneyTolerance)
		assert.InDelta(t, 105000, first.EndBalances.TaxFree, moneyTolerance)
		assert.InDelta(t, 17850, first.EndBalances.Taxable, moneyTolerance)
		assert.InDelta(t, 437850, first.TotalWealth, moneyTolerance)
	})

	t.Run("Given inflation, When decumulating, Then the spending target compounds each year", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))

		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0.02, 0.05))

		history := sim.History()
		assert.InDelta(t, 50000, history[0].Spending, moneyTolerance)
		assert.InDelta(t, 51000, history[1].Spending, moneyTolerance)
		assert.InDelta(t, 52020, history[2].Spending, moneyTolerance)
	})

	t.Run("Given withdrawals from the TFSA only, When decumulating, Then no tax is due", func(t *testing.T) {
		p := NewProfile("TFSA only", 65, 67, 0, 0,
			NewAccount("RRSP", TaxDeferred, 0, 0),
			NewAccount("TFSA", TaxFree, 500000, 0),
			NewAccount("Savings", Taxable, 0, 0),
		)
		sim := newTestSimulator(t, p)

		require.NoError(t, sim.RunDecumulation(SpendTaxDeferredFirst, 40000, 0, 0))

		for _, rec := range sim.History() {
			assert.Equal(t, 0.0, rec.TaxPaid)
			assert.InDelta(t, 40000, rec.NetCashFlow, moneyTolerance)
		}
	})
}

func TestSimulator_Decumulation_RejectsBadInput(t *testing.T) {
	for _, spending := range []float64{0, -1} {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))

		err := sim.RunDecumulation(SpendTaxableFirst, spending, 0.02, 0.05)

		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Empty(t, sim.History())
		assert.Equal(t, StateUninitialized, sim.State())
		assert.Equal(t, 450000.0, sim.Profile().TotalBalance())
	}
}

func TestSimulator_EndAgeBeforeCurrentAge(t *testing.T) {
	sim := newTestSimulator(t, newRetireeProfile(70, 65))

	require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0.02, 0.05))

	assert.Empty(t, sim.History())
}

// =============================================================================
// State machine
// =============================================================================

func TestSimulator_PhaseOrder(t *testing.T) {
	t.Run("Given decumulation has run, When accumulation is requested, Then ErrPhaseOrder is returned", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))
		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05))

		err := sim.RunAccumulation(ContribTaxFreeFirst(DefaultContributionLimits()), 1, 1000, 0.05)

		assert.ErrorIs(t, err, ErrPhaseOrder)
		assert.Len(t, sim.History(), 3)
	})

	t.Run("Given a complete run, When decumulation is requested again, Then ErrPhaseOrder is returned", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))
		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05))

		assert.ErrorIs(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05), ErrPhaseOrder)
	})

	t.Run("Given a complete run, When reset, Then the simulator starts over from the original profile", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(65, 68))
		require.NoError(t, sim.RunDecumulation(SpendTaxableFirst, 50000, 0, 0.05))

		sim.Reset()

		assert.Equal(t, StateUninitialized, sim.State())
		assert.Empty(t, sim.History())
		assert.Equal(t, newRetireeProfile(65, 68), sim.Profile())
	})

	t.Run("Given several accumulation calls, When run back to back, Then history is appended in order", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())
		policy := ContribTaxFreeFirst(DefaultContributionLimits())

		require.NoError(t, sim.RunAccumulation(policy, 2, 1000, 0.05))
		require.NoError(t, sim.RunAccumulation(policy, 1, 1000, 0.05))

		history := sim.History()
		require.Len(t, history, 3)
		assert.Equal(t, []int{31, 32, 33}, []int{history[0].Age, history[1].Age, history[2].Age})
	})
}

func TestSimulator_NegativeAllocationAbortsRun(t *testing.T) {
	calls := 0
	bad := func(state WithdrawalState) Balances {
		calls++
		if calls == 2 {
			return Balances{TaxDeferred: -5}
		}
		return SpendTaxableFirst(state)
	}
	sim := newTestSimulator(t, newRetireeProfile(65, 70))

	err := sim.RunDecumulation(bad, 50000, 0, 0.05)

	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, sim.History(), "a failed run must not leave partial years behind")
	assert.Equal(t, StateUninitialized, sim.State())
	assert.Equal(t, 450000.0, sim.Profile().TotalBalance())
}

func TestSimulator_DoesNotMutateCallerProfile(t *testing.T) {
	p := newYoungProfile()
	sim := newTestSimulator(t, p)

	_, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendSmooth, 5, 20000, 40000)
	require.NoError(t, err)

	assert.Equal(t, newYoungProfile(), p)
}

func TestNewSimulator(t *testing.T) {
	_, err := NewSimulator(nil, nil, DefaultAssumptions())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	sim, err := NewSimulator(newYoungProfile(), nil, Assumptions{ReturnRate: 0.03})
	require.NoError(t, err)
	assert.NotNil(t, sim.Tax)
	assert.Equal(t, DefaultRuinThreshold, sim.Assumptions.RuinThreshold)
}

// =============================================================================
// Full lifecycle
// =============================================================================

func TestSimulator_FullLifecycle(t *testing.T) {
	t.Run("Given 2 working years and a 1 year retirement, When run, Then history spans both phases in order", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(60, 63))

		result, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendTaxableFirst, 2, 20000, 50000)
		require.NoError(t, err)

		require.Len(t, result.History, 3)
		assert.Equal(t, PhaseAccumulation, result.History[0].Phase)
		assert.Equal(t, PhaseAccumulation, result.History[1].Phase)
		assert.Equal(t, PhaseDecumulation, result.History[2].Phase)
		assert.Equal(t, []int{61, 62, 63}, []int{result.History[0].Age, result.History[1].Age, result.History[2].Age})

		assert.InDelta(t, result.History[2].TaxPaid, result.TotalTaxPaid, moneyTolerance)
		assert.Equal(t, result.History[2].TotalWealth, result.FinalWealth)
		assert.True(t, result.Success)
		assert.Nil(t, result.RuinAge)
		assert.GreaterOrEqual(t, result.PeakWealth, result.FinalWealth)
	})

	t.Run("Given a small pot and large spending, When run, Then the ruin age is the first year below the threshold", func(t *testing.T) {
		p := NewProfile("Short", 65, 70, 0, 0,
			NewAccount("RRSP", TaxDeferred, 10000, 0),
			NewAccount("TFSA", TaxFree, 0, 0),
			NewAccount("Savings", Taxable, 0, 0),
		)
		sim := newTestSimulator(t, p)

		result, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendTaxDeferredFirst, 0, 0, 50000)
		require.NoError(t, err)

		require.NotNil(t, result.RuinAge)
		assert.Equal(t, 66, *result.RuinAge)
		assert.False(t, result.Success)
		assert.Equal(t, 0.0, result.FinalWealth)
		assert.Len(t, result.History, 5)
	})

	t.Run("Given no years to simulate, When run, Then wealth falls back to the current balance", func(t *testing.T) {
		sim := newTestSimulator(t, newRetireeProfile(70, 70))

		result, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendSmooth, 0, 0, 50000)
		require.NoError(t, err)

		assert.Empty(t, result.History)
		assert.Equal(t, 450000.0, result.FinalWealth)
		assert.Equal(t, 450000.0, result.PeakWealth)
		assert.True(t, result.Success)
	})

	t.Run("Given the same simulator, When the lifecycle runs twice, Then both runs are identical", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())
		contrib := ContribTaxDeferredFirst(DefaultContributionLimits())

		first, err := sim.RunFullLifecycle(contrib, SpendSmooth, 30, 20000, 60000)
		require.NoError(t, err)
		second, err := sim.RunFullLifecycle(contrib, SpendSmooth, 30, 20000, 60000)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Given invalid arguments, When run, Then nothing is reset or recorded", func(t *testing.T) {
		sim := newTestSimulator(t, newYoungProfile())
		require.NoError(t, sim.RunAccumulation(ContribTaxFreeFirst(DefaultContributionLimits()), 1, 1000, 0.05))

		_, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendSmooth, 5, 1000, 0)

		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Len(t, sim.History(), 1)
		assert.Equal(t, StateAccumulating, sim.State())
	})
}

func TestSimulator_LogsPhases(t *testing.T) {
	var buf bytes.Buffer
	sim := newTestSimulator(t, newRetireeProfile(60, 62))
	sim.Logger = NewLoggerWithOutput("debug", &buf)

	_, err := sim.RunFullLifecycle(ContribTaxFreeFirst(DefaultContributionLimits()), SpendSmooth, 1, 1000, 40000)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "accumulation started")
	assert.Contains(t, out, "decumulation finished")
}

func TestScoreHistory(t *testing.T) {
	history := []YearRecord{
		{Age: 61, Phase: PhaseAccumulation, TotalWealth: 5000},
		{Age: 62, Phase: PhaseDecumulation, TotalWealth: 9000, TaxPaid: 100},
		{Age: 63, Phase: PhaseDecumulation, TotalWealth: 900, TaxPaid: 50},
		{Age: 64, Phase: PhaseDecumulation, TotalWealth: 0, TaxPaid: 0},
	}

	result := scoreHistory(history, DefaultRuinThreshold, 123)

	assert.Equal(t, 150.0, result.TotalTaxPaid)
	assert.Equal(t, 9000.0, result.PeakWealth)
	assert.Equal(t, 0.0, result.FinalWealth)
	require.NotNil(t, result.RuinAge)
	assert.Equal(t, 63, *result.RuinAge)
	assert.False(t, result.Success)
}
