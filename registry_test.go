package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRegistry_Defaults(t *testing.T) {
	r := NewPolicyRegistry(DefaultContributionLimits())

	contribs := r.Contributions()
	require.Len(t, contribs, 2)
	assert.Equal(t, "tfsa_first", contribs[0].ID)
	assert.Equal(t, "rrsp_first", contribs[1].ID)

	withdrawals := r.Withdrawals()
	require.Len(t, withdrawals, 3)
	assert.Equal(t, []string{"taxable_first", "rrsp_first", "smooth"},
		[]string{withdrawals[0].ID, withdrawals[1].ID, withdrawals[2].ID})

	p, ok := r.Withdrawal("smooth")
	require.True(t, ok)
	assert.Equal(t, "Smooth RRSP Drawdown", p.Name)
	assert.NotNil(t, p.Policy)

	_, ok = r.Contribution("missing")
	assert.False(t, ok)
}

func TestPolicyRegistry_UsesConfiguredCaps(t *testing.T) {
	r := NewPolicyRegistry(ContributionLimits{TaxFreeCap: 100, TaxDeferredCap: 200})

	p, ok := r.Contribution("tfsa_first")
	require.True(t, ok)

	alloc := p.Policy(ContributionState{AnnualSavingsAvailable: 1000})
	assert.Equal(t, Balances{TaxFree: 100, TaxDeferred: 200, Taxable: 700}, alloc)
}

func TestPolicyRegistry_Select(t *testing.T) {
	r := NewPolicyRegistry(DefaultContributionLimits())

	t.Run("Given requested ids, When selected, Then the subset comes back in requested order", func(t *testing.T) {
		selected, err := r.SelectWithdrawals([]string{"smooth", "taxable_first"})
		require.NoError(t, err)
		require.Len(t, selected, 2)
		assert.Equal(t, "smooth", selected[0].ID)
		assert.Equal(t, "taxable_first", selected[1].ID)
	})

	t.Run("Given no ids, When selected, Then everything is returned", func(t *testing.T) {
		selected, err := r.SelectContributions(nil)
		require.NoError(t, err)
		assert.Len(t, selected, 2)
	})

	t.Run("Given an unknown id, When selected, Then an invalid argument error is returned", func(t *testing.T) {
		_, err := r.SelectContributions([]string{"tfsa_first", "nope"})
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = r.SelectWithdrawals([]string{"nope"})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestPolicyRegistry_ReRegisterKeepsOrder(t *testing.T) {
	r := NewPolicyRegistry(DefaultContributionLimits())

	r.RegisterWithdrawal(NamedWithdrawalPolicy{ID: "taxable_first", Name: "Replaced", Policy: SpendTaxableFirst})
	r.RegisterWithdrawal(NamedWithdrawalPolicy{ID: "custom", Name: "Custom", Policy: SpendSmooth})

	withdrawals := r.Withdrawals()
	require.Len(t, withdrawals, 4)
	assert.Equal(t, "Replaced", withdrawals[0].Name)
	assert.Equal(t, "custom", withdrawals[3].ID)
}
