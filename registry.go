package main

import "fmt"

// NamedContributionPolicy pairs a contribution policy with its identifiers
type NamedContributionPolicy struct {
	ID        string
	Name      string
	ShortName string // Used in compact tables
	Policy    ContributionPolicy
}

// NamedWithdrawalPolicy pairs a withdrawal policy with its identifiers
type NamedWithdrawalPolicy struct {
	ID        string
	Name      string
	ShortName string
	Policy    WithdrawalPolicy
}

// PolicyRegistry holds the available policies in registration order
type PolicyRegistry struct {
	contributions     map[string]NamedContributionPolicy
	contributionOrder []string
	withdrawals       map[string]NamedWithdrawalPolicy
	withdrawalOrder   []string
}

// NewPolicyRegistry creates a registry with the standard policies using the given caps
func NewPolicyRegistry(limits ContributionLimits) *PolicyRegistry {
	r := &PolicyRegistry{
		contributions: make(map[string]NamedContributionPolicy),
		withdrawals:   make(map[string]NamedWithdrawalPolicy),
	}

	r.RegisterContribution(NamedContributionPolicy{
		ID:        "tfsa_first",
		Name:      "Max TFSA First",
		ShortName: "TFSA1st",
		Policy:    ContribTaxFreeFirst(limits),
	})
	r.RegisterContribution(NamedContributionPolicy{
		ID:        "rrsp_first",
		Name:      "Max RRSP First",
		ShortName: "RRSP1st",
		Policy:    ContribTaxDeferredFirst(limits),
	})

	r.RegisterWithdrawal(NamedWithdrawalPolicy{
		ID:        "taxable_first",
		Name:      "Taxable First",
		ShortName: "Tx1st",
		Policy:    SpendTaxableFirst,
	})
	r.RegisterWithdrawal(NamedWithdrawalPolicy{
		ID:        "rrsp_first",
		Name:      "RRSP First",
		ShortName: "RRSP1st",
		Policy:    SpendTaxDeferredFirst,
	})
	r.RegisterWithdrawal(NamedWithdrawalPolicy{
		ID:        "smooth",
		Name:      "Smooth RRSP Drawdown",
		ShortName: "Smooth",
		Policy:    SpendSmooth,
	})

	return r
}

// RegisterContribution adds or replaces a contribution policy
func (r *PolicyRegistry) RegisterContribution(p NamedContributionPolicy) {
	if _, exists := r.contributions[p.ID]; !exists {
		r.contributionOrder = append(r.contributionOrder, p.ID)
	}
	r.contributions[p.ID] = p
}

// RegisterWithdrawal adds or replaces a withdrawal policy
func (r *PolicyRegistry) RegisterWithdrawal(p NamedWithdrawalPolicy) {
	if _, exists := r.withdrawals[p.ID]; !exists {
		r.withdrawalOrder = append(r.withdrawalOrder, p.ID)
	}
	r.withdrawals[p.ID] = p
}

// Contribution returns a contribution policy by ID
func (r *PolicyRegistry) Contribution(id string) (NamedContributionPolicy, bool) {
	p, ok := r.contributions[id]
	return p, ok
}

// Withdrawal returns a withdrawal policy by ID
func (r *PolicyRegistry) Withdrawal(id string) (NamedWithdrawalPolicy, bool) {
	p, ok := r.withdrawals[id]
	return p, ok
}

// Contributions returns all contribution policies in registration order
func (r *PolicyRegistry) Contributions() []NamedContributionPolicy {
	result := make([]NamedContributionPolicy, len(r.contributionOrder))
	for i, id := range r.contributionOrder {
		result[i] = r.contributions[id]
	}
	return result
}

// Withdrawals returns all withdrawal policies in registration order
func (r *PolicyRegistry) Withdrawals() []NamedWithdrawalPolicy {
	result := make([]NamedWithdrawalPolicy, len(r.withdrawalOrder))
	for i, id := range r.withdrawalOrder {
		result[i] = r.withdrawals[id]
	}
	return result
}

// SelectContributions returns the named subset in the requested order.
// An empty id list selects everything.
func (r *PolicyRegistry) SelectContributions(ids []string) ([]NamedContributionPolicy, error) {
	if len(ids) == 0 {
		return r.Contributions(), nil
	}
	result := make([]NamedContributionPolicy, 0, len(ids))
	for _, id := range ids {
		p, ok := r.contributions[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown contribution policy %q", ErrInvalidArgument, id)
		}
		result = append(result, p)
	}
	return result, nil
}

// SelectWithdrawals returns the named subset in the requested order.
// An empty id list selects everything.
func (r *PolicyRegistry) SelectWithdrawals(ids []string) ([]NamedWithdrawalPolicy, error) {
	if len(ids) == 0 {
		return r.Withdrawals(), nil
	}
	result := make([]NamedWithdrawalPolicy, 0, len(ids))
	for _, id := range ids {
		p, ok := r.withdrawals[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown withdrawal policy %q", ErrInvalidArgument, id)
		}
		result = append(result, p)
	}
	return result, nil
}
