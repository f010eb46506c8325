package main

// Profile is a household: three accounts, an age range and government benefits
type Profile struct {
	Name       string
	CurrentAge int
	EndAge     int
	CPPAnnual  float64 // Flat annual benefit, today's dollars
	OASAnnual  float64

	TaxDeferredAccount Account
	TaxFreeAccount     Account
	TaxableAccount     Account
}

// NewProfile creates a profile holding the three accounts
func NewProfile(name string, currentAge, endAge int, cpp, oas float64, taxDeferred, taxFree, taxable Account) *Profile {
	taxDeferred.Kind = TaxDeferred
	taxFree.Kind = TaxFree
	taxable.Kind = Taxable
	return &Profile{
		Name:               name,
		CurrentAge:         currentAge,
		EndAge:             endAge,
		CPPAnnual:          cpp,
		OASAnnual:          oas,
		TaxDeferredAccount: taxDeferred,
		TaxFreeAccount:     taxFree,
		TaxableAccount:     taxable,
	}
}

// Account returns the account of the given kind
func (p *Profile) Account(kind AccountKind) *Account {
	switch kind {
	case TaxDeferred:
		return &p.TaxDeferredAccount
	case TaxFree:
		return &p.TaxFreeAccount
	default:
		return &p.TaxableAccount
	}
}

// AllBalances returns the current balance of each account
func (p *Profile) AllBalances() Balances {
	return Balances{
		TaxDeferred: p.TaxDeferredAccount.Balance,
		TaxFree:     p.TaxFreeAccount.Balance,
		Taxable:     p.TaxableAccount.Balance,
	}
}

// TotalBalance is the sum of all three accounts
func (p *Profile) TotalBalance() float64 {
	return p.AllBalances().Total()
}

// RetirementHorizon is the number of years left to plan for, never negative
func (p *Profile) RetirementHorizon() int {
	if p.EndAge < p.CurrentAge {
		return 0
	}
	return p.EndAge - p.CurrentAge
}

// AnnualGovBenefits returns CPP plus OAS
func (p *Profile) AnnualGovBenefits() float64 {
	return p.CPPAnnual + p.OASAnnual
}

// Clone creates a deep copy of the profile.
// Accounts are held by value so a struct copy is enough.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Snapshot returns a flat view of the profile for logging and reports
func (p *Profile) Snapshot() map[string]float64 {
	snap := map[string]float64{
		"current_age": float64(p.CurrentAge),
		"end_age":     float64(p.EndAge),
		"cpp_annual":  p.CPPAnnual,
		"oas_annual":  p.OASAnnual,
	}
	for k, v := range p.AllBalances().AsMap() {
		snap["balance_"+k] = v
	}
	return snap
}
