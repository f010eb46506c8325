package main

// AccountKind identifies one of the three account types a household holds
type AccountKind int

const (
	TaxDeferred AccountKind = iota // RRSP/RRIF style - withdrawals fully taxable
	TaxFree                        // TFSA style - withdrawals not taxable
	Taxable                        // Non-registered - simplified to fully taxable
)

// AllAccountKinds lists the account kinds in canonical order
var AllAccountKinds = []AccountKind{TaxDeferred, TaxFree, Taxable}

func (k AccountKind) String() string {
	switch k {
	case TaxDeferred:
		return "Tax-Deferred"
	case TaxFree:
		return "Tax-Free"
	case Taxable:
		return "Taxable"
	default:
		return "Unknown"
	}
}

// Key returns the snake_case key used in balance maps, config files and reports
func (k AccountKind) Key() string {
	switch k {
	case TaxDeferred:
		return "tax_deferred"
	case TaxFree:
		return "tax_free"
	case Taxable:
		return "taxable"
	default:
		return "unknown"
	}
}

// Phase marks which part of the lifecycle a year record belongs to
type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhaseDecumulation Phase = "decumulation"
)

// SimulatorState tracks the lifecycle of a single simulation run
type SimulatorState int

const (
	StateUninitialized SimulatorState = iota
	StateAccumulating
	StateDecumulating
	StateComplete
)

func (s SimulatorState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAccumulating:
		return "accumulating"
	case StateDecumulating:
		return "decumulating"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Balances holds one amount per account kind.
// It is used both for account balances and for policy allocations, so every
// kind is always present (zero where unused).
type Balances struct {
	TaxDeferred float64 `yaml:"tax_deferred" json:"tax_deferred"`
	TaxFree     float64 `yaml:"tax_free" json:"tax_free"`
	Taxable     float64 `yaml:"taxable" json:"taxable"`
}

// Get returns the amount for an account kind
func (b Balances) Get(kind AccountKind) float64 {
	switch kind {
	case TaxDeferred:
		return b.TaxDeferred
	case TaxFree:
		return b.TaxFree
	case Taxable:
		return b.Taxable
	default:
		return 0
	}
}

// Set stores the amount for an account kind
func (b *Balances) Set(kind AccountKind, amount float64) {
	switch kind {
	case TaxDeferred:
		b.TaxDeferred = amount
	case TaxFree:
		b.TaxFree = amount
	case Taxable:
		b.Taxable = amount
	}
}

// Total returns the sum across all three kinds
func (b Balances) Total() float64 {
	return b.TaxDeferred + b.TaxFree + b.Taxable
}

// AsMap returns the balances keyed by exactly tax_deferred, tax_free and taxable
func (b Balances) AsMap() map[string]float64 {
	return map[string]float64{
		TaxDeferred.Key(): b.TaxDeferred,
		TaxFree.Key():     b.TaxFree,
		Taxable.Key():     b.Taxable,
	}
}

// YearRecord holds the outcome of one simulated year.
// Decumulation-only fields are zero for accumulation years.
type YearRecord struct {
	Age         int      `yaml:"age" json:"age"`
	Phase       Phase    `yaml:"phase" json:"phase"`
	TotalWealth float64  `yaml:"total_wealth" json:"total_wealth"`
	EndBalances Balances `yaml:"end_balances" json:"end_balances"`

	// Accumulation
	Contributions Balances `yaml:"contributions,omitempty" json:"contributions,omitempty"`

	// Decumulation
	Spending        float64  `yaml:"spending,omitempty" json:"spending,omitempty"` // Inflation-adjusted target for the year
	Withdrawals     Balances `yaml:"withdrawals,omitempty" json:"withdrawals,omitempty"`
	GrossWithdrawal float64  `yaml:"gross_withdrawal,omitempty" json:"gross_withdrawal,omitempty"`
	TaxableIncome   float64  `yaml:"taxable_income,omitempty" json:"taxable_income,omitempty"`
	TaxPaid         float64  `yaml:"tax_paid,omitempty" json:"tax_paid,omitempty"`
	GovBenefits     float64  `yaml:"gov_benefits,omitempty" json:"gov_benefits,omitempty"`
	NetCashFlow     float64  `yaml:"net_cash_flow,omitempty" json:"net_cash_flow,omitempty"` // Withdrawals - tax + benefits
}

// StrategyResult holds the scored outcome of a full lifecycle run
type StrategyResult struct {
	ContributionPolicy string // Empty unless produced by the optimizer
	WithdrawalPolicy   string
	FinalWealth        float64
	TotalTaxPaid       float64
	RuinAge            *int // nil if funds last the whole horizon
	Success            bool
	PeakWealth         float64
	History            []YearRecord
}

// Label returns a short "contribution / withdrawal" description of the pair
func (r StrategyResult) Label() string {
	if r.ContributionPolicy == "" && r.WithdrawalPolicy == "" {
		return "Lifecycle"
	}
	return r.ContributionPolicy + " / " + r.WithdrawalPolicy
}

// DecumulationYears returns the records of the spending phase in order
func (r StrategyResult) DecumulationYears() []YearRecord {
	var years []YearRecord
	for _, rec := range r.History {
		if rec.Phase == PhaseDecumulation {
			years = append(years, rec)
		}
	}
	return years
}
