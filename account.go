package main

// DefaultEmptyEpsilon is the balance at or below which an account counts as exhausted
const DefaultEmptyEpsilon = 1e-6

// taxableShare is the fraction of a withdrawal reported as taxable income, per kind.
// Taxable accounts are simplified to fully taxable (no capital-gains split).
var taxableShare = map[AccountKind]float64{
	TaxDeferred: 1.0,
	TaxFree:     0.0,
	Taxable:     1.0,
}

// Account is a single balance-bearing savings vehicle
type Account struct {
	Name         string
	Kind         AccountKind
	Balance      float64
	AnnualReturn float64 // Stored rate used by Grow; a phase may override it via GrowAt
}

// NewAccount creates an account, clamping a negative opening balance to zero
func NewAccount(name string, kind AccountKind, balance, annualReturn float64) Account {
	if balance < 0 {
		balance = 0
	}
	return Account{Name: name, Kind: kind, Balance: balance, AnnualReturn: annualReturn}
}

// Deposit adds money to the account
func (a *Account) Deposit(amount float64) error {
	if amount < 0 {
		return invalidArgf("deposit amount must be non-negative, got %.2f", amount)
	}
	a.Balance += amount
	return nil
}

// Grow compounds the balance for one year at the stored rate
func (a *Account) Grow() {
	a.GrowAt(a.AnnualReturn)
}

// GrowAt compounds the balance for one year at an explicit rate
func (a *Account) GrowAt(rate float64) {
	a.Balance *= 1 + rate
}

// Withdraw removes up to amount and splits it into (taxable income, cash to spend).
// Requests above the balance are clamped. Non-positive requests and empty accounts are no-ops.
func (a *Account) Withdraw(amount float64) (taxableIncome, cash float64) {
	if amount <= 0 || a.IsEmpty() {
		return 0, 0
	}
	actual := amount
	if actual > a.Balance {
		actual = a.Balance
	}
	a.Balance -= actual
	return actual * taxableShare[a.Kind], actual
}

// IsEmpty reports whether the balance is effectively zero
func (a Account) IsEmpty() bool {
	return a.Balance <= DefaultEmptyEpsilon
}
