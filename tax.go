package main

import (
	"math"
	"strings"
)

// TaxBracket is one band of the progressive federal table.
// An Upper at or below Lower marks the top, unbounded band.
type TaxBracket struct {
	Name  string  `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Lower float64 `yaml:"lower" toml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" toml:"upper" json:"upper"`
	Rate  float64 `yaml:"rate" toml:"rate" json:"rate"`
}

// DefaultRegion is used when no province is configured
const DefaultRegion = "ON"

// fallbackRegionalRate applies to unrecognised regions
const fallbackRegionalRate = 0.12

// DefaultFederalBrackets is an illustrative federal table, not current law
func DefaultFederalBrackets() []TaxBracket {
	return []TaxBracket{
		{Name: "First", Lower: 0, Upper: 57000, Rate: 0.15},
		{Name: "Second", Lower: 57000, Upper: 114000, Rate: 0.205},
		{Name: "Third", Lower: 114000, Upper: 177000, Rate: 0.26},
		{Name: "Fourth", Lower: 177000, Upper: 246000, Rate: 0.29},
		{Name: "Top", Lower: 246000, Upper: 0, Rate: 0.33},
	}
}

// DefaultRegionalRates maps province codes to a flat add-on rate
func DefaultRegionalRates() map[string]float64 {
	return map[string]float64{
		"ON": 0.115,
		"BC": 0.105,
		"QC": 0.185,
		"AB": 0.12,
		"MB": 0.13,
		"SK": 0.125,
		"NS": 0.14,
		"NB": 0.14,
		"NL": 0.14,
		"PE": 0.14,
	}
}

// TaxCalculator converts taxable income into tax owed.
// It holds no mutable state after construction and is safe to share between goroutines.
type TaxCalculator struct {
	Region       string
	RegionalRate float64
	brackets     []TaxBracket
}

// NewTaxCalculator creates a calculator for a region using the default tables
func NewTaxCalculator(region string) *TaxCalculator {
	return NewTaxCalculatorWithBrackets(region, nil, nil)
}

// NewTaxCalculatorWithBrackets creates a calculator from configured tables.
// Nil or empty tables fall back to the defaults.
func NewTaxCalculatorWithBrackets(region string, brackets []TaxBracket, regionalRates map[string]float64) *TaxCalculator {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	if len(brackets) == 0 {
		brackets = DefaultFederalBrackets()
	}
	if len(regionalRates) == 0 {
		regionalRates = DefaultRegionalRates()
	}

	rate, ok := regionalRates[region]
	if !ok {
		rate = fallbackRegionalRate
	}

	owned := make([]TaxBracket, len(brackets))
	copy(owned, brackets)

	return &TaxCalculator{
		Region:       region,
		RegionalRate: rate,
		brackets:     owned,
	}
}

// Brackets returns a copy of the federal table
func (tc *TaxCalculator) Brackets() []TaxBracket {
	out := make([]TaxBracket, len(tc.brackets))
	copy(out, tc.brackets)
	return out
}

// upperBound returns the bracket's ceiling, treating Upper <= Lower as unbounded
func (b TaxBracket) upperBound() float64 {
	if b.Upper <= b.Lower {
		return math.Inf(1)
	}
	return b.Upper
}

// FederalTax walks the brackets taxing each slice of income at its own rate
func (tc *TaxCalculator) FederalTax(income float64) float64 {
	if income <= 0 {
		return 0
	}

	var total float64
	for _, band := range tc.brackets {
		if income <= band.Lower {
			break
		}
		inBand := math.Min(income, band.upperBound()) - band.Lower
		if inBand > 0 {
			total += inBand * band.Rate
		}
	}
	return total
}

// EffectiveRate returns (federal + regional tax) / income, or 0 for non-positive income
func (tc *TaxCalculator) EffectiveRate(income float64) float64 {
	if income <= 0 {
		return 0
	}
	regional := income * tc.RegionalRate
	return (tc.FederalTax(income) + regional) / income
}

// TaxOn returns the tax owed on a taxable income
func (tc *TaxCalculator) TaxOn(income float64) float64 {
	if income <= 0 {
		return 0
	}
	return income * tc.EffectiveRate(income)
}

// MarginalRate returns the combined rate on the next dollar above income
func (tc *TaxCalculator) MarginalRate(income float64) float64 {
	if income < 0 {
		income = 0
	}
	for _, band := range tc.brackets {
		if income >= band.Lower && income < band.upperBound() {
			return band.Rate + tc.RegionalRate
		}
	}
	return tc.RegionalRate
}
