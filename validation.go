package main

import (
	"errors"
	"fmt"
)

// ValidationError reports a single invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is match validation failures against ErrInvalidArgument
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func validateAge(age int, field string) error {
	if age < 18 || age > 120 {
		return ValidationError{Field: field, Message: fmt.Sprintf("age must be between 18 and 120 (got %d)", age)}
	}
	return nil
}

func validateNonNegative(v float64, field string) error {
	if v < 0 {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be zero or more (got %.2f)", v)}
	}
	return nil
}

func validateRate(v float64, field string) error {
	if v <= -1 {
		return ValidationError{Field: field, Message: fmt.Sprintf("rate must be above -100%% (got %.4f)", v)}
	}
	return nil
}

// Validate checks the household inputs before a profile is built.
// All failing fields are reported together.
func (c *Config) Validate() error {
	h := c.Household
	var errs []error

	if err := validateAge(h.CurrentAge, "household.current_age"); err != nil {
		errs = append(errs, err)
	}
	if h.RetirementAge <= h.CurrentAge {
		errs = append(errs, ValidationError{
			Field:   "household.retirement_age",
			Message: fmt.Sprintf("must be after current age %d (got %d)", h.CurrentAge, h.RetirementAge),
		})
	}
	if h.EndAge <= h.RetirementAge {
		errs = append(errs, ValidationError{
			Field:   "household.end_age",
			Message: fmt.Sprintf("must be after retirement age %d (got %d)", h.RetirementAge, h.EndAge),
		})
	}

	checks := []struct {
		value float64
		field string
	}{
		{h.CPPAnnual, "household.cpp_annual"},
		{h.OASAnnual, "household.oas_annual"},
		{c.Accounts.TaxDeferred.Balance, "accounts.tax_deferred.balance"},
		{c.Accounts.TaxFree.Balance, "accounts.tax_free.balance"},
		{c.Accounts.Taxable.Balance, "accounts.taxable.balance"},
		{c.Plan.AnnualSavings, "plan.annual_savings"},
		{c.Limits.TaxFreeCap, "limits.tax_free_cap"},
		{c.Limits.TaxDeferredCap, "limits.tax_deferred_cap"},
	}
	for _, chk := range checks {
		if err := validateNonNegative(chk.value, chk.field); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Plan.AnnualSpending <= 0 {
		errs = append(errs, ValidationError{
			Field:   "plan.annual_spending",
			Message: fmt.Sprintf("must be greater than zero (got %.2f)", c.Plan.AnnualSpending),
		})
	}

	if err := validateRate(c.Assumptions.ReturnRate, "assumptions.return_rate"); err != nil {
		errs = append(errs, err)
	}
	if err := validateRate(c.Assumptions.InflationRate, "assumptions.inflation_rate"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateSensitivity checks the return-rate sweep range
func (c *Config) ValidateSensitivity() error {
	min, max, _ := c.GetSensitivityRange()
	var errs []error
	if err := validateRate(min, "sensitivity.return_min"); err != nil {
		errs = append(errs, err)
	}
	if max < min {
		errs = append(errs, ValidationError{
			Field:   "sensitivity.return_max",
			Message: fmt.Sprintf("must not be below return_min %.4f (got %.4f)", min, max),
		})
	}
	return errors.Join(errs...)
}
