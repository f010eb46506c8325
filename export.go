package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

func cents(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ExportResultsCSV writes the ranked optimizer results, best first
func ExportResultsCSV(w io.Writer, results []StrategyResult) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "contribution_policy", "withdrawal_policy", "total_tax_paid",
		"final_wealth", "peak_wealth", "ruin_age", "success"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, r := range results {
		ruin := ""
		if r.RuinAge != nil {
			ruin = strconv.Itoa(*r.RuinAge)
		}
		row := []string{
			strconv.Itoa(i + 1),
			r.ContributionPolicy,
			r.WithdrawalPolicy,
			cents(r.TotalTaxPaid),
			cents(r.FinalWealth),
			cents(r.PeakWealth),
			ruin,
			strconv.FormatBool(r.Success),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportHistoryCSV writes one row per simulated year
func ExportHistoryCSV(w io.Writer, history []YearRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"age", "phase", "contributions", "spending", "gross_withdrawal", "taxable_income",
		"tax_paid", "gov_benefits", "net_cash_flow", "tax_deferred", "tax_free", "taxable", "total_wealth"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range history {
		row := []string{
			strconv.Itoa(rec.Age),
			string(rec.Phase),
			cents(rec.Contributions.Total()),
			cents(rec.Spending),
			cents(rec.GrossWithdrawal),
			cents(rec.TaxableIncome),
			cents(rec.TaxPaid),
			cents(rec.GovBenefits),
			cents(rec.NetCashFlow),
			cents(rec.EndBalances.TaxDeferred),
			cents(rec.EndBalances.TaxFree),
			cents(rec.EndBalances.Taxable),
			cents(rec.TotalWealth),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
