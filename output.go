package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	bestStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF9800"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// FormatMoney formats an amount with k/M abbreviations
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount >= 1000000 {
		return fmt.Sprintf("%s$%.2fM", sign, amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("%s$%.0fk", sign, amount/1000)
	}
	return fmt.Sprintf("%s$%.0f", sign, amount)
}

// FormatMoneyFull formats an amount in whole dollars without abbreviation
func FormatMoneyFull(amount float64) string {
	return fmt.Sprintf("$%.0f", math.Round(amount))
}

// FormatPercent formats a fractional rate such as 0.05 as "5.0%"
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func formatRuinAge(age *int) string {
	if age == nil {
		return "never"
	}
	return strconv.Itoa(*age)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// PrintHeader prints the household and assumptions being simulated
func PrintHeader(w io.Writer, config *Config) {
	h := config.Household
	a := config.GetAssumptions()

	fmt.Fprintln(w, titleStyle.Render("RETIREMENT STRATEGY SIMULATION"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s: age %d, retire at %d, plan to %d\n", h.Name, h.CurrentAge, h.RetirementAge, h.EndAge)
	fmt.Fprintf(w, "  RRSP %s | TFSA %s | Non-registered %s\n",
		FormatMoney(config.Accounts.TaxDeferred.Balance),
		FormatMoney(config.Accounts.TaxFree.Balance),
		FormatMoney(config.Accounts.Taxable.Balance))
	fmt.Fprintf(w, "  Saving %s/year, spending %s/year after tax, CPP %s + OAS %s\n",
		FormatMoney(config.Plan.AnnualSavings),
		FormatMoney(config.Plan.AnnualSpending),
		FormatMoney(h.CPPAnnual),
		FormatMoney(h.OASAnnual))
	fmt.Fprintf(w, "  Return %s | Inflation %s | Tax region %s\n",
		FormatPercent(a.ReturnRate), FormatPercent(a.InflationRate), config.GetRegion())
	fmt.Fprintln(w)
}

// PrintStrategyResult prints one strategy's outcome, optionally with every year
func PrintStrategyResult(w io.Writer, result StrategyResult, showDetails bool) {
	fmt.Fprintln(w, titleStyle.Render("Strategy: "+result.Label()))
	fmt.Fprintf(w, "  Lifetime tax:  %s\n", FormatMoney(result.TotalTaxPaid))
	fmt.Fprintf(w, "  Final wealth:  %s\n", FormatMoney(result.FinalWealth))
	fmt.Fprintf(w, "  Peak wealth:   %s\n", FormatMoney(result.PeakWealth))
	if result.Success {
		fmt.Fprintln(w, "  "+bestStyle.Render("Funds last the whole plan"))
	} else {
		fmt.Fprintln(w, "  "+warningStyle.Render("WARNING: ran out of money at age "+formatRuinAge(result.RuinAge)))
	}

	if !showDetails || len(result.History) == 0 {
		fmt.Fprintln(w)
		return
	}

	t := newTable("Age", "Phase", "Contributed", "Spending", "Withdrawn", "Tax", "Net Cash", "RRSP", "TFSA", "Non-reg", "Total")
	for _, rec := range result.History {
		t.Row(
			strconv.Itoa(rec.Age),
			string(rec.Phase),
			FormatMoney(rec.Contributions.Total()),
			FormatMoney(rec.Spending),
			FormatMoney(rec.GrossWithdrawal),
			FormatMoney(rec.TaxPaid),
			FormatMoney(rec.NetCashFlow),
			FormatMoney(rec.EndBalances.TaxDeferred),
			FormatMoney(rec.EndBalances.TaxFree),
			FormatMoney(rec.EndBalances.Taxable),
			FormatMoney(rec.TotalWealth),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w)
}

// PrintComparison prints the ranked optimizer results; the first row is the best (lowest tax)
func PrintComparison(w io.Writer, results []StrategyResult) {
	fmt.Fprintln(w, titleStyle.Render("STRATEGY RANKING (lowest lifetime tax first)"))
	if len(results) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No strategies were simulated."))
		return
	}

	t := newTable("#", "Contribution", "Withdrawal", "Lifetime Tax", "Final Wealth", "Peak Wealth", "Ruin Age")
	for i, r := range results {
		t.Row(
			strconv.Itoa(i+1),
			r.ContributionPolicy,
			r.WithdrawalPolicy,
			FormatMoney(r.TotalTaxPaid),
			FormatMoney(r.FinalWealth),
			FormatMoney(r.PeakWealth),
			formatRuinAge(r.RuinAge),
		)
	}
	fmt.Fprintln(w, t.String())

	best := results[0]
	fmt.Fprintf(w, "%s %s (%s lifetime tax)\n", bestStyle.Render("Best:"), best.Label(), FormatMoney(best.TotalTaxPaid))

	summaries := make([]Summary, len(results))
	for i, r := range results {
		summaries[i] = SummarizeStrategyResult(r)
	}
	if cmp, err := CompareStrategies(summaries); err == nil && cmp.HighestWealthStrategy != best.Label() {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("Highest final wealth:"), cmp.HighestWealthStrategy)
	}
	fmt.Fprintln(w)
}

// PrintSensitivity prints the best pair at each return rate
func PrintSensitivity(w io.Writer, analysis *SensitivityAnalysis) {
	fmt.Fprintln(w, titleStyle.Render("RETURN-RATE SENSITIVITY"))
	t := newTable("Return", "Best Strategy", "Lifetime Tax", "Final Wealth", "Ruin Age", "Successful")
	for _, r := range analysis.Results {
		best := r.BestStrategy
		if r.AllRunOut {
			best += " (all run out)"
		}
		t.Row(
			FormatPercent(r.ReturnRate),
			best,
			FormatMoney(r.TotalTax),
			FormatMoney(r.FinalWealth),
			formatRuinAge(r.RuinAge),
			fmt.Sprintf("%d/%d", r.Successful, len(r.AllResults)),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w)
}

// PrintSustainable prints the sustainable spending found for each pair
func PrintSustainable(w io.Writer, results []SustainableResult) {
	fmt.Fprintln(w, titleStyle.Render("SUSTAINABLE SPENDING"))
	bestIdx := FindBestSustainable(results)
	t := newTable("Contribution", "Withdrawal", "Annual Spending", "Lifetime Tax", "Final Wealth")
	for i, r := range results {
		spending := FormatMoneyFull(r.Spending)
		if !r.Feasible {
			spending = "not sustainable"
		} else if i == bestIdx {
			spending += " *"
		}
		t.Row(
			r.ContributionPolicy,
			r.WithdrawalPolicy,
			spending,
			FormatMoney(r.Result.TotalTaxPaid),
			FormatMoney(r.Result.FinalWealth),
		)
	}
	fmt.Fprintln(w, t.String())
	if bestIdx >= 0 {
		best := results[bestIdx]
		fmt.Fprintf(w, "%s %s / %s can spend %s/year\n", bestStyle.Render("Best:"),
			best.ContributionPolicy, best.WithdrawalPolicy, FormatMoneyFull(best.Spending))
	}
	fmt.Fprintln(w, strings.TrimSpace(mutedStyle.Render("* highest sustainable spending")))
	fmt.Fprintln(w)
}
