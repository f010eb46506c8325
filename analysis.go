package main

import (
	"github.com/shopspring/decimal"
)

// Summary condenses one strategy's history into headline numbers
type Summary struct {
	Name        string
	LifetimeTax float64
	FinalWealth float64 // Sum of the last record's end balances
	AvgNetCash  float64 // Mean net cash flow over retirement years
	PeakWealth  float64
	RuinAge     *int
}

// Comparison names the winners across several summaries
type Comparison struct {
	LowestTaxStrategy     string
	HighestWealthStrategy string
}

// AgeCashFlow is the spendable cash for one retirement year
type AgeCashFlow struct {
	Age         int
	NetCashFlow float64
}

// sumCents adds money values exactly and rounds to cents
func sumCents(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2)
}

// SummarizeResults condenses a history. An empty history is rejected.
func SummarizeResults(name string, history []YearRecord) (Summary, error) {
	if len(history) == 0 {
		return Summary{}, invalidArgf("cannot summarize an empty history for %q", name)
	}

	taxes := make([]float64, 0, len(history))
	var netCash []float64
	for _, rec := range history {
		taxes = append(taxes, rec.TaxPaid)
		if rec.Phase == PhaseDecumulation {
			netCash = append(netCash, rec.NetCashFlow)
		}
	}

	last := history[len(history)-1].EndBalances
	summary := Summary{
		Name:        name,
		LifetimeTax: sumCents(taxes...).InexactFloat64(),
		FinalWealth: sumCents(last.TaxDeferred, last.TaxFree, last.Taxable).InexactFloat64(),
	}
	if len(netCash) > 0 {
		summary.AvgNetCash = sumCents(netCash...).
			Div(decimal.NewFromInt(int64(len(netCash)))).
			Round(2).
			InexactFloat64()
	}

	scored := scoreHistory(history, DefaultRuinThreshold, 0)
	summary.PeakWealth = scored.PeakWealth
	summary.RuinAge = scored.RuinAge
	return summary, nil
}

// SummarizeStrategyResult adapts an optimizer result into a Summary
func SummarizeStrategyResult(result StrategyResult) Summary {
	summary, err := SummarizeResults(result.Label(), result.History)
	if err != nil {
		return Summary{
			Name:        result.Label(),
			LifetimeTax: result.TotalTaxPaid,
			FinalWealth: result.FinalWealth,
			PeakWealth:  result.PeakWealth,
			RuinAge:     result.RuinAge,
		}
	}
	summary.RuinAge = result.RuinAge
	return summary
}

// CompareStrategies finds the lowest-tax and highest-wealth summaries.
// Ties go to the earlier entry.
func CompareStrategies(summaries []Summary) (Comparison, error) {
	if len(summaries) == 0 {
		return Comparison{}, invalidArgf("no strategies to compare")
	}

	lowest, highest := summaries[0], summaries[0]
	for _, s := range summaries[1:] {
		if s.LifetimeTax < lowest.LifetimeTax {
			lowest = s
		}
		if s.FinalWealth > highest.FinalWealth {
			highest = s
		}
	}
	return Comparison{
		LowestTaxStrategy:     lowest.Name,
		HighestWealthStrategy: highest.Name,
	}, nil
}

// IncomeProfileByAge lists net cash flow per retirement year in age order
func IncomeProfileByAge(history []YearRecord) []AgeCashFlow {
	var profile []AgeCashFlow
	for _, rec := range history {
		if rec.Phase == PhaseDecumulation {
			profile = append(profile, AgeCashFlow{Age: rec.Age, NetCashFlow: rec.NetCashFlow})
		}
	}
	return profile
}

// CalculateShortfallYears counts the years whose value falls below target
func CalculateShortfallYears(values []float64, target float64) int {
	count := 0
	for _, v := range values {
		if v < target {
			count++
		}
	}
	return count
}

// ProjectTaxEfficiency is tax paid per dollar withdrawn, or 0 when nothing was withdrawn
func ProjectTaxEfficiency(totalTax, totalWithdrawn float64) float64 {
	if totalWithdrawn <= 0 {
		return 0
	}
	return decimal.NewFromFloat(totalTax).
		Div(decimal.NewFromFloat(totalWithdrawn)).
		InexactFloat64()
}
