package main

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFStrategyReport renders one strategy result as an A4 document
type PDFStrategyReport struct {
	pdf    *fpdf.Fpdf
	config *Config
	result StrategyResult
}

// GenerateStrategyPDFReport creates a PDF plan for a single strategy
func GenerateStrategyPDFReport(config *Config, result StrategyResult) ([]byte, error) {
	report := &PDFStrategyReport{
		pdf:    fpdf.New("P", "mm", "A4", ""),
		config: config,
		result: result,
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)

	report.addTitlePage()
	report.addStrategyOverview()
	report.addYearByYearTable()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PDFStrategyReport) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(50)
	r.pdf.CellFormat(contentWidth, 15, "Retirement Plan", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 14)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 10, r.result.Label(), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.Ln(15)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	h := r.config.Household
	r.pdf.Ln(20)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.drawBox("Household", []string{
		fmt.Sprintf("%s - age %d, retiring at %d, planning to %d", h.Name, h.CurrentAge, h.RetirementAge, h.EndAge),
		fmt.Sprintf("CPP %s/year, OAS %s/year", FormatMoneyFull(h.CPPAnnual), FormatMoneyFull(h.OASAnnual)),
	})

	r.pdf.Ln(10)
	a := r.config.GetAssumptions()
	r.drawBox("Plan", []string{
		fmt.Sprintf("Save %s/year, spend %s/year after tax", FormatMoneyFull(r.config.Plan.AnnualSavings), FormatMoneyFull(r.config.Plan.AnnualSpending)),
		fmt.Sprintf("Return %s, inflation %s, tax region %s", FormatPercent(a.ReturnRate), FormatPercent(a.InflationRate), r.config.GetRegion()),
	})

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"This document is for informational purposes only and does not constitute financial advice. "+
			"Tax brackets are illustrative and returns are assumed constant.", "", "C", false)
}

func (r *PDFStrategyReport) drawBox(title string, lines []string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for _, line := range lines {
		r.pdf.CellFormat(contentWidth, 7, line, "LR", 1, "C", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")
}

func (r *PDFStrategyReport) addStrategyOverview() {
	r.pdf.AddPage()
	r.drawSectionHeader("Strategy Overview")

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.MultiCell(contentWidth, 5, r.strategyDescription(), "", "L", false)
	r.pdf.Ln(5)

	widths := []float64{90, 90}
	r.drawTableHeader([]string{"Measure", "Value"}, widths)
	rows := [][]string{
		{"Lifetime tax paid", FormatMoneyFull(r.result.TotalTaxPaid)},
		{"Final wealth", FormatMoneyFull(r.result.FinalWealth)},
		{"Peak wealth", FormatMoneyFull(r.result.PeakWealth)},
		{"Ran out of money", formatRuinAge(r.result.RuinAge)},
	}

	summary := SummarizeStrategyResult(r.result)
	rows = append(rows, []string{"Average net cash in retirement", FormatMoneyFull(summary.AvgNetCash)})

	var withdrawn float64
	for _, rec := range r.result.DecumulationYears() {
		withdrawn += rec.GrossWithdrawal
	}
	rows = append(rows, []string{"Tax per dollar withdrawn", FormatPercent(ProjectTaxEfficiency(r.result.TotalTaxPaid, withdrawn))})

	for _, row := range rows {
		r.drawTableRow(row, widths, false)
	}

	r.pdf.Ln(8)
	r.drawSectionHeader("Account Depletion")
	depleted := r.depletionAges()
	r.drawTableHeader([]string{"Account", "Empty At Age"}, widths)
	for _, kind := range AllAccountKinds {
		age := "never"
		if a, ok := depleted[kind]; ok {
			age = strconv.Itoa(a)
		}
		r.drawTableRow([]string{kind.String(), age}, widths, false)
	}
}

func (r *PDFStrategyReport) addYearByYearTable() {
	r.pdf.AddPage()
	r.drawSectionHeader("Year by Year")

	headers := []string{"Age", "Phase", "Saved", "Withdrawn", "Tax", "Net Cash", "RRSP", "TFSA", "Non-reg", "Total"}
	widths := []float64{12, 22, 17, 19, 16, 19, 19, 19, 19, 18}
	r.drawTableHeader(headers, widths)

	for i, rec := range r.result.History {
		// Bold the first retirement year
		isBold := rec.Phase == PhaseDecumulation && (i == 0 || r.result.History[i-1].Phase != PhaseDecumulation)
		r.drawTableRow([]string{
			strconv.Itoa(rec.Age),
			string(rec.Phase),
			FormatMoney(rec.Contributions.Total()),
			FormatMoney(rec.GrossWithdrawal),
			FormatMoney(rec.TaxPaid),
			FormatMoney(rec.NetCashFlow),
			FormatMoney(rec.EndBalances.TaxDeferred),
			FormatMoney(rec.EndBalances.TaxFree),
			FormatMoney(rec.EndBalances.Taxable),
			FormatMoney(rec.TotalWealth),
		}, widths, isBold)
	}
}

func (r *PDFStrategyReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFStrategyReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 8)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFStrategyReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 8)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 8)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFStrategyReport) strategyDescription() string {
	desc := "Contributions: " + r.result.ContributionPolicy + ". Withdrawals: " + r.result.WithdrawalPolicy + "."
	switch r.result.WithdrawalPolicy {
	case "Taxable First":
		desc += " Spending draws the non-registered account first, then the RRSP, keeping the TFSA for last."
	case "RRSP First":
		desc += " Spending draws the RRSP first, then the non-registered account, keeping the TFSA for last."
	case "Smooth RRSP Drawdown":
		desc += " Each year 4% of the RRSP is drawn first, then the non-registered account, with the TFSA absorbing any remainder."
	}
	return desc
}

// depletionAges returns the first age each account fell to (near) zero after holding money
func (r *PDFStrategyReport) depletionAges() map[AccountKind]int {
	ages := make(map[AccountKind]int)
	var prev Balances
	for i, rec := range r.result.History {
		for _, kind := range AllAccountKinds {
			if _, done := ages[kind]; done {
				continue
			}
			held := i > 0 && prev.Get(kind) > DefaultEmptyEpsilon
			if held && rec.EndBalances.Get(kind) <= DefaultEmptyEpsilon {
				ages[kind] = rec.Age
			}
		}
		prev = rec.EndBalances
	}
	return ages
}
