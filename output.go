package main

import (
	"fmt"
	"math"
	"strings"
)

// FormatYen formats a yen amount in abbreviated form
func FormatYen(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount >= 1_000_000 {
		return fmt.Sprintf("%s¥%.2fM", sign, amount/1_000_000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("%s¥%.0fk", sign, amount/1000)
	}
	return fmt.Sprintf("%s¥%.0f", sign, amount)
}

// FormatYenFull formats a yen amount with thousands separators
func FormatYenFull(amount float64) string {
	v := int64(math.Round(amount))
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-¥" + b.String()
	}
	return "¥" + b.String()
}

// FormatRate formats an optional fraction as a percentage, "n/a" when nil
func FormatRate(rate *float64) string {
	if rate == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *rate*100)
}

// FormatDSCR formats a coverage ratio, "∞" when there is no debt service
func FormatDSCR(dscr float64) string {
	if math.IsInf(dscr, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", dscr)
}

func formatPayback(year *int) string {
	if year == nil {
		return "beyond horizon"
	}
	return fmt.Sprintf("year %d", *year)
}

// PrintHeader prints the project summary
func PrintHeader(input *SimulationInput) {
	in := input.Normalize()
	fmt.Println("╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    REAL-ESTATE INVESTMENT PRO-FORMA                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	if in.Title != "" {
		fmt.Printf("  %s\n", in.Title)
	}
	fmt.Println("Project:")
	fmt.Println("────────")
	fmt.Printf("  Mode: %s | Structure: %s", in.Mode, in.Property.Structure)
	if in.Mode.IsUsed() {
		fmt.Printf(" | Building age: %d years", in.Property.BuildingAge)
	}
	fmt.Println()
	if in.Property.LandAreaM2 > 0 {
		fmt.Printf("  Land: %.2f m² (%.2f tsubo)\n", in.Property.LandAreaM2, M2ToTsubo(in.Property.LandAreaM2))
	}

	funding := SummarizeFunding(in)
	fmt.Printf("  Budget: %s | Equity: %s | Loans: %s",
		FormatYen(ManYenToYen(funding.TotalBudget)),
		FormatYen(ManYenToYen(funding.OwnCapital)),
		FormatYen(ManYenToYen(funding.TotalLoans)))
	if funding.Gap > 0 {
		fmt.Printf(" | Funding gap: %s", FormatYen(ManYenToYen(funding.Gap)))
	}
	fmt.Println()
	for _, l := range in.Funding.Loans {
		fmt.Printf("          %s: %s @ %.2f%% over %d years (%s/month)\n",
			l.Name, FormatYen(ManYenToYen(l.Amount)), l.Rate, l.Duration,
			FormatYenFull(CalculateMonthlyPayment(ManYenToYen(l.Amount), l.Rate, l.Duration)))
	}

	rr := in.RentRoll
	fmt.Printf("  Rent roll: %d units, %s/month at full occupancy, occupancy %.1f%%\n",
		rr.TotalUnits(), FormatYenFull(rr.MonthlyRent()), 100-in.BaseVacancyRate())
	for _, rt := range rr.RoomTypes {
		perTsubo := 0.0
		if rt.AreaM2 > 0 {
			perTsubo = rt.Rent / M2ToTsubo(rt.AreaM2)
		}
		fmt.Printf("          %s × %d: %s + %s common fee (%s/tsubo)\n",
			rt.Name, rt.Count, FormatYenFull(rt.Rent), FormatYenFull(rt.CommonFee), FormatYenFull(perTsubo))
	}

	s := in.AdvancedSettings
	fmt.Printf("  Rent decline: %.2f%%/yr | Vacancy rise: %.2fpt/yr | Rate rise: %.2fpt/yr | Tax: %s\n",
		*s.RentDeclineRate, *s.VacancyRiseRate, s.InterestRateRise, s.TaxMode)
	fmt.Println()
}

// PrintMetrics prints the headline investment metrics
func PrintMetrics(m InvestmentMetrics) {
	fmt.Println("Investment Metrics:")
	fmt.Println("───────────────────")
	fmt.Printf("  Gross yield:     %6.2f%%    Net yield:       %6.2f%%\n", m.GrossYield, m.NetYield)
	fmt.Printf("  IRR (equity):    %8s   NPV @ %.1f%%:     %s\n", FormatRate(m.IRR), m.DiscountRate, FormatYen(m.NPV))
	fmt.Printf("  Year-1 DSCR:     %8s   Average DSCR:    %.2f\n", FormatDSCR(m.Year1DSCR), m.AverageDSCR)
	fmt.Printf("  Year-1 CCR:      %7.2f%%   Break-even ratio: %.1f%%\n", m.Year1CCR*100, m.BreakEvenRatio*100)
	fmt.Printf("  Payback:         %s\n", formatPayback(m.PaybackYear))
	fmt.Println()
}

// PrintProjectionTable prints the yearly projection. Without details only
// every fifth year and the first year are shown.
func PrintProjectionTable(records []AnnualRecord, details bool) {
	fmt.Println("Cash-Flow Projection:")
	fmt.Printf("%-5s %10s %10s %10s %10s %10s %10s %10s %10s %12s %6s\n",
		"Year", "Gross", "EGI", "OPEX", "NOI", "ADS", "BTCF", "Tax", "ATCF", "Cumulative", "DSCR")
	fmt.Println(strings.Repeat("─", 112))

	for _, r := range records {
		if !details && r.Year != 1 && r.Year%5 != 0 {
			continue
		}
		fmt.Printf("%-5d %10s %10s %10s %10s %10s %10s %10s %10s %12s %6s\n",
			r.Year,
			FormatYen(r.GrossIncome),
			FormatYen(r.EffectiveGrossIncome),
			FormatYen(r.Opex),
			FormatYen(r.NOI),
			FormatYen(r.DebtService),
			FormatYen(r.BTCF),
			FormatYen(r.Tax),
			FormatYen(r.ATCF),
			FormatYen(r.CumulativeCashFlow),
			FormatDSCR(r.DSCR))
	}
	fmt.Println()
}

// PrintExitTable prints sale outcomes for each candidate year
func PrintExitTable(exits []ExitAnalysis) {
	fmt.Println("Exit Analysis:")
	fmt.Printf("%-5s %11s %11s %10s %10s %11s %11s %11s %9s\n",
		"Year", "Sale price", "Loan bal.", "Expenses", "CGT", "Net sale", "Total ret.", "Cum. ATCF", "Annual.")
	fmt.Println(strings.Repeat("─", 98))
	for _, e := range exits {
		if e.SalePrice == 0 && e.NetProceeds == 0 && e.CumulativeATCF == 0 {
			fmt.Printf("%-5d %s\n", e.SaleYear, "(beyond projection)")
			continue
		}
		fmt.Printf("%-5d %11s %11s %10s %10s %11s %11s %11s %8.2f%%\n",
			e.SaleYear,
			FormatYen(e.SalePrice),
			FormatYen(e.LoanBalance),
			FormatYen(e.SaleExpenses),
			FormatYen(e.CapitalGainsTax),
			FormatYen(e.NetProceeds),
			FormatYen(e.TotalReturn),
			FormatYen(e.CumulativeATCF),
			e.AnnualizedReturn*100)
	}
	fmt.Println()
}

// PrintScenarios prints the scenario comparison
func PrintScenarios(results []ScenarioResult) {
	fmt.Println("Scenario Comparison:")
	fmt.Printf("%-12s %8s %8s %8s %11s %11s %11s %6s %9s %15s\n",
		"Scenario", "Decline", "Vac.+", "Rate+", "Y1 NOI", "Y1 BTCF", "Y1 ATCF", "DSCR", "IRR", "Payback")
	fmt.Println(strings.Repeat("─", 108))
	for _, r := range results {
		fmt.Printf("%-12s %7.2f%% %8.2f %8.2f %11s %11s %11s %6s %9s %15s\n",
			r.Label,
			r.RentDeclineRate, r.VacancyRiseRate, r.InterestRateRise,
			FormatYen(r.Year1NOI), FormatYen(r.Year1BTCF), FormatYen(r.Year1ATCF),
			FormatDSCR(r.Year1DSCR), FormatRate(r.IRR), formatPayback(r.PaybackYear))
	}
	fmt.Println()
}

// PrintLoanDetail prints per-loan debt service for each year
func PrintLoanDetail(records []AnnualRecord) {
	fmt.Println("Loan Detail:")
	fmt.Printf("%-5s %-28s %7s %12s %11s %11s %13s\n",
		"Year", "Loan", "Rate", "Payment/mo", "Interest", "Principal", "Balance")
	fmt.Println(strings.Repeat("─", 92))
	for _, r := range records {
		for _, l := range r.Loans {
			if !l.Active {
				continue
			}
			fmt.Printf("%-5d %-28s %6.2f%% %12s %11s %11s %13s\n",
				r.Year, truncate(l.Name, 28), l.Rate,
				FormatYenFull(l.MonthlyPayment), FormatYen(l.Interest), FormatYen(l.Principal),
				FormatYenFull(l.Balance))
		}
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
