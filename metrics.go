package main

import (
	"math"
)

const (
	irrTolerance     = 1e-7
	irrMaxIterations = 100
	// DefaultIRRGuess is the Newton-Raphson starting rate
	DefaultIRRGuess = 0.10
)

// NPV discounts cashflows at rate; cashflows[0] is undiscounted
func NPV(cashflows []float64, rate float64) float64 {
	total := 0.0
	for t, cf := range cashflows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// IRR solves NPV(rate) = 0 by Newton-Raphson. It returns the best estimate
// after irrMaxIterations if not converged, and nil only when the derivative
// vanishes, meaning IRR is undefined for this cash-flow shape.
func IRR(cashflows []float64, guess float64) *float64 {
	rate := guess

	for i := 0; i < irrMaxIterations; i++ {
		npv := 0.0
		deriv := 0.0
		for t, cf := range cashflows {
			ft := float64(t)
			npv += cf / math.Pow(1+rate, ft)
			deriv -= ft * cf / math.Pow(1+rate, ft+1)
		}

		if math.Abs(npv) < irrTolerance {
			return floatPtr(rate)
		}
		if math.Abs(deriv) < irrTolerance {
			return nil
		}

		rate -= npv / deriv
		if rate <= -1 {
			rate = -0.9999999
		}
	}

	return floatPtr(rate)
}

// EquityCashFlows returns [-equity, atcf1, atcf2, ...]
func EquityCashFlows(equity float64, records []AnnualRecord) []float64 {
	flows := make([]float64, 0, len(records)+1)
	flows = append(flows, -equity)
	for _, r := range records {
		flows = append(flows, r.ATCF)
	}
	return flows
}

// PaybackYear returns the first year whose cumulative cash flow is
// non-negative, or nil if that happens beyond the projection
func PaybackYear(records []AnnualRecord) *int {
	for _, r := range records {
		if r.CumulativeCashFlow >= 0 {
			return intPtr(r.Year)
		}
	}
	return nil
}

// AverageDSCR averages DSCR over years with finite, positive coverage.
// Years without debt service are excluded.
func AverageDSCR(records []AnnualRecord) float64 {
	sum := 0.0
	n := 0
	for _, r := range records {
		if math.IsInf(r.DSCR, 0) || math.IsNaN(r.DSCR) || r.DSCR <= 0 {
			continue
		}
		sum += r.DSCR
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// BreakEvenRatio returns year-1 (OPEX + ADS) / gross income
func BreakEvenRatio(records []AnnualRecord) float64 {
	if len(records) == 0 || records[0].GrossIncome == 0 {
		return 0
	}
	r := records[0]
	return (r.Opex + r.DebtService) / r.GrossIncome
}

// GrossYield returns annual potential income as a percentage of investment
func GrossYield(annualIncome, totalInvestment float64) float64 {
	if totalInvestment == 0 {
		return 0
	}
	return annualIncome / totalInvestment * 100
}

// NetYield returns NOI as a percentage of investment
func NetYield(noi, totalInvestment float64) float64 {
	if totalInvestment == 0 {
		return 0
	}
	return noi / totalInvestment * 100
}

// CalculateInvestmentMetrics derives the headline metrics from a projection
func CalculateInvestmentMetrics(input *SimulationInput, records []AnnualRecord) InvestmentMetrics {
	in := input.Normalize()
	equity := in.Equity()
	flows := EquityCashFlows(equity, records)

	m := InvestmentMetrics{
		IRR:            IRR(flows, DefaultIRRGuess),
		DiscountRate:   *in.AdvancedSettings.DiscountRate,
		PaybackYear:    PaybackYear(records),
		AverageDSCR:    AverageDSCR(records),
		BreakEvenRatio: BreakEvenRatio(records),
		Equity:         equity,
		TotalBudget:    in.TotalBudget(),
	}
	m.NPV = NPV(flows, m.DiscountRate/100)

	if len(records) > 0 {
		first := records[0]
		m.Year1DSCR = first.DSCR
		m.Year1CCR = first.CCR
		m.GrossYield = GrossYield(in.RentRoll.PotentialGrossIncome(), m.TotalBudget)
		m.NetYield = NetYield(first.NOI, m.TotalBudget)
	}
	return m
}
