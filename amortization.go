package main

import "math"

// CalculateMonthlyPayment returns the level monthly payment for a fully
// amortizing loan, rounded to the nearest yen.
// annualRatePercent is a percentage (1.8 = 1.8%).
func CalculateMonthlyPayment(principal, annualRatePercent float64, termYears int) float64 {
	if termYears <= 0 || principal <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	if annualRatePercent == 0 {
		return math.Round(principal / n)
	}

	r := annualRatePercent / 100 / 12
	factor := math.Pow(1+r, n)
	return math.Round(principal * r * factor / (factor - 1))
}

// LoanYear is the outcome of twelve monthly payments
type LoanYear struct {
	Interest       float64
	Principal      float64
	ClosingBalance float64
}

// SimulateLoanYear runs twelve monthly payments against a balance.
// The principal part is clamped on the payoff month so the balance never
// goes negative; months after payoff contribute nothing.
func SimulateLoanYear(openingBalance, monthlyPayment, monthlyRate float64) LoanYear {
	result := LoanYear{ClosingBalance: openingBalance}
	balance := openingBalance

	for month := 0; month < 12; month++ {
		if balance <= 0 {
			balance = 0
			break
		}
		interest := balance * monthlyRate
		principal := monthlyPayment - interest
		if principal > balance {
			principal = balance
		}
		balance -= principal

		result.Interest += interest
		result.Principal += principal
	}

	result.ClosingBalance = balance
	return result
}

// loanState is the per-loan state carried between projection years
type loanState struct {
	Name     string
	BaseRate float64 // Annual rate % in year 1
	Duration int
	Balance  float64
}

func newLoanStates(loans []LoanConfig) []loanState {
	states := make([]loanState, len(loans))
	for i, l := range loans {
		states[i] = loanState{
			Name:     l.Name,
			BaseRate: l.Rate,
			Duration: l.Duration,
			Balance:  ManYenToYen(l.Amount),
		}
	}
	return states
}

// debtServiceYear aggregates all loans for one year
type debtServiceYear struct {
	Interest    float64
	Principal   float64
	DebtService float64
	Balance     float64
	Loans       []LoanYearResult
}

// stepLoans advances every loan by one year and returns the year's debt
// service together with a fresh state slice. The input slice is not modified.
//
// Each active loan is re-amortized on its current balance over the remaining
// term at base + rateRise×(year−1). In the last scheduled year any rounding
// residual is settled with the final payment; after the term the balance is 0
// and the loan contributes nothing.
func stepLoans(states []loanState, year int, rateRise float64) (debtServiceYear, []loanState) {
	next := make([]loanState, len(states))
	out := debtServiceYear{Loans: make([]LoanYearResult, len(states))}

	for i, s := range states {
		next[i] = s
		res := LoanYearResult{Name: s.Name}

		if year > s.Duration {
			next[i].Balance = 0
			out.Loans[i] = res
			continue
		}

		rate := s.BaseRate + rateRise*float64(year-1)
		remaining := s.Duration - year + 1
		payment := CalculateMonthlyPayment(s.Balance, rate, remaining)
		ly := SimulateLoanYear(s.Balance, payment, rate/100/12)

		if year == s.Duration && ly.ClosingBalance > 0 {
			ly.Principal += ly.ClosingBalance
			ly.ClosingBalance = 0
		}

		res.Rate = rate
		res.MonthlyPayment = payment
		res.Interest = ly.Interest
		res.Principal = ly.Principal
		res.DebtService = ly.Interest + ly.Principal
		res.Balance = ly.ClosingBalance
		res.Active = true
		next[i].Balance = ly.ClosingBalance

		out.Interest += res.Interest
		out.Principal += res.Principal
		out.DebtService += res.DebtService
		out.Balance += res.Balance
		out.Loans[i] = res
	}

	return out, next
}
