package main

import (
	"math"
)

// RunProjection produces the year-by-year cash-flow projection.
// years <= 0 uses DefaultProjectionYears. The input is normalized first and
// never modified, so the same input always yields the same records.
func RunProjection(input *SimulationInput, years int) []AnnualRecord {
	if years <= 0 {
		years = DefaultProjectionYears
	}
	in := input.Normalize()
	s := in.AdvancedSettings

	pgi := in.RentRoll.PotentialGrossIncome()
	baseVacancy := in.BaseVacancyRate()
	fixedOpex := in.Expenses.FixedAnnual()
	depreciation := in.Depreciation()
	equity := in.Equity()

	rentDecline := *s.RentDeclineRate
	vacancyRise := *s.VacancyRiseRate

	loans := newLoanStates(in.Funding.Loans)
	cumulative := -equity
	records := make([]AnnualRecord, 0, years)

	for year := 1; year <= years; year++ {
		r := AnnualRecord{Year: year}

		r.GrossIncome = pgi * math.Pow(1-rentDecline/100, float64(year-1))
		r.VacancyRate = math.Min(100, baseVacancy+vacancyRise*float64(year-1))
		r.VacancyLoss = r.GrossIncome * r.VacancyRate / 100
		r.EffectiveGrossIncome = r.GrossIncome - r.VacancyLoss

		r.ManagementFee = in.Expenses.ManagementFee(r.EffectiveGrossIncome)
		r.Opex = fixedOpex + r.ManagementFee
		r.NOI = r.EffectiveGrossIncome - r.Opex

		var ds debtServiceYear
		ds, loans = stepLoans(loans, year, s.InterestRateRise)
		r.DebtService = ds.DebtService
		r.Interest = ds.Interest
		r.Principal = ds.Principal
		r.LoanBalance = ds.Balance
		r.Loans = ds.Loans

		r.BTCF = r.NOI - r.DebtService

		r.Depreciation = depreciation.ForYear(year)
		r.TaxableIncome = r.NOI - r.Depreciation - r.Interest
		r.Tax = CalculateTax(in, r.TaxableIncome)
		r.ATCF = r.BTCF - r.Tax

		cumulative += r.ATCF
		r.CumulativeCashFlow = cumulative

		if r.DebtService > 0 {
			r.DSCR = r.NOI / r.DebtService
		} else {
			r.DSCR = math.Inf(1)
		}
		if equity > 0 {
			r.CCR = r.BTCF / equity
		}

		records = append(records, r)
	}

	return records
}

// RecordForYear returns the record for a 1-based year, or false if the
// projection does not reach it
func RecordForYear(records []AnnualRecord, year int) (AnnualRecord, bool) {
	if year < 1 || year > len(records) {
		return AnnualRecord{}, false
	}
	return records[year-1], true
}
