package main

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Simulation Tests
//
// A hand-checkable project:
//   potential gross income ¥3,000,000/yr, 95% occupancy, no rent decline,
//   no vacancy rise, fixed OPEX ¥500,000/yr, no building cost (no depreciation),
//   one ¥20M loan at 2% over 30 years, ¥5M equity.
// Year 1 must give vacancy loss ¥150,000, EGI ¥2,850,000, NOI ¥2,350,000,
// BTCF = NOI − 12 × monthly payment.

func assertCloseTo(t *testing.T, expected, actual, tolerance float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > tolerance {
		t.Errorf("%s: expected %.6f, got %.6f (diff: %.6f)", description, expected, actual, actual-expected)
	}
}

func simpleTestInput() *SimulationInput {
	return &SimulationInput{
		Title: "Simple test project",
		Mode:  ModeLandNew,
		Property: PropertyConfig{
			Structure:  StructureRC,
			LandAreaM2: 100,
		},
		Budget: BudgetConfig{
			LandPrice: 2500,
		},
		Funding: FundingConfig{
			OwnCapital: 500,
			Loans: []LoanConfig{
				{Name: "Bank", Amount: 2000, Rate: 2.0, Duration: 30},
			},
		},
		RentRoll: RentRollConfig{
			RoomTypes: []RoomType{
				{Name: "Whole building", Count: 1, Rent: 250_000},
			},
			OccupancyRate: 95,
		},
		Expenses: ExpensesConfig{
			ManagementFeeMode: ManagementFeeRatio,
			OtherExpenses:     500_000,
		},
		AdvancedSettings: AdvancedSettings{
			RentDeclineRate: floatPtr(0),
			VacancyRiseRate: floatPtr(0),
			TaxMode:         TaxModeIndividual,
		},
	}
}

func mustLoadDemo(t *testing.T) *SimulationInput {
	t.Helper()
	in, err := LoadDefaultInput()
	if err != nil {
		t.Fatalf("loading demo input: %v", err)
	}
	return in
}

// =============================================================================
// End-to-End Year 1
// =============================================================================

func TestSimulation_YearOneHandChecked(t *testing.T) {
	records := RunProjection(simpleTestInput(), 35)
	if len(records) != 35 {
		t.Fatalf("expected 35 records, got %d", len(records))
	}
	r := records[0]

	assertCloseTo(t, 3_000_000, r.GrossIncome, 1e-6, "gross income")
	assertCloseTo(t, 5, r.VacancyRate, 1e-9, "vacancy rate")
	assertCloseTo(t, 150_000, r.VacancyLoss, 1e-6, "vacancy loss")
	assertCloseTo(t, 2_850_000, r.EffectiveGrossIncome, 1e-6, "EGI")
	assertCloseTo(t, 500_000, r.Opex, 1e-6, "OPEX")
	assertCloseTo(t, 2_350_000, r.NOI, 1e-6, "NOI")

	payment := referencePMT(20_000_000, 2.0, 30)
	assertCloseTo(t, 12*payment, r.DebtService, 1e-6, "annual debt service")
	assertCloseTo(t, 2_350_000-12*payment, r.BTCF, 1e-6, "BTCF")

	if r.Depreciation != 0 {
		t.Errorf("depreciation: expected 0 with no building cost, got %.2f", r.Depreciation)
	}
	assertCloseTo(t, r.NOI-r.Interest, r.TaxableIncome, 1e-6, "taxable income")
	if r.Tax != CalculateIndividualTax(r.TaxableIncome, 0) {
		t.Errorf("tax: expected %.0f, got %.0f", CalculateIndividualTax(r.TaxableIncome, 0), r.Tax)
	}
	assertCloseTo(t, r.BTCF-r.Tax, r.ATCF, 1e-6, "ATCF")
	assertCloseTo(t, -5_000_000+r.ATCF, r.CumulativeCashFlow, 1e-6, "cumulative cash flow")

	assertCloseTo(t, r.NOI/r.DebtService, r.DSCR, 1e-12, "DSCR")
	assertCloseTo(t, r.BTCF/5_000_000, r.CCR, 1e-12, "CCR")
}

func TestSimulation_FlatAssumptionsKeepIncomeFlat(t *testing.T) {
	records := RunProjection(simpleTestInput(), 35)
	for _, r := range records {
		assertCloseTo(t, 2_350_000, r.NOI, 1e-6, "NOI")
	}
}

func TestSimulation_RentDeclineCompounds(t *testing.T) {
	in := simpleTestInput()
	in.AdvancedSettings.RentDeclineRate = floatPtr(2)
	records := RunProjection(in, 10)

	for _, r := range records {
		want := 3_000_000 * math.Pow(0.98, float64(r.Year-1))
		assertCloseTo(t, want, r.GrossIncome, 1e-6, "gross income")
	}
}

func TestSimulation_VacancyRiseCapsAt100(t *testing.T) {
	in := simpleTestInput()
	in.AdvancedSettings.VacancyRiseRate = floatPtr(10)
	records := RunProjection(in, 20)

	assertCloseTo(t, 15, records[1].VacancyRate, 1e-9, "year 2 vacancy")
	for _, r := range records {
		if r.VacancyRate > 100 {
			t.Errorf("year %d: vacancy %.2f%% exceeds 100%%", r.Year, r.VacancyRate)
		}
		if r.Year >= 11 && r.EffectiveGrossIncome != 0 {
			t.Errorf("year %d: fully vacant building should have no EGI, got %.2f", r.Year, r.EffectiveGrossIncome)
		}
	}
}

func TestSimulation_UnsetOccupancyUsesFivePercentVacancy(t *testing.T) {
	in := simpleTestInput()
	in.RentRoll.OccupancyRate = 0
	records := RunProjection(in, 1)
	assertCloseTo(t, 5, records[0].VacancyRate, 1e-9, "vacancy rate")
}

func TestSimulation_ManagementFeeModes(t *testing.T) {
	in := simpleTestInput()
	in.Expenses.ManagementFeeRatio = 5
	records := RunProjection(in, 1)
	assertCloseTo(t, 142_500, records[0].ManagementFee, 1e-6, "ratio fee on EGI")

	in.Expenses.ManagementFeeMode = ManagementFeeFixed
	in.Expenses.ManagementFeeFixed = 20_000
	records = RunProjection(in, 1)
	assertCloseTo(t, 240_000, records[0].ManagementFee, 1e-6, "fixed monthly fee")
}

// =============================================================================
// Debt
// =============================================================================

func TestSimulation_NoLoansMeansInfiniteDSCR(t *testing.T) {
	in := simpleTestInput()
	in.Funding.Loans = nil
	records := RunProjection(in, 5)

	for _, r := range records {
		if !math.IsInf(r.DSCR, 1) {
			t.Errorf("year %d: expected +Inf DSCR without debt, got %f", r.Year, r.DSCR)
		}
		if r.DebtService != 0 || r.LoanBalance != 0 {
			t.Errorf("year %d: expected no debt, got ADS %.2f balance %.2f", r.Year, r.DebtService, r.LoanBalance)
		}
		assertCloseTo(t, r.NOI, r.BTCF, 1e-9, "BTCF equals NOI")
	}
}

func TestSimulation_LoanPaidOffWithinHorizon(t *testing.T) {
	in := simpleTestInput()
	in.Funding.Loans[0].Duration = 15
	records := RunProjection(in, 35)

	if records[14].LoanBalance != 0 {
		t.Errorf("year 15: expected zero balance, got %.6f", records[14].LoanBalance)
	}
	for _, r := range records[15:] {
		if r.DebtService != 0 {
			t.Errorf("year %d: expected no debt service after payoff, got %.2f", r.Year, r.DebtService)
		}
		if !math.IsInf(r.DSCR, 1) {
			t.Errorf("year %d: expected +Inf DSCR after payoff, got %f", r.Year, r.DSCR)
		}
	}
}

func TestSimulation_ZeroEquityLeavesCCRZero(t *testing.T) {
	in := simpleTestInput()
	in.Funding.OwnCapital = 0
	records := RunProjection(in, 3)
	for _, r := range records {
		if r.CCR != 0 {
			t.Errorf("year %d: expected CCR 0 with no equity, got %f", r.Year, r.CCR)
		}
	}
}

// =============================================================================
// Horizon and Determinism
// =============================================================================

func TestSimulation_DefaultHorizon(t *testing.T) {
	for _, years := range []int{0, -3} {
		if got := len(RunProjection(simpleTestInput(), years)); got != DefaultProjectionYears {
			t.Errorf("years=%d: expected %d records, got %d", years, DefaultProjectionYears, got)
		}
	}
	if got := len(RunProjection(simpleTestInput(), 50)); got != 50 {
		t.Errorf("expected 50 records, got %d", got)
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	demo := mustLoadDemo(t)
	first := RunProjection(demo, 35)
	second := RunProjection(demo, 35)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("projection differs between runs (-first +second):\n%s", diff)
	}
}

func TestSimulation_DoesNotModifyInput(t *testing.T) {
	demo := mustLoadDemo(t)
	before := demo.Clone()

	RunProjection(demo, 35)
	CalculateInvestmentMetrics(demo, RunProjection(demo, 35))
	GenerateScenarios(demo)

	if diff := cmp.Diff(before, demo); diff != "" {
		t.Errorf("input was modified (-before +after):\n%s", diff)
	}
}

func TestSimulation_RecordForYear(t *testing.T) {
	records := RunProjection(simpleTestInput(), 10)

	if r, ok := RecordForYear(records, 10); !ok || r.Year != 10 {
		t.Errorf("year 10: expected record, got ok=%v year=%d", ok, r.Year)
	}
	for _, y := range []int{0, 11, -1} {
		if _, ok := RecordForYear(records, y); ok {
			t.Errorf("year %d: expected no record", y)
		}
	}
}
