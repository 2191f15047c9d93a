package main

// SimulationMode selects between building on owned/purchased land and buying
// an existing income property
type SimulationMode string

const (
	ModeLandNew        SimulationMode = "land_new"
	ModeInvestmentUsed SimulationMode = "investment_used"
)

// String returns a human-readable mode name
func (m SimulationMode) String() string {
	switch m {
	case ModeLandNew:
		return "New construction on land"
	case ModeInvestmentUsed:
		return "Existing income property"
	default:
		return string(m)
	}
}

// IsUsed reports whether the used-property depreciation rules apply
func (m SimulationMode) IsUsed() bool {
	return m == ModeInvestmentUsed
}

// Structure is the building's construction type
type Structure string

const (
	StructureRC         Structure = "RC"         // Reinforced concrete
	StructureSteel      Structure = "S"          // Heavy steel frame
	StructureWood       Structure = "Wood"       // Timber frame
	StructureSteelLight Structure = "SteelLight" // Light-gauge steel
)

// String returns a human-readable structure name
func (s Structure) String() string {
	switch s {
	case StructureRC:
		return "Reinforced concrete"
	case StructureSteel:
		return "Steel"
	case StructureWood:
		return "Wood"
	case StructureSteelLight:
		return "Light steel"
	default:
		return string(s)
	}
}

// TaxMode selects individual or corporate taxation of the property income
type TaxMode string

const (
	TaxModeIndividual TaxMode = "individual"
	TaxModeCorporate  TaxMode = "corporate"
)

// ManagementFeeMode selects how the property management fee is charged
type ManagementFeeMode string

const (
	ManagementFeeRatio ManagementFeeMode = "ratio" // Percentage of effective gross income
	ManagementFeeFixed ManagementFeeMode = "fixed" // Fixed monthly amount
)

// DefaultProjectionYears is the projection horizon used when none is given
const DefaultProjectionYears = 35

// LoanYearResult is one loan's debt service for one projected year
type LoanYearResult struct {
	Name           string  `json:"name"`
	Rate           float64 `json:"rate"`            // Effective annual rate % this year
	MonthlyPayment float64 `json:"monthly_payment"` // Re-amortized payment this year
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	DebtService    float64 `json:"debt_service"`
	Balance        float64 `json:"balance"` // Closing balance
	Active         bool    `json:"active"`  // False once the term has ended
}

// AnnualRecord is one year of the cash-flow projection. All amounts are yen.
type AnnualRecord struct {
	Year                 int     `json:"year"`
	GrossIncome          float64 `json:"gross_income"` // Potential gross income after rent decline
	VacancyRate          float64 `json:"vacancy_rate"` // Percent
	VacancyLoss          float64 `json:"vacancy_loss"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"`
	ManagementFee        float64 `json:"management_fee"`
	Opex                 float64 `json:"opex"`
	NOI                  float64 `json:"noi"`
	DebtService          float64 `json:"debt_service"`
	Interest             float64 `json:"interest"`
	Principal            float64 `json:"principal"`
	BTCF                 float64 `json:"btcf"`
	Depreciation         float64 `json:"depreciation"`
	TaxableIncome        float64 `json:"taxable_income"`
	Tax                  float64 `json:"tax"`
	ATCF                 float64 `json:"atcf"`
	LoanBalance          float64 `json:"loan_balance"`
	CumulativeCashFlow   float64 `json:"cumulative_cash_flow"`
	DSCR                 float64 `json:"dscr"` // +Inf when there is no debt service
	CCR                  float64 `json:"ccr"`

	Loans []LoanYearResult `json:"loans"`
}

// InvestmentMetrics summarises a projection
type InvestmentMetrics struct {
	IRR            *float64 `json:"irr"` // nil when undefined for the cash-flow shape
	NPV            float64  `json:"npv"`
	DiscountRate   float64  `json:"discount_rate"`
	PaybackYear    *int     `json:"payback_year"` // nil when beyond the horizon
	AverageDSCR    float64  `json:"average_dscr"`
	Year1DSCR      float64  `json:"year1_dscr"`
	Year1CCR       float64  `json:"year1_ccr"`
	BreakEvenRatio float64  `json:"break_even_ratio"`
	GrossYield     float64  `json:"gross_yield"` // Percent of total budget
	NetYield       float64  `json:"net_yield"`   // Percent of total budget
	Equity         float64  `json:"equity"`
	TotalBudget    float64  `json:"total_budget"` // Yen
}

// ExitAnalysis is the outcome of selling the property at the end of a year
type ExitAnalysis struct {
	SaleYear                int     `json:"sale_year"`
	SalePrice               float64 `json:"sale_price"`
	LoanBalance             float64 `json:"loan_balance"`
	Brokerage               float64 `json:"brokerage"`
	StampDuty               float64 `json:"stamp_duty"`
	OtherExpenses           float64 `json:"other_expenses"`
	SaleExpenses            float64 `json:"sale_expenses"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	BookValue               float64 `json:"book_value"`
	CapitalGain             float64 `json:"capital_gain"`
	CapitalGainsTax         float64 `json:"capital_gains_tax"`
	NetProceeds             float64 `json:"net_proceeds"`
	CumulativeATCF          float64 `json:"cumulative_atcf"`
	TotalReturn             float64 `json:"total_return"`
	TotalReturnRate         float64 `json:"total_return_rate"` // Fraction of equity
	AnnualizedReturn        float64 `json:"annualized_return"` // Fraction, e.g. 0.05
}

// ScenarioResult is a single preset run of the projection
type ScenarioResult struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	Color            string   `json:"color"`
	RentDeclineRate  float64  `json:"rent_decline_rate"`
	VacancyRiseRate  float64  `json:"vacancy_rise_rate"`
	InterestRateRise float64  `json:"interest_rate_rise"`
	Year1NOI         float64  `json:"year1_noi"`
	Year1BTCF        float64  `json:"year1_btcf"`
	Year1ATCF        float64  `json:"year1_atcf"`
	Year1DSCR        float64  `json:"year1_dscr"`
	IRR              *float64 `json:"irr"`
	PaybackYear      *int     `json:"payback_year"`
}

// SensitivityCell is one rent-decline × vacancy-rise combination
type SensitivityCell struct {
	RentDeclineRate float64  `json:"rent_decline_rate"`
	VacancyRiseRate float64  `json:"vacancy_rise_rate"`
	IRR             *float64 `json:"irr"`
	NOIYear10       float64  `json:"noi_year10"`
	BTCFYear10      float64  `json:"btcf_year10"`
}

// SensitivityMatrix holds Cells[vacancyIdx][rentIdx]
type SensitivityMatrix struct {
	RentDeclineValues []float64           `json:"rent_decline_values"`
	VacancyRiseValues []float64           `json:"vacancy_rise_values"`
	Cells             [][]SensitivityCell `json:"cells"`
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
