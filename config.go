package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"
)

//go:embed default-input.yaml
var defaultInputYAML string

// PropertyConfig describes the building. Only structure and building age feed the engine.
type PropertyConfig struct {
	Address          string    `yaml:"address,omitempty" json:"address,omitempty"`
	Structure        Structure `yaml:"structure" json:"structure"`
	BuildingAge      int       `yaml:"building_age" json:"building_age"` // Years, used properties only
	LandAreaM2       float64   `yaml:"land_area_m2,omitempty" json:"land_area_m2,omitempty"`
	TotalFloorAreaM2 float64   `yaml:"total_floor_area_m2,omitempty" json:"total_floor_area_m2,omitempty"`
	TotalUnits       int       `yaml:"total_units,omitempty" json:"total_units,omitempty"`
}

// BudgetConfig holds acquisition and construction costs in man-yen (10,000 yen)
type BudgetConfig struct {
	LandPrice            float64 `yaml:"land_price" json:"land_price"`
	DemolitionCost       float64 `yaml:"demolition_cost" json:"demolition_cost"`
	BuildingWorksCost    float64 `yaml:"building_works_cost" json:"building_works_cost"` // Depreciable building cost
	StampDuty            float64 `yaml:"stamp_duty" json:"stamp_duty"`
	RegistrationTax      float64 `yaml:"registration_tax" json:"registration_tax"`
	AcquisitionTax       float64 `yaml:"acquisition_tax" json:"acquisition_tax"`
	FireInsurancePrepaid float64 `yaml:"fire_insurance_prepaid" json:"fire_insurance_prepaid"`
	WaterContribution    float64 `yaml:"water_contribution" json:"water_contribution"`
	BrokerageFee         float64 `yaml:"brokerage_fee" json:"brokerage_fee"`
	OtherInitialCost     float64 `yaml:"other_initial_cost" json:"other_initial_cost"`
	ConstructionInterest float64 `yaml:"construction_interest" json:"construction_interest"`
}

// Total returns the total project budget in man-yen
func (b BudgetConfig) Total() float64 {
	return b.LandPrice + b.DemolitionCost + b.BuildingWorksCost +
		b.StampDuty + b.RegistrationTax + b.AcquisitionTax +
		b.FireInsurancePrepaid + b.WaterContribution + b.BrokerageFee +
		b.OtherInitialCost + b.ConstructionInterest
}

// LoanConfig is a single amortizing loan. Amount is in man-yen.
type LoanConfig struct {
	Name     string  `yaml:"name" json:"name"`
	Amount   float64 `yaml:"amount" json:"amount"`
	Rate     float64 `yaml:"rate" json:"rate"`         // Annual nominal rate in percent (1.8 = 1.8%)
	Duration int     `yaml:"duration" json:"duration"` // Term in years
}

// FundingConfig holds the capital stack in man-yen
type FundingConfig struct {
	OwnCapital        float64      `yaml:"own_capital" json:"own_capital"`
	Loans             []LoanConfig `yaml:"loans" json:"loans"`
	CooperationMoney  float64      `yaml:"cooperation_money" json:"cooperation_money"`     // Construction cooperation money, not debt-serviced
	SecurityDepositIn float64      `yaml:"security_deposit_in" json:"security_deposit_in"` // Deposits received
}

// TotalLoans returns the sum of loan principals in man-yen
func (f FundingConfig) TotalLoans() float64 {
	total := 0.0
	for _, l := range f.Loans {
		total += l.Amount
	}
	return total
}

// Total returns equity plus all inflows in man-yen
func (f FundingConfig) Total() float64 {
	return f.OwnCapital + f.TotalLoans() + f.CooperationMoney + f.SecurityDepositIn
}

// RoomType is one unit type in the rent roll. Amounts are monthly yen.
type RoomType struct {
	Name      string  `yaml:"name" json:"name"`
	Count     int     `yaml:"count" json:"count"`
	AreaM2    float64 `yaml:"area_m2" json:"area_m2"`
	Rent      float64 `yaml:"rent" json:"rent"`
	CommonFee float64 `yaml:"common_fee" json:"common_fee"`
}

// RentRollConfig holds the income side of the pro-forma
type RentRollConfig struct {
	RoomTypes    []RoomType `yaml:"room_types" json:"room_types"`
	ParkingCount int        `yaml:"parking_count" json:"parking_count"`
	ParkingFee   float64    `yaml:"parking_fee" json:"parking_fee"`     // Yen/month per space
	OtherRevenue float64    `yaml:"other_revenue" json:"other_revenue"` // Yen/month
	SolarRevenue float64    `yaml:"solar_revenue" json:"solar_revenue"` // Yen/month
	// Expected occupancy in percent. 0 means not set (5% vacancy assumed).
	OccupancyRate float64 `yaml:"occupancy_rate" json:"occupancy_rate"`

	// Move-in terms in months of rent. Informational, not used by the annual projection.
	SecurityDepositMonths float64 `yaml:"security_deposit_months" json:"security_deposit_months"`
	KeyMoneyMonths        float64 `yaml:"key_money_months" json:"key_money_months"`
	RenewalFeeMonths      float64 `yaml:"renewal_fee_months" json:"renewal_fee_months"`
}

// MonthlyRent returns rent plus common fees for a fully let building
func (r RentRollConfig) MonthlyRent() float64 {
	total := 0.0
	for _, rt := range r.RoomTypes {
		total += (rt.Rent + rt.CommonFee) * float64(rt.Count)
	}
	return total
}

// PotentialGrossIncome returns annual income at 100% occupancy in yen
func (r RentRollConfig) PotentialGrossIncome() float64 {
	monthly := r.MonthlyRent() + float64(r.ParkingCount)*r.ParkingFee + r.OtherRevenue + r.SolarRevenue
	return monthly * 12
}

// TotalUnits returns the number of rentable rooms
func (r RentRollConfig) TotalUnits() int {
	n := 0
	for _, rt := range r.RoomTypes {
		n += rt.Count
	}
	return n
}

// ExpensesConfig holds operating expenses in yen
type ExpensesConfig struct {
	ManagementFeeMode  ManagementFeeMode `yaml:"management_fee_mode" json:"management_fee_mode"`
	ManagementFeeRatio float64           `yaml:"management_fee_ratio" json:"management_fee_ratio"` // Percent of EGI
	ManagementFeeFixed float64           `yaml:"management_fee_fixed" json:"management_fee_fixed"` // Yen/month

	MaintenanceReserve  float64 `yaml:"maintenance_reserve" json:"maintenance_reserve"`   // Yen/month
	BuildingMaintenance float64 `yaml:"building_maintenance" json:"building_maintenance"` // Yen/month

	FixedAssetTaxLand       float64 `yaml:"fixed_asset_tax_land" json:"fixed_asset_tax_land"` // Annual
	CityPlanningTaxLand     float64 `yaml:"city_planning_tax_land" json:"city_planning_tax_land"`
	FixedAssetTaxBuilding   float64 `yaml:"fixed_asset_tax_building" json:"fixed_asset_tax_building"`
	CityPlanningTaxBuilding float64 `yaml:"city_planning_tax_building" json:"city_planning_tax_building"`

	FireInsuranceAnnual float64 `yaml:"fire_insurance_annual" json:"fire_insurance_annual"`
	OtherExpenses       float64 `yaml:"other_expenses" json:"other_expenses"` // Annual
}

// FixedAnnual returns annual OPEX excluding the management fee
func (e ExpensesConfig) FixedAnnual() float64 {
	return (e.MaintenanceReserve+e.BuildingMaintenance)*12 +
		e.FixedAssetTaxLand + e.CityPlanningTaxLand +
		e.FixedAssetTaxBuilding + e.CityPlanningTaxBuilding +
		e.FireInsuranceAnnual + e.OtherExpenses
}

// ManagementFee returns the annual management fee for a given effective gross income
func (e ExpensesConfig) ManagementFee(effectiveIncome float64) float64 {
	if e.ManagementFeeMode == ManagementFeeFixed {
		return e.ManagementFeeFixed * 12
	}
	return effectiveIncome * (e.ManagementFeeRatio / 100)
}

// AdvancedSettings holds projection assumptions. Pointer fields distinguish
// "not set" from an explicit zero and are always non-nil after Normalize.
type AdvancedSettings struct {
	RentDeclineRate  *float64 `yaml:"rent_decline_rate,omitempty" json:"rent_decline_rate,omitempty"` // % per year
	VacancyRiseRate  *float64 `yaml:"vacancy_rise_rate,omitempty" json:"vacancy_rise_rate,omitempty"` // Percentage points per year
	InterestRateRise float64  `yaml:"interest_rate_rise" json:"interest_rate_rise"`                   // Percentage points per year, cumulative
	TaxMode          TaxMode  `yaml:"tax_mode" json:"tax_mode"`                                       // individual or corporate
	SmallBusiness    *bool    `yaml:"small_business,omitempty" json:"small_business,omitempty"`       // Corporate reduced rate applies
	OtherIncome      float64  `yaml:"other_income" json:"other_income"`                               // Yen/year, individual bracket only
	EquipmentRatio   *float64 `yaml:"equipment_ratio,omitempty" json:"equipment_ratio,omitempty"`     // 0-1 share of building cost
	ExitCapRate      *float64 `yaml:"exit_cap_rate,omitempty" json:"exit_cap_rate,omitempty"`         // %
	DiscountRate     *float64 `yaml:"discount_rate,omitempty" json:"discount_rate,omitempty"`         // % used for NPV
	SaleYears        []int    `yaml:"sale_years,omitempty" json:"sale_years,omitempty"`               // Exit table candidates
}

// Defaults applied by Normalize
const (
	DefaultRentDeclineRate = 1.0
	DefaultVacancyRiseRate = 0.5
	DefaultEquipmentRatio  = 0.2
	DefaultExitCapRate     = 6.0
	DefaultDiscountRate    = 5.0
	DefaultVacancyRate     = 5.0 // Used when occupancy is not set
)

// DefaultSaleYears are the exit table candidates when none are configured
var DefaultSaleYears = []int{5, 10, 15, 20, 25, 30}

// SimulationInput is the complete, serialisable description of one pro-forma
type SimulationInput struct {
	Title            string           `yaml:"title" json:"title"`
	Mode             SimulationMode   `yaml:"mode" json:"mode"`
	Property         PropertyConfig   `yaml:"property" json:"property"`
	Budget           BudgetConfig     `yaml:"budget" json:"budget"`
	Funding          FundingConfig    `yaml:"funding" json:"funding"`
	RentRoll         RentRollConfig   `yaml:"rent_roll" json:"rent_roll"`
	Expenses         ExpensesConfig   `yaml:"expenses" json:"expenses"`
	AdvancedSettings AdvancedSettings `yaml:"advanced_settings" json:"advanced_settings"`
	TaxRates         *TaxRates        `yaml:"tax_rates,omitempty" json:"tax_rates,omitempty"`
}

// Clone returns a deep copy that shares no slices or pointers with the original
func (in *SimulationInput) Clone() *SimulationInput {
	out := *in
	out.Funding.Loans = append([]LoanConfig(nil), in.Funding.Loans...)
	out.RentRoll.RoomTypes = append([]RoomType(nil), in.RentRoll.RoomTypes...)

	a := &out.AdvancedSettings
	src := in.AdvancedSettings
	if src.RentDeclineRate != nil {
		a.RentDeclineRate = floatPtr(*src.RentDeclineRate)
	}
	if src.VacancyRiseRate != nil {
		a.VacancyRiseRate = floatPtr(*src.VacancyRiseRate)
	}
	if src.SmallBusiness != nil {
		a.SmallBusiness = boolPtr(*src.SmallBusiness)
	}
	if src.EquipmentRatio != nil {
		a.EquipmentRatio = floatPtr(*src.EquipmentRatio)
	}
	if src.ExitCapRate != nil {
		a.ExitCapRate = floatPtr(*src.ExitCapRate)
	}
	if src.DiscountRate != nil {
		a.DiscountRate = floatPtr(*src.DiscountRate)
	}
	a.SaleYears = append([]int(nil), src.SaleYears...)

	if in.TaxRates != nil {
		rates := in.TaxRates.Clone()
		out.TaxRates = &rates
	}
	return &out
}

// Normalize returns a copy with every optional setting resolved to its default.
// It is idempotent; the engine and analytics only ever see normalized input.
func (in *SimulationInput) Normalize() *SimulationInput {
	out := in.Clone()

	if out.Mode == "" {
		out.Mode = ModeLandNew
	}
	if out.Property.Structure == "" {
		out.Property.Structure = StructureRC
	}
	if out.Property.BuildingAge < 0 {
		out.Property.BuildingAge = 0
	}
	if out.Expenses.ManagementFeeMode == "" {
		out.Expenses.ManagementFeeMode = ManagementFeeRatio
	}

	a := &out.AdvancedSettings
	if a.RentDeclineRate == nil {
		a.RentDeclineRate = floatPtr(DefaultRentDeclineRate)
	}
	if a.VacancyRiseRate == nil {
		a.VacancyRiseRate = floatPtr(DefaultVacancyRiseRate)
	}
	if a.TaxMode == "" {
		a.TaxMode = TaxModeIndividual
	}
	if a.SmallBusiness == nil {
		a.SmallBusiness = boolPtr(true)
	}
	if a.EquipmentRatio == nil {
		a.EquipmentRatio = floatPtr(DefaultEquipmentRatio)
	}
	if a.ExitCapRate == nil {
		a.ExitCapRate = floatPtr(DefaultExitCapRate)
	}
	if a.DiscountRate == nil {
		a.DiscountRate = floatPtr(DefaultDiscountRate)
	}
	if len(a.SaleYears) == 0 {
		a.SaleYears = append([]int(nil), DefaultSaleYears...)
	}

	if out.TaxRates == nil {
		rates := DefaultTaxRates()
		out.TaxRates = &rates
	}
	return out
}

// BaseVacancyRate returns the year-1 vacancy in percent
func (in *SimulationInput) BaseVacancyRate() float64 {
	if in.RentRoll.OccupancyRate == 0 {
		return DefaultVacancyRate
	}
	return 100 - in.RentRoll.OccupancyRate
}

// Equity returns the owner's cash contribution in yen
func (in *SimulationInput) Equity() float64 {
	return ManYenToYen(in.Funding.OwnCapital)
}

// BuildingCost returns the depreciable building cost in yen
func (in *SimulationInput) BuildingCost() float64 {
	return ManYenToYen(in.Budget.BuildingWorksCost)
}

// LandPrice returns the land price in yen
func (in *SimulationInput) LandPrice() float64 {
	return ManYenToYen(in.Budget.LandPrice)
}

// TotalBudget returns the total project cost in yen
func (in *SimulationInput) TotalBudget() float64 {
	return ManYenToYen(in.Budget.Total())
}

// Depreciation returns the depreciation schedule for the input's building
func (in *SimulationInput) Depreciation() DepreciationInfo {
	ratio := DefaultEquipmentRatio
	if in.AdvancedSettings.EquipmentRatio != nil {
		ratio = *in.AdvancedSettings.EquipmentRatio
	}
	return CalculateDepreciation(in.Property.Structure, in.BuildingCost(), ratio,
		in.Mode.IsUsed(), in.Property.BuildingAge)
}

// LoadInput loads a simulation input from a YAML, JSON or HJSON file
func LoadInput(filename string) (*SimulationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	input, err := ParseInput(data, formatForFile(filename))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return input, nil
}

// LoadDefaultInput returns the embedded demo project
func LoadDefaultInput() (*SimulationInput, error) {
	return ParseInput([]byte(defaultInputYAML), "yaml")
}

// ParseInput decodes an input document. JSON is parsed as HJSON so comments
// and trailing commas in hand-edited files are accepted.
func ParseInput(data []byte, format string) (*SimulationInput, error) {
	var input SimulationInput
	switch format {
	case "json", "hjson":
		if err := hjson.Unmarshal(data, &input); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &input); err != nil {
			return nil, err
		}
	}
	return &input, nil
}

// SaveInput writes an input to a file. The format follows the file extension.
func SaveInput(input *SimulationInput, filename string) error {
	var data []byte
	var err error

	switch formatForFile(filename) {
	case "json", "hjson":
		data, err = json.MarshalIndent(input, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		body, err := yaml.Marshal(input)
		if err != nil {
			return err
		}
		header := `# Real-estate pro-forma input
# Budget and funding amounts are in man-yen (10,000 yen).
# Rent roll and expense amounts are in yen.
# Rates are percentages (1.8 = 1.8%) except equipment_ratio (0-1).

`
		data = append([]byte(header), body...)
	}

	return os.WriteFile(filename, data, 0644)
}

func formatForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "json"
	case ".hjson":
		return "hjson"
	default:
		return "yaml"
	}
}
