package main

import "math"

// Registration and acquisition tax rates used by the initial-cost estimate
const (
	regRateLandTransfer      = 0.015
	regRateBuildingPreserve  = 0.004
	acquisitionRate          = 0.03
	residentialLandReduction = 12_000_000
	landTaxValueRatio        = 0.7 // Assessed value relative to market price
	buildingTaxValueRatio    = 0.5
	brokerageFloor           = 4_000_000
	estimatedStampDutyManYen = 1
)

// InitialCostEstimate holds estimated one-time costs in man-yen
type InitialCostEstimate struct {
	RegistrationTax float64 `json:"registration_tax"`
	AcquisitionTax  float64 `json:"acquisition_tax"`
	BrokerageFee    float64 `json:"brokerage_fee"`
	StampDuty       float64 `json:"stamp_duty"`
}

// EstimateInitialCosts approximates taxes and brokerage from the land price
// and building cost. Assessed values are taken as a fixed share of market
// price; new builds register preservation of the building, used purchases a
// transfer. Brokerage is charged on the land only for new builds.
func EstimateInitialCosts(mode SimulationMode, budget BudgetConfig) InitialCostEstimate {
	landPrice := ManYenToYen(budget.LandPrice)
	buildingCost := ManYenToYen(budget.BuildingWorksCost)
	isNew := !mode.IsUsed()

	landValue := landPrice * landTaxValueRatio
	buildingValue := buildingCost * buildingTaxValueRatio

	regLand := landValue * regRateLandTransfer
	regBuilding := buildingValue * regRateLandTransfer
	if isNew {
		regBuilding = buildingValue * regRateBuildingPreserve
	}

	reduction := 0.0
	if isNew {
		reduction = residentialLandReduction
	}
	acquisition := (landValue-reduction)*acquisitionRate + buildingValue*acquisitionRate

	brokerageBase := landPrice + buildingCost
	if isNew {
		brokerageBase = landPrice
	}
	brokerage := 0.0
	if brokerageBase > brokerageFloor {
		brokerage = (brokerageBase*0.03 + 60_000) * 1.1
	}

	return InitialCostEstimate{
		RegistrationTax: YenToManYen(regLand + regBuilding),
		AcquisitionTax:  math.Max(0, YenToManYen(acquisition)),
		BrokerageFee:    YenToManYen(brokerage),
		StampDuty:       estimatedStampDutyManYen,
	}
}

// ApplyTo copies the estimate into a budget
func (e InitialCostEstimate) ApplyTo(b *BudgetConfig) {
	b.RegistrationTax = e.RegistrationTax
	b.AcquisitionTax = e.AcquisitionTax
	b.BrokerageFee = e.BrokerageFee
	b.StampDuty = e.StampDuty
}

// FundingSummary compares the capital stack with the budget, in man-yen
type FundingSummary struct {
	TotalBudget  float64 `json:"total_budget"`
	OwnCapital   float64 `json:"own_capital"`
	TotalLoans   float64 `json:"total_loans"`
	OtherInflows float64 `json:"other_inflows"` // Cooperation money and deposits received
	TotalFunding float64 `json:"total_funding"`
	Gap          float64 `json:"gap"` // Positive when funding falls short of the budget
}

// SummarizeFunding totals the budget against the funding plan
func SummarizeFunding(in *SimulationInput) FundingSummary {
	s := FundingSummary{
		TotalBudget:  in.Budget.Total(),
		OwnCapital:   in.Funding.OwnCapital,
		TotalLoans:   in.Funding.TotalLoans(),
		OtherInflows: in.Funding.CooperationMoney + in.Funding.SecurityDepositIn,
		TotalFunding: in.Funding.Total(),
	}
	s.Gap = s.TotalBudget - s.TotalFunding
	return s
}
