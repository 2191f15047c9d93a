package main

import (
	"math"
)

// SaleExpenses are the transaction costs of selling
type SaleExpenses struct {
	Brokerage float64 `json:"brokerage"`
	StampDuty float64 `json:"stamp_duty"`
	Other     float64 `json:"other"`
	Total     float64 `json:"total"`
}

// EstimateSalePrice capitalises NOI at capRatePercent
func EstimateSalePrice(noi, capRatePercent float64) float64 {
	if capRatePercent <= 0 {
		return 0
	}
	return math.Floor(noi / (capRatePercent / 100))
}

// stampDutyForPrice returns the contract stamp duty. Sales of 10M and below
// share the lowest tier.
func stampDutyForPrice(price float64) float64 {
	switch {
	case price > 100_000_000:
		return 60_000
	case price > 50_000_000:
		return 30_000
	default:
		return 10_000
	}
}

// CalculateSaleExpenses returns brokerage (3% + 60,000 plus 10% consumption tax) and stamp duty
func CalculateSaleExpenses(salePrice float64) SaleExpenses {
	e := SaleExpenses{
		Brokerage: math.Floor((salePrice*0.03 + 60_000) * 1.1),
		StampDuty: stampDutyForPrice(salePrice),
	}
	e.Total = e.Brokerage + e.StampDuty + e.Other
	return e
}

// CalculateCapitalGainsTaxWithRates taxes the gain over book value. Land is
// not depreciated; the building's book value never goes below zero.
func CalculateCapitalGainsTaxWithRates(salePrice, buildingCost, accumulatedDepreciation, saleExpenses float64,
	holdingYears int, landPrice float64, rates TaxRates) float64 {
	gain := capitalGain(salePrice, buildingCost, accumulatedDepreciation, saleExpenses, landPrice)
	if gain <= 0 {
		return 0
	}
	rate := rates.CapitalGainsShortRate
	if holdingYears > rates.LongTermYears {
		rate = rates.CapitalGainsLongRate
	}
	return math.Floor(gain * rate)
}

// CalculateCapitalGainsTax uses the default rates: 20.315% when held over
// five years, 39.63% otherwise
func CalculateCapitalGainsTax(salePrice, buildingCost, accumulatedDepreciation, saleExpenses float64,
	holdingYears int, landPrice float64) float64 {
	return CalculateCapitalGainsTaxWithRates(salePrice, buildingCost, accumulatedDepreciation, saleExpenses,
		holdingYears, landPrice, DefaultTaxRates())
}

func bookValue(buildingCost, accumulatedDepreciation, landPrice float64) float64 {
	return landPrice + math.Max(buildingCost-accumulatedDepreciation, 0)
}

func capitalGain(salePrice, buildingCost, accumulatedDepreciation, saleExpenses, landPrice float64) float64 {
	return salePrice - bookValue(buildingCost, accumulatedDepreciation, landPrice) - saleExpenses
}

// AnalyzeExit values a sale at the end of saleYear. A year outside the
// projection yields a zero result with only SaleYear set.
func AnalyzeExit(records []AnnualRecord, saleYear int, capRate, buildingCost, landPrice, equity float64,
	dep DepreciationInfo) ExitAnalysis {
	return analyzeExitWithRates(records, saleYear, capRate, buildingCost, landPrice, equity, dep, DefaultTaxRates())
}

func analyzeExitWithRates(records []AnnualRecord, saleYear int, capRate, buildingCost, landPrice, equity float64,
	dep DepreciationInfo, rates TaxRates) ExitAnalysis {
	result := ExitAnalysis{SaleYear: saleYear}

	rec, ok := RecordForYear(records, saleYear)
	if !ok {
		return result
	}

	result.SalePrice = EstimateSalePrice(rec.NOI, capRate)
	result.LoanBalance = rec.LoanBalance

	expenses := CalculateSaleExpenses(result.SalePrice)
	result.Brokerage = expenses.Brokerage
	result.StampDuty = expenses.StampDuty
	result.OtherExpenses = expenses.Other
	result.SaleExpenses = expenses.Total

	result.AccumulatedDepreciation = dep.Accumulated(saleYear)
	result.BookValue = bookValue(buildingCost, result.AccumulatedDepreciation, landPrice)
	result.CapitalGain = capitalGain(result.SalePrice, buildingCost, result.AccumulatedDepreciation,
		expenses.Total, landPrice)
	result.CapitalGainsTax = CalculateCapitalGainsTaxWithRates(result.SalePrice, buildingCost,
		result.AccumulatedDepreciation, expenses.Total, saleYear, landPrice, rates)

	result.NetProceeds = result.SalePrice - result.LoanBalance - expenses.Total - result.CapitalGainsTax

	for _, r := range records[:saleYear] {
		result.CumulativeATCF += r.ATCF
	}

	result.TotalReturn = result.NetProceeds + result.CumulativeATCF - equity
	if equity > 0 {
		result.TotalReturnRate = result.TotalReturn / equity
		finalValue := equity + result.TotalReturn
		if finalValue > 0 {
			result.AnnualizedReturn = math.Pow(finalValue/equity, 1/float64(saleYear)) - 1
		}
	}

	return result
}

// ExitTable analyses each candidate sale year independently.
// nil saleYears uses DefaultSaleYears.
func ExitTable(records []AnnualRecord, capRate, buildingCost, landPrice, equity float64,
	dep DepreciationInfo, saleYears []int) []ExitAnalysis {
	if len(saleYears) == 0 {
		saleYears = DefaultSaleYears
	}
	results := make([]ExitAnalysis, len(saleYears))
	for i, y := range saleYears {
		results[i] = AnalyzeExit(records, y, capRate, buildingCost, landPrice, equity, dep)
	}
	return results
}

// ExitTableForInput runs the exit table with the input's own settings
func ExitTableForInput(input *SimulationInput, records []AnnualRecord) []ExitAnalysis {
	in := input.Normalize()
	dep := in.Depreciation()
	results := make([]ExitAnalysis, len(in.AdvancedSettings.SaleYears))
	for i, y := range in.AdvancedSettings.SaleYears {
		results[i] = analyzeExitWithRates(records, y, *in.AdvancedSettings.ExitCapRate,
			in.BuildingCost(), in.LandPrice(), in.Equity(), dep, *in.TaxRates)
	}
	return results
}
