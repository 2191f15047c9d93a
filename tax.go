package main

import (
	"math"
)

// TaxBracket is one band of the individual income tax table.
// Upper of 0 means the band has no upper limit.
type TaxBracket struct {
	Name  string  `yaml:"name,omitempty" json:"name,omitempty"`
	Upper float64 `yaml:"upper" json:"upper"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// TaxRates holds the statutory constants used by the tax calculations
type TaxRates struct {
	IndividualBrackets []TaxBracket `yaml:"individual_brackets" json:"individual_brackets"`
	ResidentRate       float64      `yaml:"resident_rate" json:"resident_rate"`

	CorporateSmallThreshold float64 `yaml:"corporate_small_threshold" json:"corporate_small_threshold"` // Reduced-rate ceiling for small businesses
	CorporateSmallLowRate   float64 `yaml:"corporate_small_low_rate" json:"corporate_small_low_rate"`
	CorporateSmallHighRate  float64 `yaml:"corporate_small_high_rate" json:"corporate_small_high_rate"`
	CorporateLargeRate      float64 `yaml:"corporate_large_rate" json:"corporate_large_rate"`

	CapitalGainsLongRate  float64 `yaml:"capital_gains_long_rate" json:"capital_gains_long_rate"`   // Held more than LongTermYears
	CapitalGainsShortRate float64 `yaml:"capital_gains_short_rate" json:"capital_gains_short_rate"` // Held LongTermYears or less
	LongTermYears         int     `yaml:"long_term_years" json:"long_term_years"`
}

// DefaultTaxRates returns the current statutory tables
func DefaultTaxRates() TaxRates {
	return TaxRates{
		IndividualBrackets: []TaxBracket{
			{Name: "5%", Upper: 1_950_000, Rate: 0.05},
			{Name: "10%", Upper: 3_300_000, Rate: 0.10},
			{Name: "20%", Upper: 6_950_000, Rate: 0.20},
			{Name: "23%", Upper: 9_000_000, Rate: 0.23},
			{Name: "33%", Upper: 18_000_000, Rate: 0.33},
			{Name: "40%", Upper: 40_000_000, Rate: 0.40},
			{Name: "45%", Upper: 0, Rate: 0.45},
		},
		ResidentRate: 0.10,

		CorporateSmallThreshold: 8_000_000,
		CorporateSmallLowRate:   0.25,
		CorporateSmallHighRate:  0.35,
		CorporateLargeRate:      0.30,

		CapitalGainsLongRate:  0.20315,
		CapitalGainsShortRate: 0.3963,
		LongTermYears:         5,
	}
}

// Clone returns a copy with its own bracket slice
func (t TaxRates) Clone() TaxRates {
	out := t
	out.IndividualBrackets = append([]TaxBracket(nil), t.IndividualBrackets...)
	return out
}

// GetMarginalBracket returns the bracket that totalIncome falls into
func GetMarginalBracket(totalIncome float64, brackets []TaxBracket) TaxBracket {
	if len(brackets) == 0 {
		return TaxBracket{}
	}
	for _, b := range brackets {
		if b.Upper == 0 || totalIncome <= b.Upper {
			return b
		}
	}
	return brackets[len(brackets)-1]
}

// CalculateIndividualTaxWithRates taxes real-estate income at the marginal
// rate of the combined income, plus resident tax. Only taxableIncome is taxed;
// otherIncome just picks the bracket. Losses are not taxed or carried forward.
func CalculateIndividualTaxWithRates(taxableIncome, otherIncome float64, rates TaxRates) float64 {
	if taxableIncome <= 0 {
		return 0
	}
	bracket := GetMarginalBracket(taxableIncome+otherIncome, rates.IndividualBrackets)
	return math.Floor(taxableIncome*bracket.Rate + taxableIncome*rates.ResidentRate)
}

// CalculateIndividualTax uses the default statutory tables
func CalculateIndividualTax(taxableIncome, otherIncome float64) float64 {
	return CalculateIndividualTaxWithRates(taxableIncome, otherIncome, DefaultTaxRates())
}

// CalculateCorporateTaxWithRates applies simplified effective corporate rates
func CalculateCorporateTaxWithRates(taxableIncome float64, isSmallBusiness bool, rates TaxRates) float64 {
	if taxableIncome <= 0 {
		return 0
	}
	if !isSmallBusiness {
		return math.Floor(taxableIncome * rates.CorporateLargeRate)
	}
	if taxableIncome <= rates.CorporateSmallThreshold {
		return math.Floor(taxableIncome * rates.CorporateSmallLowRate)
	}
	return math.Floor(rates.CorporateSmallThreshold*rates.CorporateSmallLowRate +
		(taxableIncome-rates.CorporateSmallThreshold)*rates.CorporateSmallHighRate)
}

// CalculateCorporateTax uses the default statutory tables
func CalculateCorporateTax(taxableIncome float64, isSmallBusiness bool) float64 {
	return CalculateCorporateTaxWithRates(taxableIncome, isSmallBusiness, DefaultTaxRates())
}

// CalculateTax dispatches on the tax mode of a normalized input
func CalculateTax(in *SimulationInput, taxableIncome float64) float64 {
	rates := DefaultTaxRates()
	if in.TaxRates != nil {
		rates = *in.TaxRates
	}
	s := in.AdvancedSettings
	if s.TaxMode == TaxModeCorporate {
		small := true
		if s.SmallBusiness != nil {
			small = *s.SmallBusiness
		}
		return CalculateCorporateTaxWithRates(taxableIncome, small, rates)
	}
	return CalculateIndividualTaxWithRates(taxableIncome, s.OtherIncome, rates)
}
