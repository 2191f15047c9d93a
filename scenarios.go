package main

import "math"

// ScenarioPreset shifts the standard assumptions in a stress direction
type ScenarioPreset struct {
	Name  string
	Label string
	Color string

	RentDeclineDelta float64
	VacancyRiseDelta float64
	// InterestRateRise replaces the configured rise when set; otherwise the
	// configured rise plus InterestRiseDelta is used.
	InterestRateRise  *float64
	InterestRiseDelta float64
}

// ScenarioPresets are the optimistic, standard and pessimistic cases
var ScenarioPresets = []ScenarioPreset{
	{
		Name:             "optimistic",
		Label:            "Optimistic",
		Color:            "#10b981",
		RentDeclineDelta: -0.5,
		VacancyRiseDelta: -0.3,
		InterestRateRise: floatPtr(0),
	},
	{
		Name:  "standard",
		Label: "Standard",
		Color: "#6366f1",
	},
	{
		Name:              "pessimistic",
		Label:             "Pessimistic",
		Color:             "#ef4444",
		RentDeclineDelta:  0.5,
		VacancyRiseDelta:  0.3,
		InterestRiseDelta: 0.05,
	},
}

// shiftRate applies delta to a rate. An easing shift stops at zero unless
// the rate was already negative; other shifts are applied as-is.
func shiftRate(base, delta float64) float64 {
	v := base + delta
	if delta < 0 && base >= 0 {
		return math.Max(0, v)
	}
	return v
}

// Apply returns a normalized copy of input with the preset's overrides
func (p ScenarioPreset) Apply(input *SimulationInput) *SimulationInput {
	out := input.Normalize()
	s := &out.AdvancedSettings

	s.RentDeclineRate = floatPtr(shiftRate(*s.RentDeclineRate, p.RentDeclineDelta))
	s.VacancyRiseRate = floatPtr(shiftRate(*s.VacancyRiseRate, p.VacancyRiseDelta))
	if p.InterestRateRise != nil {
		s.InterestRateRise = *p.InterestRateRise
	} else {
		s.InterestRateRise += p.InterestRiseDelta
	}
	return out
}

// RunScenario runs the full projection and metrics for one preset
func RunScenario(input *SimulationInput, preset ScenarioPreset, years int) ScenarioResult {
	in := preset.Apply(input)
	records := RunProjection(in, years)
	metrics := CalculateInvestmentMetrics(in, records)

	result := ScenarioResult{
		Name:             preset.Name,
		Label:            preset.Label,
		Color:            preset.Color,
		RentDeclineRate:  *in.AdvancedSettings.RentDeclineRate,
		VacancyRiseRate:  *in.AdvancedSettings.VacancyRiseRate,
		InterestRateRise: in.AdvancedSettings.InterestRateRise,
		IRR:              metrics.IRR,
		PaybackYear:      metrics.PaybackYear,
	}
	if first, ok := RecordForYear(records, 1); ok {
		result.Year1NOI = first.NOI
		result.Year1BTCF = first.BTCF
		result.Year1ATCF = first.ATCF
		result.Year1DSCR = first.DSCR
	}
	return result
}

// GenerateScenarios runs every preset independently against the same input
func GenerateScenarios(input *SimulationInput) []ScenarioResult {
	results := make([]ScenarioResult, len(ScenarioPresets))
	for i, p := range ScenarioPresets {
		results[i] = RunScenario(input, p, DefaultProjectionYears)
	}
	return results
}
