package main

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a list of field errors
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateProperty checks the building description
func ValidateProperty(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	if in.Property.Structure == "" {
		errs = append(errs, ValidationError{Field: "property.structure", Message: "structure is required"})
	} else if _, ok := statutoryLife[in.Property.Structure]; !ok {
		errs = append(errs, ValidationError{Field: "property.structure",
			Message: fmt.Sprintf("unknown structure %q (use RC, S, Wood or SteelLight)", in.Property.Structure)})
	}
	if in.Property.LandAreaM2 <= 0 {
		errs = append(errs, ValidationError{Field: "property.land_area_m2", Message: "land area must be greater than 0"})
	}
	if in.Property.BuildingAge < 0 {
		errs = append(errs, ValidationError{Field: "property.building_age", Message: "building age cannot be negative"})
	}
	return errs
}

// ValidateBudget checks acquisition costs
func ValidateBudget(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	if in.Budget.LandPrice+in.Budget.BuildingWorksCost <= 0 {
		errs = append(errs, ValidationError{Field: "budget.total", Message: "enter a land price or building cost"})
	}
	if in.Budget.LandPrice < 0 {
		errs = append(errs, ValidationError{Field: "budget.land_price", Message: "land price must be 0 or more"})
	}
	if in.Budget.BuildingWorksCost < 0 {
		errs = append(errs, ValidationError{Field: "budget.building_works_cost", Message: "building cost must be 0 or more"})
	}
	return errs
}

// ValidateFunding checks equity and every loan
func ValidateFunding(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	if in.Funding.OwnCapital < 0 {
		errs = append(errs, ValidationError{Field: "funding.own_capital", Message: "own capital must be 0 or more"})
	}
	for i, l := range in.Funding.Loans {
		prefix := fmt.Sprintf("funding.loans[%d]", i)
		if l.Amount < 0 {
			errs = append(errs, ValidationError{Field: prefix + ".amount", Message: "loan amount must be 0 or more"})
		}
		if l.Duration <= 0 || l.Duration > 50 {
			errs = append(errs, ValidationError{Field: prefix + ".duration",
				Message: fmt.Sprintf("duration must be between 1 and 50 years (got %d)", l.Duration)})
		}
		if l.Rate < 0 || l.Rate > 20 {
			errs = append(errs, ValidationError{Field: prefix + ".rate",
				Message: fmt.Sprintf("rate must be between 0 and 20%% (got %.2f)", l.Rate)})
		}
	}
	return errs
}

// ValidateRentRoll checks the income side
func ValidateRentRoll(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	monthly := 0.0
	for _, rt := range in.RentRoll.RoomTypes {
		monthly += rt.Rent * float64(rt.Count)
	}
	if monthly <= 0 {
		errs = append(errs, ValidationError{Field: "rent_roll.monthly_rent", Message: "enter a monthly rent for at least one room type"})
	}
	if in.RentRoll.OccupancyRate < 0 || in.RentRoll.OccupancyRate > 100 {
		errs = append(errs, ValidationError{Field: "rent_roll.occupancy_rate",
			Message: fmt.Sprintf("occupancy must be between 0 and 100%% (got %.1f)", in.RentRoll.OccupancyRate)})
	}
	return errs
}

// ValidateSettings checks projection assumptions
func ValidateSettings(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	s := in.AdvancedSettings
	if in.Expenses.ManagementFeeRatio < 0 || in.Expenses.ManagementFeeRatio > 100 {
		errs = append(errs, ValidationError{Field: "expenses.management_fee_ratio", Message: "management fee ratio must be between 0 and 100%"})
	}
	if s.EquipmentRatio != nil && (*s.EquipmentRatio < 0 || *s.EquipmentRatio > 1) {
		errs = append(errs, ValidationError{Field: "advanced_settings.equipment_ratio", Message: "equipment ratio must be between 0 and 1"})
	}
	if s.ExitCapRate != nil && *s.ExitCapRate < 0 {
		errs = append(errs, ValidationError{Field: "advanced_settings.exit_cap_rate", Message: "exit cap rate cannot be negative"})
	}
	switch s.TaxMode {
	case "", TaxModeIndividual, TaxModeCorporate:
	default:
		errs = append(errs, ValidationError{Field: "advanced_settings.tax_mode",
			Message: fmt.Sprintf("unknown tax mode %q (use individual or corporate)", s.TaxMode)})
	}
	return errs
}

// ValidateInput runs every check and returns all violations
func ValidateInput(in *SimulationInput) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, ValidateProperty(in)...)
	errs = append(errs, ValidateBudget(in)...)
	errs = append(errs, ValidateFunding(in)...)
	errs = append(errs, ValidateRentRoll(in)...)
	errs = append(errs, ValidateSettings(in)...)
	return errs
}
