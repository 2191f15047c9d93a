package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// =============================================================================
// Normalization
// =============================================================================

func TestNormalize_FillsDefaults(t *testing.T) {
	n := (&SimulationInput{}).Normalize()

	if n.Mode != ModeLandNew {
		t.Errorf("mode: expected %s, got %s", ModeLandNew, n.Mode)
	}
	if n.Property.Structure != StructureRC {
		t.Errorf("structure: expected %s, got %s", StructureRC, n.Property.Structure)
	}
	if n.Expenses.ManagementFeeMode != ManagementFeeRatio {
		t.Errorf("management fee mode: expected ratio, got %s", n.Expenses.ManagementFeeMode)
	}

	s := n.AdvancedSettings
	checks := []struct {
		name     string
		got      *float64
		expected float64
	}{
		{"rent decline", s.RentDeclineRate, DefaultRentDeclineRate},
		{"vacancy rise", s.VacancyRiseRate, DefaultVacancyRiseRate},
		{"equipment ratio", s.EquipmentRatio, DefaultEquipmentRatio},
		{"exit cap rate", s.ExitCapRate, DefaultExitCapRate},
		{"discount rate", s.DiscountRate, DefaultDiscountRate},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: expected default %.2f, got nil", c.name, c.expected)
		} else if *c.got != c.expected {
			t.Errorf("%s: expected %.2f, got %.2f", c.name, c.expected, *c.got)
		}
	}

	if s.TaxMode != TaxModeIndividual {
		t.Errorf("tax mode: expected individual, got %s", s.TaxMode)
	}
	if s.SmallBusiness == nil || !*s.SmallBusiness {
		t.Error("small business: expected true")
	}
	if diff := cmp.Diff(DefaultSaleYears, s.SaleYears); diff != "" {
		t.Errorf("sale years (-want +got):\n%s", diff)
	}
	if n.TaxRates == nil {
		t.Fatal("tax rates: expected defaults, got nil")
	}
	if diff := cmp.Diff(DefaultTaxRates(), *n.TaxRates); diff != "" {
		t.Errorf("tax rates (-want +got):\n%s", diff)
	}
	if n.BaseVacancyRate() != DefaultVacancyRate {
		t.Errorf("base vacancy: expected %.1f, got %.1f", DefaultVacancyRate, n.BaseVacancyRate())
	}
}

func TestNormalize_KeepsExplicitZero(t *testing.T) {
	in := &SimulationInput{
		AdvancedSettings: AdvancedSettings{
			RentDeclineRate: floatPtr(0),
			VacancyRiseRate: floatPtr(0),
			EquipmentRatio:  floatPtr(0),
			SmallBusiness:   boolPtr(false),
		},
	}
	s := in.Normalize().AdvancedSettings

	if *s.RentDeclineRate != 0 || *s.VacancyRiseRate != 0 || *s.EquipmentRatio != 0 {
		t.Errorf("explicit zeros replaced: %f / %f / %f", *s.RentDeclineRate, *s.VacancyRiseRate, *s.EquipmentRatio)
	}
	if *s.SmallBusiness {
		t.Error("explicit small_business: false was replaced")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := mustLoadDemo(t).Normalize()
	twice := once.Normalize()
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("normalize is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestNormalize_SharesNothingWithInput(t *testing.T) {
	in := mustLoadDemo(t)
	before := in.Clone()

	n := in.Normalize()
	n.Funding.Loans[0].Amount = 1
	n.RentRoll.RoomTypes[0].Rent = 1
	*n.AdvancedSettings.RentDeclineRate = 9
	n.AdvancedSettings.SaleYears[0] = 99
	n.TaxRates.IndividualBrackets[0].Rate = 0.99

	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("modifying the normalized copy changed the input (-before +after):\n%s", diff)
	}

	empty := (&SimulationInput{}).Normalize()
	empty.AdvancedSettings.SaleYears[0] = 99
	if DefaultSaleYears[0] != 5 {
		t.Errorf("default sale years were modified: %v", DefaultSaleYears)
	}
}

func TestInput_DerivedAmounts(t *testing.T) {
	demo := mustLoadDemo(t)

	assertYenEquals(t, 10_000_000, demo.Equity(), "equity")
	assertYenEquals(t, 120_000_000, demo.BuildingCost(), "building cost")
	assertYenEquals(t, 85_000_000, demo.LandPrice(), "land price")
	assertYenEquals(t, 214_200_000, demo.TotalBudget(), "total budget")
	assertYenEquals(t, 4, demo.BaseVacancyRate(), "base vacancy")

	// (6 × 94,000 + 3 × 143,000 + 20,000) × 12
	assertYenEquals(t, 12_156_000, demo.RentRoll.PotentialGrossIncome(), "potential gross income")
	if got := demo.RentRoll.TotalUnits(); got != 9 {
		t.Errorf("units: expected 9, got %d", got)
	}
	// 45,000 × 12 + 660,000 + 50,000
	assertYenEquals(t, 1_250_000, demo.Expenses.FixedAnnual(), "fixed OPEX")
}

// =============================================================================
// Loading and Saving
// =============================================================================

func TestLoadDefaultInput(t *testing.T) {
	demo := mustLoadDemo(t)
	if demo.Title == "" {
		t.Error("demo project has no title")
	}
	if len(demo.Funding.Loans) != 1 || len(demo.RentRoll.RoomTypes) != 2 {
		t.Errorf("unexpected demo shape: %d loans, %d room types",
			len(demo.Funding.Loans), len(demo.RentRoll.RoomTypes))
	}
	if errs := ValidateInput(demo); len(errs) > 0 {
		t.Errorf("demo project does not validate: %v", errs)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	demo := mustLoadDemo(t)
	want := RunProjection(demo, 35)
	dir := t.TempDir()

	for _, name := range []string{"project.yaml", "project.yml", "project.json", "project.hjson"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveInput(demo, path); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := LoadInput(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}

			if diff := cmp.Diff(demo, loaded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("input changed in round trip (-saved +loaded):\n%s", diff)
			}
			if diff := cmp.Diff(want, RunProjection(loaded, 35)); diff != "" {
				t.Errorf("projection changed in round trip (-saved +loaded):\n%s", diff)
			}
		})
	}
}

func TestParseInput_HJSON(t *testing.T) {
	doc := `{
  # hand-edited project
  title: "Hjson project"
  mode: investment_used
  property: {
    structure: Wood
    building_age: 10
    land_area_m2: 100
  }
  funding: {
    own_capital: 300
    loans: [
      {
        name: Bank
        amount: 1500
        rate: 2.5
        duration: 20
      }
    ]
  }
  advanced_settings: {
    rent_decline_rate: 0
  }
}`
	in, err := ParseInput([]byte(doc), "hjson")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if in.Title != "Hjson project" || in.Mode != ModeInvestmentUsed || in.Property.Structure != StructureWood {
		t.Errorf("unexpected header fields: %q %s %s", in.Title, in.Mode, in.Property.Structure)
	}
	if in.Property.BuildingAge != 10 {
		t.Errorf("building age: expected 10, got %d", in.Property.BuildingAge)
	}
	if len(in.Funding.Loans) != 1 || in.Funding.Loans[0].Duration != 20 || in.Funding.Loans[0].Rate != 2.5 {
		t.Errorf("unexpected loans: %+v", in.Funding.Loans)
	}
	if in.AdvancedSettings.RentDeclineRate == nil || *in.AdvancedSettings.RentDeclineRate != 0 {
		t.Error("explicit rent_decline_rate: 0 was not kept")
	}
	if in.AdvancedSettings.VacancyRiseRate != nil {
		t.Error("absent vacancy_rise_rate should stay unset before normalization")
	}
}

func TestLoadInput_Errors(t *testing.T) {
	_, err := LoadInput(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: expected fs.ErrNotExist, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("budget: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadInput(bad)
	if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("malformed file: expected error naming the file, got %v", err)
	}
}

func TestFormatForFile(t *testing.T) {
	tests := map[string]string{
		"a.yaml":  "yaml",
		"a.YML":   "yaml",
		"a.json":  "json",
		"a.JSON":  "json",
		"a.hjson": "hjson",
		"a":       "yaml",
	}
	for name, want := range tests {
		if got := formatForFile(name); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
}
