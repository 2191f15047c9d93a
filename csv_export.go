package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// utf8BOM lets spreadsheet applications detect the encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func formatCSVNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSummaryCSV writes the input as Category, Item, Value, Unit rows
func WriteSummaryCSV(w io.Writer, in *SimulationInput, withBOM bool) error {
	if withBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)

	rows := [][]string{{"Category", "Item", "Value", "Unit"}}
	add := func(category, item, value, unit string) {
		rows = append(rows, []string{category, item, value, unit})
	}
	num := formatCSVNumber

	add("Property", "Mode", string(in.Mode), "")
	add("Property", "Land Area", num(in.Property.LandAreaM2), "m2")
	add("Property", "Structure", string(in.Property.Structure), "")
	add("Property", "Building Age", strconv.Itoa(in.Property.BuildingAge), "Years")

	add("Budget", "Land Price", num(in.Budget.LandPrice), "Man-yen")
	add("Budget", "Construction Cost", num(in.Budget.BuildingWorksCost), "Man-yen")
	add("Budget", "Total Budget", num(in.Budget.Total()), "Man-yen")

	add("Funding", "Own Capital", num(in.Funding.OwnCapital), "Man-yen")
	add("Funding", "Total Loans", num(in.Funding.TotalLoans()), "Man-yen")
	for i, l := range in.Funding.Loans {
		n := i + 1
		add("Funding", fmt.Sprintf("Loan %d Name", n), l.Name, "")
		add("Funding", fmt.Sprintf("Loan %d Amount", n), num(l.Amount), "Man-yen")
		add("Funding", fmt.Sprintf("Loan %d Rate", n), num(l.Rate), "%")
		add("Funding", fmt.Sprintf("Loan %d Duration", n), strconv.Itoa(l.Duration), "Years")
	}

	for i, rt := range in.RentRoll.RoomTypes {
		n := i + 1
		add("RentRoll", fmt.Sprintf("Room %d Name", n), rt.Name, "")
		add("RentRoll", fmt.Sprintf("Room %d Count", n), strconv.Itoa(rt.Count), "Units")
		add("RentRoll", fmt.Sprintf("Room %d Rent", n), num(rt.Rent), "Yen")
	}
	add("RentRoll", "Occupancy Rate", num(in.RentRoll.OccupancyRate), "%")

	add("Expenses", "Management Fee Mode", string(in.Expenses.ManagementFeeMode), "")
	if in.Expenses.ManagementFeeMode == ManagementFeeFixed {
		add("Expenses", "Management Fee Fixed", num(in.Expenses.ManagementFeeFixed), "Yen")
	} else {
		add("Expenses", "Management Fee Ratio", num(in.Expenses.ManagementFeeRatio), "%")
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing summary csv: %w", err)
	}
	return nil
}

var projectionCSVHeader = []string{
	"Year", "Gross Income", "Vacancy Rate", "Vacancy Loss", "EGI", "OPEX", "NOI",
	"Debt Service", "Interest", "Principal", "BTCF", "Depreciation", "Taxable Income",
	"Tax", "ATCF", "Loan Balance", "Cumulative Cash Flow", "DSCR", "CCR",
}

// WriteProjectionCSV writes one row per projected year. Infinite DSCR is left blank.
func WriteProjectionCSV(w io.Writer, records []AnnualRecord, withBOM bool) error {
	if withBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(projectionCSVHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year),
			formatCSVNumber(math.Round(r.GrossIncome)),
			formatCSVNumber(r.VacancyRate),
			formatCSVNumber(math.Round(r.VacancyLoss)),
			formatCSVNumber(math.Round(r.EffectiveGrossIncome)),
			formatCSVNumber(math.Round(r.Opex)),
			formatCSVNumber(math.Round(r.NOI)),
			formatCSVNumber(math.Round(r.DebtService)),
			formatCSVNumber(math.Round(r.Interest)),
			formatCSVNumber(math.Round(r.Principal)),
			formatCSVNumber(math.Round(r.BTCF)),
			formatCSVNumber(r.Depreciation),
			formatCSVNumber(math.Round(r.TaxableIncome)),
			formatCSVNumber(r.Tax),
			formatCSVNumber(math.Round(r.ATCF)),
			formatCSVNumber(math.Round(r.LoanBalance)),
			formatCSVNumber(math.Round(r.CumulativeCashFlow)),
			formatCSVNumber(math.Round(r.DSCR*100) / 100),
			formatCSVNumber(math.Round(r.CCR*10000) / 10000),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing projection csv: %w", err)
	}
	return nil
}
