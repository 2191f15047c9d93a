package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Default sensitivity axes
var (
	DefaultRentDeclineValues = []float64{0, 0.5, 1.0, 1.5, 2.0}
	DefaultVacancyRiseValues = []float64{0, 0.25, 0.5, 0.75, 1.0}
)

// ErrSensitivityAxisTooLong is returned when an axis exceeds MaxSensitivityAxisValues
var ErrSensitivityAxisTooLong = errors.New("sensitivity axis has too many values")

// sensitivityYear is the year whose NOI and BTCF are reported per cell
const sensitivityYear = 10

// MaxSensitivityAxisValues bounds the length of each grid axis
const MaxSensitivityAxisValues = 50

// rateRangeLen returns how many values buildRateRange would produce
func rateRangeLen(min, max, step float64) int {
	if step <= 0 || max < min {
		return 0
	}
	n := math.Floor((max-min)/step+1e-9) + 1
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// buildRateRange generates values from min to max inclusive with the given step.
// Ranges longer than MaxSensitivityAxisValues yield nil.
func buildRateRange(min, max, step float64) []float64 {
	n := rateRangeLen(min, max, step)
	if n == 0 || n > MaxSensitivityAxisValues {
		return nil
	}
	rates := make([]float64, 0, n)
	for i := 0; ; i++ {
		r := min + float64(i)*step
		if r > max+1e-9 {
			break
		}
		rates = append(rates, math.Round(r*1e6)/1e6)
	}
	return rates
}

// evaluateSensitivityCell runs a full projection with the two overrides
func evaluateSensitivityCell(input *SimulationInput, rentDecline, vacancyRise float64) SensitivityCell {
	in := input.Normalize()
	in.AdvancedSettings.RentDeclineRate = floatPtr(rentDecline)
	in.AdvancedSettings.VacancyRiseRate = floatPtr(vacancyRise)

	records := RunProjection(in, DefaultProjectionYears)
	metrics := CalculateInvestmentMetrics(in, records)

	cell := SensitivityCell{
		RentDeclineRate: rentDecline,
		VacancyRiseRate: vacancyRise,
		IRR:             metrics.IRR,
	}
	if rec, ok := RecordForYear(records, sensitivityYear); ok {
		cell.NOIYear10 = rec.NOI
		cell.BTCFYear10 = rec.BTCF
	}
	return cell
}

// RunSensitivityMatrix evaluates every rent-decline × vacancy-rise pair.
// Cells are independent and run in parallel; each writes only its own slot,
// so the result does not depend on scheduling. Empty axes use the defaults.
func RunSensitivityMatrix(ctx context.Context, input *SimulationInput, rentValues, vacancyValues []float64) (*SensitivityMatrix, error) {
	if len(rentValues) == 0 {
		rentValues = DefaultRentDeclineValues
	}
	if len(vacancyValues) == 0 {
		vacancyValues = DefaultVacancyRiseValues
	}
	if len(rentValues) > MaxSensitivityAxisValues || len(vacancyValues) > MaxSensitivityAxisValues {
		return nil, fmt.Errorf("%w: %d rent × %d vacancy values", ErrSensitivityAxisTooLong, len(rentValues), len(vacancyValues))
	}

	base := input.Normalize()
	matrix := &SensitivityMatrix{
		RentDeclineValues: append([]float64(nil), rentValues...),
		VacancyRiseValues: append([]float64(nil), vacancyValues...),
		Cells:             make([][]SensitivityCell, len(vacancyValues)),
	}
	for vi := range matrix.Cells {
		matrix.Cells[vi] = make([]SensitivityCell, len(rentValues))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for vi, vacancy := range vacancyValues {
		for ri, rent := range rentValues {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				matrix.Cells[vi][ri] = evaluateSensitivityCell(base, rent, vacancy)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sensitivity matrix: %w", err)
	}
	return matrix, nil
}

// PrintSensitivityMatrix prints an IRR grid with vacancy rise down the side
// and rent decline across the top
func PrintSensitivityMatrix(m *SensitivityMatrix) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    SENSITIVITY: IRR BY RENT DECLINE × VACANCY RISE           ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("%-16s", "Vacancy \\ Rent")
	for _, r := range m.RentDeclineValues {
		fmt.Printf("%10s", fmt.Sprintf("%.2f%%", r))
	}
	fmt.Println()
	fmt.Println(strings.Repeat("─", 16+10*len(m.RentDeclineValues)))

	for vi, row := range m.Cells {
		fmt.Printf("%-16s", fmt.Sprintf("+%.2fpt/yr", m.VacancyRiseValues[vi]))
		for _, cell := range row {
			fmt.Printf("%10s", FormatRate(cell.IRR))
		}
		fmt.Println()
	}

	fmt.Println()
	fmt.Printf("Year-%d NOI / BTCF\n", sensitivityYear)
	fmt.Println(strings.Repeat("─", 16+22*len(m.RentDeclineValues)))
	for vi, row := range m.Cells {
		fmt.Printf("%-16s", fmt.Sprintf("+%.2fpt/yr", m.VacancyRiseValues[vi]))
		for _, cell := range row {
			fmt.Printf("%22s", FormatYen(cell.NOIYear10)+" / "+FormatYen(cell.BTCFYear10))
		}
		fmt.Println()
	}
}
