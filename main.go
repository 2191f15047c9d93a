package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// .env is optional; flags still override whatever it sets
	envErr := godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Real-Estate Investment Pro-Forma Simulator

Projects a rental property's cash flows year by year (35 years by default):
rent decline, vacancy escalation, operating expenses, amortizing loans with
optional rate rises, depreciation and income tax. Derives IRR, NPV, DSCR,
cash-on-cash return, payback year and break-even ratio, values exits at
several holding periods, and compares stress scenarios.

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                              Run the input file (or the demo project)
  %s -input tower.yaml -details   Show every projected year
  %s -scenarios -sensitivity      Compare stress scenarios and the IRR grid
  %s -csv projection.csv          Export the yearly projection
  %s -init my-project.yaml        Write the demo project as a starting point
  %s -web -addr :8080             Serve the JSON API

Input files:
  YAML (.yaml/.yml), JSON (.json) or HJSON (.hjson).
  Budget and funding amounts are in man-yen (10,000 yen); rent roll and
  expenses are in yen. Missing advanced settings use standard defaults
  (rent decline 1%%/yr, vacancy rise 0.5pt/yr, exit cap rate 6%%).

Environment (also read from .env):
  PROFORMA_INPUT, PROFORMA_YEARS, PROFORMA_ADDR, PROFORMA_LOG_LEVEL, PROFORMA_LOG_FORMAT
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	inputFile := flag.String("input", envOr("PROFORMA_INPUT", "proforma.yaml"), "Path to the project input file")
	years := flag.Int("years", envIntOr("PROFORMA_YEARS", DefaultProjectionYears), "Projection horizon in years")
	showDetails := flag.Bool("details", false, "Show every projected year instead of every fifth")
	showLoans := flag.Bool("loans", false, "Show per-loan debt service for each year")
	showExit := flag.Bool("exit", true, "Show the exit analysis table")
	runScenarios := flag.Bool("scenarios", false, "Compare optimistic, standard and pessimistic scenarios")
	runSensitivity := flag.Bool("sensitivity", false, "Show IRR across rent decline × vacancy rise")
	estimateCosts := flag.Bool("estimate", false, "Replace registration tax, acquisition tax and brokerage with estimates")
	csvFile := flag.String("csv", "", "Write the yearly projection to this CSV file")
	summaryCSV := flag.String("summary-csv", "", "Write the input summary to this CSV file")
	saveFile := flag.String("save", "", "Save the normalized input to this file (.yaml, .json or .hjson)")
	initFile := flag.String("init", "", "Write the demo project to this file and exit")
	webMode := flag.Bool("web", false, "Start the JSON API server")
	webAddr := flag.String("addr", envOr("PROFORMA_ADDR", "localhost:8080"), "Web server address")
	logLevel := flag.String("log-level", envOr("PROFORMA_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", envOr("PROFORMA_LOG_FORMAT", "console"), "Log format (console or json)")
	flag.Parse()

	logger, err := NewLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not load .env", zap.Error(envErr))
	}

	if *initFile != "" {
		demo, err := LoadDefaultInput()
		if err == nil {
			err = SaveInput(demo, *initFile)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *initFile, err)
			os.Exit(1)
		}
		fmt.Printf("Demo project written to %s\n", *initFile)
		return
	}

	input, err := loadInputOrDemo(*inputFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		os.Exit(1)
	}

	if *webMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		server := NewWebServer(input, *webAddr, logger)
		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Web server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if errs := ValidateInput(input); len(errs) > 0 {
		for _, e := range errs {
			logger.Warn("input validation", zap.String("field", e.Field), zap.String("message", e.Message))
		}
	}

	if *estimateCosts {
		estimate := EstimateInitialCosts(input.Mode, input.Budget)
		estimate.ApplyTo(&input.Budget)
		logger.Info("applied initial cost estimate",
			zap.Float64("registration_tax", estimate.RegistrationTax),
			zap.Float64("acquisition_tax", estimate.AcquisitionTax),
			zap.Float64("brokerage_fee", estimate.BrokerageFee))
	}

	in := input.Normalize()

	start := time.Now()
	records := RunProjection(in, *years)
	metrics := CalculateInvestmentMetrics(in, records)
	logger.Debug("projection complete", zap.Int("years", len(records)), zap.Duration("elapsed", time.Since(start)))

	PrintHeader(in)
	PrintMetrics(metrics)
	PrintProjectionTable(records, *showDetails)
	if *showLoans {
		PrintLoanDetail(records)
	}
	if *showExit {
		PrintExitTable(ExitTableForInput(in, records))
	}
	if *runScenarios {
		PrintScenarios(GenerateScenarios(in))
	}
	if *runSensitivity {
		start := time.Now()
		matrix, err := RunSensitivityMatrix(context.Background(), in, nil, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sensitivity analysis error: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("sensitivity matrix complete", zap.Duration("elapsed", time.Since(start)))
		PrintSensitivityMatrix(matrix)
	}

	if *csvFile != "" {
		if err := writeCSVFile(*csvFile, func(f *os.File) error { return WriteProjectionCSV(f, records, true) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		logger.Info("projection exported", zap.String("file", *csvFile))
	}
	if *summaryCSV != "" {
		if err := writeCSVFile(*summaryCSV, func(f *os.File) error { return WriteSummaryCSV(f, in, true) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		logger.Info("summary exported", zap.String("file", *summaryCSV))
	}
	if *saveFile != "" {
		if err := SaveInput(in, *saveFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving input: %v\n", err)
			os.Exit(1)
		}
		logger.Info("input saved", zap.String("file", *saveFile))
	}
}

// loadInputOrDemo loads the input file, falling back to the embedded demo
// project when the file does not exist
func loadInputOrDemo(filename string, logger *zap.Logger) (*SimulationInput, error) {
	input, err := LoadInput(filename)
	if err == nil {
		logger.Info("loaded input", zap.String("file", filename))
		return input, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	logger.Info("input file not found, using demo project", zap.String("file", filename))
	return LoadDefaultInput()
}

func writeCSVFile(filename string, write func(f *os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
