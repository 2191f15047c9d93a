package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hjson/hjson-go/v4"
	"go.uber.org/zap"
)

// maxRequestBytes bounds request bodies
const maxRequestBytes = 1 << 20

// WebServer serves the pro-forma engine as a JSON API
type WebServer struct {
	input  *SimulationInput // Returned by GET /api/input; nil serves the demo project
	addr   string
	logger *zap.Logger
}

// NewWebServer creates a new web server instance
func NewWebServer(input *SimulationInput, addr string, logger *zap.Logger) *WebServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebServer{
		input:  input,
		addr:   addr,
		logger: logger,
	}
}

// RateRange describes an inclusive axis for the sensitivity grid
type RateRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// APIRequest is the body accepted by every POST endpoint
type APIRequest struct {
	Input *SimulationInput `json:"input"`
	Years int              `json:"years,omitempty"`

	// Exit analysis
	SaleYears []int `json:"sale_years,omitempty"`

	// Sensitivity axes: explicit values take precedence over ranges
	RentDeclineValues []float64  `json:"rent_decline_values,omitempty"`
	VacancyRiseValues []float64  `json:"vacancy_rise_values,omitempty"`
	RentDeclineRange  *RateRange `json:"rent_decline_range,omitempty"`
	VacancyRiseRange  *RateRange `json:"vacancy_rise_range,omitempty"`
}

// APIYearSummary is an AnnualRecord with JSON-safe DSCR
type APIYearSummary struct {
	AnnualRecord
	DSCR *float64 `json:"dscr"` // null when there is no debt service
}

// APIMetrics is InvestmentMetrics with JSON-safe DSCR
type APIMetrics struct {
	InvestmentMetrics
	Year1DSCR *float64 `json:"year1_dscr"`
}

// APIScenario is ScenarioResult with JSON-safe DSCR
type APIScenario struct {
	ScenarioResult
	Year1DSCR *float64 `json:"year1_dscr"`
}

// APIResponse is the envelope for every JSON response
type APIResponse struct {
	Success          bool             `json:"success"`
	Error            string           `json:"error,omitempty"`
	RunID            string           `json:"run_id,omitempty"`
	ValidationErrors ValidationErrors `json:"validation_errors,omitempty"`

	Input        *SimulationInput     `json:"input,omitempty"`
	Years        []APIYearSummary     `json:"years,omitempty"`
	Metrics      *APIMetrics          `json:"metrics,omitempty"`
	Depreciation *DepreciationInfo    `json:"depreciation,omitempty"`
	Funding      *FundingSummary      `json:"funding,omitempty"`
	Exits        []ExitAnalysis       `json:"exits,omitempty"`
	Scenarios    []APIScenario        `json:"scenarios,omitempty"`
	Sensitivity  *SensitivityMatrix   `json:"sensitivity,omitempty"`
	Estimate     *InitialCostEstimate `json:"estimate,omitempty"`
}

type runIDKey struct{}

func runIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return floatPtr(v)
}

func toAPIYears(records []AnnualRecord) []APIYearSummary {
	out := make([]APIYearSummary, len(records))
	for i, r := range records {
		out[i] = APIYearSummary{AnnualRecord: r, DSCR: finiteOrNil(r.DSCR)}
	}
	return out
}

func toAPIMetrics(m InvestmentMetrics) *APIMetrics {
	return &APIMetrics{InvestmentMetrics: m, Year1DSCR: finiteOrNil(m.Year1DSCR)}
}

func toAPIScenarios(results []ScenarioResult) []APIScenario {
	out := make([]APIScenario, len(results))
	for i, r := range results {
		out[i] = APIScenario{ScenarioResult: r, Year1DSCR: finiteOrNil(r.Year1DSCR)}
	}
	return out
}

// Handler returns the API routes wrapped in request logging
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/input", ws.handleGetInput)
	mux.HandleFunc("/api/validate", ws.handleValidate)
	mux.HandleFunc("/api/project", ws.handleProject)
	mux.HandleFunc("/api/metrics", ws.handleMetrics)
	mux.HandleFunc("/api/exit", ws.handleExit)
	mux.HandleFunc("/api/scenarios", ws.handleScenarios)
	mux.HandleFunc("/api/sensitivity", ws.handleSensitivity)
	mux.HandleFunc("/api/estimate-costs", ws.handleEstimateCosts)
	mux.HandleFunc("/api/export-csv", ws.handleExportCSV)

	return ws.withRequestLogging(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (ws *WebServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ws.logger.Info("starting web server", zap.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.logger.Info("shutting down web server")
		return server.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (ws *WebServer) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		runID := uuid.NewString()
		w.Header().Set("X-Run-ID", runID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), runIDKey{}, runID)))

		ws.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("run_id", runID))
	})
}

// decodeRequest reads a POST body. Bodies are parsed as HJSON, so plain JSON
// and hand-written payloads with comments are both accepted.
func (ws *WebServer) decodeRequest(w http.ResponseWriter, r *http.Request) (*APIRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		ws.sendJSONError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}

	var req APIRequest
	if err := hjson.Unmarshal(body, &req); err != nil {
		ws.sendJSONError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if req.Input == nil {
		ws.sendJSONError(w, r, http.StatusBadRequest, "Request must include an input")
		return nil, false
	}
	return &req, true
}

// decodeValidRequest decodes a request and rejects inputs that fail validation
func (ws *WebServer) decodeValidRequest(w http.ResponseWriter, r *http.Request) (*APIRequest, bool) {
	req, ok := ws.decodeRequest(w, r)
	if !ok {
		return nil, false
	}
	if errs := ValidateInput(req.Input); len(errs) > 0 {
		ws.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success:          false,
			Error:            "Input validation failed",
			RunID:            runIDFrom(r.Context()),
			ValidationErrors: errs,
		})
		return nil, false
	}
	return req, true
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ws.logger.Error("encoding response", zap.Error(err))
	}
}

// sendJSONError sends a JSON error response
func (ws *WebServer) sendJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	ws.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   message,
		RunID:   runIDFrom(r.Context()),
	})
}

// handleGetInput returns the server's input, or the demo project
func (ws *WebServer) handleGetInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	input := ws.input
	if input == nil {
		var err error
		input, err = LoadDefaultInput()
		if err != nil {
			ws.sendJSONError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
	}
	ws.writeJSON(w, http.StatusOK, APIResponse{Success: true, RunID: runIDFrom(r.Context()), Input: input})
}

func (ws *WebServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeRequest(w, r)
	if !ok {
		return
	}
	errs := ValidateInput(req.Input)
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success:          len(errs) == 0,
		RunID:            runIDFrom(r.Context()),
		ValidationErrors: errs,
	})
}

// handleProject runs the full projection with metrics
func (ws *WebServer) handleProject(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}

	in := req.Input.Normalize()
	records := RunProjection(in, req.Years)
	dep := in.Depreciation()
	funding := SummarizeFunding(in)

	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success:      true,
		RunID:        runIDFrom(r.Context()),
		Input:        in,
		Years:        toAPIYears(records),
		Metrics:      toAPIMetrics(CalculateInvestmentMetrics(in, records)),
		Depreciation: &dep,
		Funding:      &funding,
	})
}

func (ws *WebServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}
	records := RunProjection(req.Input, req.Years)
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		RunID:   runIDFrom(r.Context()),
		Metrics: toAPIMetrics(CalculateInvestmentMetrics(req.Input, records)),
	})
}

func (ws *WebServer) handleExit(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}
	in := req.Input.Clone()
	if len(req.SaleYears) > 0 {
		in.AdvancedSettings.SaleYears = req.SaleYears
	}
	records := RunProjection(in, req.Years)
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		RunID:   runIDFrom(r.Context()),
		Exits:   ExitTableForInput(in, records),
	})
}

func (ws *WebServer) handleScenarios(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success:   true,
		RunID:     runIDFrom(r.Context()),
		Scenarios: toAPIScenarios(GenerateScenarios(req.Input)),
	})
}

func axisValues(values []float64, rng *RateRange) ([]float64, error) {
	if len(values) > MaxSensitivityAxisValues {
		return nil, fmt.Errorf("%w: %d given, at most %d", ErrSensitivityAxisTooLong, len(values), MaxSensitivityAxisValues)
	}
	if len(values) > 0 || rng == nil {
		return values, nil
	}
	if n := rateRangeLen(rng.Min, rng.Max, rng.Step); n > MaxSensitivityAxisValues {
		return nil, fmt.Errorf("%w: range gives %d, at most %d", ErrSensitivityAxisTooLong, n, MaxSensitivityAxisValues)
	}
	out := buildRateRange(rng.Min, rng.Max, rng.Step)
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid range %.2f..%.2f step %.2f", rng.Min, rng.Max, rng.Step)
	}
	return out, nil
}

func (ws *WebServer) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}

	rentValues, err := axisValues(req.RentDeclineValues, req.RentDeclineRange)
	if err != nil {
		ws.sendJSONError(w, r, http.StatusBadRequest, "rent_decline_range: "+err.Error())
		return
	}
	vacancyValues, err := axisValues(req.VacancyRiseValues, req.VacancyRiseRange)
	if err != nil {
		ws.sendJSONError(w, r, http.StatusBadRequest, "vacancy_rise_range: "+err.Error())
		return
	}

	matrix, err := RunSensitivityMatrix(r.Context(), req.Input, rentValues, vacancyValues)
	if err != nil {
		ws.sendJSONError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success:     true,
		RunID:       runIDFrom(r.Context()),
		Sensitivity: matrix,
	})
}

func (ws *WebServer) handleEstimateCosts(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeRequest(w, r)
	if !ok {
		return
	}
	in := req.Input.Normalize()
	estimate := EstimateInitialCosts(in.Mode, in.Budget)
	ws.writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		RunID:    runIDFrom(r.Context()),
		Estimate: &estimate,
	})
}

// handleExportCSV streams the projection (or ?kind=summary the input summary) as CSV
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeValidRequest(w, r)
	if !ok {
		return
	}

	kind := strings.ToLower(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = "projection"
	}
	if kind != "projection" && kind != "summary" {
		ws.sendJSONError(w, r, http.StatusBadRequest, "kind must be projection or summary")
		return
	}

	filename := fmt.Sprintf("proforma-%s-%s.csv", kind, runIDFrom(r.Context()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	var err error
	if kind == "summary" {
		err = WriteSummaryCSV(w, req.Input.Normalize(), true)
	} else {
		err = WriteProjectionCSV(w, RunProjection(req.Input, req.Years), true)
	}
	if err != nil {
		ws.logger.Error("writing csv", zap.String("kind", kind), zap.Error(err))
	}
}
