package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestServer() *WebServer {
	return NewWebServer(nil, "localhost:0", zap.NewNop())
}

func postJSON(t *testing.T, ws *WebServer, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return postRaw(ws, path, string(data))
}

func postRaw(ws *WebServer, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

// =============================================================================
// Input and Validation
// =============================================================================

func TestWebServer_GetInputServesDemo(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/input", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Input == nil || resp.Input.Title == "" {
		t.Errorf("expected the demo input, got %+v", resp)
	}

	runID := rec.Header().Get("X-Run-ID")
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("X-Run-ID %q is not a UUID: %v", runID, err)
	}
	if resp.RunID != runID {
		t.Errorf("body run_id %q does not match header %q", resp.RunID, runID)
	}
}

func TestWebServer_MethodNotAllowed(t *testing.T) {
	ws := newTestServer()
	for _, path := range []string{"/api/project", "/api/metrics", "/api/sensitivity"} {
		rec := httptest.NewRecorder()
		ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: expected 405, got %d", path, rec.Code)
		}
	}

	rec := postRaw(ws, "/api/input", "{}")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/input: expected 405, got %d", rec.Code)
	}
}

func TestWebServer_BadRequests(t *testing.T) {
	ws := newTestServer()

	tests := []struct {
		body        string
		description string
	}{
		{`{"input": 42}`, "input of the wrong type"},
		{`{"years": 10}`, "missing input"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			rec := postRaw(ws, "/api/project", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			resp := decodeResponse(t, rec)
			if resp.Success || resp.Error == "" {
				t.Errorf("expected an error response, got %+v", resp)
			}
		})
	}
}

func TestWebServer_ValidationFailure(t *testing.T) {
	ws := newTestServer()
	in := simpleTestInput()
	in.Property.LandAreaM2 = 0

	rec := postJSON(t, ws, "/api/project", APIRequest{Input: in})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !fieldsOf(resp.ValidationErrors)["property.land_area_m2"] {
		t.Errorf("expected a land area error, got %v", resp.ValidationErrors)
	}

	rec = postJSON(t, ws, "/api/validate", APIRequest{Input: in})
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success || len(resp.ValidationErrors) == 0 {
		t.Errorf("validate: expected success=false with errors, got %+v", resp)
	}
}

// =============================================================================
// Projection Endpoints
// =============================================================================

func TestWebServer_Project(t *testing.T) {
	ws := newTestServer()
	rec := postJSON(t, ws, "/api/project", APIRequest{Input: mustLoadDemo(t)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if len(resp.Years) != DefaultProjectionYears {
		t.Fatalf("expected %d years, got %d", DefaultProjectionYears, len(resp.Years))
	}
	if resp.Metrics == nil || resp.Metrics.IRR == nil {
		t.Error("expected metrics with an IRR")
	}
	if resp.Depreciation == nil || resp.Depreciation.BuildingLife != 47 {
		t.Errorf("expected RC depreciation schedule, got %+v", resp.Depreciation)
	}
	if resp.Funding == nil || resp.Funding.Gap != 0 {
		t.Errorf("expected a balanced funding summary, got %+v", resp.Funding)
	}
	if resp.Years[0].DSCR == nil {
		t.Error("expected a year-1 DSCR for a leveraged project")
	}
}

func TestWebServer_ProjectHonoursYears(t *testing.T) {
	ws := newTestServer()
	rec := postJSON(t, ws, "/api/project", APIRequest{Input: mustLoadDemo(t), Years: 10})
	if resp := decodeResponse(t, rec); len(resp.Years) != 10 {
		t.Errorf("expected 10 years, got %d", len(resp.Years))
	}
}

func TestWebServer_UnleveredDSCRIsNull(t *testing.T) {
	ws := newTestServer()
	in := simpleTestInput()
	in.Funding.Loans = nil

	rec := postJSON(t, ws, "/api/project", APIRequest{Input: in, Years: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	years := raw["years"].([]any)
	first := years[0].(map[string]any)
	if v, ok := first["dscr"]; !ok || v != nil {
		t.Errorf("expected dscr: null, got %v (present=%v)", v, ok)
	}
	metrics := raw["metrics"].(map[string]any)
	if v, ok := metrics["year1_dscr"]; !ok || v != nil {
		t.Errorf("expected year1_dscr: null, got %v (present=%v)", v, ok)
	}
}

func TestWebServer_AcceptsCommentedBody(t *testing.T) {
	data, err := json.Marshal(mustLoadDemo(t))
	if err != nil {
		t.Fatal(err)
	}
	body := "{\n  # hand-written request\n  \"years\": 5,\n  \"input\": " + string(data) + "\n}"

	rec := postRaw(newTestServer(), "/api/metrics", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); resp.Metrics == nil {
		t.Error("expected metrics")
	}
}

func TestWebServer_ExitWithSaleYears(t *testing.T) {
	ws := newTestServer()
	rec := postJSON(t, ws, "/api/exit", APIRequest{Input: mustLoadDemo(t), SaleYears: []int{5, 40}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if len(resp.Exits) != 2 {
		t.Fatalf("expected 2 exits, got %d", len(resp.Exits))
	}
	if resp.Exits[0].SaleYear != 5 || resp.Exits[0].SalePrice <= 0 {
		t.Errorf("year 5: unexpected exit %+v", resp.Exits[0])
	}
	if resp.Exits[1] != (ExitAnalysis{SaleYear: 40}) {
		t.Errorf("year 40: expected a zero result, got %+v", resp.Exits[1])
	}
}

func TestWebServer_Scenarios(t *testing.T) {
	rec := postJSON(t, newTestServer(), "/api/scenarios", APIRequest{Input: mustLoadDemo(t)})
	resp := decodeResponse(t, rec)
	if len(resp.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(resp.Scenarios))
	}
	if resp.Scenarios[2].Name != "pessimistic" {
		t.Errorf("expected pessimistic last, got %s", resp.Scenarios[2].Name)
	}
}

func TestWebServer_Sensitivity(t *testing.T) {
	ws := newTestServer()
	rec := postJSON(t, ws, "/api/sensitivity", APIRequest{
		Input:             mustLoadDemo(t),
		RentDeclineRange:  &RateRange{Min: 0, Max: 1, Step: 0.5},
		VacancyRiseValues: []float64{0, 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	m := decodeResponse(t, rec).Sensitivity
	if m == nil || len(m.Cells) != 2 || len(m.Cells[0]) != 3 {
		t.Fatalf("expected a 2×3 grid, got %+v", m)
	}

	rec = postJSON(t, ws, "/api/sensitivity", APIRequest{
		Input:            mustLoadDemo(t),
		RentDeclineRange: &RateRange{Min: 0, Max: 1, Step: 0},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero step: expected 400, got %d", rec.Code)
	}
}

func TestWebServer_SensitivityAxisLimit(t *testing.T) {
	ws := newTestServer()

	tests := []struct {
		req         APIRequest
		description string
	}{
		{APIRequest{RentDeclineRange: &RateRange{Min: 0, Max: 100, Step: 1e-4}}, "range of a million values"},
		{APIRequest{VacancyRiseValues: make([]float64, MaxSensitivityAxisValues+1)}, "too many explicit values"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			tc.req.Input = mustLoadDemo(t)
			rec := postJSON(t, ws, "/api/sensitivity", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "too many values") {
				t.Errorf("unexpected error %q", resp.Error)
			}
		})
	}
}

func TestWebServer_EstimateCosts(t *testing.T) {
	in := simpleTestInput()
	in.Budget = BudgetConfig{LandPrice: 6000, BuildingWorksCost: 9000}

	rec := postJSON(t, newTestServer(), "/api/estimate-costs", APIRequest{Input: in})
	resp := decodeResponse(t, rec)
	if resp.Estimate == nil {
		t.Fatal("expected an estimate")
	}
	if resp.Estimate.RegistrationTax != 81 || resp.Estimate.AcquisitionTax != 225 {
		t.Errorf("unexpected estimate %+v", resp.Estimate)
	}
}

// =============================================================================
// CSV Export
// =============================================================================

func TestWebServer_ExportCSV(t *testing.T) {
	ws := newTestServer()

	rec := postJSON(t, ws, "/api/export-csv", APIRequest{Input: mustLoadDemo(t), Years: 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "proforma-projection-") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if rows := readCSV(t, rec.Body.Bytes()); len(rows) != 6 {
		t.Errorf("expected header plus 5 rows, got %d", len(rows))
	}

	rec = postJSON(t, ws, "/api/export-csv?kind=summary", APIRequest{Input: mustLoadDemo(t)})
	if !bytes.Contains(rec.Body.Bytes(), []byte("Category,Item,Value,Unit")) {
		t.Errorf("expected the summary header, got %s", rec.Body.String())
	}

	rec = postJSON(t, ws, "/api/export-csv?kind=pdf", APIRequest{Input: mustLoadDemo(t)})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", rec.Code)
	}
}
