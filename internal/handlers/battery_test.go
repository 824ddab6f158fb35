package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/models"
	"battery_analysis/internal/service"
)

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		for k, vv := range jsonHeader() {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["status"] != statusOK {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestBatteryHandlers_RegisterGetListSummary(t *testing.T) {
	reg := &mockRegistration{
		battery: models.Battery{ID: 4, UserID: 1, Type: "a", NominalCharge: 2.5},
		list:    []models.Battery{{ID: 1}, {ID: 4}},
		counts:  []models.TypeCount{{Type: "a", Count: 2}},
	}
	r := newTestRouter(&service.Service{Registration: reg})

	// POST register → 201 with battery
	w := do(t, r, http.MethodPost, "/api/v1/batteries", `{"owner":"alice","type":"A","nominal_charge":2.5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status=%d, body=%s", w.Code, w.Body.String())
	}
	if reg.lastReg.Owner != "alice" || reg.lastReg.Type != "A" || reg.lastReg.NominalCharge != 2.5 {
		t.Fatalf("wrong register params: %+v", reg.lastReg)
	}
	var regResp struct {
		Status  string         `json:"status"`
		Battery models.Battery `json:"battery"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &regResp)
	if regResp.Status != statusRegistered || regResp.Battery.ID != 4 {
		t.Fatalf("bad register response: %+v", regResp)
	}

	// GET one → 200
	w = do(t, r, http.MethodGet, "/api/v1/batteries/4", "")
	if w.Code != http.StatusOK || reg.lastGet != 4 {
		t.Fatalf("get status=%d lastGet=%d", w.Code, reg.lastGet)
	}

	// GET list → count
	w = do(t, r, http.MethodGet, "/api/v1/batteries", "")
	var listResp struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &listResp)
	if w.Code != http.StatusOK || listResp.Count != 2 {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}

	// GET summary is not captured by /:id
	w = do(t, r, http.MethodGet, "/api/v1/batteries/summary", "")
	var sumResp struct {
		Types []models.TypeCount `json:"types"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &sumResp)
	if w.Code != http.StatusOK || len(sumResp.Types) != 1 || sumResp.Types[0].Count != 2 {
		t.Fatalf("summary status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestBatteryHandlers_RegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"owner":`, nil, http.StatusBadRequest},
		{"missing owner", `{"type":"a","nominal_charge":1}`, nil, http.StatusBadRequest},
		{"service rejects", `{"owner":"x","type":"a","nominal_charge":-1}`, fmt.Errorf("%w: nominal", service.ErrInvalidInput), http.StatusBadRequest},
		{"storage failure", `{"owner":"x","type":"a","nominal_charge":1}`, errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Registration: &mockRegistration{err: tc.err}})
			w := do(t, r, http.MethodPost, "/api/v1/batteries", tc.body)
			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestBatteryHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("battery 9: %w", service.ErrBatteryNotFound), http.StatusNotFound},
		{"insufficient data", fmt.Errorf("%w: need 30 samples", analysis.ErrInsufficientData), http.StatusUnprocessableEntity},
		{"degenerate curve", analysis.ErrDegenerateCurve, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			an := &mockAnalysis{err: tc.err}
			r := newTestRouter(&service.Service{Analysis: an})
			w := do(t, r, http.MethodGet, "/api/v1/batteries/9/curve/first", "")
			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestBatteryHandlers_AppendSamples(t *testing.T) {
	reg := &mockRegistration{battery: models.Battery{ID: 2}}
	tel := &mockTelemetry{
		ica:  models.IcaSample{ID: 11, BatteryID: 2, Charge: 0.4, Voltage: 3.6},
		ccct: models.CcctSample{ID: 12, BatteryID: 2, OverallCharge: 2, SOC: 0.8, ElapsedTime: 30},
	}
	r := newTestRouter(&service.Service{Registration: reg, Telemetry: tel})

	w := do(t, r, http.MethodPost, "/api/v1/batteries/2/ica", `{"charge":0.4,"voltage":3.6}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("ica status=%d, body=%s", w.Code, w.Body.String())
	}
	if tel.lastID != 2 || tel.lastValues != [2]float64{0.4, 3.6} {
		t.Fatalf("wrong ica call: id=%d values=%v", tel.lastID, tel.lastValues)
	}
	var icaResp struct {
		Status  string           `json:"status"`
		Sample  models.IcaSample `json:"sample"`
		Battery *models.Battery  `json:"battery"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &icaResp)
	if icaResp.Status != statusAppended || icaResp.Sample.ID != 11 || icaResp.Battery == nil {
		t.Fatalf("bad ica response: %s", w.Body.String())
	}

	// zero is a valid reading; only absent fields are rejected
	w = do(t, r, http.MethodPost, "/api/v1/batteries/2/ccct", `{"overall_charge":2,"elapsed_time":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("ccct status=%d, body=%s", w.Code, w.Body.String())
	}
	if tel.lastValues != [2]float64{2, 0} {
		t.Fatalf("wrong ccct values: %v", tel.lastValues)
	}

	w = do(t, r, http.MethodPost, "/api/v1/batteries/2/ccct", `{"overall_charge":2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing elapsed_time, got %d", w.Code)
	}

	tel.err = fmt.Errorf("%w: charge must be finite", service.ErrInvalidInput)
	w = do(t, r, http.MethodPost, "/api/v1/batteries/2/ica", `{"charge":1,"voltage":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from service validation, got %d", w.Code)
	}
}

func TestBatteryHandlers_InvalidID(t *testing.T) {
	r := newTestRouter(&service.Service{Status: &mockStatus{}})
	for _, id := range []string{"0", "-3", "abc"} {
		w := do(t, r, http.MethodGet, "/api/v1/batteries/"+id+"/status", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, w.Code)
		}
	}
}

func TestBatteryHandlers_StatusReanalyze(t *testing.T) {
	stop := 120.0
	st := &mockStatus{status: models.BatteryStatus{
		Battery: models.Battery{ID: 5, StopTime: &stop},
		State:   models.StateOperational,
	}}
	an := &mockAnalysis{outcomes: []analysis.Outcome{
		{Operation: analysis.OpLeftBorder, BatteryID: 5, Status: analysis.StatusApplied, Value: 3.61},
		{Operation: analysis.OpRightBorder, BatteryID: 5, Status: analysis.StatusWaiting, Reason: analysis.ErrInsufficientData},
	}}
	r := newTestRouter(&service.Service{Status: st, Analysis: an})

	w := do(t, r, http.MethodGet, "/api/v1/batteries/5/status", "")
	if w.Code != http.StatusOK || st.lastID != 5 {
		t.Fatalf("status code=%d lastID=%d", w.Code, st.lastID)
	}
	var got models.BatteryStatus
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.State != models.StateOperational || got.Battery.StopTime == nil || *got.Battery.StopTime != 120 {
		t.Fatalf("unexpected status: %+v", got)
	}

	w = do(t, r, http.MethodPost, "/api/v1/batteries/5/reanalyze", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reanalyze status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Outcomes []struct {
			Operation string   `json:"operation"`
			Status    string   `json:"status"`
			Value     *float64 `json:"value"`
			Reason    string   `json:"reason"`
		} `json:"outcomes"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if len(out.Outcomes) != 2 {
		t.Fatalf("want 2 outcomes, got %s", w.Body.String())
	}
	if out.Outcomes[0].Value == nil || *out.Outcomes[0].Value != 3.61 {
		t.Fatalf("applied outcome without value: %+v", out.Outcomes[0])
	}
	if out.Outcomes[1].Value != nil || out.Outcomes[1].Reason != "insufficient data" {
		t.Fatalf("waiting outcome: %+v", out.Outcomes[1])
	}
}

func TestBatteryHandlers_Curve(t *testing.T) {
	an := &mockAnalysis{
		diag:  analysis.Diagnostics{Peaks: []analysis.Peak{{Index: 3}}},
		chart: "\x89PNG fake",
	}
	r := newTestRouter(&service.Service{Analysis: an})

	w := do(t, r, http.MethodGet, "/api/v1/batteries/3/curve/second", "")
	if w.Code != http.StatusOK || an.lastStage.Name != analysis.SecondCycle.Name {
		t.Fatalf("curve status=%d stage=%v", w.Code, an.lastStage)
	}

	w = do(t, r, http.MethodGet, "/api/v1/batteries/3/curve/third", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stage, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/batteries/3/curve/1/chart.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("chart status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	if w.Body.String() != an.chart || an.lastStage.Name != analysis.FirstCycle.Name {
		t.Fatalf("unexpected chart body %q for stage %v", w.Body.String(), an.lastStage)
	}
}
