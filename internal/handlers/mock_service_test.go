package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/chart"
	"battery_analysis/internal/models"
	"battery_analysis/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockRegistration struct {
	battery  models.Battery
	list     []models.Battery
	counts   []models.TypeCount
	err      error
	lastReg  service.RegisterParams
	lastGet  int
	getCalls int
}

func (m *mockRegistration) Register(ctx context.Context, p service.RegisterParams) (models.Battery, error) {
	m.lastReg = p
	return m.battery, m.err
}
func (m *mockRegistration) Get(ctx context.Context, id int) (models.Battery, error) {
	m.getCalls++
	m.lastGet = id
	return m.battery, m.err
}
func (m *mockRegistration) List(ctx context.Context) ([]models.Battery, error) {
	return m.list, m.err
}
func (m *mockRegistration) Summary(ctx context.Context) ([]models.TypeCount, error) {
	return m.counts, m.err
}

type mockTelemetry struct {
	ica        models.IcaSample
	ccct       models.CcctSample
	err        error
	lastID     int
	lastValues [2]float64
}

func (m *mockTelemetry) AppendIca(ctx context.Context, batteryID int, charge, voltage float64) (models.IcaSample, error) {
	m.lastID = batteryID
	m.lastValues = [2]float64{charge, voltage}
	return m.ica, m.err
}
func (m *mockTelemetry) AppendCcct(ctx context.Context, batteryID int, overall, elapsed float64) (models.CcctSample, error) {
	m.lastID = batteryID
	m.lastValues = [2]float64{overall, elapsed}
	return m.ccct, m.err
}

type mockStatus struct {
	status models.BatteryStatus
	err    error
	lastID int
}

func (m *mockStatus) GetStatus(ctx context.Context, batteryID int) (models.BatteryStatus, error) {
	m.lastID = batteryID
	return m.status, m.err
}

type mockAnalysis struct {
	outcomes  []analysis.Outcome
	diag      analysis.Diagnostics
	chart     string
	err       error
	lastStage analysis.Stage
	lastID    int
}

func (m *mockAnalysis) Reanalyze(ctx context.Context, batteryID int) ([]analysis.Outcome, error) {
	m.lastID = batteryID
	return m.outcomes, m.err
}
func (m *mockAnalysis) Curve(ctx context.Context, batteryID int, stage analysis.Stage) (analysis.Diagnostics, error) {
	m.lastID = batteryID
	m.lastStage = stage
	return m.diag, m.err
}
func (m *mockAnalysis) RenderCurve(ctx context.Context, batteryID int, stage analysis.Stage, w io.Writer, opts chart.Options) error {
	m.lastID = batteryID
	m.lastStage = stage
	if m.err != nil {
		return m.err
	}
	_, err := io.Copy(w, strings.NewReader(m.chart))
	return err
}

type mockEventLog struct {
	resp   []models.AnalysisEvent
	err    error
	lastF  service.LogFilter
	called int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.AnalysisEvent, error) {
	m.called++
	m.lastF = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
