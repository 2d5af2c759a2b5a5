package handlers

import (
	"context"
	"net/http"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockETL struct {
	result service.CycleResult
	err    error
	calls  int
}

func (m *mockETL) RunCycle(ctx context.Context) (service.CycleResult, error) {
	m.calls++
	return m.result, m.err
}

type mockAnalyzer struct {
	wasteRecs  []models.Recommendation
	wasteErr   error
	report     models.ConsumptionReport
	reportErr  error
	allRecs    []models.Recommendation
	allErr     error
	wasteCalls int
	allCalls   int
}

func (m *mockAnalyzer) AnalyzeWaste(ctx context.Context) ([]models.Recommendation, error) {
	m.wasteCalls++
	return m.wasteRecs, m.wasteErr
}
func (m *mockAnalyzer) AnalyzeHighConsumption(ctx context.Context) (models.ConsumptionReport, error) {
	return m.report, m.reportErr
}
func (m *mockAnalyzer) RunAll(ctx context.Context) ([]models.Recommendation, error) {
	m.allCalls++
	return m.allRecs, m.allErr
}

type mockMetrics struct {
	snapshot models.StoreMetrics
	err      error
}

func (m *mockMetrics) Snapshot(ctx context.Context) (models.StoreMetrics, error) {
	return m.snapshot, m.err
}

type mockScheduler struct {
	startErr   error
	stopErr    error
	status     service.SchedulerStatus
	startCalls int
	stopCalls  int
}

func (m *mockScheduler) Start() error {
	m.startCalls++
	return m.startErr
}
func (m *mockScheduler) Stop() error {
	m.stopCalls++
	return m.stopErr
}
func (m *mockScheduler) Status() service.SchedulerStatus {
	return m.status
}

type mockAdmin struct {
	resetErr   error
	resetCalls int
}

func (m *mockAdmin) ResetStore(ctx context.Context) error {
	m.resetCalls++
	return m.resetErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
