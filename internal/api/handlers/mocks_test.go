package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/fundamentals-ai-go/internal/cache"
	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

type MockAnalysis struct {
	mock.Mock
}

func (m *MockAnalysis) ListSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	symbols, _ := args.Get(0).([]string)
	return symbols, args.Error(1)
}

func (m *MockAnalysis) Company(ctx context.Context, symbol string) (*models.Company, error) {
	args := m.Called(ctx, symbol)
	company, _ := args.Get(0).(*models.Company)
	return company, args.Error(1)
}

func (m *MockAnalysis) Codes(ctx context.Context, symbol string, metric models.Metric) (*models.MetricCodes, error) {
	args := m.Called(ctx, symbol, metric)
	codes, _ := args.Get(0).(*models.MetricCodes)
	return codes, args.Error(1)
}

func (m *MockAnalysis) Colors(ctx context.Context, symbol string, metric models.Metric) (*models.ColorSeries, error) {
	args := m.Called(ctx, symbol, metric)
	colors, _ := args.Get(0).(*models.ColorSeries)
	return colors, args.Error(1)
}

func (m *MockAnalysis) Summary(ctx context.Context, symbol string) (*models.CompanySummary, error) {
	args := m.Called(ctx, symbol)
	summary, _ := args.Get(0).(*models.CompanySummary)
	return summary, args.Error(1)
}

func (m *MockAnalysis) Screen(ctx context.Context) ([]models.ScreenResult, error) {
	args := m.Called(ctx)
	results, _ := args.Get(0).([]models.ScreenResult)
	return results, args.Error(1)
}

func (m *MockAnalysis) Overview(ctx context.Context) ([]models.CompanyOverview, error) {
	args := m.Called(ctx)
	overview, _ := args.Get(0).([]models.CompanyOverview)
	return overview, args.Error(1)
}

type MockCorrelationReader struct {
	mock.Mock
}

func (m *MockCorrelationReader) Get(ctx context.Context, symbol string) (*models.CompanyCorrelation, error) {
	args := m.Called(ctx, symbol)
	row, _ := args.Get(0).(*models.CompanyCorrelation)
	return row, args.Error(1)
}

func (m *MockCorrelationReader) List(ctx context.Context, limit int, order database.CorrelationOrder) ([]models.CompanyCorrelation, error) {
	args := m.Called(ctx, limit, order)
	rows, _ := args.Get(0).([]models.CompanyCorrelation)
	return rows, args.Error(1)
}

type MockSimilarity struct {
	mock.Mock
}

func (m *MockSimilarity) Reference() string {
	return m.Called().String(0)
}

func (m *MockSimilarity) Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error) {
	args := m.Called(ctx, reference, limit)
	rows, _ := args.Get(0).([]models.SeriesDistance)
	return rows, args.Error(1)
}

func (m *MockSimilarity) Run(ctx context.Context, reference, trigger string) (*models.JobReport, error) {
	args := m.Called(ctx, reference, trigger)
	report, _ := args.Get(0).(*models.JobReport)
	return report, args.Error(1)
}

type MockCorrelationJob struct {
	mock.Mock
}

func (m *MockCorrelationJob) Run(ctx context.Context, trigger string) (*models.JobReport, error) {
	args := m.Called(ctx, trigger)
	report, _ := args.Get(0).(*models.JobReport)
	return report, args.Error(1)
}

func (m *MockCorrelationJob) LastReport() *models.JobReport {
	report, _ := m.Called().Get(0).(*models.JobReport)
	return report
}

type MockCacheAdmin struct {
	mock.Mock
}

func (m *MockCacheAdmin) GetStats() cache.AnalysisCacheStats {
	return m.Called().Get(0).(cache.AnalysisCacheStats)
}

func (m *MockCacheAdmin) Invalidate(ctx context.Context, symbol string) (int, error) {
	args := m.Called(ctx, symbol)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheAdmin) Clear(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func serveHandler(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

