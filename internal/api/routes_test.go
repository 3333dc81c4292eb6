package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

const testAdminKey = "route-test-key"

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

type stubAnalysis struct{}

func (stubAnalysis) ListSymbols(context.Context) ([]string, error) {
	return []string{"DEZ:DE"}, nil
}

func (stubAnalysis) Company(_ context.Context, symbol string) (*models.Company, error) {
	if symbol != "DEZ:DE" {
		return nil, database.ErrNotFound
	}
	return &models.Company{Symbol: symbol}, nil
}

func (stubAnalysis) Codes(_ context.Context, symbol string, metric models.Metric) (*models.MetricCodes, error) {
	return &models.MetricCodes{Symbol: symbol, Metric: metric}, nil
}

func (stubAnalysis) Colors(_ context.Context, symbol string, metric models.Metric) (*models.ColorSeries, error) {
	return &models.ColorSeries{Symbol: symbol, Metric: metric, Title: metric.Title()}, nil
}

func (stubAnalysis) Summary(_ context.Context, symbol string) (*models.CompanySummary, error) {
	return &models.CompanySummary{Symbol: symbol}, nil
}

func (stubAnalysis) Screen(context.Context) ([]models.ScreenResult, error) {
	return []models.ScreenResult{}, nil
}

func (stubAnalysis) Overview(context.Context) ([]models.CompanyOverview, error) {
	return []models.CompanyOverview{}, nil
}

type stubCorrelations struct{}

func (stubCorrelations) Get(_ context.Context, symbol string) (*models.CompanyCorrelation, error) {
	return &models.CompanyCorrelation{Symbol: symbol}, nil
}

func (stubCorrelations) List(context.Context, int, database.CorrelationOrder) ([]models.CompanyCorrelation, error) {
	return []models.CompanyCorrelation{}, nil
}

type stubSimilarity struct{ runs int }

func (s *stubSimilarity) Reference() string { return "DEZ:DE" }

func (s *stubSimilarity) Nearest(context.Context, string, int) ([]models.SeriesDistance, error) {
	return []models.SeriesDistance{}, nil
}

func (s *stubSimilarity) Run(_ context.Context, reference, trigger string) (*models.JobReport, error) {
	s.runs++
	return &models.JobReport{Job: metrics.JobSimilarity, Trigger: trigger}, nil
}

type stubJob struct{ runs int }

func (j *stubJob) Run(_ context.Context, trigger string) (*models.JobReport, error) {
	j.runs++
	return &models.JobReport{Job: metrics.JobCorrelation, Trigger: trigger}, nil
}

func (j *stubJob) LastReport() *models.JobReport { return nil }

func newTestEngine(t *testing.T) (*gin.Engine, *stubJob, *stubSimilarity) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Security:  config.SecurityConfig{AdminAPIKey: testAdminKey},
		Telemetry: config.TelemetryConfig{ServiceName: "fundamentals-ai-go-test"},
	}
	reg := prometheus.NewRegistry()
	job := &stubJob{}
	similarity := &stubSimilarity{}

	router := NewRouter(Dependencies{
		Config:         cfg,
		DB:             stubChecker{},
		Redis:          stubChecker{},
		Analysis:       stubAnalysis{},
		Correlations:   stubCorrelations{},
		Similarity:     similarity,
		CorrelationJob: job,
		Metrics:        metrics.NewWithRegistry(reg, reg),
	})
	return router, job, similarity
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	router, _, _ := newTestEngine(t)

	tests := []struct {
		target   string
		wantCode int
	}{
		{"/health", http.StatusOK},
		{"/live", http.StatusOK},
		{"/api/v1/companies", http.StatusOK},
		{"/api/v1/companies/screen", http.StatusOK},
		{"/api/v1/companies/DEZ:DE", http.StatusOK},
		{"/api/v1/companies/NYSE:NONE", http.StatusNotFound},
		{"/api/v1/companies/DEZ:DE/codes?metric=roic", http.StatusOK},
		{"/api/v1/companies/DEZ:DE/colors", http.StatusOK},
		{"/api/v1/companies/DEZ:DE/summary", http.StatusOK},
		{"/api/v1/correlations", http.StatusOK},
		{"/api/v1/correlations/DEZ:DE", http.StatusOK},
		{"/api/v1/similarity", http.StatusOK},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRoutes_AdminRequiresAuth(t *testing.T) {
	router, job, similarity := newTestEngine(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/correlation", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, job.runs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/correlation", nil)
	req.Header.Set("X-API-Key", testAdminKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"trigger":"api"`)
	assert.Equal(t, 1, job.runs)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/jobs/similarity", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, similarity.runs)

	// no cache configured, so the cache routes are not registered
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/cache", nil)
	req.Header.Set("X-API-Key", testAdminKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_MetricsEndpoint(t *testing.T) {
	router, _, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fundamentals_http_requests_total{method="GET",route="/api/v1/companies",status="200"} 1`)
}
