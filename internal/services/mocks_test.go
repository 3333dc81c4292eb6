package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

type MockCompanyReader struct {
	mock.Mock
}

func (m *MockCompanyReader) ListSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	symbols, _ := args.Get(0).([]string)
	return symbols, args.Error(1)
}

func (m *MockCompanyReader) GetCompany(ctx context.Context, symbol string) (*models.Company, error) {
	args := m.Called(ctx, symbol)
	company, _ := args.Get(0).(*models.Company)
	return company, args.Error(1)
}

func (m *MockCompanyReader) GetMetric(ctx context.Context, symbol string, metric models.Metric) (models.QuarterlySeries, error) {
	args := m.Called(ctx, symbol, metric)
	series, _ := args.Get(0).(models.QuarterlySeries)
	return series, args.Error(1)
}

func (m *MockCompanyReader) ListCompanies(ctx context.Context) ([]models.Company, error) {
	args := m.Called(ctx)
	companies, _ := args.Get(0).([]models.Company)
	return companies, args.Error(1)
}

type MockCorrelationStore struct {
	mock.Mock
}

func (m *MockCorrelationStore) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCorrelationStore) Upsert(ctx context.Context, row *models.CompanyCorrelation) error {
	return m.Called(ctx, row).Error(0)
}

type MockDistanceStore struct {
	mock.Mock
}

func (m *MockDistanceStore) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDistanceStore) Upsert(ctx context.Context, reference, symbol string, distance float64) error {
	return m.Called(ctx, reference, symbol, distance).Error(0)
}

func (m *MockDistanceStore) Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error) {
	args := m.Called(ctx, reference, limit)
	rows, _ := args.Get(0).([]models.SeriesDistance)
	return rows, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStreaks(ctx context.Context, alerts []models.StreakAlert) error {
	return m.Called(ctx, alerts).Error(0)
}

type fakeJobRecorder struct {
	mu           sync.Mutex
	companies    map[string]int
	runs         []string
	correlations map[string]float64
}

func newFakeJobRecorder() *fakeJobRecorder {
	return &fakeJobRecorder{companies: map[string]int{}, correlations: map[string]float64{}}
}

func (f *fakeJobRecorder) RecordCompany(job, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companies[job+"/"+result]++
}

func (f *fakeJobRecorder) RecordJobRun(job string, _ time.Duration, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, job)
}

func (f *fakeJobRecorder) RecordCorrelation(symbol string, score float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.correlations[symbol] = score
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		SellThreshold:    -7,
		StreakMinRun:     2,
		ScreenWindow:     2,
		MinMarketCap:     5,
		MinROIC:          0,
		ReferenceSymbol:  "REF",
		DTWQuarters:      4,
		BatchConcurrency: 2,
	}
}

// growingCompany has three strictly increasing metrics of equal length.
func growingCompany(symbol string) models.Company {
	return models.Company{
		Symbol:    symbol,
		Sector:    "Industrials",
		Revenue:   models.NewQuarterlySeries(100, 110, 120, 130),
		MarketCap: models.NewQuarterlySeries(10, 11, 12, 13),
		ROIC:      models.NewQuarterlySeries(1, 2, 3, 4),
	}
}
