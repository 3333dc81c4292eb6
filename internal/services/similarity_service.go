package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
	"github.com/irfndi/fundamentals-ai-go/internal/telemetry"
	"github.com/irfndi/fundamentals-ai-go/internal/utils"
)

// DistanceStore persists DTW distances between a reference and other companies.
type DistanceStore interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, reference, symbol string, distance float64) error
	Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error)
}

// SimilarityConfig tunes a SimilarityService.
type SimilarityConfig struct {
	Reference   string
	Quarters    int
	Concurrency int
}

// SimilarityService ranks companies by how closely the shape of their recent
// market cap history follows a reference company. Both series are
// standardized before the DTW distance is taken, so scale does not matter.
type SimilarityService struct {
	companies CompanyReader
	store     DistanceStore
	recorder  JobRecorder
	tracer    *telemetry.BusinessTracer
	logger    *logging.StandardLogger
	cfg       SimilarityConfig

	runMu       sync.Mutex
	schemaReady bool
}

// NewSimilarityService creates a similarity service. recorder may be nil.
func NewSimilarityService(companies CompanyReader, store DistanceStore, recorder JobRecorder, logger *logging.StandardLogger, cfg SimilarityConfig) *SimilarityService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &SimilarityService{
		companies: companies,
		store:     store,
		recorder:  recorder,
		tracer:    telemetry.NewBusinessTracer(),
		logger:    logger,
		cfg:       cfg,
	}
}

// Reference returns the configured reference symbol.
func (s *SimilarityService) Reference() string {
	return s.cfg.Reference
}

// Run computes and stores the distance from reference to every other company
// with at least Quarters quarters of market cap. An empty reference selects
// the configured one.
func (s *SimilarityService) Run(ctx context.Context, reference, trigger string) (*models.JobReport, error) {
	if reference == "" {
		reference = s.cfg.Reference
	}
	if !s.runMu.TryLock() {
		return nil, ErrJobRunning
	}
	defer s.runMu.Unlock()

	ctx, span := s.tracer.TraceSimilarityRun(ctx, reference, s.cfg.Quarters)
	defer span.End()

	report := &models.JobReport{Job: metrics.JobSimilarity, Trigger: trigger, StartedAt: time.Now().UTC()}

	if !s.schemaReady {
		if err := s.store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		s.schemaReady = true
	}

	refSeries, err := s.companies.GetMetric(ctx, reference, models.MetricMarketCap)
	if err != nil {
		return nil, err
	}
	refWindow := lastN(refSeries.Values(), s.cfg.Quarters)
	if refWindow == nil {
		return nil, utils.NewValidationErrorf("reference %s has %d market cap quarters, need %d",
			reference, len(refSeries), s.cfg.Quarters)
	}
	refZ := standardize(refWindow)

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i := range companies {
		company := &companies[i]
		if company.Symbol == reference {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var (
				window []float64
				err    = company.DecodeErr
			)
			if err == nil {
				window = lastN(company.MarketCap.Values(), s.cfg.Quarters)
				if window != nil {
					err = s.store.Upsert(gctx, reference, company.Symbol, dtwDistance(refZ, standardize(window)))
				}
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.AddError(company.Symbol, err)
				s.recordCompany(metrics.ResultFailed)
				if s.logger != nil {
					s.logger.WithSymbol(company.Symbol).Warn("Similarity failed", "error", err.Error())
				}
			case window == nil:
				report.Skipped++
				s.recordCompany(metrics.ResultSkipped)
			default:
				report.Processed++
				s.recordCompany(metrics.ResultOK)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	report.FinishedAt = time.Now().UTC()
	s.tracer.RecordBatchResult(span, telemetry.BatchResult{
		Processed: report.Processed + report.Failed,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
	})
	if waitErr != nil {
		return report, waitErr
	}

	if s.recorder != nil {
		s.recorder.RecordJobRun(metrics.JobSimilarity, report.Duration(), report.FinishedAt)
	}
	if s.logger != nil {
		s.logger.LogBusinessEvent("similarity_run_completed", map[string]interface{}{
			"reference":   reference,
			"trigger":     trigger,
			"processed":   report.Processed,
			"failed":      report.Failed,
			"skipped":     report.Skipped,
			"duration_ms": report.Duration().Milliseconds(),
		})
	}
	return report, nil
}

// Nearest returns the stored distances to reference, closest first.
func (s *SimilarityService) Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error) {
	if reference == "" {
		reference = s.cfg.Reference
	}
	if limit <= 0 {
		return nil, utils.NewFieldError("limit", fmt.Sprintf("must be positive, got %d", limit))
	}
	return s.store.Nearest(ctx, reference, limit)
}

func (s *SimilarityService) recordCompany(result string) {
	if s.recorder != nil {
		s.recorder.RecordCompany(metrics.JobSimilarity, result)
	}
}
