package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/irfndi/fundamentals-ai-go/internal/cache"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
	"github.com/irfndi/fundamentals-ai-go/internal/telemetry"
)

// ErrJobRunning is returned when a run is requested while one is in progress.
var ErrJobRunning = errors.New("job is already running")

// CorrelationStore persists per-company correlation rows.
type CorrelationStore interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, row *models.CompanyCorrelation) error
}

// StreakNotifier delivers streak alerts.
type StreakNotifier interface {
	NotifyStreaks(ctx context.Context, alerts []models.StreakAlert) error
}

// JobRecorder receives batch job metrics. *metrics.Recorder implements it.
type JobRecorder interface {
	RecordCompany(job, result string)
	RecordJobRun(job string, duration time.Duration, finishedAt time.Time)
	RecordCorrelation(symbol string, score float64)
}

// CorrelationJobConfig tunes a CorrelationJob.
type CorrelationJobConfig struct {
	Concurrency    int
	AlertThreshold int
}

// CorrelationJob recomputes change codes and correlation scores for every
// company and stores them in company_correlation. A failing company is
// recorded in the report and does not stop the batch.
type CorrelationJob struct {
	companies CompanyReader
	store     CorrelationStore
	analysis  *AnalysisService
	cache     *cache.AnalysisCache
	notifier  StreakNotifier
	recorder  JobRecorder
	tracer    *telemetry.BusinessTracer
	logger    *logging.StandardLogger
	cfg       CorrelationJobConfig

	runMu       sync.Mutex
	schemaReady bool

	reportMu   sync.RWMutex
	lastReport *models.JobReport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCorrelationJob creates the batch job. analysisCache, notifier and
// recorder may be nil.
func NewCorrelationJob(
	companies CompanyReader,
	store CorrelationStore,
	analysis *AnalysisService,
	analysisCache *cache.AnalysisCache,
	notifier StreakNotifier,
	recorder JobRecorder,
	logger *logging.StandardLogger,
	cfg CorrelationJobConfig,
) *CorrelationJob {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CorrelationJob{
		companies: companies,
		store:     store,
		analysis:  analysis,
		cache:     analysisCache,
		notifier:  notifier,
		recorder:  recorder,
		tracer:    telemetry.NewBusinessTracer(),
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Run processes every company once. It returns ErrJobRunning if another run
// holds the job.
func (j *CorrelationJob) Run(ctx context.Context, trigger string) (*models.JobReport, error) {
	if !j.runMu.TryLock() {
		return nil, ErrJobRunning
	}
	defer j.runMu.Unlock()

	ctx, span := j.tracer.TraceCorrelationBatch(ctx, trigger)
	defer span.End()

	report := &models.JobReport{Job: metrics.JobCorrelation, Trigger: trigger, StartedAt: time.Now().UTC()}

	if !j.schemaReady {
		if err := j.store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		j.schemaReady = true
	}

	companies, err := j.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		alerts []models.StreakAlert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.Concurrency)

	for i := range companies {
		company := &companies[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := j.processCompany(gctx, company)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.AddError(company.Symbol, err)
				j.recordCompany(metrics.ResultFailed)
				if j.logger != nil {
					j.logger.WithSymbol(company.Symbol).Warn("Correlation failed", "error", err.Error())
				}
			case result == nil:
				report.Skipped++
				j.recordCompany(metrics.ResultSkipped)
			default:
				report.Processed++
				j.recordCompany(metrics.ResultOK)
				if j.recorder != nil {
					j.recorder.RecordCorrelation(result.Symbol, result.All)
				}
				if j.cfg.AlertThreshold > 0 && result.ConsecutiveOnes >= j.cfg.AlertThreshold {
					alerts = append(alerts, models.StreakAlert{
						Symbol:          result.Symbol,
						ConsecutiveOnes: result.ConsecutiveOnes,
						CorrelationAll:  result.All,
					})
				}
			}
			return nil
		})
	}

	waitErr := g.Wait()
	report.FinishedAt = time.Now().UTC()
	// Failed companies count as processed attempts in the span outcome
	j.tracer.RecordBatchResult(span, telemetry.BatchResult{
		Processed: report.Processed + report.Failed,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
	})

	if waitErr != nil {
		j.setLastReport(report)
		return report, waitErr
	}

	if len(alerts) > 0 && j.notifier != nil {
		sort.Slice(alerts, func(a, b int) bool {
			if alerts[a].ConsecutiveOnes != alerts[b].ConsecutiveOnes {
				return alerts[a].ConsecutiveOnes > alerts[b].ConsecutiveOnes
			}
			return alerts[a].Symbol < alerts[b].Symbol
		})
		if err := j.notifier.NotifyStreaks(ctx, alerts); err != nil {
			if j.logger != nil {
				j.logger.WithOperation("notify_streaks").Warn("Streak alert not delivered", "error", err.Error())
			}
		} else {
			report.Alerts = len(alerts)
		}
	}

	if j.recorder != nil {
		j.recorder.RecordJobRun(metrics.JobCorrelation, report.Duration(), report.FinishedAt)
	}
	if j.logger != nil {
		j.logger.LogBusinessEvent("correlation_batch_completed", map[string]interface{}{
			"trigger":     trigger,
			"processed":   report.Processed,
			"failed":      report.Failed,
			"skipped":     report.Skipped,
			"alerts":      report.Alerts,
			"duration_ms": report.Duration().Milliseconds(),
		})
	}

	j.setLastReport(report)
	return report, nil
}

// processCompany returns nil, nil for companies with no data at all.
func (j *CorrelationJob) processCompany(ctx context.Context, company *models.Company) (*models.CompanyCorrelation, error) {
	if company.DecodeErr != nil {
		return nil, company.DecodeErr
	}
	if len(company.Revenue) == 0 && len(company.MarketCap) == 0 && len(company.ROIC) == 0 {
		return nil, nil
	}

	ctx, span := j.tracer.TraceCompanyAnalysis(ctx, "correlation", company.Symbol)
	defer span.End()

	result, err := j.analysis.CorrelationFor(company)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := j.store.Upsert(ctx, result); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if _, err := j.cache.Invalidate(ctx, company.Symbol); err != nil && j.logger != nil {
		j.logger.WithSymbol(company.Symbol).Warn("Failed to invalidate cached analysis", "error", err.Error())
	}
	return result, nil
}

func (j *CorrelationJob) recordCompany(result string) {
	if j.recorder != nil {
		j.recorder.RecordCompany(metrics.JobCorrelation, result)
	}
}

func (j *CorrelationJob) setLastReport(report *models.JobReport) {
	j.reportMu.Lock()
	j.lastReport = report
	j.reportMu.Unlock()
}

// LastReport returns the report of the most recent run, or nil.
func (j *CorrelationJob) LastReport() *models.JobReport {
	j.reportMu.RLock()
	defer j.reportMu.RUnlock()
	return j.lastReport
}

// Start runs the job immediately and then every interval until Stop.
func (j *CorrelationJob) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	if j.logger != nil {
		j.logger.WithComponent("correlation_job").Info("Starting correlation scheduler", "interval", interval.String())
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.runScheduled("startup")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-j.ctx.Done():
				return
			case <-ticker.C:
				j.runScheduled("scheduler")
			}
		}
	}()
}

func (j *CorrelationJob) runScheduled(trigger string) {
	if _, err := j.Run(j.ctx, trigger); err != nil && !errors.Is(err, context.Canceled) && j.logger != nil {
		j.logger.WithComponent("correlation_job").Error("Scheduled correlation run failed", "error", err.Error())
	}
}

// Stop cancels the scheduler and waits for an in-flight run to return.
func (j *CorrelationJob) Stop() {
	if j.logger != nil {
		j.logger.WithComponent("correlation_job").Info("Stopping correlation scheduler")
	}
	j.cancel()
	j.wg.Wait()
}
