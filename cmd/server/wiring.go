package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/irfndi/fundamentals-ai-go/internal/api"
	"github.com/irfndi/fundamentals-ai-go/internal/api/handlers"
	"github.com/irfndi/fundamentals-ai-go/internal/cache"
	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/services"
)

// application holds the wired services shared by the server and the
// correlate command.
type application struct {
	analysis       *services.AnalysisService
	correlationJob *services.CorrelationJob
	similarity     *services.SimilarityService
	notifier       *services.NotificationService
	router         *gin.Engine
}

// components are the connection-level inputs of wire. redisClient and the
// health checkers may be nil.
type components struct {
	cfg         *config.Config
	logger      *logging.StandardLogger
	pool        database.DatabasePool
	redisClient *redis.Client
	dbHealth    handlers.HealthChecker
	redisHealth handlers.HealthChecker
	recorder    *metrics.Recorder
}

func newApplication(rt *runtimeDeps, recorder *metrics.Recorder) *application {
	c := components{
		cfg:      rt.cfg,
		logger:   rt.logger,
		pool:     database.NewTracedPool(rt.db.Pool, rt.logger),
		dbHealth: rt.db,
		recorder: recorder,
	}
	if rt.redis != nil {
		c.redisClient = rt.redis.Client
		c.redisHealth = rt.redis
	}
	return wire(c)
}

func wire(c components) *application {
	cfg := c.cfg

	companyRepo := database.NewCompanyRepository(c.pool)
	correlationRepo := database.NewCorrelationRepository(c.pool)
	distanceRepo := database.NewDistanceRepository(c.pool)

	var analysisCache *cache.AnalysisCache
	if c.redisClient != nil {
		analysisCache = cache.NewAnalysisCache(c.redisClient, cfg.Analysis.CacheTTLDuration(), c.logger, c.recorder)
	}

	analysis := services.NewAnalysisService(companyRepo, analysisCache, cfg.Analysis, c.logger)

	notifier := services.NewNotificationService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, c.logger).
		WithRecorder(c.recorder)

	var streakNotifier services.StreakNotifier
	if notifier.Enabled() {
		streakNotifier = notifier
	}

	job := services.NewCorrelationJob(
		companyRepo,
		correlationRepo,
		analysis,
		analysisCache,
		streakNotifier,
		c.recorder,
		c.logger,
		services.CorrelationJobConfig{
			Concurrency:    cfg.Analysis.BatchConcurrency,
			AlertThreshold: cfg.Telegram.StreakAlertThreshold,
		},
	)

	similarity := services.NewSimilarityService(companyRepo, distanceRepo, c.recorder, c.logger, services.SimilarityConfig{
		Reference:   cfg.Analysis.ReferenceSymbol,
		Quarters:    cfg.Analysis.DTWQuarters,
		Concurrency: cfg.Analysis.BatchConcurrency,
	})

	deps := api.Dependencies{
		Config:         cfg,
		Logger:         c.logger,
		DB:             c.dbHealth,
		Redis:          c.redisHealth,
		Analysis:       analysis,
		Correlations:   correlationRepo,
		Similarity:     similarity,
		CorrelationJob: job,
		Metrics:        c.recorder,
	}
	if analysisCache != nil {
		deps.Cache = analysisCache
	}

	return &application{
		analysis:       analysis,
		correlationJob: job,
		similarity:     similarity,
		notifier:       notifier,
		router:         api.NewRouter(deps),
	}
}
