package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/irfndi/fundamentals-ai-go/internal/api/handlers"
	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/middleware"
	"github.com/irfndi/fundamentals-ai-go/internal/telemetry"
)

// Dependencies are the collaborators the HTTP layer is built from. Cache
// and Metrics may be nil.
type Dependencies struct {
	Config       *config.Config
	Logger       *logging.StandardLogger
	DB           handlers.HealthChecker
	Redis        handlers.HealthChecker
	Analysis     handlers.AnalysisProvider
	Correlations handlers.CorrelationReader
	Similarity   interface {
		handlers.SimilarityProvider
		handlers.SimilarityRunner
	}
	CorrelationJob handlers.CorrelationRunner
	Cache          handlers.AnalysisCacheAdmin
	Metrics        MetricsExporter
}

// MetricsExporter serves the Prometheus scrape endpoint and records requests.
type MetricsExporter interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

// NewRouter creates a gin engine with the global middleware installed.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(deps.Config.Telemetry.ServiceName))
	router.Use(middleware.TelemetryMiddleware())

	var recorder middleware.HTTPRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	router.Use(middleware.RequestLogger(deps.Logger, recorder))
	router.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))

	SetupRoutes(router, deps)
	return router
}

// SetupRoutes registers every endpoint on router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis, telemetry.ServiceVersion)
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	companyHandler := handlers.NewCompanyHandler(deps.Analysis, deps.Logger)
	correlationHandler := handlers.NewCorrelationHandler(deps.Correlations, deps.Logger)
	similarityHandler := handlers.NewSimilarityHandler(deps.Similarity, deps.Logger)
	jobHandler := handlers.NewJobHandler(deps.CorrelationJob, deps.Similarity, deps.Logger)
	adminMiddleware := middleware.NewAdminMiddleware(deps.Config.Security)

	v1 := router.Group("/api/v1")
	{
		companies := v1.Group("/companies")
		{
			companies.GET("", companyHandler.ListCompanies)
			companies.GET("/screen", companyHandler.Screen)
			companies.GET("/:symbol", companyHandler.GetCompany)
			companies.GET("/:symbol/codes", companyHandler.GetCodes)
			companies.GET("/:symbol/colors", companyHandler.GetColors)
			companies.GET("/:symbol/summary", companyHandler.GetSummary)
		}

		correlations := v1.Group("/correlations")
		{
			correlations.GET("", correlationHandler.ListCorrelations)
			correlations.GET("/:symbol", correlationHandler.GetCorrelation)
		}

		v1.GET("/similarity", similarityHandler.GetNearest)

		admin := v1.Group("/admin")
		admin.Use(adminMiddleware.RequireAdminAuth())
		{
			jobs := admin.Group("/jobs")
			{
				jobs.GET("/correlation", jobHandler.GetCorrelationStatus)
				jobs.POST("/correlation", jobHandler.RunCorrelation)
				jobs.POST("/similarity", jobHandler.RunSimilarity)
			}

			if deps.Cache != nil {
				cacheHandler := handlers.NewCacheHandler(deps.Cache, deps.Logger)
				cacheGroup := admin.Group("/cache")
				{
					cacheGroup.GET("/stats", cacheHandler.GetCacheStats)
					cacheGroup.DELETE("", cacheHandler.ClearCache)
					cacheGroup.DELETE("/:symbol", cacheHandler.InvalidateSymbol)
				}
			}
		}
	}
}
