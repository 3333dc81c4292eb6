package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// HealthChecker is implemented by database.PostgresDB and database.RedisClient.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MemoryReader returns host memory usage in percent.
type MemoryReader func(ctx context.Context) (float64, error)

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db      HealthChecker
	redis   HealthChecker
	memory  MemoryReader
	version string
}

// HealthResponse represents the health status response.
type HealthResponse struct {
	// Status is "healthy", "degraded" or "unhealthy".
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Services      map[string]string `json:"services"`
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	MemoryUsedPct float64           `json:"memory_used_percent,omitempty"`
}

// NewHealthHandler creates a new instance of HealthHandler. db and redis may
// be nil when the dependency is not configured.
func NewHealthHandler(db, redis HealthChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		memory:  virtualMemoryUsed,
		version: version,
	}
}

func virtualMemoryUsed(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// HealthCheck reports database, Redis and memory status. Only the database
// is critical: without it the service answers 503.
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{
		"database": checkDependency(ctx, h.db),
		"redis":    checkDependency(ctx, h.redis),
	}

	status := "healthy"
	if services["redis"] != "healthy" {
		status = "degraded"
	}
	if services["database"] != "healthy" {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   h.version,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
	if h.memory != nil {
		if used, err := h.memory(ctx); err == nil {
			response.MemoryUsedPct = used
		}
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

// LivenessCheck only confirms the process is serving requests.
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func checkDependency(ctx context.Context, checker HealthChecker) string {
	if checker == nil {
		return "not configured"
	}
	if err := checker.HealthCheck(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
