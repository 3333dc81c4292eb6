package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

const (
	analysisPrefix = "analysis:"

	// KindSummary is the entry kind of a company summary.
	KindSummary = "summary"
)

// CodesKind is the entry kind of the change codes of metric.
func CodesKind(metric models.Metric) string {
	return "codes:" + string(metric)
}

// ColorsKind is the entry kind of the display colors of metric.
func ColorsKind(metric models.Metric) string {
	return "colors:" + string(metric)
}

// symbolKinds lists every per-company entry kind.
func symbolKinds() []string {
	kinds := make([]string, 0, 2*len(models.Metrics)+1)
	for _, m := range models.Metrics {
		kinds = append(kinds, CodesKind(m), ColorsKind(m))
	}
	return append(kinds, KindSummary)
}

// LookupRecorder receives one call per cache lookup.
type LookupRecorder interface {
	RecordCacheLookup(kind string, hit bool)
}

// AnalysisCacheEntry wraps a cached analysis result with metadata
type AnalysisCacheEntry struct {
	Payload  json.RawMessage `json:"payload"`
	CachedAt time.Time       `json:"cached_at"`
}

// AnalysisCacheStats tracks cache performance metrics
type AnalysisCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Errors int64 `json:"errors"`
}

// HitRate returns hits as a percentage of lookups.
func (s AnalysisCacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// AnalysisCache stores per-company analysis results in Redis under
// analysis:<kind>:<symbol>. A nil *AnalysisCache is valid and never hits.
type AnalysisCache struct {
	redis    *redis.Client
	ttl      time.Duration
	logger   *logging.StandardLogger
	recorder LookupRecorder

	mu    sync.RWMutex
	stats AnalysisCacheStats
}

// NewAnalysisCache creates a Redis-backed analysis cache. recorder may be nil.
func NewAnalysisCache(redisClient *redis.Client, ttl time.Duration, logger *logging.StandardLogger, recorder LookupRecorder) *AnalysisCache {
	return &AnalysisCache{
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger,
		recorder: recorder,
	}
}

// Key builds the Redis key for kind and symbol.
func Key(kind, symbol string) string {
	return analysisPrefix + kind + ":" + symbol
}

// Get loads the entry for kind and symbol into dest. Redis failures and
// undecodable entries are logged and reported as misses.
func (c *AnalysisCache) Get(ctx context.Context, kind, symbol string, dest interface{}) bool {
	if c == nil || c.redis == nil {
		return false
	}

	start := time.Now()
	key := Key(kind, symbol)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logError("get", key, err)
		}
		c.miss(kind)
		return false
	}

	var entry AnalysisCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logError("decode", key, err)
		c.miss(kind)
		return false
	}
	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		c.logError("decode", key, err)
		c.miss(kind)
		return false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(kind, true)
	}
	if c.logger != nil {
		c.logger.LogCacheOperation("get", key, true, time.Since(start).Milliseconds())
	}
	return true
}

// Set stores value for kind and symbol with the cache TTL.
func (c *AnalysisCache) Set(ctx context.Context, kind, symbol string, value interface{}) error {
	if c == nil || c.redis == nil {
		return nil
	}

	key := Key(kind, symbol)
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing %s: %w", key, err)
	}
	data, err := json.Marshal(AnalysisCacheEntry{Payload: payload, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("error serializing %s: %w", key, err)
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logError("set", key, err)
		return fmt.Errorf("redis error setting %s: %w", key, err)
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
	return nil
}

// Invalidate removes every cached entry for symbol. Keys are built from the
// known kinds since symbols may themselves contain ':'.
func (c *AnalysisCache) Invalidate(ctx context.Context, symbol string) (int, error) {
	if c == nil || c.redis == nil {
		return 0, nil
	}

	kinds := symbolKinds()
	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = Key(kind, symbol)
	}

	removed, err := c.redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("error invalidating %s: %w", symbol, err)
	}
	return int(removed), nil
}

// Clear removes all cached analysis entries.
func (c *AnalysisCache) Clear(ctx context.Context) (int, error) {
	if c == nil || c.redis == nil {
		return 0, nil
	}
	return c.deleteMatching(ctx, analysisPrefix+"*")
}

func (c *AnalysisCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	// Collect matching keys with SCAN
	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("error scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return 0, nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("error clearing cache: %w", err)
	}
	return len(keys), nil
}

// GetStats returns current cache statistics
func (c *AnalysisCache) GetStats() AnalysisCacheStats {
	if c == nil {
		return AnalysisCacheStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *AnalysisCache) miss(kind string) {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(kind, false)
	}
}

func (c *AnalysisCache) logError(op, key string, err error) {
	c.mu.Lock()
	c.stats.Errors++
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.WithComponent("analysis_cache").Warn("Cache operation failed",
			"operation", op,
			"key", key,
			"error", err.Error(),
		)
	}
}
