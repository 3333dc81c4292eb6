package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "mydatabase", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, -7.0, cfg.Analysis.SellThreshold)
	assert.Equal(t, 2, cfg.Analysis.StreakMinRun)
	assert.Equal(t, 5, cfg.Analysis.ScreenWindow)
	assert.Equal(t, 500_000_000.0, cfg.Analysis.MinMarketCap)
	assert.Equal(t, "DEZ:DE", cfg.Analysis.ReferenceSymbol)
	assert.Equal(t, 65, cfg.Analysis.DTWQuarters)
	assert.Equal(t, 24*time.Hour, cfg.Analysis.RecomputeEvery())
	assert.Equal(t, 10*time.Minute, cfg.Analysis.CacheTTLDuration())
	assert.Equal(t, 4, cfg.Telegram.StreakAlertThreshold)
	assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
}

func TestLoad_PostgresEnvironmentVariables(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_USER", "analyst")
	t.Setenv("POSTGRES_DB", "companies")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "analyst", cfg.Database.User)
	assert.Equal(t, "companies", cfg.Database.DBName)
}

func TestLoad_NestedEnvironmentOverride(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Development")
	t.Setenv("ANALYSIS_SELL_THRESHOLD", "-14")
	t.Setenv("ANALYSIS_DTW_QUARTERS", "70")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, -14.0, cfg.Analysis.SellThreshold)
	assert.Equal(t, 70, cfg.Analysis.DTWQuarters)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
}

func TestLoad_ProductionRequiresAdminKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ADMIN_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_API_KEY")

	t.Setenv("ADMIN_API_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Security.AdminAPIKey)
}

func validConfig() Config {
	return Config{
		Environment: "development",
		Analysis: AnalysisConfig{
			SellThreshold:     -7,
			StreakMinRun:      2,
			ScreenWindow:      5,
			DTWQuarters:       65,
			BatchConcurrency:  4,
			RecomputeInterval: "1h",
			CacheTTL:          "5m",
		},
		Telemetry: TelemetryConfig{Exporter: "otlp"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "positive threshold", mutate: func(c *Config) { c.Analysis.SellThreshold = 7 }, wantErr: "sell_threshold"},
		{name: "negative streak run", mutate: func(c *Config) { c.Analysis.StreakMinRun = -1 }, wantErr: "streak_min_run"},
		{name: "empty screen window", mutate: func(c *Config) { c.Analysis.ScreenWindow = 0 }, wantErr: "screen_window"},
		{name: "short dtw window", mutate: func(c *Config) { c.Analysis.DTWQuarters = 1 }, wantErr: "dtw_quarters"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Analysis.BatchConcurrency = 0 }, wantErr: "batch_concurrency"},
		{name: "bad interval", mutate: func(c *Config) { c.Analysis.RecomputeInterval = "daily" }, wantErr: "recompute_interval"},
		{name: "bad ttl", mutate: func(c *Config) { c.Analysis.CacheTTL = "soon" }, wantErr: "cache_ttl"},
		{name: "unknown exporter", mutate: func(c *Config) { c.Telemetry.Exporter = "jaeger" }, wantErr: "telemetry.exporter"},
		{name: "staging without key", mutate: func(c *Config) { c.Environment = "staging" }, wantErr: "ADMIN_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://u:p@localhost/d"
	assert.Equal(t, "postgres://u:p@localhost/d", cfg.DSN())
}

func TestAnalysisConfig_Durations(t *testing.T) {
	cfg := AnalysisConfig{RecomputeInterval: "", CacheTTL: "-1s"}
	assert.Equal(t, time.Duration(0), cfg.RecomputeEvery())
	assert.Equal(t, 10*time.Minute, cfg.CacheTTLDuration())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
