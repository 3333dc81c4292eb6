package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	Security    SecurityConfig  `mapstructure:"security"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	DatabaseURL string `mapstructure:"database_url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
}

// DSN returns DatabaseURL when set, otherwise a key/value connection string.
func (c DatabaseConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AnalysisConfig controls the change-code engine and the batch jobs built on it.
type AnalysisConfig struct {
	SellThreshold     float64 `mapstructure:"sell_threshold"`
	StreakMinRun      int     `mapstructure:"streak_min_run"`
	ScreenWindow      int     `mapstructure:"screen_window"`
	MinMarketCap      float64 `mapstructure:"min_market_cap"`
	MinROIC           float64 `mapstructure:"min_roic"`
	ReferenceSymbol   string  `mapstructure:"reference_symbol"`
	DTWQuarters       int     `mapstructure:"dtw_quarters"`
	BatchConcurrency  int     `mapstructure:"batch_concurrency"`
	RecomputeInterval string  `mapstructure:"recompute_interval"`
	CacheTTL          string  `mapstructure:"cache_ttl"`
}

// RecomputeEvery parses RecomputeInterval. Zero disables the scheduler.
func (c AnalysisConfig) RecomputeEvery() time.Duration {
	d, err := time.ParseDuration(c.RecomputeInterval)
	if err != nil {
		return 0
	}
	return d
}

// CacheTTLDuration parses CacheTTL, falling back to ten minutes.
func (c AnalysisConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

type TelegramConfig struct {
	BotToken             string `mapstructure:"bot_token" json:"-" yaml:"-"`
	ChatID               int64  `mapstructure:"chat_id"`
	StreakAlertThreshold int    `mapstructure:"streak_alert_threshold"`
}

type SecurityConfig struct {
	AdminAPIKey string `mapstructure:"admin_api_key" json:"-" yaml:"-"`
	JWTSecret   string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Exporter     string `mapstructure:"exporter"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	LogsEnabled  bool   `mapstructure:"logs_enabled"`
}

func Load() (*Config, error) {
	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// POSTGRES_* names are accepted alongside the nested DATABASE_* keys
	bindings := map[string]string{
		"database.host":          "POSTGRES_HOST",
		"database.port":          "POSTGRES_PORT",
		"database.user":          "POSTGRES_USER",
		"database.password":      "POSTGRES_PASSWORD",
		"database.dbname":        "POSTGRES_DB",
		"database.database_url":  "DATABASE_URL",
		"security.admin_api_key": "ADMIN_API_KEY",
		"security.jwt_secret":    "JWT_SECRET",
		"telegram.bot_token":     "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":       "TELEGRAM_CHAT_ID",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Environment != "development" && c.Environment != "test" && c.Security.AdminAPIKey == "" {
		return errors.New("ADMIN_API_KEY environment variable is required in non-development environments")
	}

	if c.Analysis.SellThreshold >= 0 {
		return fmt.Errorf("analysis.sell_threshold must be negative, got %v", c.Analysis.SellThreshold)
	}
	if c.Analysis.StreakMinRun < 0 {
		return fmt.Errorf("analysis.streak_min_run must not be negative, got %d", c.Analysis.StreakMinRun)
	}
	if c.Analysis.ScreenWindow < 1 {
		return fmt.Errorf("analysis.screen_window must be at least 1, got %d", c.Analysis.ScreenWindow)
	}
	if c.Analysis.DTWQuarters < 2 {
		return fmt.Errorf("analysis.dtw_quarters must be at least 2, got %d", c.Analysis.DTWQuarters)
	}
	if c.Analysis.BatchConcurrency < 1 {
		return fmt.Errorf("analysis.batch_concurrency must be at least 1, got %d", c.Analysis.BatchConcurrency)
	}
	if c.Analysis.RecomputeInterval != "" {
		if _, err := time.ParseDuration(c.Analysis.RecomputeInterval); err != nil {
			return fmt.Errorf("invalid analysis.recompute_interval: %w", err)
		}
	}
	if c.Analysis.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Analysis.CacheTTL); err != nil {
			return fmt.Errorf("invalid analysis.cache_ttl: %w", err)
		}
	}

	switch c.Telemetry.Exporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("telemetry.exporter must be stdout or otlp, got %q", c.Telemetry.Exporter)
	}

	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "myuser")
	viper.SetDefault("database.password", "mypassword")
	viper.SetDefault("database.dbname", "mydatabase")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.min_conns", 1)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analysis
	viper.SetDefault("analysis.sell_threshold", -7.0)
	viper.SetDefault("analysis.streak_min_run", 2)
	viper.SetDefault("analysis.screen_window", 5)
	viper.SetDefault("analysis.min_market_cap", 500_000_000.0)
	viper.SetDefault("analysis.min_roic", 0.0)
	viper.SetDefault("analysis.reference_symbol", "DEZ:DE")
	viper.SetDefault("analysis.dtw_quarters", 65)
	viper.SetDefault("analysis.batch_concurrency", 8)
	viper.SetDefault("analysis.recompute_interval", "24h")
	viper.SetDefault("analysis.cache_ttl", "10m")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", 0)
	viper.SetDefault("telegram.streak_alert_threshold", 4)

	// Security
	viper.SetDefault("security.admin_api_key", "")
	viper.SetDefault("security.jwt_secret", "")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.exporter", "stdout")
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.service_name", "fundamentals-ai-go")
	viper.SetDefault("telemetry.logs_enabled", false)
}
