package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (선택: URL이 비어 있으면 가격 저장소 비활성화)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Price providers
	Yahoo YahooConfig
	Naver NaverConfig

	// Analysis defaults
	Analysis AnalysisConfig

	// Analysis profile (YAML)
	ProfilePath string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a price store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL   string
	RateLimit float64
	Timeout   time.Duration
}

// AnalysisConfig holds estimator defaults
type AnalysisConfig struct {
	TradingDays     int
	RiskFreeRate    float64
	RollingWindow   int
	ConfidenceLevel float64
	InitialCapital  float64
	Benchmark       string
	CacheTTL        time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Price providers
		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RateLimit: getEnvAsFloat("YAHOO_RATE_LIMIT", 2),
			Timeout:   getEnvAsDuration("YAHOO_TIMEOUT", "15s"),
		},
		Naver: NaverConfig{
			BaseURL:   getEnv("NAVER_BASE_URL", "https://api.finance.naver.com"),
			RateLimit: getEnvAsFloat("NAVER_RATE_LIMIT", 5),
			Timeout:   getEnvAsDuration("NAVER_TIMEOUT", "10s"),
		},

		// Analysis defaults
		Analysis: AnalysisConfig{
			TradingDays:     getEnvAsInt("ANALYSIS_TRADING_DAYS", 252),
			RiskFreeRate:    getEnvAsFloat("ANALYSIS_RISK_FREE_RATE", 0),
			RollingWindow:   getEnvAsInt("ANALYSIS_ROLLING_WINDOW", 30),
			ConfidenceLevel: getEnvAsFloat("ANALYSIS_CONFIDENCE_LEVEL", 0.95),
			InitialCapital:  getEnvAsFloat("ANALYSIS_INITIAL_CAPITAL", 100000),
			Benchmark:       getEnv("ANALYSIS_BENCHMARK", "^GSPC"),
			CacheTTL:        getEnvAsDuration("ANALYSIS_CACHE_TTL", "6h"),
		},

		ProfilePath: getEnv("PROFILE_PATH", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration domains
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	a := c.Analysis
	if a.TradingDays <= 0 {
		return fmt.Errorf("ANALYSIS_TRADING_DAYS must be positive")
	}
	if a.RollingWindow < 1 {
		return fmt.Errorf("ANALYSIS_ROLLING_WINDOW must be at least 1")
	}
	if !(a.ConfidenceLevel > 0 && a.ConfidenceLevel < 1) {
		return fmt.Errorf("ANALYSIS_CONFIDENCE_LEVEL must be in (0,1)")
	}
	if !(a.InitialCapital > 0) {
		return fmt.Errorf("ANALYSIS_INITIAL_CAPITAL must be positive")
	}
	if a.Benchmark == "" {
		return fmt.Errorf("ANALYSIS_BENCHMARK is required")
	}

	if c.Yahoo.RateLimit <= 0 || c.Naver.RateLimit <= 0 {
		return fmt.Errorf("provider rate limits must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
