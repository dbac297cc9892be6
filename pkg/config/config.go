package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// External data sources
	NSE NSEConfig

	// Analysis pipeline
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NSEConfig holds NSE data source configuration
type NSEConfig struct {
	BaseURL        string
	ArchivesURL    string
	ChartBaseURL   string
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
	ScrapeEnabled  bool
}

// AnalysisConfig holds pipeline tunables shared by every cycle
type AnalysisConfig struct {
	MinScore     float64
	BatchSize    int
	GroupSize    int
	Workers      int
	FetchTimeout time.Duration
	ScoreTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	LookbackDays int
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "stockpilot"),
			User:            getEnv("DB_USER", "stockpilot"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// External data sources
		NSE: NSEConfig{
			BaseURL:        getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			ArchivesURL:    getEnv("NSE_ARCHIVES_URL", "https://archives.nseindia.com"),
			ChartBaseURL:   getEnv("CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			RequestTimeout: getEnvAsDuration("NSE_REQUEST_TIMEOUT", "30s"),
			RatePerSecond:  getEnvAsFloat("NSE_RATE_PER_SECOND", 5),
			RateBurst:      getEnvAsInt("NSE_RATE_BURST", 5),
			ScrapeEnabled:  getEnvAsBool("NSE_SCRAPE_ENABLED", true),
		},

		// Analysis pipeline
		Analysis: AnalysisConfig{
			MinScore:     getEnvAsFloat("ANALYSIS_MIN_SCORE", 35),
			BatchSize:    getEnvAsInt("ANALYSIS_BATCH_SIZE", 100),
			GroupSize:    getEnvAsInt("ANALYSIS_GROUP_SIZE", 3),
			Workers:      getEnvAsInt("ANALYSIS_WORKERS", 2),
			FetchTimeout: getEnvAsDuration("ANALYSIS_FETCH_TIMEOUT", "30s"),
			ScoreTimeout: getEnvAsDuration("ANALYSIS_SCORE_TIMEOUT", "30s"),
			MaxRetries:   getEnvAsInt("ANALYSIS_MAX_RETRIES", 3),
			RetryBackoff: getEnvAsDuration("ANALYSIS_RETRY_BACKOFF", "2s"),
			LookbackDays: getEnvAsInt("ANALYSIS_LOOKBACK_DAYS", 730),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("ANALYSIS_WORKERS must be at least 1")
	}
	if c.Analysis.BatchSize < 1 || c.Analysis.GroupSize < 1 {
		return fmt.Errorf("ANALYSIS_BATCH_SIZE and ANALYSIS_GROUP_SIZE must be at least 1")
	}
	if c.Analysis.MinScore < 0 || c.Analysis.MinScore > 100 {
		return fmt.Errorf("ANALYSIS_MIN_SCORE must be within [0, 100]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
