package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ValuationConfig holds the tuning knobs for the valuation estimator and its
// batch runner. The heuristic constants (margins, appreciation rates,
// discounts) are deliberately configuration rather than inlined numbers.
type ValuationConfig struct {
	StaleDays   int
	Concurrency int
	BatchDelay  time.Duration

	MinMargin               float64
	MaxMargin               float64
	ResidentialAppreciation float64
	CommercialAppreciation  float64
	UnderConstructionFactor float64
	CommercialFactor        float64

	LocalityAPIURL  string
	LocalityTimeout time.Duration

	DailyRunEnabled bool
	DailyRunSpec    string
}

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Shared-secret key for machine-to-machine endpoints (full valuation batch runs)
	PipelineAPIKey string

	Valuation ValuationConfig
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),

		JWTSecret:      getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),

		Valuation: ValuationConfig{
			StaleDays:   getEnvInt("VALUATION_STALE_DAYS", 30),
			Concurrency: getEnvInt("VALUATION_CONCURRENCY", 5),
			BatchDelay:  time.Duration(getEnvInt("VALUATION_BATCH_DELAY_MS", 1000)) * time.Millisecond,

			MinMargin:               getEnvFloat("VALUATION_MIN_MARGIN", 0.90),
			MaxMargin:               getEnvFloat("VALUATION_MAX_MARGIN", 0.95),
			ResidentialAppreciation: getEnvFloat("VALUATION_RESIDENTIAL_APPRECIATION", 0.04),
			CommercialAppreciation:  getEnvFloat("VALUATION_COMMERCIAL_APPRECIATION", 0.03),
			UnderConstructionFactor: getEnvFloat("VALUATION_UNDER_CONSTRUCTION_FACTOR", 0.85),
			CommercialFactor:        getEnvFloat("VALUATION_COMMERCIAL_FACTOR", 0.98),

			LocalityAPIURL:  getEnv("LOCALITY_API_URL", ""),
			LocalityTimeout: time.Duration(getEnvInt("LOCALITY_TIMEOUT_MS", 5000)) * time.Millisecond,

			DailyRunEnabled: getEnv("VALUATION_DAILY_ENABLED", "false") == "true",
			DailyRunSpec:    getEnv("VALUATION_DAILY_CRON", "0 2 * * *"),
		},
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, value, defaultValue)
	}
	return defaultValue
}
