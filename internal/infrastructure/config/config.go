// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Ledger
	LedgerBackend string // memory | mongo | postgres | leveldb
	LedgerTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresDSN string

	// LevelDB
	LevelDBPath string

	// Wallet
	Principal  string
	SigningKey string

	// Analysis
	AnalyzeDelay time.Duration
	PriceMin     int
	PriceMax     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),
		LedgerTimeout: time.Duration(getEnvAsInt("LEDGER_TIMEOUT", 10)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "airfare"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		LevelDBPath: getEnv("LEVELDB_PATH", "./data/ledger"),

		Principal:  getEnv("PRINCIPAL", ""),
		SigningKey: getEnv("SIGNING_KEY", ""),

		AnalyzeDelay: time.Duration(getEnvAsInt("ANALYZE_DELAY", 3)) * time.Second,
		PriceMin:     getEnvAsInt("PRICE_MIN", 300),
		PriceMax:     getEnvAsInt("PRICE_MAX", 999),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
