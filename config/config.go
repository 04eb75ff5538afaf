package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	FoxwayBaseURL  string
	FoxwayAPIKey   string
	FoxwaySourceID string

	KomsaURL      string
	KomsaSourceID string

	DipliBaseURL  string
	DipliAPIKey   string
	DipliSourceID string

	CompaBaseURL    string
	CompaPublicKey  string
	CompaPrivateKey string
	CompaSourceID   string

	MaxConcurrency int
	RateLimitMs    int
	HTTPTimeoutSec int
	PageSize       int

	ExportDir string
	RulesPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pricefeed"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pricefeed123"),
		PostgresDB:       getEnv("POSTGRES_DB", "device_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		FoxwayBaseURL:  getEnv("FOXWAY_BASE_URL", "https://foxway.shop/api/v1"),
		FoxwayAPIKey:   getEnv("FOXWAY_API_KEY", ""),
		FoxwaySourceID: getEnv("FOXWAY_SOURCE_ID", "foxway"),

		KomsaURL:      getEnv("KOMSA_URL", ""),
		KomsaSourceID: getEnv("KOMSA_SOURCE_ID", "komsa"),

		DipliBaseURL:  getEnv("DIPLI_BASE_URL", ""),
		DipliAPIKey:   getEnv("DIPLI_API_KEY", ""),
		DipliSourceID: getEnv("DIPLI_SOURCE_ID", "dipli"),

		CompaBaseURL:    getEnv("COMPA_BASE_URL", ""),
		CompaPublicKey:  getEnv("COMPA_PUBLIC_KEY", ""),
		CompaPrivateKey: getEnv("COMPA_PRIVATE_KEY", ""),
		CompaSourceID:   getEnv("COMPA_SOURCE_ID", "compa"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 60),
		PageSize:       getEnvInt("PAGE_SIZE", 100),

		ExportDir: getEnv("EXPORT_DIR", "./output"),
		RulesPath: getEnv("RULES_PATH", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
