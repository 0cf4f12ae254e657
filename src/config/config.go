package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	LogLevel     string
	DatabasePath string

	// TracerBaseURL points at the TRACER portal. Overridable mainly so the
	// service can be pointed at a mirror or a test fixture server.
	TracerBaseURL string

	FetchTimeout      time.Duration
	FetchRateInterval time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabasePath:      getEnv("DATABASE_PATH", "./cotracer.db"),
		TracerBaseURL:     getEnv("TRACER_BASE_URL", "http://tracer.sos.colorado.gov/"),
		FetchTimeout:      getEnvAsDuration("FETCH_TIMEOUT", 60*time.Second),
		FetchRateInterval: getEnvAsDuration("FETCH_RATE_INTERVAL", 500*time.Millisecond),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, TracerBaseURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.TracerBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
