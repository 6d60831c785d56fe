package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort        string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSSL       bool

	// Classifier thresholds. They encode a z-up, meter-scale coordinate
	// convention and must be tunable per model source.
	ThinnessThreshold    float64 // dz below this is a horizontal surface (default: 0.2)
	FloorCenterThreshold float64 // horizontal surfaces centered below this are floors (default: 0.5)

	// Viewer session settings
	SessionTTL   time.Duration // idle sessions expire after this (default: 30m)
	MaxSessions  int           // eviction threshold for the in-memory session store (default: 1000)
	HistoryLimit int           // saved-breakdown history cap per buyer+unit (default: 5)

	// Exchange-rate settings
	RatesURL string        // upstream rate source; empty disables fetching
	RatesTTL time.Duration // cache lifetime for fetched rates (default: 1h)

	// Redis rate cache; empty host disables Redis and rates stay in memory
	RedisHost string
	RedisPort string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	minioSSL := false
	if sslEnv := os.Getenv("MINIO_SSL"); sslEnv != "" {
		val, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		minioSSL = val
	}

	cfg := &Config{
		AppPort:        os.Getenv("VIEWER_PORT"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioSSL:       minioSSL,

		ThinnessThreshold:    floatEnv("CLASSIFIER_THINNESS_THRESHOLD", 0.2),
		FloorCenterThreshold: floatEnv("CLASSIFIER_FLOOR_CENTER_THRESHOLD", 0.5),

		SessionTTL:   durationEnv("SESSION_TTL", 30*time.Minute),
		MaxSessions:  intEnv("MAX_SESSIONS", 1000),
		HistoryLimit: intEnv("HISTORY_LIMIT", 5),

		RatesURL: os.Getenv("RATES_URL"),
		RatesTTL: durationEnv("RATES_TTL", time.Hour),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: os.Getenv("REDIS_PORT"),
	}

	// Basic validation for required fields
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("database configuration is incomplete")
	}
	if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
		return nil, fmt.Errorf("minio configuration is incomplete")
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT value: must be positive")
	}
	return cfg, nil
}

func floatEnv(key string, fallback float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if env := os.Getenv(key); env != "" {
		if val, err := time.ParseDuration(env); err == nil {
			return val
		}
	}
	return fallback
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
