package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	LogLevel     string
	Addr         string
	DBType       string
	DBDSN        string
	RoomsFile    string
	AuthToken    string
	JWTSecret    string
	PollInterval time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:          getEnv("APP_ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			Addr:         getEnv("HTTP_ADDR", ":8088"),
			DBType:       getEnv("STORAGE_BACKEND", "file"),
			DBDSN:        getEnv("POSTGRES_DSN", ""),
			RoomsFile:    getEnv("ROOMS_FILE", "data/rooms.json"),
			AuthToken:    getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			PollInterval: getDuration("POLL_INTERVAL", 5*time.Second),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType != "postgres" && c.DBType != "file" {
		return errors.New("STORAGE_BACKEND must be one of: postgres, file")
	}
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.RoomsFile == "" {
		return errors.New("ROOMS_FILE must be set; it backs the local fallback copy")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
