package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverOracle   = "oracle"
)

type Config struct {
	ServerPort        string
	ServerHost        string
	LogLevel          slog.Level
	StoreDriver       string
	CatalogFile       string
	DBDSN             string
	DocumentName      string
	SessionCookieName string
	AuthEnabled       bool
	StrictCodeFormat  bool
}

func Load() (*Config, error) {
	logLevel, err := parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverFile))
	dsn := os.Getenv("DB_DSN")

	switch driver {
	case StoreDriverFile, StoreDriverMemory:
	case StoreDriverPostgres, StoreDriverOracle:
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN environment variable is required for %s store", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER: %s", driver)
	}

	authEnabled, err := getBoolOrDefault("AUTH_ENABLED", true)
	if err != nil {
		return nil, err
	}

	strictCodes, err := getBoolOrDefault("STRICT_CODE_FORMAT", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:        getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:        getEnvOrDefault("SERVER_HOST", "localhost"),
		LogLevel:          logLevel,
		StoreDriver:       driver,
		CatalogFile:       getEnvOrDefault("CATALOG_FILE", "data/instruments.json"),
		DBDSN:             dsn,
		DocumentName:      getEnvOrDefault("DOCUMENT_NAME", "instruments"),
		SessionCookieName: getEnvOrDefault("SESSION_COOKIE_NAME", "better-auth.session_token"),
		AuthEnabled:       authEnabled,
		StrictCodeFormat:  strictCodes,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}
