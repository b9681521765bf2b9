package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port      string
	DBUrl     string
	JWTSecret string
	AppEnv    string
	LogLevel  string

	// Matching tie-break weights and partnership length. The weights are
	// heuristics, so they are tunable rather than baked in.
	MatchTimezoneWeight     int
	MatchGenderPrefWeight   int
	PartnershipDurationDays int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		DBUrl:                   getEnv("DB_URL", ""),
		JWTSecret:               jwtSecret,
		AppEnv:                  normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		MatchTimezoneWeight:     getEnvInt("MATCH_TIMEZONE_WEIGHT", 10),
		MatchGenderPrefWeight:   getEnvInt("MATCH_GENDER_PREF_WEIGHT", 5),
		PartnershipDurationDays: getEnvInt("PARTNERSHIP_DURATION_DAYS", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer env value, using default")
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
