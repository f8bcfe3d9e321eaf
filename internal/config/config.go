package config

import (
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort       string
	MySQLDSN         string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	SessionSecret    string
	IPSalt           string
	TrendingWindow   int // days
	TrendingLimit    int
	TrendingCacheTTL int // seconds
	SwaggerHost      string
}

// Load builds Config from environment with sensible defaults.
// IPSalt and SessionSecret are secrets and must never be logged.
func Load() *Config {
	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		MySQLDSN:         getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/listky?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me"),
		IPSalt:           getEnv("IP_SALT", "default_development_salt_change_in_production"),
		TrendingWindow:   getEnvInt("TRENDING_WINDOW_DAYS", 7),
		TrendingLimit:    getEnvInt("TRENDING_LIMIT", 10),
		TrendingCacheTTL: getEnvInt("TRENDING_CACHE_TTL", 60),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
