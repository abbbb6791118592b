package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Legacy booking backend
	BookingAPIBaseURL        string
	BookingAPIToken          string
	BookingAPITimeoutSeconds int

	// Redis (directory cache, optional)
	RedisURL          string
	DirectoryCacheTTL time.Duration

	// JWT
	JWTSecret    string
	JWTAccessTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8081"),
		Env:  getEnv("ENV", "development"),

		// Legacy booking backend
		BookingAPIBaseURL:        getEnv("BOOKING_API_BASE_URL", "http://localhost:8080/api"),
		BookingAPIToken:          getEnv("BOOKING_API_TOKEN", ""),
		BookingAPITimeoutSeconds: parseInt(getEnv("BOOKING_API_TIMEOUT_SECONDS", "10"), 10),

		// Redis
		RedisURL:          getEnv("REDIS_URL", ""),
		DirectoryCacheTTL: parseDuration(getEnv("DIRECTORY_CACHE_TTL", "10m"), 10*time.Minute),

		// JWT
		JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTAccessTTL: parseDuration(getEnv("JWT_ACCESS_TTL", "15m"), 15*time.Minute),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
