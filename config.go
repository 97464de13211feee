package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SessionSecret []byte
	CSRFKey       []byte
	APIBaseURL    string
	APITimeout    time.Duration
	Port          string
	Environment   string
	LogLevel      string
	SessionMaxAge int
	TemplateDir   string
	StaticDir     string

	SessionBackend string
	SessionDBPath  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	AllowReversedDates bool

	GoogleCredentialsFile string
	BookingsSheetID       string
	BookingsSheetRange    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config := &Config{}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	if len(sessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	config.SessionSecret = []byte(sessionSecret)

	csrfKey, err := deriveCSRFKey(os.Getenv("CSRF_KEY"), config.SessionSecret)
	if err != nil {
		return nil, err
	}
	config.CSRFKey = csrfKey

	config.APIBaseURL = strings.TrimRight(getEnvWithDefault("API_BASE_URL", "http://localhost:5000/api"), "/")
	config.Port = getEnvWithDefault("PORT", "8080")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "INFO")
	config.TemplateDir = getEnvWithDefault("TEMPLATE_DIR", "templates")
	config.StaticDir = getEnvWithDefault("STATIC_DIR", "static")

	maxAge, err := strconv.Atoi(getEnvWithDefault("SESSION_MAX_AGE", "604800"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %v", err)
	}
	config.SessionMaxAge = maxAge

	config.APITimeout, err = time.ParseDuration(getEnvWithDefault("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %v", err)
	}

	config.SessionBackend = strings.ToLower(getEnvWithDefault("SESSION_BACKEND", "cookie"))
	switch config.SessionBackend {
	case "cookie", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q: want cookie, sqlite or redis", config.SessionBackend)
	}
	config.SessionDBPath = getEnvWithDefault("SESSION_DB_PATH", "./sessions.db")
	config.RedisAddr = getEnvWithDefault("REDIS_ADDR", "localhost:6379")
	config.RedisPassword = os.Getenv("REDIS_PASSWORD")
	config.RedisDB, err = strconv.Atoi(getEnvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}

	config.AllowReversedDates, err = strconv.ParseBool(getEnvWithDefault("BOOKING_ALLOW_REVERSED_DATES", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_ALLOW_REVERSED_DATES: %v", err)
	}

	config.GoogleCredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	config.BookingsSheetID = os.Getenv("BOOKINGS_SHEET_ID")
	config.BookingsSheetRange = getEnvWithDefault("BOOKINGS_SHEET_RANGE", "Bookings!A1")

	return config, nil
}

// IsProduction reports whether cookies must be marked Secure
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SheetsExportEnabled reports whether both credentials and a target sheet are configured
func (c *Config) SheetsExportEnabled() bool {
	return c.GoogleCredentialsFile != "" && c.BookingsSheetID != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// deriveCSRFKey accepts a 64-char hex key or a raw 32-byte key. Without one
// it derives a key from the session secret.
func deriveCSRFKey(raw string, sessionSecret []byte) ([]byte, error) {
	if raw == "" {
		sum := sha256.Sum256(append([]byte("csrf:"), sessionSecret...))
		return sum[:], nil
	}
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	if len(raw) == 32 {
		return []byte(raw), nil
	}
	return nil, fmt.Errorf("CSRF_KEY must be 32 bytes or 64 hex characters")
}
