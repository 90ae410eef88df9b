// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens in dev mode when JWT_SECRET is unset. ValidateAuth refuses it elsewhere.
const DevJWTSecret = "dev-insecure-secret-change"

// Config holds settings shared by the HTTP service, the worker and the tools.
type Config struct {
	DevMode           bool
	HTTPAddr          string
	DatabaseDSN       string
	AutoMigrate       bool
	JWTSecret         string
	RedisURL          string
	TipQueue          string
	WorkerConcurrency int

	// Pipeline
	BorderThreshold    int
	LocatorBackend     string
	Recognizer         string
	VisionCredentials  string
	TesseractLanguages string
	GeminiAPIKey       string
	GeminiModel        string

	// Channels
	AllowedChannels   []string
	FailedURLsPerPage int

	// Round schedule; market queries are off while MaxTurn or RoundStart is zero
	RoundStart   int
	RoundMinutes int
	MaxTurn      int

	// Failure digest
	SMTPServer  string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	NotifyFrom  string
	NotifyTo    string
	SMTPEnabled bool

	LogFile  string
	LogLevel string
}

// Load reads ./.env when present (without overriding the environment) and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DevMode:           getEnvAsBoolOrDefault("DEV_MODE", false),
		HTTPAddr:          getEnvOrDefault("HTTP_ADDR", ":8081"),
		DatabaseDSN:       os.Getenv("DB_DSN"),
		AutoMigrate:       getEnvAsBoolOrDefault("DB_AUTO_MIGRATE", true),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		TipQueue:          getEnvOrDefault("TIP_QUEUE", "tips"),
		WorkerConcurrency: getEnvAsIntOrDefault("WORKER_CONCURRENCY", 4),

		BorderThreshold:    getEnvAsIntOrDefault("BORDER_THRESHOLD", 200),
		LocatorBackend:     getEnvOrDefault("LOCATOR_BACKEND", "contour"),
		Recognizer:         strings.ToLower(getEnvOrDefault("RECOGNIZER", "vision")),
		VisionCredentials:  os.Getenv("GVISION_SERVICE_ACCOUNT_FILE"),
		TesseractLanguages: getEnvOrDefault("TESSERACT_LANGUAGES", "eng+chi_tra+chi_sim+kor"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		AllowedChannels:   ListFromCSV(os.Getenv("ALLOWED_CHANNELS")),
		FailedURLsPerPage: getEnvAsIntOrDefault("FAILED_URLS_PER_PAGE", 10),

		RoundStart:   getEnvAsIntOrDefault("ROUND_STARTING_TIME", 0),
		RoundMinutes: getEnvAsIntOrDefault("ROUND_MINUTES", 60),
		MaxTurn:      getEnvAsIntOrDefault("MAX_TURN", 0),

		SMTPServer: os.Getenv("SMTP_SERVER"),
		SMTPPort:   getEnvAsIntOrDefault("SMTP_PORT", 587),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		NotifyFrom: getEnvOrDefault("SMTP_FROM", os.Getenv("SMTP_USER")),
		NotifyTo:   os.Getenv("NOTIFY_EMAIL_TO"),

		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}
	cfg.SMTPEnabled = cfg.SMTPServer != "" && cfg.NotifyTo != ""
	if cfg.JWTSecret == "" && cfg.DevMode {
		cfg.JWTSecret = DevJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and the credentials each recognizer backend needs.
func (c *Config) Validate() error {
	if c.BorderThreshold < 0 || c.BorderThreshold > 255 {
		return fmt.Errorf("BORDER_THRESHOLD must be between 0 and 255, got %d", c.BorderThreshold)
	}
	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}
	if c.FailedURLsPerPage < 1 {
		return fmt.Errorf("FAILED_URLS_PER_PAGE must be positive, got %d", c.FailedURLsPerPage)
	}
	if c.RoundMinutes < 1 {
		return fmt.Errorf("ROUND_MINUTES must be positive, got %d", c.RoundMinutes)
	}
	if c.MaxTurn < 0 {
		return fmt.Errorf("MAX_TURN must not be negative, got %d", c.MaxTurn)
	}
	switch c.Recognizer {
	case "vision":
		if c.VisionCredentials == "" {
			return fmt.Errorf("GVISION_SERVICE_ACCOUNT_FILE is required for the vision recognizer")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini recognizer")
		}
	case "tesseract":
	default:
		return fmt.Errorf("RECOGNIZER must be one of vision, tesseract, gemini; got %q", c.Recognizer)
	}
	return nil
}

// ValidateAuth checks the token signing secret of the HTTP service. Outside dev mode it must be
// set, at least 16 bytes long and not DevJWTSecret.
func (c *Config) ValidateAuth() error {
	if c.DevMode {
		return nil
	}
	if c.JWTSecret == DevJWTSecret {
		return fmt.Errorf("JWT_SECRET is the development default; set a real secret or DEV_MODE=1")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes outside DEV_MODE")
	}
	return nil
}

// RoundsConfigured reports whether the round schedule is set.
func (c *Config) RoundsConfigured() bool {
	return c.MaxTurn > 0 && c.RoundStart > 0
}

// Threshold returns the binarization threshold as a pixel value.
func (c *Config) Threshold() uint8 {
	return uint8(c.BorderThreshold)
}

// ChannelAllowed reports whether channel may submit tips. An empty allow list admits all.
func (c *Config) ChannelAllowed(channel string) bool {
	if len(c.AllowedChannels) == 0 {
		return true
	}
	for _, ch := range c.AllowedChannels {
		if ch == channel {
			return true
		}
	}
	return false
}

// ListFromCSV splits a comma separated value, trimming blanks and dropping empty items.
func ListFromCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBoolOrDefault treats false/0/no as false, anything else set as true
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultValue
	}
	return !(v == "false" || v == "0" || v == "no")
}
