package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// PublicBaseURL is the externally reachable base URL of this service,
	// used for charge redirect and webhook callback URLs.
	PublicBaseURL string
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Payment processor configuration
	CommerceAPIURL string
	// Auth provider configuration
	AuthURL     string
	AuthAnonKey string

	// Webhook policy configuration
	//
	// ApplyPendingEvents controls whether charge:pending events update
	// donation status or are ignored; provider revisions differ on this.
	ApplyPendingEvents bool
	// GuardTerminalStatus refuses transitions out of completed/failed when
	// deliveries arrive out of order. Off by default (last write wins).
	GuardTerminalStatus bool

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	// Notification configuration
	TelegramBotToken string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:   getEnvAsBool("DEVELOPMENT", false),
		APIPort:       getEnvAsInt("API_PORT", 8673),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8673"),

		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "tipdrop"),

		CommerceAPIURL: getEnv("COMMERCE_API_URL", "https://api.commerce.coinbase.com"),
		AuthURL:        getEnv("AUTH_URL", ""),
		AuthAnonKey:    getEnv("AUTH_ANON_KEY", ""),

		ApplyPendingEvents:  getEnvAsBool("APPLY_PENDING_EVENTS", true),
		GuardTerminalStatus: getEnvAsBool("GUARD_TERMINAL_STATUS", false),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPSender:   getEnv("SMTP_SENDER", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required")
	}

	if _, err := url.ParseRequestURI(c.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_BASE_URL: %w", err)
	}

	if c.CommerceAPIURL == "" {
		return fmt.Errorf("COMMERCE_API_URL is required")
	}

	if c.AuthURL == "" {
		return fmt.Errorf("AUTH_URL is required")
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
