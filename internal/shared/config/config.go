package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	EventStore EventStoreConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	Pharmacy   PharmacyConfig
	Summarizer SummarizerConfig
	Storage    StorageConfig
	Agent      AgentConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// EventStoreConfig holds configuration for the audit event store (EventStoreDB).
type EventStoreConfig struct {
	// Host is the EventStoreDB server hostname
	Host string
	// Port is the gRPC port (default 2113)
	Port int
	// Insecure disables TLS (for development)
	Insecure bool
	// Username for authentication (optional)
	Username string
	// Password for authentication (optional)
	Password string
	// Enabled controls whether cycle events are published at all
	Enabled bool
}

type AuthConfig struct {
	JWTSecret string
}

// SMTPConfig holds credentials for caregiver email delivery.
// The email provider is disabled when username or password is empty.
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	CaregiverEmail string
}

// PharmacyConfig points at the legacy pharmacy system (SQL Server).
type PharmacyConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (p PharmacyConfig) DSN() string {
	return fmt.Sprintf(
		"server=%s;port=%d;user id=%s;password=%s;database=%s",
		p.Host, p.Port, p.User, p.Password, p.Database,
	)
}

// SummarizerConfig points at the external caregiver-summary service.
type SummarizerConfig struct {
	URL     string
	Enabled bool
}

// StorageConfig holds the file snapshot store location, used when no
// database is configured.
type StorageConfig struct {
	Dir string
}

// AgentConfig holds the rule thresholds for the reasoning pipeline.
type AgentConfig struct {
	// LowStockThreshold is the canonical default when an inventory item
	// carries no threshold of its own.
	LowStockThreshold int
	// WellbeingRepeatCount is how many low-wellbeing reports trigger a trend alert
	WellbeingRepeatCount int
	// BPWindowDays is the lookback window for the sustained-high-BP rule
	BPWindowDays int
	// BPConsecutiveDays is how many recent days with data must all show high BP
	BPConsecutiveDays int
	// SugarSpikeThreshold in mg/dL
	SugarSpikeThreshold float64
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "dosewise"),
			Password: getEnv("DB_PASSWORD", "dosewise"),
			Database: getEnv("DB_NAME", "dosewise"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		EventStore: EventStoreConfig{
			Host:     getEnv("EVENTSTORE_HOST", "localhost"),
			Port:     getEnvInt("EVENTSTORE_PORT", 2113),
			Insecure: getEnvBool("EVENTSTORE_INSECURE", true),
			Username: getEnv("EVENTSTORE_USERNAME", ""),
			Password: getEnv("EVENTSTORE_PASSWORD", ""),
			Enabled:  getEnvBool("EVENTSTORE_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:           getEnvInt("SMTP_PORT", 587),
			Username:       getEnv("SMTP_USERNAME", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			CaregiverEmail: getEnv("CAREGIVER_EMAIL", ""),
		},
		Pharmacy: PharmacyConfig{
			Enabled:  getEnvBool("PHARMACY_ENABLED", false),
			Host:     getEnv("PHARMACY_DB_HOST", "localhost"),
			Port:     getEnvInt("PHARMACY_DB_PORT", 1433),
			User:     getEnv("PHARMACY_DB_USER", "sa"),
			Password: getEnv("PHARMACY_DB_PASSWORD", ""),
			Database: getEnv("PHARMACY_DB_NAME", "pharmacy"),
		},
		Summarizer: SummarizerConfig{
			URL:     getEnv("SUMMARIZER_URL", "http://localhost:5000"),
			Enabled: getEnvBool("SUMMARIZER_ENABLED", false),
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "./storage"),
		},
		Agent: AgentConfig{
			LowStockThreshold:    getEnvInt("AGENT_LOW_STOCK_THRESHOLD", 10),
			WellbeingRepeatCount: getEnvInt("AGENT_WELLBEING_REPEAT_COUNT", 2),
			BPWindowDays:         getEnvInt("AGENT_BP_WINDOW_DAYS", 14),
			BPConsecutiveDays:    getEnvInt("AGENT_BP_CONSECUTIVE_DAYS", 3),
			SugarSpikeThreshold:  getEnvFloat("AGENT_SUGAR_SPIKE_THRESHOLD", 180),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
