package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	KurrentDB KurrentDBConfig
	Auth      AuthConfig
	OpenAI    OpenAIConfig
	Privacy   PrivacyConfig
	Reimport  ReimportConfig
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

// KurrentDBConfig holds configuration for KurrentDB (EventStoreDB), which
// stores the append-only domain event trail.
type KurrentDBConfig struct {
	// Host is the KurrentDB server hostname
	Host string
	// Port is the gRPC port (default 2113)
	Port int
	// Insecure disables TLS (for development)
	Insecure bool
	// Username for authentication (optional)
	Username string
	// Password for authentication (optional)
	Password string
}

type AuthConfig struct {
	JWTSecret string
	Enabled   bool
}

// OpenAIConfig holds configuration for the completion backend used by
// assessment extraction and narrative plan synthesis.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	Enabled     bool
}

// PrivacyConfig holds configuration for the response-side name redaction
// guard.
type PrivacyConfig struct {
	EnableGuard    bool
	LogDetections  bool
	ExemptPaths    []string
	ExemptPrefixes []string
}

// ReimportConfig holds configuration for the legacy consultation-note
// importer. Many municipalities keep years of interview notes in an old
// SQL Server welfare system; when enabled, those notes are polled and
// fed through the extraction pipeline.
type ReimportConfig struct {
	Enabled      bool
	DSN          string
	NotesTable   string
	PollInterval time.Duration
	BatchSize    int
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
			User:     getEnv("DB_USER", "comorin"),
			Password: getEnv("DB_PASSWORD", "comorin"),
			Database: getEnv("DB_NAME", "comorin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		KurrentDB: KurrentDBConfig{
			Host:     getEnv("KURRENTDB_HOST", "localhost"),
			Port:     getEnvInt("KURRENTDB_PORT", 2113),
			Insecure: getEnvBool("KURRENTDB_INSECURE", true),
			Username: getEnv("KURRENTDB_USERNAME", ""),
			Password: getEnv("KURRENTDB_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
			Enabled:   getEnvBool("AUTH_ENABLED", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.1),
			Timeout:     time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 45)) * time.Second,
			Enabled:     getEnvBool("OPENAI_ENABLED", true),
		},
		Privacy: PrivacyConfig{
			EnableGuard:    getEnvBool("PRIVACY_GUARD_ENABLED", true),
			LogDetections:  getEnvBool("PRIVACY_LOG_DETECTIONS", true),
			ExemptPaths:    getEnvSlice("PRIVACY_EXEMPT_PATHS", []string{"/health", "/ready", "/metrics"}),
			ExemptPrefixes: getEnvSlice("PRIVACY_EXEMPT_PREFIXES", []string{"/internal/"}),
		},
		Reimport: ReimportConfig{
			Enabled:      getEnvBool("REIMPORT_ENABLED", false),
			DSN:          getEnv("REIMPORT_MSSQL_DSN", ""),
			NotesTable:   getEnv("REIMPORT_NOTES_TABLE", "dbo.ConsultationNotes"),
			PollInterval: time.Duration(getEnvInt("REIMPORT_POLL_SECONDS", 300)) * time.Second,
			BatchSize:    getEnvInt("REIMPORT_BATCH_SIZE", 50),
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, v := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
