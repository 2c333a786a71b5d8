package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	EmailSimulated = "simulated"
	EmailSMTP      = "smtp"
)

type Config struct {
	Addr                    string        `yaml:"addr"`
	Environment             string        `yaml:"environment"`
	FrontendDir             string        `yaml:"frontend_dir"`
	LogLevel                string        `yaml:"log_level"`
	LogFormat               string        `yaml:"log_format"`
	StorageDriver           string        `yaml:"storage_driver"`
	StorageNamespace        string        `yaml:"storage_namespace"`
	SQLitePath              string        `yaml:"sqlite_path"`
	DatabaseURL             string        `yaml:"-"`
	DataEncryptionKey       string        `yaml:"-"`
	SimulatedLatency        time.Duration `yaml:"simulated_latency"`
	SeedSampleData          bool          `yaml:"seed_sample_data"`
	JWTSecret               string        `yaml:"-"`
	SessionTTL              time.Duration `yaml:"session_ttl"`
	AdminPasscodeHash       string        `yaml:"-"`
	EmailProvider           string        `yaml:"email_provider"`
	EmailFrom               string        `yaml:"email_from"`
	EmailFromName           string        `yaml:"email_from_name"`
	SMTPHost                string        `yaml:"smtp_host"`
	SMTPPort                int           `yaml:"smtp_port"`
	SMTPUser                string        `yaml:"smtp_user"`
	SMTPPassword            string        `yaml:"-"`
	SMTPUseTLS              bool          `yaml:"smtp_use_tls"`
	OpenAIAPIKey            string        `yaml:"-"`
	OpenAIModel             string        `yaml:"openai_model"`
	FeedbackBaseURL         string        `yaml:"feedback_base_url"`
	AutosaveQuietPeriod     time.Duration `yaml:"autosave_quiet_period"`
	QuarterRolloverInterval time.Duration `yaml:"quarter_rollover_interval"`
	AWSRegion               string        `yaml:"aws_region"`
	DynamoDBTable           string        `yaml:"dynamodb_table"`
	MaxBodyBytes            int64         `yaml:"max_body_bytes"`
	RateLimitPerMinute      int           `yaml:"rate_limit_per_minute"`
	MetricsEnabled          bool          `yaml:"metrics_enabled"`
}

func defaults() Config {
	return Config{
		Addr:                    ":8080",
		Environment:             "development",
		FrontendDir:             "frontend/dist",
		LogLevel:                "info",
		LogFormat:               "json",
		StorageDriver:           StorageSQLite,
		StorageNamespace:        "hrunity",
		SQLitePath:              "data/hrunity.db",
		SeedSampleData:          true,
		SessionTTL:              12 * time.Hour,
		EmailProvider:           EmailSimulated,
		EmailFrom:               "noreply@hrunity.local",
		EmailFromName:           "Performance Management System",
		SMTPPort:                587,
		SMTPUseTLS:              true,
		OpenAIModel:             "gpt-3.5-turbo",
		FeedbackBaseURL:         "http://localhost:8080",
		AutosaveQuietPeriod:     2 * time.Second,
		QuarterRolloverInterval: 24 * time.Hour,
		AWSRegion:               "us-east-1",
		DynamoDBTable:           "EmployeeDatabase",
		MaxBodyBytes:            1048576,
		RateLimitPerMinute:      120,
		MetricsEnabled:          true,
	}
}

// Load resolves configuration from defaults, then the optional YAML file at
// HRUNITY_CONFIG_PATH, then a .env file, then the process environment.
// Secrets are only read from the environment.
func Load() (Config, error) {
	cfg := defaults()

	path := getEnv("HRUNITY_CONFIG_PATH", "config/hrunity.yaml")
	if err := loadYAMLFile(&cfg, path); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Addr = getEnv("APP_ADDR", c.Addr)
	c.Environment = getEnv("APP_ENV", c.Environment)
	c.FrontendDir = getEnv("FRONTEND_DIR", c.FrontendDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", c.StorageDriver))
	c.StorageNamespace = getEnv("STORAGE_NAMESPACE", c.StorageNamespace)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DataEncryptionKey = getEnv("DATA_ENCRYPTION_KEY", c.DataEncryptionKey)
	c.SimulatedLatency = getEnvDuration("SIMULATED_LATENCY", c.SimulatedLatency)
	c.SeedSampleData = getEnvBool("SEED_SAMPLE_DATA", c.SeedSampleData)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.AdminPasscodeHash = getEnv("ADMIN_PASSCODE_HASH", c.AdminPasscodeHash)
	c.EmailProvider = strings.ToLower(getEnv("EMAIL_PROVIDER", c.EmailProvider))
	c.EmailFrom = getEnv("EMAIL_FROM", c.EmailFrom)
	c.EmailFromName = getEnv("EMAIL_FROM_NAME", c.EmailFromName)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvInt("SMTP_PORT", c.SMTPPort)
	c.SMTPUser = getEnv("SMTP_USER", c.SMTPUser)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SMTPUseTLS = getEnvBool("SMTP_USE_TLS", c.SMTPUseTLS)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.FeedbackBaseURL = strings.TrimRight(getEnv("FEEDBACK_BASE_URL", c.FeedbackBaseURL), "/")
	c.AutosaveQuietPeriod = getEnvDuration("AUTOSAVE_QUIET_PERIOD", c.AutosaveQuietPeriod)
	c.QuarterRolloverInterval = getEnvDuration("QUARTER_ROLLOVER_INTERVAL", c.QuarterRolloverInterval)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("DYNAMODB_TABLE", c.DynamoDBTable)
	c.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes)))
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_DRIVER is sqlite")
		}
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, sqlite, postgres")
	}
	if strings.TrimSpace(c.StorageNamespace) == "" {
		return fmt.Errorf("STORAGE_NAMESPACE must not be empty")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.AdminPasscodeHash) == "" {
			return fmt.Errorf("ADMIN_PASSCODE_HASH must be set in production")
		}
	}
	if c.SimulatedLatency < 0 {
		return fmt.Errorf("SIMULATED_LATENCY must not be negative")
	}
	if c.AutosaveQuietPeriod <= 0 {
		return fmt.Errorf("AUTOSAVE_QUIET_PERIOD must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.EmailProvider {
	case EmailSimulated:
	case EmailSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST must be set when EMAIL_PROVIDER is smtp")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of simulated, smtp")
	}
	return nil
}

// GenerationConfigured reports whether the text-generation provider has an
// API key; without one the rule-based generator is used.
func (c Config) GenerationConfigured() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}
