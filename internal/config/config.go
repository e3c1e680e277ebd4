package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	LogFormat  string
	Timezone   string
	DevUserID  string
	JWTSecret  string
	CORSOrigin []string

	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         time.Duration

	// Record store
	LeadStore    string
	DatabaseURL  string
	LeadsTable   string
	StoreTimeout time.Duration
	RequirePhone bool

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Team roster and sheet mirror
	DefaultTeam     []string
	SentinelMember  string
	SheetURLHost    string
	SyncTransport   string
	SyncTimeout     time.Duration
	SyncMaxInFlight int
	SyncQueueURL    string
	AMQPURL         string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	MediaBucket         string
	MediaPublicBaseURL  string

	// Email
	EmailProvider    string
	SendGridAPIKey   string
	EmailFrom        string
	EmailFromName    string
	ReportRecipients []string

	RemindersEnabled  bool
	ReminderInterval  time.Duration
	ReminderRecipient string

	ImportBatchSize int
	ImportRateLimit float64
	CurrencySymbol  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
		Timezone:   getEnv("TIMEZONE", "Asia/Kolkata"),
		DevUserID:  getEnv("DEV_USER_ID", ""),
		JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		CORSOrigin: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		CORSAllowedHeaders: getEnvAsList("CORS_ALLOWED_HEADERS", nil),
		CORSExposedHeaders: getEnvAsList("CORS_EXPOSED_HEADERS", nil),
		CORSMaxAge:         getEnvAsDuration("CORS_MAX_AGE", 10*time.Minute),

		LeadStore:    strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", "memory"))),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		LeadsTable:   getEnv("LEADS_TABLE", "nectar_leads"),
		StoreTimeout: getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
		RequirePhone: getEnvAsBool("REQUIRE_PHONE", true),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DefaultTeam:     getEnvAsList("DEFAULT_TEAM", []string{"AD", "Rohan", "Akshay"}),
		SentinelMember:  getEnv("SENTINEL_MEMBER", "AD"),
		SheetURLHost:    getEnv("SHEET_URL_HOST", "script.google.com"),
		SyncTransport:   strings.ToLower(strings.TrimSpace(getEnv("SYNC_TRANSPORT", "webhook"))),
		SyncTimeout:     getEnvAsDuration("SYNC_TIMEOUT", 5*time.Second),
		SyncMaxInFlight: getEnvAsInt("SYNC_MAX_IN_FLIGHT", 16),
		SyncQueueURL:    getEnv("SYNC_QUEUE_URL", ""),
		AMQPURL:         getEnv("AMQP_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		MediaBucket:         getEnv("MEDIA_BUCKET", ""),
		MediaPublicBaseURL:  getEnv("MEDIA_PUBLIC_BASE_URL", ""),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:        getEnv("EMAIL_FROM", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Nectar Leads"),
		ReportRecipients: getEnvAsList("REPORT_RECIPIENTS", nil),

		RemindersEnabled:  getEnvAsBool("REMINDERS_ENABLED", false),
		ReminderInterval:  getEnvAsDuration("REMINDER_INTERVAL", time.Minute),
		ReminderRecipient: getEnv("REMINDER_RECIPIENT", ""),

		ImportBatchSize: getEnvAsInt("IMPORT_BATCH_SIZE", 20),
		ImportRateLimit: getEnvAsFloat("IMPORT_RATE_LIMIT", 0.2),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₹"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NeedsAWS reports whether any configured backend talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.LeadStore == "dynamodb" || c.SyncTransport == "sqs" || c.EmailProvider == "ses" || strings.TrimSpace(c.MediaBucket) != ""
}

// Location resolves the viewer timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
