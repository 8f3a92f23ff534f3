package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Availability engine
	SlotCalendarPath   string
	BufferMinutes      int
	DepositAmountCents int

	// Admin auth
	AdminJWTSecret string

	// CORS
	CORSAllowedOrigins []string

	// Headless CMS catalog
	CatalogBaseURL       string
	CatalogAPIToken      string
	CatalogCacheTTL      time.Duration
	CatalogWebhookSecret string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Payment links provider
	PaylinkBaseURL       string
	PaylinkAPIKey        string
	PaylinkWebhookSecret string
	PaylinkSuccessURL    string
	PaylinkDryRun        bool

	// WhatsApp gateway
	WhatsAppBaseURL       string
	WhatsAppAPIKey        string
	WhatsAppWebhookSecret string
	WhatsAppFromNumber    string

	// Email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	EmailProvider     string

	// AWS (SES fallback, campaign queue, invoice archive)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	CampaignQueueURL    string
	InvoiceArchiveBucket string

	// Campaign dispatch
	UseMemoryQueue bool
	WorkerCount    int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		SlotCalendarPath:   getEnv("SLOT_CALENDAR_PATH", ""),
		BufferMinutes:      getEnvAsInt("BUFFER_MINUTES", 60),
		DepositAmountCents: getEnvAsInt("DEPOSIT_AMOUNT_CENTS", 5000),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		CatalogBaseURL:       getEnv("CATALOG_BASE_URL", ""),
		CatalogAPIToken:      getEnv("CATALOG_API_TOKEN", ""),
		CatalogCacheTTL:      getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		CatalogWebhookSecret: getEnv("CATALOG_WEBHOOK_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		PaylinkBaseURL:       getEnv("PAYLINK_BASE_URL", ""),
		PaylinkAPIKey:        getEnv("PAYLINK_API_KEY", ""),
		PaylinkWebhookSecret: getEnv("PAYLINK_WEBHOOK_SECRET", ""),
		PaylinkSuccessURL:    getEnv("PAYLINK_SUCCESS_URL", ""),
		PaylinkDryRun:        getEnvAsBool("PAYLINK_DRY_RUN", false),

		WhatsAppBaseURL:       getEnv("WHATSAPP_BASE_URL", ""),
		WhatsAppAPIKey:        getEnv("WHATSAPP_API_KEY", ""),
		WhatsAppWebhookSecret: getEnv("WHATSAPP_WEBHOOK_SECRET", ""),
		WhatsAppFromNumber:    getEnv("WHATSAPP_FROM_NUMBER", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Bella Cucina"),
		EmailProvider:     getEnv("EMAIL_PROVIDER", "sendgrid"),

		AWSRegion:            getEnv("AWS_REGION", "eu-west-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		CampaignQueueURL:     getEnv("CAMPAIGN_QUEUE_URL", ""),
		InvoiceArchiveBucket: getEnv("INVOICE_ARCHIVE_BUCKET", ""),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
	}
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable into a slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
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
