package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Email providers understood by EMAIL_PROVIDER.
const (
	EmailProviderSES      = "ses"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderStub     = "stub"
)

// Submission backends understood by SUBMISSIONS_BACKEND.
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendNone     = "none"
)

// Default contact links rendered into the confirmation email.
const (
	DefaultWhatsAppNumber = "+86 19371138377"
	DefaultWhatsAppURL    = "https://api.whatsapp.com/send?phone=8619371138377&text=Hi%2C%20I%27m%20interested%20in%20trading%20gift%20cards%20on%20Rich%21"
	DefaultTikTokUsername = "@veryrich429"
	DefaultTikTokURL      = "https://www.tiktok.com/@veryrich429"
)

// Config holds application configuration. It is read once at process start and
// passed into constructors; nothing reads the environment on the request path.
type Config struct {
	Env      string
	LogLevel string
	Port     string

	// Meta Conversions API
	MetaPixelID       string
	MetaAccessToken   string
	MetaTestEventCode string
	MetaAPIVersion    string
	MetaGraphBaseURL  string
	HTTPTimeout       time.Duration

	// AWS
	AWSRegion           string
	SESRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Email
	EmailProvider  string
	AdminEmail     string
	FromEmail      string
	FromName       string
	SendGridAPIKey string

	// Submission storage
	SubmissionsBackend string
	DynamoDBTableName  string
	DatabaseURL        string

	// Confirmation email contact links
	WhatsAppNumber string
	WhatsAppURL    string
	TikTokUsername string
	TikTokURL      string

	AbortOnAdminEmailFailure bool

	// Local server
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Env:      getEnv("APP_ENV", getEnv("NODE_ENV", "production")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		MetaPixelID:       strings.TrimSpace(getEnv("META_PIXEL_ID", "")),
		MetaAccessToken:   strings.TrimSpace(getEnv("META_ACCESS_TOKEN", "")),
		MetaTestEventCode: strings.TrimSpace(getEnv("META_TEST_EVENT_CODE", "")),
		MetaAPIVersion:    getEnv("META_API_VERSION", "v21.0"),
		MetaGraphBaseURL:  strings.TrimRight(getEnv("META_GRAPH_BASE_URL", "https://graph.facebook.com"), "/"),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailProviderSES))),
		AdminEmail:     strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		FromEmail:      strings.TrimSpace(getEnv("FROM_EMAIL", "")),
		FromName:       getEnv("FROM_NAME", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		DynamoDBTableName: strings.TrimSpace(getEnv("DYNAMODB_TABLE_NAME", "")),
		DatabaseURL:       strings.TrimSpace(getEnv("DATABASE_URL", "")),

		WhatsAppNumber: getEnv("WHATSAPP_NUMBER", DefaultWhatsAppNumber),
		WhatsAppURL:    getEnv("WHATSAPP_URL", DefaultWhatsAppURL),
		TikTokUsername: getEnv("TIKTOK_USERNAME", DefaultTikTokUsername),
		TikTokURL:      getEnv("TIKTOK_URL", DefaultTikTokURL),

		AbortOnAdminEmailFailure: getEnvAsBool("ABORT_ON_ADMIN_EMAIL_FAILURE", false),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
	cfg.SESRegion = getEnv("SES_REGION", cfg.AWSRegion)
	cfg.SubmissionsBackend = strings.ToLower(strings.TrimSpace(getEnv("SUBMISSIONS_BACKEND", defaultBackend(cfg))))
	return cfg
}

func defaultBackend(cfg *Config) string {
	if cfg.DynamoDBTableName != "" {
		return BackendDynamoDB
	}
	return BackendNone
}

// IsDevelopment reports whether diagnostic details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// MetaConfigured reports whether the ad-platform credentials are present.
func (c *Config) MetaConfigured() bool {
	return c.MetaPixelID != "" && c.MetaAccessToken != ""
}

// ValidateIntake checks the variables the intake handler cannot run without.
func (c *Config) ValidateIntake() error {
	var missing []string
	if c.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if c.FromEmail == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	switch c.SubmissionsBackend {
	case BackendDynamoDB:
		if c.DynamoDBTableName == "" {
			missing = append(missing, "DYNAMODB_TABLE_NAME")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	}
	if c.EmailProvider == EmailProviderSendGrid && c.SendGridAPIKey == "" {
		missing = append(missing, "SENDGRID_API_KEY")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// ValidateRelay checks the variables the conversion relay cannot run without.
func (c *Config) ValidateRelay() error {
	var missing []string
	if c.MetaPixelID == "" {
		missing = append(missing, "META_PIXEL_ID")
	}
	if c.MetaAccessToken == "" {
		missing = append(missing, "META_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// MissingError reports required configuration that is absent.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("config: missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
