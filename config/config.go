package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/jmapclient"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string
	// JMAP mail configuration (Fastmail)
	JMAPSessionURL   string
	JMAPToken        string
	LoginEmail       string // Account login, also used to pick the sending identity
	PersonalEmail    string // Where submissions are delivered
	ContactFormEmail string // From address of outgoing mail
	UpstreamTimeout  time.Duration
	// Contact form routing and origin checks
	ContactPath        string
	AllowedOrigin      string
	AllowedReferer     string
	ContactSourceLabel string // Page name quoted in the message body
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration (0 disables)
	ContactRateLimit int
	// Proxies whose X-Forwarded-For is believed when keying the limiter
	TrustedProxies []string
	// Static site renderer
	StaticDir         string
	StaticBucket      string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	SwaggerEnabled    bool
}

func LoadConfig() (*Config, error) {
	// Load .env file when present (local development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		// JMAP
		JMAPSessionURL:   getEnv("JMAP_SESSION_URL", jmapclient.DefaultSessionURL),
		JMAPToken:        getEnv("JMAP_TOKEN", ""),
		LoginEmail:       getEnv("LOGIN_EMAIL", ""),
		PersonalEmail:    getEnv("PERSONAL_EMAIL", ""),
		ContactFormEmail: getEnv("CONTACT_FORM_EMAIL", ""),
		UpstreamTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		// Contact form
		ContactPath:        getEnv("CONTACT_PATH", "/contact_form_worker/"),
		AllowedOrigin:      strings.TrimRight(getEnv("ALLOWED_ORIGIN", "https://www.diegoripley.ca"), "/"),
		AllowedReferer:     getEnv("ALLOWED_REFERER", "https://www.diegoripley.ca/contact/"),
		ContactSourceLabel: getEnv("CONTACT_SOURCE_LABEL", "www.diegoripley.ca/contact/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		ContactRateLimit:     getEnvInt("CONTACT_RATE_LIMIT", 0),
		TrustedProxies:       getEnvList("TRUSTED_PROXIES"),
		// Static renderer
		StaticDir:         getEnv("STATIC_DIR", "./public"),
		StaticBucket:      getEnv("STATIC_BUCKET", ""),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		SwaggerEnabled:    getEnvBool("SWAGGER_ENABLED", false),
	}

	// Missing mail settings are not fatal at startup; each submission fails
	// with a generic error until they are set.
	if err := cfg.MailConfig().Validate(); err != nil {
		log.Printf("WARNING: %v. Contact form submissions will fail.", err)
	}

	if cfg.ContactRateLimit > 0 && cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// MailConfig returns the values the contact pipeline needs to send mail.
func (c *Config) MailConfig() domain.MailConfig {
	return domain.MailConfig{
		Token:         c.JMAPToken,
		LoginEmail:    c.LoginEmail,
		PersonalEmail: c.PersonalEmail,
		FromEmail:     c.ContactFormEmail,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated environment variable, dropping empty
// entries. Unset yields nil.
func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
