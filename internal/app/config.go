package app

import (
	"os"
	"strconv"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/service"
	"github.com/YassineIdiri/expense-tracker/pkg/jwtx"
)

type Config struct {
	Issuer         string // Issuer claim for access tokens (default: expense-auth)
	SigningKeyFile string // Path to the Ed25519 signing key PEM; generated if absent (default: ./signing.key)
	DatabaseFile   string // Path to SQLite database file (default: ./auth.db)
	PepperFile     string // Path to file containing pepper for password hashing (default: ./pepper)

	AccessTTL     time.Duration // Access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Refresh token lifetime (default: 168h)
	RememberMeTTL time.Duration // Refresh lifetime with remember-me (default: 720h)
	ResetTTL      time.Duration // Password reset link lifetime (default: 30m)

	ExtendOnRotate      bool // Rotation restarts the refresh window instead of inheriting it (default: false)
	RevokeFamilyOnReuse bool // Reuse of a rotated secret revokes the whole chain (default: true)

	CookieName     string // Refresh cookie name (default: refresh_token)
	CookiePath     string // Refresh cookie path (default: /v1/auth)
	CookieSecure   bool   // Secure attribute on the refresh cookie (default: false)
	CookieSameSite string // SameSite attribute (Lax, Strict, None) (default: Lax)

	BaseURL  string // Public base URL used in password reset links (default: http://localhost:8080)
	SMTPAddr string // Optional: host:port of SMTP relay; mail is logged when unset
	SMTPFrom string // From address for outgoing mail
	SMTPUser string // Optional: SMTP PLAIN auth username
	SMTPPass string // Optional: SMTP PLAIN auth password

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	HousekeepingRetain   time.Duration // How long dead token rows are retained (default: 24h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "expense-auth"),
		SigningKeyFile: getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing.key"),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AccessTTL:     getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:    getEnvDurationOrDefault("AUTH_REFRESH_TTL", service.DefaultRefreshTTL),
		RememberMeTTL: getEnvDurationOrDefault("AUTH_REMEMBER_ME_TTL", service.DefaultRememberMeTTL),
		ResetTTL:      getEnvDurationOrDefault("AUTH_RESET_TTL", service.DefaultResetTTL),

		ExtendOnRotate:      getEnvBoolOrDefault("AUTH_REFRESH_EXTEND_ON_ROTATE", false),
		RevokeFamilyOnReuse: getEnvBoolOrDefault("AUTH_REVOKE_FAMILY_ON_REUSE", true),

		CookieName:     getEnvOrDefault("AUTH_COOKIE_NAME", "refresh_token"),
		CookiePath:     getEnvOrDefault("AUTH_COOKIE_PATH", "/v1/auth"),
		CookieSecure:   getEnvBoolOrDefault("AUTH_COOKIE_SECURE", false),
		CookieSameSite: getEnvOrDefault("AUTH_COOKIE_SAMESITE", "Lax"),

		BaseURL:  getEnvOrDefault("AUTH_BASE_URL", "http://localhost:8080"),
		SMTPAddr: os.Getenv("SMTP_ADDR"),
		SMTPFrom: getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		HousekeepingRetain:   getEnvDurationOrDefault("HOUSEKEEPING_RETAIN", 24*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
