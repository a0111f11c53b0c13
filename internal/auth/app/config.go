package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string // Optional: issuer claim for tickets and the TOTP issuer label (default: gatekeeper)
	BootstrapToken string // Optional: token required to perform bootstrap

	NumKeys       int    // Optional: number of ticket signing keys to generate (default: 3, min: 1, max: 10)
	MasterKeyPath string // Optional: path to master encryption key file for TOTP secrets
	DatabaseFile  string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile    string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	RedisURL      string // Optional: redis:// URL; when set 2FA attempt counters live in redis

	SessionTTL           time.Duration // Session lifetime (default: 30 days)
	SessionPurgeAfter    time.Duration // Purge sessions dead for longer than this (default: 30 days)
	TwoFactorTicketTTL   time.Duration // Lifetime of a 2FA ticket (default: 5m)
	TwoFactorMaxAttempts int           // Wrong codes allowed per ticket (default: 3)
	TwoFactorLockout     time.Duration // Attempt counter window (default: 15m)
	OAuthTicketTTL       time.Duration // Lifetime of an AWAITING_EMAIL ticket (default: 10m)
	ActivationTTL        time.Duration // Activation link lifetime (default: 48h)
	ResetTTL             time.Duration // Password reset link lifetime (default: 1h)
	PublicURL            string        // Base URL mailed links point at (default: http://localhost:8080)
	CookieSecure         bool          // Secure flag on the session cookie (default: true)
	OAuth                OAuthConfig   // Optional: one upstream provider
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// OAuthConfig describes the upstream provider. The provider is only
// registered when Provider, ClientID and TokenURL are all set.
type OAuthConfig struct {
	Provider     string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Issuer       string
}

func (c OAuthConfig) Enabled() bool {
	return c.Provider != "" && c.ClientID != "" && c.TokenURL != ""
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory if there is one.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "gatekeeper"),
		BootstrapToken: os.Getenv("AUTH_BOOTSTRAP_TOKEN"),      // Optional: if set, required to perform bootstrap
		NumKeys:        getEnvIntOrDefault("AUTH_NUM_KEYS", 0), // 0 lets the KeyManager pick
		MasterKeyPath:  os.Getenv("AUTH_MASTER_KEY_PATH"),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		RedisURL:       os.Getenv("AUTH_REDIS_URL"),

		SessionTTL:           getEnvDurationOrDefault("AUTH_SESSION_TTL", 30*24*time.Hour),
		SessionPurgeAfter:    getEnvDurationOrDefault("AUTH_SESSION_PURGE_AFTER", 30*24*time.Hour),
		TwoFactorTicketTTL:   getEnvDurationOrDefault("AUTH_TWO_FACTOR_TICKET_TTL", 5*time.Minute),
		TwoFactorMaxAttempts: getEnvIntOrDefault("AUTH_TWO_FACTOR_MAX_ATTEMPTS", 3),
		TwoFactorLockout:     getEnvDurationOrDefault("AUTH_TWO_FACTOR_LOCKOUT", 15*time.Minute),
		OAuthTicketTTL:       getEnvDurationOrDefault("AUTH_OAUTH_TICKET_TTL", 10*time.Minute),
		ActivationTTL:        getEnvDurationOrDefault("AUTH_ACTIVATION_TTL", 48*time.Hour),
		ResetTTL:             getEnvDurationOrDefault("AUTH_RESET_TTL", time.Hour),
		PublicURL:            getEnvOrDefault("AUTH_PUBLIC_URL", "http://localhost:8080"),
		CookieSecure:         getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),

		OAuth: OAuthConfig{
			Provider:     os.Getenv("AUTH_OAUTH_PROVIDER"),
			ClientID:     os.Getenv("AUTH_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("AUTH_OAUTH_CLIENT_SECRET"),
			AuthURL:      os.Getenv("AUTH_OAUTH_AUTH_URL"),
			TokenURL:     os.Getenv("AUTH_OAUTH_TOKEN_URL"),
			RedirectURL:  os.Getenv("AUTH_OAUTH_REDIRECT_URL"),
			Issuer:       os.Getenv("AUTH_OAUTH_ISSUER"),
		},

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
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

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
