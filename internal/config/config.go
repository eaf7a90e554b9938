// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration. Each field corresponds to an
// environment variable; secrets are strings, lifetimes are durations.
type Config struct {
	Env  string // application environment ("dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	// One independent signing secret per token kind.
	AccessSecret string
	RefreshSecret string
	EmailTokenSecret string

	AccessTTL     time.Duration // access token / cookie lifetime
	RefreshTTL    time.Duration // refresh token / cookie lifetime
	EmailTokenTTL time.Duration // email-verification token lifetime

	BcryptCost int

	DashboardURL string // admin dashboard origin (verification landing for ADMIN sign-ups)
	StoreURL     string // storefront origin (verification landing for USER sign-ups)

	CloudinaryCloud  string
	CloudinaryKey    string
	CloudinarySecret string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// Load reads configuration from the environment. Missing required variables
// abort startup with a fatal log; tunables fall back to documented defaults.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		AccessSecret:     must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:    must("REFRESH_TOKEN_SECRET"),
		EmailTokenSecret: must("EMAIL_TOKEN_SECRET"),

		AccessTTL:     time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTTL:    time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		EmailTokenTTL: time.Duration(envInt("EMAIL_TOKEN_TTL_HOURS", 24)) * time.Hour,

		BcryptCost: envInt("BCRYPT_COST", 10),

		DashboardURL: envStr("DASHBOARD_URL", "http://localhost:5173"),
		StoreURL:     envStr("STORE_URL", "http://localhost:3000"),

		CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envStr("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: os.Getenv("MAIL_FROM"),
	}
}

// Production reports whether cookies must carry the Secure attribute.
func (c Config) Production() bool { return c.Env == "prod" || c.Env == "production" }

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
