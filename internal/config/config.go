package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	HTTPAddr    string
	FrontendURL string

	Auth AuthConfig
	DB   DBConfig
	Mail MailConfig
}

// AuthConfig carries token secrets and lifetimes. Access and refresh tokens
// are signed with distinct keys so a leaked access key cannot forge refresh
// tokens.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// LinkSecret keys the untimed invite-link tokens.
func (a AuthConfig) LinkSecret() string {
	return a.AccessSecret + "+" + a.RefreshSecret
}

// TimedSecret keys the short-lived verification and password-reset tokens.
func (a AuthConfig) TimedSecret() string {
	return a.RefreshSecret
}

type DBConfig struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	FromName     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "atrium"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		FrontendURL: strings.TrimSuffix(getenv("FRONTEND_URL", "http://localhost:3000"), "/") + "/",
		Auth: AuthConfig{
			AccessSecret:  strings.TrimSpace(getenv("AUTH_ACCESS_SECRET", "")),
			RefreshSecret: strings.TrimSpace(getenv("AUTH_REFRESH_SECRET", "")),
			AccessTTL:     time.Duration(getenvInt("AUTH_ACCESS_TTL_MINUTES", 30)) * time.Minute,
			RefreshTTL:    time.Duration(getenvInt("AUTH_REFRESH_TTL_MINUTES", 60*24*7)) * time.Minute,
		},
		DB: DBConfig{
			Type:     getenv("DATABASE_TYPE", "postgres"),
			Host:     getenv("DATABASE_HOST", "localhost"),
			Port:     getenv("DATABASE_PORT", "5432"),
			Name:     getenv("DATABASE_NAME", "atrium"),
			User:     getenv("DATABASE_USER", "postgres"),
			Password: getenv("DATABASE_PASSWORD", ""),
			SSLMode:  getenv("DATABASE_SSLMODE", "disable"),
		},
		Mail: MailConfig{
			SMTPHost:     getenv("MAIL_SERVER", "localhost"),
			SMTPPort:     getenvInt("MAIL_PORT", 587),
			SMTPUsername: getenv("MAIL_USERNAME", ""),
			SMTPPassword: getenv("MAIL_PASSWORD", ""),
			From:         getenv("MAIL_FROM", "no-reply@atrium.dev"),
			FromName:     getenv("MAIL_FROM_NAME", "Atrium"),
		},
	}
}

// Module provides the configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
