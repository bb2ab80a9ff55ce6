package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	GinMode        string
	MigrationsPath string

	// DatabaseURL wins over the DB_* parts when set.
	DatabaseURL string
	DB          DBConfig

	JWTSecret     string
	CORSOrigins   []string
	ApproverRoles []string
	DefaultLocale string

	Roster RosterConfig
	SMTP   SMTPConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// RosterConfig points at the external employee/project directory.
type RosterConfig struct {
	BaseURL string
	Token   string
	// SyncInterval of zero disables the scheduled sync.
	SyncInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func (c Config) IsRelease() bool {
	return c.GinMode == "release"
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

// Load reads configs/.env and .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load("configs/.env")
	_ = godotenv.Load()

	smtpPort, err := strconv.Atoi(env("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	syncInterval, err := time.ParseDuration(env("ROSTER_SYNC_INTERVAL", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ROSTER_SYNC_INTERVAL: %w", err)
	}

	cfg := Config{
		Port:           env("PORT", "8080"),
		GinMode:        env("GIN_MODE", "debug"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "traveldesk"),
			User:     env("DB_USER", "postgres"),
			Password: env("DB_PASSWORD", "postgres"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   envList("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		ApproverRoles: envList("APPROVER_ROLES", "manager,pm,admin"),
		DefaultLocale: env("DEFAULT_LOCALE", "en"),
		Roster: RosterConfig{
			BaseURL:      strings.TrimRight(os.Getenv("ROSTER_BASE_URL"), "/"),
			Token:        os.Getenv("ROSTER_TOKEN"),
			SyncInterval: syncInterval,
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsRelease() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // development fallback only
	}

	return cfg, nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
