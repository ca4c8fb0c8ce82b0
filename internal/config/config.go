package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB            DBConfig
	HTTPAddr      string
	LogLevel      string
	AuditSchedule string
	PageSize      int
}

type DBConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns DB.URL when set, otherwise a postgres URL assembled from the parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Load reads the given .env files (".env" when none are given) and then the
// process environment. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	port, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	pageSize, err := intEnv("PAGE_SIZE", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		DB: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     env("DB_HOST", "localhost"),
			Port:     port,
			User:     env("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     env("DB_NAME", "finance_db"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		LogLevel:      env("LOG_LEVEL", "info"),
		AuditSchedule: env("AUDIT_SCHEDULE", "@hourly"),
		PageSize:      pageSize,
	}, nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
