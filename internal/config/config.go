// Package config loads service settings from the environment, after merging
// in a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cheertaboi/referral-service/pkg/db"
)

type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Sender string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	LogFile        string
	RedisURL       string
	AdminJWTSecret string
	Postgres       db.PostgresConfig
	SMTP           SMTPConfig
}

// Load reads .env (if any) and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		RequestTimeout: 8 * time.Second,
		LogFile:        os.Getenv("LOG_FILE"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		SMTP: SMTPConfig{
			Host:   os.Getenv("SMTP_HOST"),
			Port:   465,
			User:   os.Getenv("SMTP_USER"),
			Pass:   os.Getenv("SMTP_PASS"),
			Sender: os.Getenv("SMTP_SENDER"),
		},
	}

	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", raw, err)
		}
		cfg.RequestTimeout = d
	}

	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid SMTP_PORT %q: %w", raw, err)
		}
		cfg.SMTP.Port = port
	}
	if cfg.SMTP.Sender == "" {
		cfg.SMTP.Sender = cfg.SMTP.User
	}

	pg, err := db.LoadPostgresConfig()
	if err != nil {
		return cfg, err
	}
	cfg.Postgres = pg

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
