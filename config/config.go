package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const minTicketSecretLen = 32

type Config struct {
	Port        string
	PostgresURL string
	RedisAddr   string
	FrontendURL string

	// TicketSecret keys the QR payload signatures. It is read once at
	// startup and never exposed to clients.
	TicketSecret string
	QRSize       int

	Paystack PaystackConfig
	SMTP     SMTPConfig
}

type PaystackConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		TicketSecret: getEnv("TICKET_SECRET", ""),
		QRSize:       getEnvAsInt("TICKET_QR_SIZE", 300),
		Paystack: PaystackConfig{
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "tickets@danceschool.local"),
		},
	}

	if cfg.PostgresURL == "" {
		return Config{}, fmt.Errorf("POSTGRES_URL is required")
	}
	if len(cfg.TicketSecret) < minTicketSecretLen {
		return Config{}, fmt.Errorf("TICKET_SECRET must be at least %d characters", minTicketSecretLen)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
