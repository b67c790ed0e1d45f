package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"urbane-subscription-api/database"
	"urbane-subscription-api/services/email"
)

type Config struct {
	Database database.DatabaseConfig
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	SMTP     email.SMTPConfig
	Server   ServerConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Session  SessionConfig
}

type SessionConfig struct {
	Secret string
	Domain string
	MaxAge int
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

type ServerConfig struct {
	Port string
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	workerConcurrency := 2
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workerConcurrency = n
		}
	}

	cfg := &Config{
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		},
		Stripe: StripeConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			SuccessURL: os.Getenv("STRIPE_SUCCESS_URL"),
			CancelURL:  os.Getenv("STRIPE_CANCEL_URL"),
		},
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Server: ServerConfig{
			Port: os.Getenv("SERVER_PORT"),
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			WorkerConcurrency: workerConcurrency,
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: os.Getenv("JWT_ISSUER"),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: 86400,
		},
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
		log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "urbane-subscription-api"
	}

	return cfg
}
