package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY,required"`
	WebhookSecret string `env:"WEBHOOK_SECRET,required"`
	SuccessURL    string `env:"SUCCESS_URL" envDefault:"http://localhost:5173/billing/success"`
	CancelURL     string `env:"CANCEL_URL" envDefault:"http://localhost:5173/billing/cancel"`
}

type Email struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromAddress  string `env:"FROM_ADDRESS" envDefault:"billing@hirelane.co"`
	FromName     string `env:"FROM_NAME" envDefault:"Hirelane"`
}

type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DatabaseURL  string        `env:"DATABASE_URL,required"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowOrigins string        `env:"ALLOW_ORIGINS" envDefault:"https://hirelane.co, https://www.hirelane.co, http://localhost:5173"`
	JWTSecret    string        `env:"JWT_SECRET,required"`
	AdminToken   string        `env:"ADMIN_TOKEN,required"`
	CreditTTL    time.Duration `env:"CREDIT_TTL" envDefault:"2160h"` // 90 days
	SweepEvery   time.Duration `env:"SWEEP_EVERY" envDefault:"1h"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	Email  Email  `envPrefix:"EMAIL_"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
