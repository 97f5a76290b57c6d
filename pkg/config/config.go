package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:8080"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"secret"`

	PostHogAPIKey   string `env:"POSTHOG_API_KEY"`
	PostHogEndpoint string `env:"POSTHOG_ENDPOINT" envDefault:"https://us.i.posthog.com"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	IdentityAPIKey   string `env:"IDENTITY_API_KEY"`
	IdentityEndpoint string `env:"IDENTITY_ENDPOINT" envDefault:"https://identitytoolkit.googleapis.com/v1"`

	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}
	return cfg
}

// IsProduction reports whether the service runs with production settings
// (Secure cookies, live Stripe keys).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
