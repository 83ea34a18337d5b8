package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	DBDSN string `env:"DB_DSN,required"`

	// Identity collaborator: shared secret for verifying bearer tokens.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Payment gateway.
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// Origin used to build checkout redirect and onboarding return URLs.
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:3001"`

	SMTP    SMTPConfig    `envPrefix:"SMTP_"`
	Storage StorageConfig `envPrefix:"STORAGE_"`
}

type SMTPConfig struct {
	Host          string `env:"HOST"`
	Port          string `env:"PORT" envDefault:"587"`
	Username      string `env:"USERNAME"`
	Password      string `env:"PASSWORD"`
	TLSMode       string `env:"TLS_MODE" envDefault:"starttls"` // none|starttls|tls
	SkipVerifyTLS bool   `env:"SKIP_VERIFY_TLS"`
	FromAddr      string `env:"FROM_ADDR" envDefault:"no-reply@local.test"`
	FromName      string `env:"FROM_NAME" envDefault:"Marketplace"`
}

type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"local"` // local|s3

	LocalUploadDir       string `env:"LOCAL_UPLOAD_DIR" envDefault:"./storage/uploads"`
	LocalUploadURLPrefix string `env:"LOCAL_UPLOAD_URL_PREFIX" envDefault:"/uploads"`

	S3Region        string `env:"S3_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX" envDefault:"uploads"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads .env (if present) and parses the environment.
// Prod deployments set real env vars; the .env file is a dev convenience.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
