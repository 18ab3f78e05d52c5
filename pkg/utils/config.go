package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Port          string `env:"WALLHUB_PORT" envDefault:"8080"`
	PublicBaseURL string `env:"WALLHUB_BASE_URL" envDefault:"http://localhost:8080"`
	StaticDir     string `env:"WALLHUB_STATIC_DIR" envDefault:"public/images"`

	Auth     AuthConfig     `envPrefix:"WALLHUB_JWT_"`
	Unsplash UnsplashConfig `envPrefix:"WALLHUB_UNSPLASH_"`
	S3       S3Config       `envPrefix:"WALLHUB_S3_"`
}

type AuthConfig struct {
	Secret   string        `env:"SECRET" envDefault:"dev-secret-change-me"`
	Issuer   string        `env:"ISSUER" envDefault:"wallhub"`
	Duration time.Duration `env:"TTL" envDefault:"168h"`
}

type UnsplashConfig struct {
	BaseURL   string        `env:"BASE_URL" envDefault:"https://api.unsplash.com"`
	AccessKey string        `env:"ACCESS_KEY"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type S3Config struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"wallhub"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	PublicURL string `env:"PUBLIC_URL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
