// Package config содержит логику чтения конфигурации сервиса coursemart.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress        = "localhost:8080"
	defaultReconcileInterval = time.Minute
)

// Config содержит параметры конфигурации сервиса coursemart.
type Config struct {
	RunAddress            string        `env:"RUN_ADDRESS"`
	DatabaseURI           string        `env:"DATABASE_URI"`
	PaymentGatewayAddress string        `env:"PAYMENT_GATEWAY_ADDRESS"`
	PaymentGatewaySecret  string        `env:"PAYMENT_GATEWAY_SECRET"`
	AuthSecret            string        `env:"AUTH_SECRET"`
	ReconcileInterval     time.Duration `env:"RECONCILE_INTERVAL"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// Файл .env необязателен.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.PaymentGatewayAddress, "g", "", "payment gateway address")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for verifying session tokens")
	flag.DurationVar(&cfg.ReconcileInterval, "i", defaultReconcileInterval, "interval between payment reconciliation sweeps")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.PaymentGatewayAddress != "" {
		cfg.PaymentGatewayAddress = envCfg.PaymentGatewayAddress
	}
	if envCfg.AuthSecret != "" {
		cfg.AuthSecret = envCfg.AuthSecret
	}
	if envCfg.ReconcileInterval != 0 {
		cfg.ReconcileInterval = envCfg.ReconcileInterval
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	return cfg, nil
}
