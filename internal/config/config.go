// internal/config/config.go
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"svpay-balance/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	AuthEnabled bool   `envconfig:"AUTH_ENABLED" default:"false"`
	DB          db.Config
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func LoadConfig() (*AppConfig, error) {
	// .env is optional; already-set variables take precedence.
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}
