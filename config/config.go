// Package config loads application settings from a .env file and environment
// variables. Environment variables always take precedence over .env values.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL connection string.
	DatabaseURL string

	// Server
	Addr  string
	Debug bool

	// Directory holding the goose SQL migrations. Empty disables the
	// startup migration run.
	MigrationsDir string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables.
func Load() *Config {
	// Missing .env is fine; env vars alone are enough.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("MIGRATIONS_DIR", "./db/migrations")

	return &Config{
		DatabaseURL:   v.GetString("POSTGRES_CONN"),
		Addr:          v.GetString("SERVER_ADDRESS"),
		Debug:         v.GetBool("DEBUG"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
	}
}
