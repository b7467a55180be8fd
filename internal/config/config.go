package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration for the
// binaries. The library core takes no configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
}

// DatabaseConfig holds ledger connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP facade settings
type ServerConfig struct {
	Addr string
}

// DataConfig holds data file settings
type DataConfig struct {
	CatalogFile string
	TimeColumn  string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Data: DataConfig{
			CatalogFile: os.Getenv("CATALOG_FILE"),
			TimeColumn:  getEnv("CATALOG_TIME_COLUMN", "year"),
		},
	}
	return cfg, nil
}

// RequireDatabase validates that a ledger DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
