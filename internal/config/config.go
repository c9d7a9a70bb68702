package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	SchemaPath string   `json:"schema_path" mapstructure:"schema_path"`
	Database   Database `json:"database" mapstructure:"database"`
	Seed       Seed     `json:"seed" mapstructure:"seed"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

// Seed carries the naming conventions the seeder needs to resolve
// locale fan-outs.
type Seed struct {
	LocaleTable       string `json:"locale_table" mapstructure:"locale_table"`
	LocaleColumn      string `json:"locale_column" mapstructure:"locale_column"`
	TranslationSuffix string `json:"translation_suffix" mapstructure:"translation_suffix"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults
	if cfg.SchemaPath == "" {
		cfg.SchemaPath = "db/schema.yaml"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgres"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Seed.LocaleTable == "" {
		cfg.Seed.LocaleTable = "locales"
	}
	if cfg.Seed.LocaleColumn == "" {
		cfg.Seed.LocaleColumn = "code"
	}
	if cfg.Seed.TranslationSuffix == "" {
		cfg.Seed.TranslationSuffix = "_translations"
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgres", "postgresql", "mysql"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.SchemaPath == "" {
		return fmt.Errorf("schema_path cannot be empty")
	}

	return nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}
