package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the config file if present and applies environment overrides on
// top of the defaults. A missing file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := Path(); path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	loadFromEnv(cfg)
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Allow $VAR references in the config file, typically for api_key.
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("POINTER_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("POINTER_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("POINTER_MODEL"); v != "" {
		cfg.API.Model = v
	}
	if v := os.Getenv("POINTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POINTER_AUTO_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Mode.AutoRunTools = b
		}
	}
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.MaxTokens <= 0 {
		return fmt.Errorf("api.max_tokens must be positive")
	}
	if c.Context.MaxDepth < 0 {
		return fmt.Errorf("context.max_depth must not be negative")
	}
	return nil
}
