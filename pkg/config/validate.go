package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// auth.secret_key is required; a missing key must stop the process
	// rather than silently issue unverifiable tokens.
	if c.Auth.SecretKey == "" && c.Auth.SecretKeyFile == "" {
		errs = append(errs, fmt.Errorf("auth.secret_key or auth.secret_key_file is required"))
	}

	// auth.algorithm must be a supported HMAC variant.
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.algorithm must be \"HS256\", \"HS384\", or \"HS512\", got %q", c.Auth.Algorithm))
	}

	// auth.token_ttl_minutes must be positive.
	if c.Auth.TokenTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl_minutes must be > 0, got %d", c.Auth.TokenTTLMinutes))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// If the LLM is enabled, its endpoint and model must be set.
	if c.LLM.Enabled {
		if c.LLM.BaseURL == "" {
			errs = append(errs, fmt.Errorf("llm.base_url is required when llm.enabled is true"))
		}
		if c.LLM.Model == "" {
			errs = append(errs, fmt.Errorf("llm.model is required when llm.enabled is true"))
		}
	}

	return errors.Join(errs...)
}
