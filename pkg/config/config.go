// Package config provides unified configuration for the fitpulse backend.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (FITPULSE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the fitpulse backend.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	LLM           LLMConfig           `yaml:"llm"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8000
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 180s
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	SecretKey       string `yaml:"secret_key"`        // required
	SecretKeyFile   string `yaml:"secret_key_file"`   // _file variant for secret_key
	Algorithm       string `yaml:"algorithm"`         // "HS256", "HS384", or "HS512", default: "HS256"
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"` // default: 30
	BcryptCost      int    `yaml:"bcrypt_cost"`       // 0 means the bcrypt default
}

// TokenTTL returns the configured token lifetime as a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// LLMConfig holds report generator settings.
type LLMConfig struct {
	Enabled bool          `yaml:"enabled"`  // default: false (mock generator)
	BaseURL string        `yaml:"base_url"` // default: "http://localhost:11434"
	Model   string        `yaml:"model"`    // default: "llama3"
	Timeout time.Duration `yaml:"timeout"`  // default: 120s
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 180 * time.Second,
		},
		Auth: AuthConfig{
			Algorithm:       "HS256",
			TokenTTLMinutes: 30,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		LLM: LLMConfig{
			Enabled: false,
			BaseURL: "http://localhost:11434",
			Model:   "llama3",
			Timeout: 120 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
