// Command server runs the fitpulse fitness tracking backend.
//
// Configuration is loaded from a YAML file (discovered at ./config.yaml or
// /etc/fitpulse/config.yaml, or given with -config) with FITPULSE_* env
// overrides. The signing secret is required:
//
//	FITPULSE_SECRET_KEY  - Token signing secret (required)
//	FITPULSE_PORT        - Listen port (default: 8000)
//	FITPULSE_STORAGE     - Storage type: "memory" or "postgres" (default: "memory")
//	FITPULSE_LLM_ENABLED - Use the Ollama generator instead of the mock (default: false)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fitpulse-dev/fitpulse/pkg/auth/password"
	"github.com/fitpulse-dev/fitpulse/pkg/auth/token"
	"github.com/fitpulse-dev/fitpulse/pkg/config"
	"github.com/fitpulse-dev/fitpulse/pkg/provider"
	"github.com/fitpulse-dev/fitpulse/pkg/provider/mock"
	"github.com/fitpulse-dev/fitpulse/pkg/provider/ollama"
	"github.com/fitpulse-dev/fitpulse/pkg/report"
	"github.com/fitpulse-dev/fitpulse/pkg/server"
	"github.com/fitpulse-dev/fitpulse/pkg/storage/memory"
	"github.com/fitpulse-dev/fitpulse/pkg/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Token service and password hasher.
	tokens, err := token.NewService(token.Config{
		Secret:     cfg.Auth.SecretKey,
		Algorithm:  cfg.Auth.Algorithm,
		DefaultTTL: cfg.Auth.TokenTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := password.NewHasher(cfg.Auth.BcryptCost)

	// Storage.
	var store server.Store
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		store = pg
		slog.Info("storage enabled", "type", "postgres", "max_conns", cfg.Storage.Postgres.MaxConns)
	default:
		store = memory.New()
		slog.Info("storage enabled", "type", "memory")
	}
	defer store.Close()

	// Report generator. A broken LLM config falls back to the mock so the
	// backend stays up; reports just carry the mock notice.
	var gen provider.Generator
	if cfg.LLM.Enabled {
		g, err := ollama.New(ollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			slog.Error("LLM generator unavailable, using mock", "error", err)
			gen = mock.New()
		} else {
			gen = g
			slog.Info("LLM generator enabled", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)
		}
	} else {
		gen = mock.New()
		slog.Info("LLM disabled, using mock generator")
	}
	defer gen.Close()

	reports := report.NewService(store, gen)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	srvCfg.MetricsEnabled = cfg.Observability.Metrics.Enabled
	srvCfg.MetricsPath = cfg.Observability.Metrics.Path

	srv := server.New(srvCfg, store, tokens, passwords, reports)
	return srv.ListenAndServe()
}
