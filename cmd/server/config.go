package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/caarlos0/env/v11"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/orchestrators/progression"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	redisclient "github.com/greyhollow/sheet-api/internal/redis"
	"github.com/greyhollow/sheet-api/internal/repositories/character"
	"github.com/greyhollow/sheet-api/internal/sheet"
)

// config is the process configuration, loaded from the environment.
type config struct {
	GRPCPort     int    `env:"SHEET_API_GRPC_PORT" envDefault:"50051"`
	RedisAddress string `env:"SHEET_API_REDIS_ADDRESS" envDefault:"localhost:6379"`
	// CatalogPath points at a YAML world-content catalog loaded into the
	// in-memory provider at startup. Empty skips loading.
	CatalogPath string `env:"SHEET_API_CATALOG_PATH"`
	// ContentAPI enables the D&D 5e API provider under the dnd5eapi
	// reference scheme.
	ContentAPI        bool   `env:"SHEET_API_CONTENT_API" envDefault:"true"`
	ContentAPIBaseURL string `env:"SHEET_API_CONTENT_API_BASE_URL"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// stack bundles the wired subsystems behind one process.
type stack struct {
	redis    redisclient.Client
	repo     character.Repository
	catalog  *content.MemoryStore
	bus      events.EventBus
	preparer *sheet.Preparer
	service  progression.Service
}

func buildStack(ctx context.Context, cfg *config) (*stack, error) {
	client, err := redisclient.NewClient(cfg.RedisAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddress, err)
	}

	repo, err := character.NewRedis(&character.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}

	catalog := content.NewMemoryStore()
	if cfg.CatalogPath != "" {
		if err := catalog.LoadCatalogFile(cfg.CatalogPath); err != nil {
			return nil, fmt.Errorf("failed to load content catalog %s: %w", cfg.CatalogPath, err)
		}
		slog.Info("content catalog loaded", "path", cfg.CatalogPath)
	}

	var provider content.Provider = catalog
	if cfg.ContentAPI {
		api, err := content.NewAPIProvider(&content.APIConfig{BaseURL: cfg.ContentAPIBaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create content API provider: %w", err)
		}
		router, err := content.NewRouter(&content.RouterConfig{
			Providers: map[string]content.Provider{"dnd5eapi": api},
			Fallback:  catalog,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create content router: %w", err)
		}
		provider = router
	}

	advEnv := &advancement.Env{
		Content: provider,
		IDs:     idgen.NewUUID("item"),
	}
	if err := advEnv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid advancement environment: %w", err)
	}

	bus := events.NewBus()
	preparer, err := sheet.NewPreparer(&sheet.PreparerConfig{Env: advEnv, EventBus: bus})
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet preparer: %w", err)
	}

	service, err := progression.NewOrchestrator(&progression.Config{
		CharacterRepo: repo,
		Preparer:      preparer,
		Env:           advEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create progression orchestrator: %w", err)
	}

	return &stack{
		redis:    client,
		repo:     repo,
		catalog:  catalog,
		bus:      bus,
		preparer: preparer,
		service:  service,
	}, nil
}

func (s *stack) Close() {
	if err := s.redis.Close(); err != nil {
		slog.Warn("failed to close redis client", "error", err)
	}
}
