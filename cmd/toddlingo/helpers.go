package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/config"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/database"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

func openRepository(cfg *config.Config) (*content.DBRepository, func() error, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	return content.NewDBRepository(db), db.Close, nil
}

// openCache builds the asset cache. A store that cannot be opened is reported once
// and replaced by a store that caches nothing.
func openCache(ctx context.Context, cfg *config.Config) (*assetcache.Cache, func() error, error) {
	store, err := assetcache.OpenStore(ctx, cfg.Cache.Path)
	if err != nil {
		slog.Warn("asset cache unavailable, continuing without caching", "path", cfg.Cache.Path, "error", err)
	}

	fetcher, err := assetcache.NewHTTPFetcher(cfg.Assets.BaseURL, cfg.Assets.RetryAttempts)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("assetcache.NewHTTPFetcher() > %w", err)
	}

	cache := assetcache.New(store, fetcher,
		assetcache.WithFetchTimeout(cfg.Assets.FetchTimeout),
		assetcache.WithLogger(slog.Default()),
	)
	closeFn := func() error {
		fetchErr := fetcher.Close()
		if err := store.Close(); err != nil {
			return fmt.Errorf("store.Close() > %w", err)
		}
		return fetchErr
	}
	return cache, closeFn, nil
}
