package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/bootstrap"
	"github.com/at-ishikawa/toddlingo/internal/config"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/database"
	"github.com/at-ishikawa/toddlingo/internal/language"
	"github.com/at-ishikawa/toddlingo/internal/logging"
	"github.com/at-ishikawa/toddlingo/internal/server"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "toddlingo-server",
		Short:         "Toddlingo language and asset cache HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	logger := logging.NewLogger(os.Stderr, cfg.Log, debugMode)
	app := bootstrap.New(
		bootstrap.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		bootstrap.WithLogger(logger),
	)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(context.Context) error {
		return db.Close()
	})
	repo := content.NewDBRepository(db)

	store, err := assetcache.OpenStore(ctx, cfg.Cache.Path)
	if err != nil {
		logger.Warn("asset cache unavailable, continuing without caching", "path", cfg.Cache.Path, "error", err)
	}
	app.AddShutdownHook("asset store", func(context.Context) error {
		return store.Close()
	})

	fetcher, err := assetcache.NewHTTPFetcher(cfg.Assets.BaseURL, cfg.Assets.RetryAttempts)
	if err != nil {
		return fmt.Errorf("assetcache.NewHTTPFetcher() > %w", err)
	}
	app.AddShutdownHook("asset fetcher", func(context.Context) error {
		return fetcher.Close()
	})

	policy, err := language.ParsePolicy(cfg.Languages.ReadyPolicy, cfg.Languages.ReadyThresholdPercent)
	if err != nil {
		return fmt.Errorf("language.ParsePolicy() > %w", err)
	}
	reconciler := language.NewReconciler(cfg.Languages.Base, cfg.Languages.Secondary, cfg.Languages.Supported,
		language.WithPolicy(policy),
		language.WithLogger(logger),
	)
	cache := assetcache.New(store, fetcher,
		assetcache.WithFetchTimeout(cfg.Assets.FetchTimeout),
		assetcache.WithLogger(logger),
	)

	handler := server.NewHandler(language.NewService(repo, reconciler), repo, cache, logger)
	srv := server.NewHTTPServer(cfg.Server, handler.Routes(), logger)
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr, "policy", policy.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
