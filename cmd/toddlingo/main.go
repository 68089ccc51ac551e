package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/toddlingo/internal/config"
	"github.com/at-ishikawa/toddlingo/internal/logging"
)

var (
	configFile string
	debugMode  bool
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "toddlingo",
		Short:         "Manage storybook translations and the offline asset cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(config.LogConfig{Level: "info", Format: "text"})
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newLanguagesCommand(),
		newPrefetchCommand(),
		newCacheCommand(),
		newTranslationsCommand(),
	)
	return rootCommand
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

// setupLogger configures the default logger; --debug wins over the configured level
func setupLogger(cfg config.LogConfig) {
	logging.NewLogger(os.Stderr, cfg, debugMode)
}
