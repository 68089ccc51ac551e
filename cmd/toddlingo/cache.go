package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
)

func newCacheCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local asset cache",
	}
	command.AddCommand(
		newCacheClearCommand(),
		newCacheGetCommand(),
		newCacheStatsCommand(),
	)
	return command
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached image and audio file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cache, closeCache, err := openCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			if err := cache.Clear(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "asset cache cleared")
			return err
		},
	}
}

func newCacheGetCommand() *cobra.Command {
	var output string
	command := &cobra.Command{
		Use:   "get image|audio URL",
		Short: "Look up a cached asset by its exact URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, err := assetcache.ParsePartition(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cache, closeCache, err := openCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			ref, ok := cache.Lookup(cmd.Context(), partition, args[1])
			if !ok {
				return fmt.Errorf("%s is not cached", args[1])
			}
			defer cache.Objects().Revoke(ref)

			object, ok := cache.Objects().Open(ref)
			if !ok {
				return fmt.Errorf("object %s was revoked", ref)
			}
			if output != "" {
				if err := os.WriteFile(output, object.Data, 0644); err != nil {
					return fmt.Errorf("os.WriteFile(%s) > %w", output, err)
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n", ref, object.ContentType, len(object.Data))
			return err
		},
	}
	command.Flags().StringVarP(&output, "output", "o", "", "write the cached bytes to this file")
	return command
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached entries per partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cache, closeCache, err := openCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			for _, partition := range []assetcache.Partition{assetcache.PartitionImage, assetcache.PartitionAudio} {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", partition, stats[partition]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
