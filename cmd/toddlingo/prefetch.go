package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/cli"
)

func newPrefetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch BOOK_ID",
		Short: "Download every page image and narration of a book into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || bookID <= 0 {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeRepo() }()

			ctx := cmd.Context()
			pages, err := repo.FindPages(ctx, bookID)
			if err != nil {
				return fmt.Errorf("repo.FindPages(%d) > %w", bookID, err)
			}

			cache, closeCache, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			printer := cli.NewPrinter(os.Stdout)
			result, err := cache.Prefetch(ctx, assetcache.PagesOf(pages), printer.Progress(fmt.Sprintf("Prefetching book %d", bookID)))
			if errors.Is(err, context.Canceled) {
				_, _ = fmt.Fprintln(os.Stdout)
				_, _ = fmt.Fprintln(os.Stderr, "prefetch cancelled, already cached assets are kept")
			} else if err != nil {
				return fmt.Errorf("cache.Prefetch() > %w", err)
			}
			return printer.PrintPrefetch(result)
		},
	}
}
