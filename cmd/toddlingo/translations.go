package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/toddlingo/internal/cli"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/repair"
)

func newTranslationsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "translations",
		Short: "Maintain stored translation payloads",
	}
	command.AddCommand(newTranslationsAuditCommand())
	return command
}

func newTranslationsAuditCommand() *cobra.Command {
	var (
		collection string
		apply      bool
		format     string
	)
	command := &cobra.Command{
		Use:   "audit",
		Short: "Report how translations are encoded, and rewrite legacy ones with --apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			target, err := content.ParseCollection(collection)
			if err != nil {
				return err
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

			report, err := repair.NewAuditor(repo, nil).Audit(cmd.Context(), target, apply)
			if err != nil {
				return fmt.Errorf("auditor.Audit() > %w", err)
			}
			return cli.NewPrinter(os.Stdout).PrintAudit(report, outputFormat)
		},
	}

	flags := command.Flags()
	flags.StringVar(&collection, "collection", string(content.CollectionWords), fmt.Sprintf("collection to audit. Possible values are %v", content.AllCollections()))
	flags.BoolVar(&apply, "apply", false, "rewrite payloads stored with extra textual encoding")
	flags.StringVar(&format, "format", string(cli.FormatText), "output format: text or yaml")
	return command
}
