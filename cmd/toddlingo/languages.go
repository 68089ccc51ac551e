package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/toddlingo/internal/cli"
	"github.com/at-ishikawa/toddlingo/internal/config"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/language"
)

type Policy string

func (p *Policy) Set(val string) error {
	for _, policy := range allPolicies {
		if val == string(policy) {
			*p = policy
			return nil
		}
	}
	return fmt.Errorf("invalid policy: %s", val)
}

func (p Policy) String() string {
	return string(p)
}

func (p *Policy) Type() string {
	return "policy"
}

const (
	PolicyAlways    Policy = language.PolicyAlways
	PolicyThreshold Policy = language.PolicyThreshold
)

var (
	_           pflag.Value = (*Policy)(nil)
	allPolicies             = []Policy{PolicyAlways, PolicyThreshold}
)

type languagesOptions struct {
	collection string
	field      string
	value      string
	newest     bool
	policy     Policy
	threshold  float64
	format     string
}

// newReconciler builds a reconciler from config, letting flags override the ready policy.
func (o languagesOptions) newReconciler(cfg config.LanguagesConfig, flags *pflag.FlagSet) (*language.Reconciler, error) {
	policyName := cfg.ReadyPolicy
	percent := cfg.ReadyThresholdPercent
	if flags.Changed("policy") {
		policyName = o.policy.String()
	}
	if flags.Changed("threshold") {
		percent = o.threshold
	}
	policy, err := language.ParsePolicy(policyName, percent)
	if err != nil {
		return nil, err
	}
	return language.NewReconciler(cfg.Base, cfg.Secondary, cfg.Supported, language.WithPolicy(policy)), nil
}

func (o languagesOptions) query() (content.Query, error) {
	collection, err := content.ParseCollection(o.collection)
	if err != nil {
		return content.Query{}, err
	}
	query := content.Query{
		Collection: collection,
		Field:      o.field,
		Newest:     o.newest,
	}
	if o.field != "" {
		query.Value = o.value
	}
	return query, nil
}

func newLanguagesCommand() *cobra.Command {
	options := languagesOptions{
		policy: PolicyAlways,
	}
	command := &cobra.Command{
		Use:   "languages",
		Short: "Show which languages the stored translations support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(options.format)
			if err != nil {
				return err
			}
			query, err := options.query()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reconciler, err := options.newReconciler(cfg.Languages, cmd.Flags())
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeRepo() }()

			availability, err := language.NewService(repo, reconciler).Availability(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("service.Availability() > %w", err)
			}
			return cli.NewPrinter(os.Stdout).PrintAvailability(availability, format)
		},
	}

	flags := command.Flags()
	flags.StringVar(&options.collection, "collection", string(content.CollectionWords), fmt.Sprintf("collection to read. Possible values are %v", content.AllCollections()))
	flags.StringVar(&options.field, "field", "", "column to filter on")
	flags.StringVar(&options.value, "value", "", "value the filter column must equal")
	flags.BoolVar(&options.newest, "newest", false, "order records newest first")
	flags.Var(&options.policy, "policy", fmt.Sprintf("ready policy. Possible values are %v", allPolicies))
	flags.Float64Var(&options.threshold, "threshold", 10, "completeness percent required by the threshold policy")
	flags.StringVar(&options.format, "format", string(cli.FormatText), "output format: text or yaml")
	return command
}
