package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/adapter/httpclient"
	"github.com/heartmarshall/envi-dictionary/internal/app"
	"github.com/heartmarshall/envi-dictionary/internal/app/crawl"
	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/storage"
)

// passFlags are the config overrides shared by crawl and retry.
type passFlags struct {
	workers   int
	batchSize int
	input     string
	output    string
}

func (f *passFlags) register(cmd *cobra.Command, inputUsage, outputUsage string) {
	cmd.Flags().IntVar(&f.workers, "workers", 0, "number of concurrent workers")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "records per database flush")
	cmd.Flags().StringVar(&f.input, "input", "", inputUsage)
	cmd.Flags().StringVar(&f.output, "output", "", outputUsage)
}

// apply copies the flags the user set onto the pass settings.
func (f *passFlags) apply(cmd *cobra.Command, workers, batchSize *int, input, output *string) {
	if cmd.Flags().Changed("workers") {
		*workers = f.workers
	}
	if cmd.Flags().Changed("batch-size") {
		*batchSize = f.batchSize
	}
	if cmd.Flags().Changed("input") {
		*input = f.input
	}
	if cmd.Flags().Changed("output") {
		*output = f.output
	}
}

func newCrawlCmd(c *cli) *cobra.Command {
	var flags passFlags

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch every word of a word list and store new rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}
			cfg := env.Config
			flags.apply(cmd, &cfg.Crawl.Workers, &cfg.Crawl.BatchSize, &cfg.Crawl.WordList, &cfg.Crawl.FailedFile)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			return runPass(cmd, env, crawl.RunInitial)
		},
	}
	flags.register(cmd, "word list path or URL (overrides crawl.word_list)", "failure ledger to write (overrides crawl.failed_file)")
	return cmd
}

func newRetryCmd(c *cli) *cobra.Command {
	var flags passFlags

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-fetch failed words through the fallback chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}
			cfg := env.Config
			flags.apply(cmd, &cfg.Retry.Workers, &cfg.Retry.BatchSize, &cfg.Retry.InputFile, &cfg.Retry.StillFailedFile)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			return runPass(cmd, env, crawl.RunRetry)
		},
	}
	flags.register(cmd, "failure ledger to read (overrides retry.input_file)", "ledger of words still failing (overrides retry.still_failed_file)")
	return cmd
}

type passFunc func(ctx context.Context, cfg *config.Config, deps crawl.Deps) (crawl.Summary, error)

func runPass(cmd *cobra.Command, env *app.Env, run passFunc) error {
	ctx := cmd.Context()

	store, err := storage.Open(ctx, env.Config.Database)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	sum, err := run(ctx, env.Config, crawl.Deps{
		Store:   store,
		Clients: httpclient.NewFactory(env.Config.HTTP, env.Logger),
		Metrics: env.Metrics,
		Logger:  env.Logger,
	})
	if err != nil {
		return fmt.Errorf("%s pass: %w", sum.Pass, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d words stored, %d failed (see %s)\n",
		sum.Pass, sum.Stats.Succeeded, sum.Stats.Total, sum.Failed, sum.LedgerPath)

	if ctx.Err() != nil {
		env.Logger.Warn("pass interrupted", slog.String("pass", sum.Pass))
		return ctx.Err()
	}
	return nil
}
