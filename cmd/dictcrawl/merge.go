package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/app/merge"
	"github.com/heartmarshall/envi-dictionary/internal/storage"
)

func newMergeCmd(c *cli) *cobra.Command {
	var (
		enFile      string
		viFile      string
		commitEvery int
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join English and Vietnamese Wiktionary dumps into the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}
			cfg := env.Config
			if cmd.Flags().Changed("en") {
				cfg.Merge.ENFile = enFile
			}
			if cmd.Flags().Changed("vi") {
				cfg.Merge.VIFile = viFile
			}
			if cmd.Flags().Changed("commit-every") {
				cfg.Merge.CommitEvery = commitEvery
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			sum, err := merge.Run(ctx, store, cfg.Merge, env.Metrics, env.Logger)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "merge: %d records built, %d written, %d unmatched, %d rejected\n",
				sum.Built, sum.Buffer.Written, sum.Unmatched, sum.Rejected)
			return nil
		},
	}

	cmd.Flags().StringVar(&enFile, "en", "", "English dump (overrides merge.en_file)")
	cmd.Flags().StringVar(&viFile, "vi", "", "Vietnamese dump (overrides merge.vi_file)")
	cmd.Flags().IntVar(&commitEvery, "commit-every", 0, "records per insert batch")
	return cmd
}
