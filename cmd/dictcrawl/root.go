package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/app"
)

// cli carries state from the root command's hooks to the subcommands.
type cli struct {
	configPath string
	env        *app.Env
}

// rootCmd builds the command tree bound to c.
func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictcrawl",
		Short: "Build an English–Vietnamese dictionary table from public APIs and dumps",
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["bootstrap"] == "skip" {
				return nil
			}
			env, err := app.Bootstrap(c.configPath)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			c.env = env
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $CONFIG_PATH or ./config.yaml)")

	cmd.AddCommand(
		newCrawlCmd(c),
		newRetryCmd(c),
		newMergeCmd(c),
		newMigrateCmd(c),
		newLookupCmd(c),
		newVersionCmd(),
	)
	return cmd
}

func (c *cli) environment() (*app.Env, error) {
	if c.env == nil {
		return nil, errors.New("application not initialized")
	}
	return c.env, nil
}

// finish exports run metrics. It runs whether or not the command failed.
func (c *cli) finish() {
	if c.env != nil {
		c.env.Finish()
	}
}
