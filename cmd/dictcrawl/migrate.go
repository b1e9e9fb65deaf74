package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/storage"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			applied, err := storage.Migrate(cmd.Context(), env.Config.Database)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			env.Logger.Info("migrations applied",
				slog.String("driver", env.Config.Database.Driver),
				slog.Any("versions", applied),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
}
