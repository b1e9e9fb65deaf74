package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"bootstrap": "skip"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dictcrawl", app.BuildVersion())
		},
	}
}
