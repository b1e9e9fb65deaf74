package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/storage"
)

func newLookupCmd(c *cli) *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "lookup [word]",
		Short: "Print the stored row of a word, or row counts with --count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}
			if !countOnly && len(args) == 0 {
				return errors.New("lookup: word required")
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, env.Config.Database)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			if countOnly {
				source := ""
				if len(args) == 1 {
					source = args[0]
				}
				n, err := store.Count(ctx, source)
				if err != nil {
					return fmt.Errorf("count: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}

			rec, err := store.Lookup(ctx, domain.NormalizeText(args[0]))
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%q is not in the dictionary", args[0])
			}
			if err != nil {
				return fmt.Errorf("lookup: %w", err)
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "print the number of rows, optionally for the source given as argument")
	return cmd
}

func printRecord(w io.Writer, rec domain.WordRecord) {
	fmt.Fprintf(w, "word:       %s\n", rec.Word)
	fmt.Fprintf(w, "pos:        %s (%s)\n", rec.POS(), rec.PartOfSpeechLocalized)
	if rec.Phonetic != nil {
		fmt.Fprintf(w, "phonetic:   %s\n", *rec.Phonetic)
	}
	fmt.Fprintf(w, "meaning:    %s\n", rec.Meaning)
	if rec.Definitions != nil {
		fmt.Fprintf(w, "definition: %s\n", *rec.Definitions)
	}
	fmt.Fprintf(w, "source:     %s\n", rec.Source)
}
