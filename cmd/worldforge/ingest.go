package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worldforge/internal/ingest"
	"worldforge/internal/store"
)

func ingestCmd() *cobra.Command {
	var full bool
	var descending bool
	var exclude []string
	cmd := &cobra.Command{
		Use:   "ingest [dir...]",
		Short: "Convert and save every text notation file under the given directories",
		Long: "Walks the directories (or sources.paths from the config) for .txt and .wb files and\n" +
			"saves each one as a book named after its path below the directory, e.g. east/city.\n" +
			"Files whose text matches the stored source are skipped unless --full is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			roots := args
			if len(roots) == 0 {
				roots = cfg.Sources.Paths
			}
			if len(roots) == 0 {
				return fmt.Errorf("no directories given and sources.paths is empty")
			}

			return withStore(ctx, func(db store.Store) error {
				result, err := ingest.Run(ctx, db, roots, ingest.Options{
					Full:       full,
					Descending: descending,
					Exclude:    append(cfg.Sources.Exclude, exclude...),
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Saved %d book(s) with %d entries, skipped %d file(s)\n",
					result.BooksSaved, result.EntriesSaved, result.FilesSkipped)
				for _, err := range result.Errors {
					fmt.Fprintf(out, "  error: %v\n", err)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("ingest finished with %d error(s)", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Re-save books even when the source is unchanged")
	cmd.Flags().BoolVar(&descending, "desc", false, "Save entries in reverse order")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Paths to skip, in addition to sources.exclude")
	return cmd
}
