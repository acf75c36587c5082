package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"worldforge/internal/store"
	"worldforge/internal/validate"
	"worldforge/internal/worldbook"
)

func validateCmd() *cobra.Command {
	var bookName string
	cmd := &cobra.Command{
		Use:   "validate [worldbook.json]",
		Short: "Check a world-book JSON file or saved book for problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case bookName != "" && len(args) == 0:
				return runValidateBook(cmd, bookName)
			case bookName == "" && len(args) == 1:
				return runValidateFile(cmd, args[0])
			default:
				return fmt.Errorf("pass either a file or --book")
			}
		},
	}
	cmd.Flags().StringVar(&bookName, "book", "", "Validate a saved book instead of a file")
	return cmd
}

func runValidateFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := worldbook.DecodeFile(data)
	if err != nil {
		return err
	}
	return reportIssues(cmd.OutOrStdout(), validate.Run(file))
}

func runValidateBook(cmd *cobra.Command, name string) error {
	ctx := context.Background()
	return withStore(ctx, func(db store.Store) error {
		book, err := db.GetBook(ctx, name)
		if err != nil {
			return err
		}
		return reportIssues(cmd.OutOrStdout(), validate.Run(book.File))
	})
}

func reportIssues(out io.Writer, report *validate.Report) error {
	errorIssues := report.Errors()
	warnIssues := report.Warnings()

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := fmt.Sprintf("#%d", issue.UID)
		if issue.Entry != "" {
			location = fmt.Sprintf("#%d %s", issue.UID, issue.Entry)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
