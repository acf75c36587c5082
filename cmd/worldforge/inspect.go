package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worldforge/internal/worldbook"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <worldbook.json>",
		Short: "Summarize the entries of a world-book JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func runInspect(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := worldbook.DecodeFile(data)
	if err != nil {
		return err
	}
	entries, err := worldbook.Import(file)
	if err != nil {
		return err
	}
	return printEntries(w, entries)
}

func printEntries(w io.Writer, entries []worldbook.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tPLACEMENT\tDEPTH\tCONSTANT\tTITLE\tKEYS")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%t\t%s\t%s\n",
			entry.UID,
			entry.Placement(),
			entry.Depth,
			entry.Constant,
			entry.Comment,
			strings.Join(entry.Key, ","),
		)
	}
	return tw.Flush()
}
