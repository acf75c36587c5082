package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"worldforge/internal/parser"
	"worldforge/internal/store"
	"worldforge/internal/worldbook"
)

func convertCmd() *cobra.Command {
	var output string
	var descending bool
	var saveAs string
	cmd := &cobra.Command{
		Use:   "convert <input|->",
		Short: "Convert a text notation file into world-book JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], output, descending, saveAs)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&descending, "desc", false, "Export entries in reverse order")
	cmd.Flags().StringVar(&saveAs, "save", "", "Also save the result as a named book")
	return cmd
}

func runConvert(cmd *cobra.Command, input, output string, descending bool, saveAs string) error {
	ctx := context.Background()

	source, err := readInput(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}

	file, err := convertText(source, descending)
	if err != nil {
		return err
	}
	slog.Debug("converted text", "input", input, "entries", file.Len())

	if err := writeFile(cmd.OutOrStdout(), output, file); err != nil {
		return err
	}

	if saveAs == "" {
		return nil
	}
	return withStore(ctx, func(db store.Store) error {
		saved, err := db.SaveBook(ctx, store.BookInput{Name: saveAs, Source: source, File: file, Descending: descending})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%d entries)\n", saved.Name, saved.EntryCount)
		return nil
	})
}

func convertText(source string, descending bool) (worldbook.File, error) {
	entries, err := parser.Parse(source)
	if err != nil {
		return worldbook.File{}, err
	}
	if len(entries) == 0 {
		return worldbook.File{}, fmt.Errorf("input is empty: nothing to convert")
	}
	book := worldbook.NewBook(entries)
	if descending {
		book.Reverse()
	}
	return book.Export(), nil
}

func readInput(stdin io.Reader, input string) (string, error) {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", input, err)
	}
	return string(data), nil
}

// writeFile writes the indented JSON of file to path, or to w when path is
// empty or "-".
func writeFile(w io.Writer, path string, file worldbook.File) error {
	data, err := file.MarshalIndent()
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("wrote world-book", "path", path, "entries", file.Len())
	return nil
}
