package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"worldforge/internal/parser"
	"worldforge/internal/store"
	"worldforge/internal/worldbook"
)

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage saved world-books",
	}
	cmd.AddCommand(bookListCmd())
	cmd.AddCommand(bookShowCmd())
	cmd.AddCommand(bookExportCmd())
	cmd.AddCommand(bookDeleteCmd())
	cmd.AddCommand(bookMoveCmd())
	cmd.AddCommand(bookAddCmd())
	cmd.AddCommand(bookPlaceCmd())
	return cmd
}

func bookListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withStore(ctx, func(db store.Store) error {
				books, err := db.ListBooks(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(books) == 0 {
					fmt.Fprintln(out, "No books found.")
					return nil
				}
				for _, b := range books {
					fmt.Fprintf(out, "%s (%d entries) updated %s\n", b.Name, b.EntryCount, b.UpdatedAt.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func bookShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the entries of a saved book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withStore(ctx, func(db store.Store) error {
				book, err := db.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				entries, err := worldbook.Import(book.File)
				if err != nil {
					return err
				}
				return printEntries(cmd.OutOrStdout(), entries)
			})
		},
	}
}

func bookExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a saved book as world-book JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Output
			}
			return withStore(ctx, func(db store.Store) error {
				book, err := db.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				return writeFile(cmd.OutOrStdout(), output, book.File)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (defaults to the config output)")
	return cmd
}

func bookDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withStore(ctx, func(db store.Store) error {
				deleted, err := db.DeleteBook(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%w: %q", store.ErrBookNotFound, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func bookMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <name> <uid> <up|down>",
		Short: "Move an entry one slot up or down",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUID(args[1])
			if err != nil {
				return err
			}
			dir, err := worldbook.ParseDirection(args[2])
			if err != nil {
				return err
			}
			return editBook(cmd, args[0], func(b *worldbook.Book) error {
				return b.Move(uid, dir)
			})
		},
	}
}

func bookAddCmd() *cobra.Command {
	var comment string
	var content string
	var keys string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a default entry to a saved book (prepended when it was saved with --desc)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editBook(cmd, args[0], func(b *worldbook.Book) error {
				b.Add(comment, content, splitKeys(keys))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Entry title")
	cmd.Flags().StringVar(&content, "content", "", "Entry content")
	cmd.Flags().StringVar(&keys, "keys", "", "Comma-separated primary keywords")
	return cmd
}

func bookPlaceCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "place <name> <uid> <placement>",
		Short: "Change where an entry is injected",
		Long:  "Placements: " + strings.Join(worldbook.Placements(), ", "),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUID(args[1])
			if err != nil {
				return err
			}
			setDepth := cmd.Flags().Changed("depth")
			if setDepth && depth < 0 {
				return fmt.Errorf("--depth must not be negative")
			}
			return editBook(cmd, args[0], func(b *worldbook.Book) error {
				entry, err := b.Get(uid)
				if err != nil {
					return err
				}
				if err := entry.SetPlacement(args[2]); err != nil {
					return err
				}
				if setDepth {
					entry.Depth = depth
				}
				return b.Update(entry)
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", worldbook.DefaultDepth, "Injection depth for depth placements")
	return cmd
}

// editBook loads a saved book, applies edit, saves it and prints the result.
func editBook(cmd *cobra.Command, name string, edit func(*worldbook.Book) error) error {
	ctx := context.Background()
	return withStore(ctx, func(db store.Store) error {
		saved, err := db.GetBook(ctx, name)
		if err != nil {
			return err
		}
		entries, err := worldbook.Import(saved.File)
		if err != nil {
			return err
		}
		book := worldbook.NewBookFromEntries(entries)
		book.SetDescending(saved.Descending)
		if err := edit(book); err != nil {
			return err
		}
		updated, err := db.SaveBook(ctx, store.BookInput{
			Name:       saved.Name,
			Source:     saved.Source,
			File:       book.Export(),
			Descending: book.Descending(),
		})
		if err != nil {
			return err
		}
		slog.Debug("updated book", "name", updated.Name, "entries", updated.EntryCount)
		return printEntries(cmd.OutOrStdout(), book.Entries())
	})
}

func parseUID(s string) (int, error) {
	uid, err := strconv.Atoi(s)
	if err != nil || uid < 0 {
		return 0, fmt.Errorf("invalid uid %q: expected a non-negative integer", s)
	}
	return uid, nil
}

// splitKeys follows the keyword rule of the text notation.
func splitKeys(s string) []string {
	return parser.SplitList(s)
}
