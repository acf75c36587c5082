package store

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"worldforge/internal/worldbook"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidName  = errors.New("book name is required")
)

type BookInput struct {
	Name   string
	Source string
	File   worldbook.File
	// Descending records that File was exported in reverse order, so later
	// edits add entries at the front.
	Descending bool
}

type Book struct {
	ID         string
	Name       string
	Source     string
	File       worldbook.File
	Descending bool
	EntryCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BookSummary struct {
	ID         string
	Name       string
	EntryCount int
	UpdatedAt  time.Time
}

// EntryRow is the per-entry projection written next to each saved book so
// entries can be queried with plain SQL.
type EntryRow struct {
	UID          int
	Comment      string
	Content      string
	Position     int
	DisplayIndex int
	Constant     bool
	Keys         []string
}

// NormalizeName is the identity books are looked up by.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func ValidateInput(in BookInput) error {
	if NormalizeName(in.Name) == "" {
		return ErrInvalidName
	}
	for id, entry := range in.File.Entries {
		if _, ok := worldbook.DecodePosition(entry.Position); !ok {
			return fmt.Errorf("entry %s: %w: %d", id, worldbook.ErrUnknownPosition, entry.Position)
		}
	}
	return nil
}

// EntryRows flattens file in display order.
func EntryRows(file worldbook.File) []EntryRow {
	rows := make([]EntryRow, 0, len(file.Entries))
	for _, entry := range file.Entries {
		rows = append(rows, EntryRow{
			UID:          entry.UID,
			Comment:      entry.Comment,
			Content:      entry.Content,
			Position:     entry.Position,
			DisplayIndex: entry.DisplayIndex,
			Constant:     entry.Constant,
			Keys:         append([]string{}, entry.Key...),
		})
	}
	slices.SortFunc(rows, func(a, b EntryRow) int {
		if c := cmp.Compare(a.DisplayIndex, b.DisplayIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.UID, b.UID)
	})
	return rows
}

var ErrNotReadOnly = errors.New("only SELECT, WITH, EXPLAIN and PRAGMA queries are allowed")

// CheckReadOnly rejects ad-hoc queries that would modify saved books.
func CheckReadOnly(query string) error {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return fmt.Errorf("empty query: %w", ErrNotReadOnly)
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "EXPLAIN", "PRAGMA":
		return nil
	}
	return ErrNotReadOnly
}

// PositionalArgs orders params keyed "1", "2", ... into driver arguments.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		if val, ok := params[strconv.Itoa(i)]; ok {
			args = append(args, val)
		}
	}
	return args
}
