package store

import (
	"errors"
	"testing"

	"worldforge/internal/worldbook"
)

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Lin River City "); got != "lin river city" {
		t.Fatalf("expected normalized name, got %q", got)
	}
}

func TestValidateInput(t *testing.T) {
	file := worldbook.Export([]worldbook.Entry{worldbook.NewEntry(0, "a", "", nil, true)})

	if err := ValidateInput(BookInput{Name: "book", File: file}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidateInput(BookInput{Name: "  ", File: file}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	bad := file.Entries["0"]
	bad.Position = 3
	file.Entries["0"] = bad
	if err := ValidateInput(BookInput{Name: "book", File: file}); !errors.Is(err, worldbook.ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition, got %v", err)
	}
}

func TestEntryRows(t *testing.T) {
	later := worldbook.NewEntry(5, "later", "x", []string{"k"}, false)
	later.Position = worldbook.PositionDepth
	first := worldbook.NewEntry(9, "first", "y", nil, true)
	file := worldbook.Export([]worldbook.Entry{first, later})

	rows := EntryRows(file)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UID != 9 || rows[1].UID != 5 {
		t.Fatalf("expected display order, got %+v", rows)
	}
	if rows[1].Position != 4 || rows[1].Keys[0] != "k" {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
	if !rows[0].Constant || len(rows[0].Keys) != 0 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestCheckReadOnly(t *testing.T) {
	for _, q := range []string{"SELECT 1", "  with x as (select 1) select * from x", "explain select 1", "PRAGMA table_info(worldbooks)"} {
		if err := CheckReadOnly(q); err != nil {
			t.Fatalf("expected %q to be allowed, got %v", q, err)
		}
	}
	for _, q := range []string{"", "DELETE FROM worldbooks", "drop table worldbooks", "UPDATE worldbooks SET name = 'x'"} {
		if err := CheckReadOnly(q); !errors.Is(err, ErrNotReadOnly) {
			t.Fatalf("expected %q to be rejected, got %v", q, err)
		}
	}
}

func TestPositionalArgs(t *testing.T) {
	args := PositionalArgs(map[string]any{"2": "b", "1": "a"})
	if len(args) != 2 || args[0] != "a" || args[1] != "b" {
		t.Fatalf("unexpected args: %v", args)
	}
	if got := PositionalArgs(nil); len(got) != 0 {
		t.Fatalf("expected no args, got %v", got)
	}
}
