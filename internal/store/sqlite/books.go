package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"worldforge/internal/store"
	"worldforge/internal/worldbook"
)

func (c *Client) SaveBook(ctx context.Context, in store.BookInput) (*store.Book, error) {
	if err := store.ValidateInput(in); err != nil {
		return nil, err
	}

	data, err := json.Marshal(in.File)
	if err != nil {
		return nil, fmt.Errorf("marshaling world-book: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO worldbooks (id, name, name_normalized, source, data, descending, entry_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (name_normalized) DO UPDATE SET
		name = excluded.name,
		source = excluded.source,
		data = excluded.data,
		descending = excluded.descending,
		entry_count = excluded.entry_count,
		updated_at = excluded.updated_at
	RETURNING id
	`

	var id string
	err = tx.QueryRowContext(ctx, query,
		uuid.New().String(),
		in.Name,
		store.NormalizeName(in.Name),
		in.Source,
		string(data),
		in.Descending,
		in.File.Len(),
		now,
		now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upserting book: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM worldbook_entries WHERE book_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clearing book entries: %w", err)
	}
	for _, row := range store.EntryRows(in.File) {
		keys, err := json.Marshal(row.Keys)
		if err != nil {
			return nil, fmt.Errorf("marshaling keys: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO worldbook_entries (book_id, uid, comment, content, position, display_index, constant, keys)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, row.UID, row.Comment, row.Content, row.Position, row.DisplayIndex, row.Constant, string(keys))
		if err != nil {
			return nil, fmt.Errorf("inserting entry %d: %w", row.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing book: %w", err)
	}

	slog.Debug("saved book", "name", in.Name, "entries", in.File.Len())
	return c.GetBook(ctx, in.Name)
}

func (c *Client) GetBook(ctx context.Context, name string) (*store.Book, error) {
	query := `
	SELECT id, name, source, data, descending, entry_count, created_at, updated_at
	FROM worldbooks
	WHERE name_normalized = ?
	`

	var b store.Book
	var data, createdAt, updatedAt string
	err := c.db.QueryRowContext(ctx, query, store.NormalizeName(name)).Scan(
		&b.ID,
		&b.Name,
		&b.Source,
		&data,
		&b.Descending,
		&b.EntryCount,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrBookNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}

	b.File, err = worldbook.DecodeFile([]byte(data))
	if err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]store.BookSummary, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, name, entry_count, updated_at
	FROM worldbooks
	ORDER BY name_normalized
	`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	summaries := make([]store.BookSummary, 0)
	for rows.Next() {
		var s store.BookSummary
		var updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.EntryCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating book rows: %w", err)
	}
	return summaries, nil
}

func (c *Client) DeleteBook(ctx context.Context, name string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM worldbooks WHERE name_normalized = ?`, store.NormalizeName(name))
	if err != nil {
		return false, fmt.Errorf("deleting book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting deleted books: %w", err)
	}
	return n > 0, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
