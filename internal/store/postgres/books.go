package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

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

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
INSERT INTO worldbooks (id, name, name_normalized, source, data, descending, entry_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (name_normalized) DO UPDATE SET
    name = EXCLUDED.name,
    source = EXCLUDED.source,
    data = EXCLUDED.data,
    descending = EXCLUDED.descending,
    entry_count = EXCLUDED.entry_count,
    updated_at = now()
RETURNING id
`
	var id string
	err = tx.QueryRow(ctx, query,
		uuid.New().String(),
		in.Name,
		store.NormalizeName(in.Name),
		in.Source,
		data,
		in.Descending,
		in.File.Len(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upserting book: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM worldbook_entries WHERE book_id = $1`, id); err != nil {
		return nil, fmt.Errorf("clearing book entries: %w", err)
	}

	rows := store.EntryRows(in.File)
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"worldbook_entries"},
		[]string{"book_id", "uid", "comment", "content", "position", "display_index", "constant", "keys"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{id, r.UID, r.Comment, r.Content, r.Position, r.DisplayIndex, r.Constant, r.Keys}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("copying book entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing book: %w", err)
	}

	slog.Debug("saved book", "name", in.Name, "entries", in.File.Len())
	return c.GetBook(ctx, in.Name)
}

func (c *Client) GetBook(ctx context.Context, name string) (*store.Book, error) {
	query := `
SELECT id, name, source, data, descending, entry_count, created_at, updated_at
FROM worldbooks
WHERE name_normalized = $1
`
	var b store.Book
	var data []byte
	err := c.pool.QueryRow(ctx, query, store.NormalizeName(name)).Scan(
		&b.ID,
		&b.Name,
		&b.Source,
		&data,
		&b.Descending,
		&b.EntryCount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrBookNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}

	b.File, err = worldbook.DecodeFile(data)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]store.BookSummary, error) {
	rows, err := c.pool.Query(ctx, `
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
		if err := rows.Scan(&s.ID, &s.Name, &s.EntryCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating book rows: %w", err)
	}
	return summaries, nil
}

func (c *Client) DeleteBook(ctx context.Context, name string) (bool, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM worldbooks WHERE name_normalized = $1`, store.NormalizeName(name))
	if err != nil {
		return false, fmt.Errorf("deleting book: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
