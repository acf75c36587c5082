package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS worldbooks (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		source          TEXT NOT NULL DEFAULT '',
		data            TEXT NOT NULL DEFAULT '{"entries":{}}',
		descending      INTEGER NOT NULL DEFAULT 0,
		entry_count     INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL,
		CONSTRAINT uq_worldbook_name UNIQUE (name_normalized)
	);

	CREATE TABLE IF NOT EXISTS worldbook_entries (
		book_id       TEXT NOT NULL REFERENCES worldbooks(id) ON DELETE CASCADE,
		uid           INTEGER NOT NULL,
		comment       TEXT NOT NULL DEFAULT '',
		content       TEXT NOT NULL DEFAULT '',
		position      INTEGER NOT NULL DEFAULT 0,
		display_index INTEGER NOT NULL DEFAULT 0,
		constant      INTEGER NOT NULL DEFAULT 0,
		keys          TEXT NOT NULL DEFAULT '[]',
		CONSTRAINT uq_worldbook_entry UNIQUE (book_id, uid)
	);

	CREATE INDEX IF NOT EXISTS idx_worldbooks_updated ON worldbooks (updated_at);
	CREATE INDEX IF NOT EXISTS idx_worldbook_entries_book ON worldbook_entries (book_id, display_index);
	CREATE INDEX IF NOT EXISTS idx_worldbook_entries_position ON worldbook_entries (position);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
