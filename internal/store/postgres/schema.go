package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// Executed as one implicit transaction; IF NOT EXISTS keeps reruns harmless.
	ddl := `
CREATE TABLE IF NOT EXISTS worldbooks (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    name_normalized TEXT NOT NULL,
    source          TEXT NOT NULL DEFAULT '',
    data            JSONB NOT NULL DEFAULT '{"entries":{}}',
    descending      BOOLEAN NOT NULL DEFAULT FALSE,
    entry_count     INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_worldbook_name UNIQUE (name_normalized)
);

CREATE TABLE IF NOT EXISTS worldbook_entries (
    book_id       TEXT NOT NULL REFERENCES worldbooks(id) ON DELETE CASCADE,
    uid           INTEGER NOT NULL,
    comment       TEXT NOT NULL DEFAULT '',
    content       TEXT NOT NULL DEFAULT '',
    position      INTEGER NOT NULL DEFAULT 0,
    display_index INTEGER NOT NULL DEFAULT 0,
    constant      BOOLEAN NOT NULL DEFAULT FALSE,
    keys          TEXT[] NOT NULL DEFAULT '{}',
    CONSTRAINT uq_worldbook_entry UNIQUE (book_id, uid)
);

CREATE INDEX IF NOT EXISTS idx_worldbooks_updated ON worldbooks (updated_at);
CREATE INDEX IF NOT EXISTS idx_worldbooks_data ON worldbooks USING GIN (data);
CREATE INDEX IF NOT EXISTS idx_worldbook_entries_book ON worldbook_entries (book_id, display_index);
CREATE INDEX IF NOT EXISTS idx_worldbook_entries_position ON worldbook_entries (position);
CREATE INDEX IF NOT EXISTS idx_worldbook_entries_keys ON worldbook_entries USING GIN (keys);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
