package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"

	"worldforge/internal/store"
)

func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if err := store.CheckReadOnly(query); err != nil {
		return nil, err
	}

	conn, err := c.queryOnlyConn(ctx)
	if err != nil {
		return nil, err
	}
	defer releaseQueryOnly(conn)

	rows, err := conn.QueryContext(ctx, query, store.PositionalArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	results := make([]map[string]any, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// TEXT columns may come back as raw bytes
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows: %w", err)
	}

	return results, nil
}

// queryOnlyConn pins a pooled connection and sets query_only on it, so a
// statement that passes CheckReadOnly but writes (WITH ... DELETE, PRAGMA x = y)
// fails with SQLITE_READONLY.
func (c *Client) queryOnlyConn(ctx context.Context) (*sql.Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling query_only: %w", err)
	}
	return conn, nil
}

// releaseQueryOnly hands the connection back writable. A connection that
// cannot be reset is dropped from the pool instead.
func releaseQueryOnly(conn *sql.Conn) {
	if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
		slog.Warn("discarding query_only connection", "error", err)
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	conn.Close()
}
