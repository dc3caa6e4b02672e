// package repositories provides persistence layer implementations for the
// normalized library entities.
//
// Each repository offers bulk upsert (PutMany), exact-match filtered lookups
// (Filtered), and ByID retrieval. Repositories are constructed over a
// [Querier] so the pipelines can run a whole sync's writes inside one
// transaction.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Querier is the subset of database operations the repositories need.
// Both *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// marshalJSON encodes a slice column, defaulting nil to an empty JSON array
// so scans never face NULL.
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

func unmarshalJSON(data string, v any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}
