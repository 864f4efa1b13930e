package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/schema.sql
var schemaSQL string

// statements splits the embedded schema into individual statements.
func statements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Migrate applies the schema in a single transaction.
func (db *Database) Migrate(ctx context.Context) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for i, stmt := range statements(schemaSQL) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
