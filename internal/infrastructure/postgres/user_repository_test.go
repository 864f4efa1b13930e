package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestSchemaDeclaresUsers(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schemaSQL, "email         TEXT NOT NULL UNIQUE")
}

func TestStatementsSplitsSchema(t *testing.T) {
	stmts := statements(schemaSQL)
	if assert.Len(t, stmts, 2) {
		assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS users")
		assert.Contains(t, stmts[1], "CREATE INDEX IF NOT EXISTS users_role_idx")
	}
	assert.Empty(t, statements(" ;\n; "))
}
