package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"market22hooks/pkg/config"
)

func TestConnStrings(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", runtimeConnString(cfg))
	assert.Equal(t, runtimeConnString(cfg), migrationConnString(cfg))

	cfg.DatabaseURL = "postgres://pooler/db?pgbouncer=true"
	cfg.DirectURL = "postgres://direct/db"
	assert.Equal(t, cfg.DatabaseURL, runtimeConnString(cfg))
	assert.Equal(t, cfg.DirectURL, migrationConnString(cfg))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
