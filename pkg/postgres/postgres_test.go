package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "shop", Pass: "p@ss", DB: "shop_db"}
	got := cfg.DSN()
	want := "postgres://shop:p%40ss@db:5433/shop_db?sslmode=disable"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("duplicate key")) {
		t.Fatalf("plain errors are not classified")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514"})) {
		t.Fatalf("expected wrapped 23514 to be a check violation")
	}
	if IsCheckViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation is not a check violation")
	}
}
