package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation not to match")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("expected plain error not to match")
	}
}
