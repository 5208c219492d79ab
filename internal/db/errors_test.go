package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestViolationHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})
	if !IsUniqueViolation(unique) {
		t.Fatalf("expected unique violation")
	}
	if IsCheckViolation(unique) {
		t.Fatalf("unique violation reported as check violation")
	}
	if got := ConstraintName(unique); got != "orders_order_number_key" {
		t.Fatalf("unexpected constraint %q", got)
	}

	check := &pgconn.PgError{Code: "23514", ConstraintName: "orders_completed_requires_paid"}
	if !IsCheckViolation(check) {
		t.Fatalf("expected check violation")
	}
	if IsForeignKeyViolation(errors.New("plain")) || ConstraintName(errors.New("plain")) != "" {
		t.Fatalf("plain errors must not match")
	}
}
