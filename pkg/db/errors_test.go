package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	t.Parallel()

	err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cart_items_cart_product"}

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err, "idx_cart_items_cart_product") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(err, "other_constraint") {
		t.Fatal("constraint mismatch must not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	t.Parallel()

	err := &pq.Error{Code: "23505", Constraint: "carts_buyer_id_key"}
	if !IsUniqueViolation(err, "carts_buyer_id_key") {
		t.Fatal("expected unique violation")
	}
}

func TestIsUniqueViolationWrapped(t *testing.T) {
	t.Parallel()

	inner := &pgconn.PgError{Code: "23505"}
	wrapped := fmt.Errorf("creating item: %w", inner)
	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected unique violation through wrapping")
	}
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	t.Parallel()

	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: cart_items.cart_id, cart_items.product_id"), "") {
		t.Fatal("expected sqlite message match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil must not match")
	}
}
