package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert patient: %w", uniqueErr("patient_nic_key"))

	if !IsUniqueViolation(err, "patient_nic_key") {
		t.Error("wrapped violation on named constraint not detected")
	}
	if !IsUniqueViolation(err, "") {
		t.Error("empty constraint should match any unique violation")
	}
	if IsUniqueViolation(err, "patient_email_key") {
		t.Error("matched the wrong constraint")
	}
	if IsUniqueViolation(errors.New("plain error"), "") {
		t.Error("plain error misidentified as unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Error("foreign key violation misidentified as unique violation")
	}
}

func TestConstraintName(t *testing.T) {
	err := fmt.Errorf("insert product: %w", uniqueErr("product_barcode_key"))
	if got := ConstraintName(err); got != "product_barcode_key" {
		t.Errorf("ConstraintName = %q", got)
	}
	if got := ConstraintName(errors.New("nope")); got != "" {
		t.Errorf("ConstraintName on plain error = %q, want empty", got)
	}
}

func TestIsNoRows(t *testing.T) {
	wrapped := fmt.Errorf("get patient: %w", pgx.ErrNoRows)
	if !IsNoRows(wrapped) {
		t.Error("wrapped ErrNoRows not detected")
	}
	if IsNoRows(errors.New("other")) {
		t.Error("plain error misidentified as no rows")
	}
}
