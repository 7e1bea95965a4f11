package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Fatalf("pgx.ErrNoRows should be not-found")
	}
	if !IsNotFound(fmt.Errorf("scan: %w", pgx.ErrNoRows)) {
		t.Fatalf("wrapped pgx.ErrNoRows should be not-found")
	}
	if IsNotFound(nil) || IsNotFound(errors.New("connection refused")) {
		t.Fatalf("other errors are not not-found")
	}
}
