package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
)

func TestMapErrorTaggedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want domainagg.ErrorCode
	}{
		{ValidationError("bad input"), domainagg.CodeValidation},
		{ForbiddenError("not yours"), domainagg.CodeForbidden},
		{ConflictError("raced"), domainagg.CodeConflict},
		{InvariantError("broken"), domainagg.CodeInvariantViolation},
		{RetryableError("again"), domainagg.CodeRetryable},
		{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{gorm.ErrDuplicatedKey, domainagg.CodeConflict},
		{context.Canceled, domainagg.CodeRetryable},
		{errors.New("something odd"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		got := MapError("test.op", tc.err)
		if !domainagg.IsCode(got, tc.want) {
			t.Errorf("MapError(%v): got %v, want code %s", tc.err, got, tc.want)
		}
	}
}

func TestMapErrorPostgresCodes(t *testing.T) {
	cases := []struct {
		code string
		want domainagg.ErrorCode
	}{
		{"23505", domainagg.CodeConflict},
		{"23503", domainagg.CodePreconditionFailed},
		{"40001", domainagg.CodeRetryable},
		{"40P01", domainagg.CodeRetryable},
		{"55P03", domainagg.CodeRetryable},
	}
	for _, tc := range cases {
		err := &pgconn.PgError{Code: tc.code}
		got := MapError("test.op", err)
		if !domainagg.IsCode(got, tc.want) {
			t.Errorf("pg code %s: got %v, want %s", tc.code, got, tc.want)
		}
	}
}

func TestMapErrorPassesAggregateErrorsThrough(t *testing.T) {
	orig := domainagg.NewError(domainagg.CodeConflict, "first.op", "taken", nil)
	got := MapError("second.op", orig)
	if got != orig {
		t.Fatalf("aggregate error must pass through unchanged, got %v", got)
	}
}

func TestMapErrorNil(t *testing.T) {
	if got := MapError("test.op", nil); got != nil {
		t.Fatalf("MapError(nil) = %v, want nil", got)
	}
}

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("active", "active", "expiring_soon"); err != nil {
		t.Fatalf("allowed status rejected: %v", err)
	}
	err := RequireStatusAllowed("terminated", "active")
	if err == nil {
		t.Fatal("disallowed status accepted")
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want conflict tag", err)
	}
}
