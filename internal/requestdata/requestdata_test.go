package requestdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	rd := &RequestData{UserID: uuid.New(), Role: "landlord"}
	ctx := WithRequestData(context.Background(), rd)

	got := GetRequestData(ctx)
	if got == nil {
		t.Fatal("expected request data on context")
	}
	if got.UserID != rd.UserID || got.Role != rd.Role {
		t.Fatalf("got %+v, want %+v", got, rd)
	}
}

func TestGetRequestDataMissing(t *testing.T) {
	if got := GetRequestData(context.Background()); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestRequestDataKeyDoesNotCollide(t *testing.T) {
	// A foreign package storing under its own empty-struct key must not
	// shadow or surface as caller identity.
	type foreignKey struct{}
	ctx := WithRequestData(context.Background(), &RequestData{Role: "admin"})
	ctx = context.WithValue(ctx, foreignKey{}, "unrelated")

	got := GetRequestData(ctx)
	if got == nil || got.Role != "admin" {
		t.Fatalf("got %+v, want the stored identity", got)
	}
	if v := ctx.Value(foreignKey{}); v != "unrelated" {
		t.Fatalf("foreign value = %v", v)
	}
}
