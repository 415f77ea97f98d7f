package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	notifyrepos "github.com/havenlane/leasehold-backend/internal/data/repos/notify"
	"github.com/havenlane/leasehold-backend/internal/data/repos/testutil"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
)

func TestNotificationReadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	me := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	other := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)

	repo := notifyrepos.NewNotificationRepo(f.tx, log)
	svc := NewNotificationService(f.tx, log, repo)

	seed := func(recipient uuid.UUID, msg string) *types.Notification {
		n := &types.Notification{ID: uuid.New(), RecipientID: recipient, Message: msg, Category: "lease_signed"}
		if _, err := repo.Create(dbctx.Context{Ctx: ctx}, []*types.Notification{n}); err != nil {
			t.Fatalf("seed notification: %v", err)
		}
		return n
	}
	mine1 := seed(me.ID, "one")
	mine2 := seed(me.ID, "two")
	theirs := seed(other.ID, "not yours")

	rows, err := svc.List(asUser(me), true, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unread rows = %d, want 2", len(rows))
	}

	if err := svc.MarkRead(asUser(me), mine1.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Cannot ack someone else's notification.
	if err := svc.MarkRead(asUser(me), theirs.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign ack error = %v, want not_found", err)
	}

	marked, err := svc.MarkAllRead(asUser(me))
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if marked != 1 {
		t.Fatalf("marked = %d, want 1 (only %s was still unread)", marked, mine2.ID)
	}

	rows, err = svc.List(asUser(me), true, 50)
	if err != nil {
		t.Fatalf("list after ack: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("unread rows after ack = %d, want 0", len(rows))
	}
}
