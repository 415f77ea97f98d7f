package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	authrepos "github.com/havenlane/leasehold-backend/internal/data/repos/auth"
	notifyrepos "github.com/havenlane/leasehold-backend/internal/data/repos/notify"
	"github.com/havenlane/leasehold-backend/internal/data/repos/testutil"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/events"
)

// failingPush always errors and signals each attempt, so tests can prove
// push failures never surface to the caller.
type failingPush struct {
	attempts chan uuid.UUID
}

func (p *failingPush) Push(_ context.Context, recipientID uuid.UUID, _ *types.Notification) error {
	select {
	case p.attempts <- recipientID:
	default:
	}
	return errors.New("push transport down")
}

func TestFanoutPersistsOneRowPerRecipient(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, db, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, db, types.RoleLandlord)
	admin := testutil.SeedUser(t, ctx, db, types.RoleAdmin)
	recipients := []uuid.UUID{tenant.ID, landlord.ID, admin.ID}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM notification WHERE recipient_id IN (?, ?, ?)`, tenant.ID, landlord.ID, admin.ID)
		db.Exec(`DELETE FROM app_user WHERE id IN (?, ?, ?)`, tenant.ID, landlord.ID, admin.ID)
	})

	dispatcher := NewFanoutDispatcher(db, log,
		notifyrepos.NewNotificationRepo(db, log),
		authrepos.NewUserRepo(db, log),
		nil, nil)

	entityID := uuid.New()
	err := dispatcher.Fanout(ctx, events.Event{
		Category:   "lease_activated",
		Message:    "Your lease is now active",
		EntityType: "contract",
		EntityID:   &entityID,
		OccurredAt: time.Now().UTC(),
		// The tenant appears twice: fan-out must deduplicate.
		Recipients: []uuid.UUID{tenant.ID, landlord.ID, tenant.ID},
		AllAdmins:  true,
	})
	if err != nil {
		t.Fatalf("fanout: %v", err)
	}

	for _, id := range recipients {
		var n int64
		if err := db.Model(&types.Notification{}).
			Where("recipient_id = ? AND entity_id = ?", id, entityID).
			Count(&n).Error; err != nil {
			t.Fatalf("count rows: %v", err)
		}
		if n != 1 {
			t.Fatalf("rows for %s = %d, want 1", id, n)
		}
	}
}

func TestFanoutPushFailureDoesNotFailDelivery(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, db, types.RoleTenant)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM notification WHERE recipient_id = ?`, tenant.ID)
		db.Exec(`DELETE FROM app_user WHERE id = ?`, tenant.ID)
	})

	push := &failingPush{attempts: make(chan uuid.UUID, 1)}
	dispatcher := NewFanoutDispatcher(db, log,
		notifyrepos.NewNotificationRepo(db, log),
		authrepos.NewUserRepo(db, log),
		push, nil)

	entityID := uuid.New()
	err := dispatcher.Fanout(ctx, events.Event{
		Category:   "lease_terminated",
		Message:    "The lease was terminated",
		EntityType: "contract",
		EntityID:   &entityID,
		OccurredAt: time.Now().UTC(),
		Recipients: []uuid.UUID{tenant.ID},
	})
	if err != nil {
		t.Fatalf("fanout must not propagate push failures, got: %v", err)
	}

	// The durable row exists regardless of the broken transport.
	var n int64
	if err := db.Model(&types.Notification{}).
		Where("recipient_id = ? AND entity_id = ?", tenant.ID, entityID).
		Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}

	select {
	case got := <-push.attempts:
		if got != tenant.ID {
			t.Fatalf("pushed to %s, want %s", got, tenant.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("push transport was never attempted")
	}
}

func TestFanoutNoRecipientsIsNoop(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	dispatcher := NewFanoutDispatcher(db, log,
		notifyrepos.NewNotificationRepo(db, log),
		authrepos.NewUserRepo(db, log),
		nil, nil)

	if err := dispatcher.Fanout(context.Background(), events.Event{Category: "lease_signed", Message: "signed"}); err != nil {
		t.Fatalf("empty fanout: %v", err)
	}
}
