package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	authrepos "github.com/havenlane/leasehold-backend/internal/data/repos/auth"
	notifyrepos "github.com/havenlane/leasehold-backend/internal/data/repos/notify"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// PushBus delivers a persisted notification to a live channel. Best-effort:
// a push failure is logged, never surfaced to the transition that caused it.
type PushBus interface {
	Push(ctx context.Context, recipientID uuid.UUID, n *types.Notification) error
}

// FanoutDispatcher turns one domain event into one persisted notification per
// resolved recipient, then pushes each best-effort.
type FanoutDispatcher interface {
	Fanout(ctx context.Context, ev events.Event) error
}

type fanoutDispatcher struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo notifyrepos.NotificationRepo
	userRepo         authrepos.UserRepo
	push             PushBus
	export           events.Publisher
}

// NewFanoutDispatcher wires the dispatcher. push and export may be nil; both
// are optional transports on top of the durable notification rows.
func NewFanoutDispatcher(
	db *gorm.DB,
	log *logger.Logger,
	notificationRepo notifyrepos.NotificationRepo,
	userRepo authrepos.UserRepo,
	push PushBus,
	export events.Publisher,
) FanoutDispatcher {
	return &fanoutDispatcher{
		db:               db,
		log:              log.With("service", "FanoutDispatcher"),
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		push:             push,
		export:           export,
	}
}

func (fd *fanoutDispatcher) Fanout(ctx context.Context, ev events.Event) error {
	const op = "notify.fanout"
	recipients, err := fd.resolveAudience(ctx, ev)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if len(recipients) == 0 {
		return nil
	}

	rows := make([]*types.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		rows = append(rows, &types.Notification{
			ID:          uuid.New(),
			RecipientID: recipientID,
			Message:     ev.Message,
			Category:    ev.Category,
			ActorID:     ev.ActorID,
			EntityType:  ev.EntityType,
			EntityID:    ev.EntityID,
			DeepLink:    ev.DeepLink,
		})
	}

	// Persistence is the durable part of delivery and the only step whose
	// failure propagates to the caller.
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(4)
	for _, row := range rows {
		row := row
		grp.Go(func() error {
			_, err := fd.notificationRepo.Create(dbctx.Context{Ctx: grpCtx}, []*types.Notification{row})
			return err
		})
	}
	if err := grp.Wait(); err != nil {
		return aggregates.MapError(op, err)
	}

	fd.dispatchTransports(ev, rows)
	return nil
}

// dispatchTransports pushes each notification and mirrors the event to the
// export publisher, fire-and-forget relative to the caller.
func (fd *fanoutDispatcher) dispatchTransports(ev events.Event, rows []*types.Notification) {
	if fd.push != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			for _, row := range rows {
				if err := fd.push.Push(ctx, row.RecipientID, row); err != nil {
					fd.log.Warn("Push delivery failed", "recipient_id", row.RecipientID, "category", row.Category, "error", err)
				}
			}
		}()
	}
	if fd.export != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := fd.export.Publish(ctx, ev); err != nil {
				fd.log.Warn("Event export failed", "category", ev.Category, "error", err)
			}
		}()
	}
}

func (fd *fanoutDispatcher) resolveAudience(ctx context.Context, ev events.Event) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0, len(ev.Recipients))
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range ev.Recipients {
		add(id)
	}
	if ev.AllAdmins {
		admins, err := fd.userRepo.ListAdmins(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, err
		}
		for _, admin := range admins {
			add(admin.ID)
		}
	}
	return out, nil
}
