package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	notifyrepos "github.com/havenlane/leasehold-backend/internal/data/repos/notify"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// NotificationService is the read/ack surface over the notification rows the
// fan-out dispatcher writes. All operations are scoped to the caller.
type NotificationService interface {
	List(ctx context.Context, unreadOnly bool, limit int) ([]*types.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo notifyrepos.NotificationRepo
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo notifyrepos.NotificationRepo) NotificationService {
	return &notificationService{
		db:               db,
		log:              log.With("service", "NotificationService"),
		notificationRepo: notificationRepo,
	}
}

func (ns *notificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]*types.Notification, error) {
	const op = "notification.list"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	rows, err := ns.notificationRepo.ListByRecipient(dbctx.Context{Ctx: ctx}, rd.UserID, unreadOnly, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	const op = "notification.mark_read"
	rd, err := caller(ctx)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	ok, err := ns.notificationRepo.MarkRead(dbctx.Context{Ctx: ctx}, notificationID, rd.UserID)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if !ok {
		return aggregates.MapError(op, gorm.ErrRecordNotFound)
	}
	return nil
}

func (ns *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	const op = "notification.mark_all_read"
	rd, err := caller(ctx)
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	n, err := ns.notificationRepo.MarkAllRead(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	return n, nil
}
