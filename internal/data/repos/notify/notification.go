package notify

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Notification) ([]*types.Notification, error)
	ListByRecipient(dbc dbctx.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	// MarkRead flips the read flag on one notification owned by the recipient.
	// Returns false when the row does not exist or belongs to someone else.
	MarkRead(dbc dbctx.Context, id, recipientID uuid.UUID) (bool, error)
	MarkAllRead(dbc dbctx.Context, recipientID uuid.UUID) (int64, error)
	CountByEntityCategory(dbc dbctx.Context, entityID uuid.UUID, category string) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{
		db:  db,
		log: baseLog.With("repo", "NotificationRepo"),
	}
}

func (r *notificationRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *notificationRepo) Create(dbc dbctx.Context, rows []*types.Notification) ([]*types.Notification, error) {
	if len(rows) == 0 {
		return []*types.Notification{}, nil
	}
	if err := r.base(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationRepo) ListByRecipient(dbc dbctx.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	var out []*types.Notification
	if recipientID == uuid.Nil {
		return out, nil
	}
	q := r.base(dbc).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = false")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(dbc dbctx.Context, id, recipientID uuid.UUID) (bool, error) {
	if id == uuid.Nil || recipientID == uuid.Nil {
		return false, nil
	}
	res := r.base(dbc).
		Model(&types.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"read": true, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepo) MarkAllRead(dbc dbctx.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, nil
	}
	res := r.base(dbc).
		Model(&types.Notification{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Updates(map[string]interface{}{"read": true, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *notificationRepo) CountByEntityCategory(dbc dbctx.Context, entityID uuid.UUID, category string) (int64, error) {
	var count int64
	err := r.base(dbc).
		Model(&types.Notification{}).
		Where("entity_id = ? AND category = ?", entityID, category).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
