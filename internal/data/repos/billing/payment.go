package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type PaymentRepo interface {
	Create(dbc dbctx.Context, p *types.Payment) (*types.Payment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payment, error)
	CountByContract(dbc dbctx.Context, contractID uuid.UUID) (int64, error)
	ListByContract(dbc dbctx.Context, contractID uuid.UUID) ([]*types.Payment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	return &paymentRepo{
		db:  db,
		log: baseLog.With("repo", "PaymentRepo"),
	}
}

func (r *paymentRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *paymentRepo) Create(dbc dbctx.Context, p *types.Payment) (*types.Payment, error) {
	if p == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payment, error) {
	var out types.Payment
	if err := r.base(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) CountByContract(dbc dbctx.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.base(dbc).
		Model(&types.Payment{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *paymentRepo) ListByContract(dbc dbctx.Context, contractID uuid.UUID) ([]*types.Payment, error) {
	var out []*types.Payment
	err := r.base(dbc).
		Where("contract_id = ?", contractID).
		Order("date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return r.base(dbc).
		Model(&types.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
