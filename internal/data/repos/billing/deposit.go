package billing

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type DepositRepo interface {
	Create(dbc dbctx.Context, d *types.Deposit) (*types.Deposit, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deposit, error)
	// GetByContract returns the deposit of a contract, or nil when none exists.
	GetByContract(dbc dbctx.Context, contractID uuid.UUID) (*types.Deposit, error)
}

type depositRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDepositRepo(db *gorm.DB, baseLog *logger.Logger) DepositRepo {
	return &depositRepo{
		db:  db,
		log: baseLog.With("repo", "DepositRepo"),
	}
}

func (r *depositRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *depositRepo) Create(dbc dbctx.Context, d *types.Deposit) (*types.Deposit, error) {
	if d == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *depositRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deposit, error) {
	var out types.Deposit
	if err := r.base(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *depositRepo) GetByContract(dbc dbctx.Context, contractID uuid.UUID) (*types.Deposit, error) {
	var out types.Deposit
	err := r.base(dbc).Where("contract_id = ?", contractID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
