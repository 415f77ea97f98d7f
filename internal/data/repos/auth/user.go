package auth

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	ListAdmins(dbc dbctx.Context) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{
		db:  db,
		log: baseLog.With("repo", "UserRepo"),
	}
}

func (r *userRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.base(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) ListAdmins(dbc dbctx.Context) ([]*types.User, error) {
	var out []*types.User
	err := r.base(dbc).
		Where("role = ?", types.RoleAdmin).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
