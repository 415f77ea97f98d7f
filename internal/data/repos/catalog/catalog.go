package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// CatalogRepo covers the occupancy-relevant slice of properties and units.
// Catalog CRUD beyond status lives in its own service.
type CatalogRepo interface {
	GetProperty(dbc dbctx.Context, id uuid.UUID) (*types.Property, error)
	GetUnit(dbc dbctx.Context, id uuid.UUID) (*types.Unit, error)
	SetPropertyStatus(dbc dbctx.Context, id uuid.UUID, status string) error
	SetUnitStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{
		db:  db,
		log: baseLog.With("repo", "CatalogRepo"),
	}
}

func (r *catalogRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *catalogRepo) GetProperty(dbc dbctx.Context, id uuid.UUID) (*types.Property, error) {
	var out types.Property
	if err := r.base(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catalogRepo) GetUnit(dbc dbctx.Context, id uuid.UUID) (*types.Unit, error) {
	var out types.Unit
	if err := r.base(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catalogRepo) SetPropertyStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	return r.base(dbc).
		Model(&types.Property{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *catalogRepo) SetUnitStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	return r.base(dbc).
		Model(&types.Unit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}
