package lease

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type OccupancyRepo interface {
	Create(dbc dbctx.Context, row *types.OccupancyHistory) (*types.OccupancyHistory, error)
	// GetOpenByRef returns the open interval for the scope, or nil when none.
	GetOpenByRef(dbc dbctx.Context, ref types.UnitRef) (*types.OccupancyHistory, error)
	// CloseOpenByRef stamps To on the open interval for the scope. Returns the
	// number of rows closed (0 when none was open).
	CloseOpenByRef(dbc dbctx.Context, ref types.UnitRef, to time.Time) (int64, error)
	ListByRef(dbc dbctx.Context, ref types.UnitRef) ([]*types.OccupancyHistory, error)
}

type occupancyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOccupancyRepo(db *gorm.DB, baseLog *logger.Logger) OccupancyRepo {
	return &occupancyRepo{
		db:  db,
		log: baseLog.With("repo", "OccupancyRepo"),
	}
}

func (r *occupancyRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *occupancyRepo) Create(dbc dbctx.Context, row *types.OccupancyHistory) (*types.OccupancyHistory, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *occupancyRepo) GetOpenByRef(dbc dbctx.Context, ref types.UnitRef) (*types.OccupancyHistory, error) {
	var out types.OccupancyHistory
	q := refScope(r.base(dbc).Model(&types.OccupancyHistory{}), ref).
		Where("to_at IS NULL")
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *occupancyRepo) CloseOpenByRef(dbc dbctx.Context, ref types.UnitRef, to time.Time) (int64, error) {
	res := refScope(r.base(dbc).Model(&types.OccupancyHistory{}), ref).
		Where("to_at IS NULL").
		Update("to_at", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *occupancyRepo) ListByRef(dbc dbctx.Context, ref types.UnitRef) ([]*types.OccupancyHistory, error) {
	var out []*types.OccupancyHistory
	err := refScope(r.base(dbc), ref).
		Order("from_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
