package lease

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type ContractRepo interface {
	Create(dbc dbctx.Context, c *types.Contract) (*types.Contract, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error)
	ListByParty(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contract, error)
	ListAll(dbc dbctx.Context) ([]*types.Contract, error)

	// CountActiveOnRef counts contracts in active status on the exclusivity
	// scope, excluding the given contract id.
	CountActiveOnRef(dbc dbctx.Context, ref types.UnitRef, exclude uuid.UUID) (int64, error)
	// ExistsForTenantOnRef reports whether the tenant already holds a contract
	// in any of the given statuses on the same scope.
	ExistsForTenantOnRef(dbc dbctx.Context, tenantID uuid.UUID, ref types.UnitRef, statuses []string) (bool, error)
	// ListEndingWithin returns contracts in the given statuses whose end date
	// falls before the cutoff.
	ListEndingWithin(dbc dbctx.Context, statuses []string, cutoff time.Time) ([]*types.Contract, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	// MarkExpiringSoon moves a contract to expiring_soon and records the
	// notified threshold, but only when this threshold crossing has not been
	// recorded yet. Returns false when another sweep already claimed it.
	MarkExpiringSoon(dbc dbctx.Context, id uuid.UUID, thresholdDays int) (bool, error)
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return &contractRepo{
		db:  db,
		log: baseLog.With("repo", "ContractRepo"),
	}
}

func (r *contractRepo) base(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func refScope(q *gorm.DB, ref types.UnitRef) *gorm.DB {
	if ref.UnitID != nil && *ref.UnitID != uuid.Nil {
		return q.Where("unit_id = ?", *ref.UnitID)
	}
	return q.Where("property_id = ? AND unit_id IS NULL", ref.PropertyID)
}

func (r *contractRepo) Create(dbc dbctx.Context, c *types.Contract) (*types.Contract, error) {
	if c == nil {
		return nil, nil
	}
	if err := r.base(dbc).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	var out types.Contract
	if err := r.base(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contractRepo) ListByParty(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contract, error) {
	var out []*types.Contract
	if userID == uuid.Nil {
		return out, nil
	}
	err := r.base(dbc).
		Where("tenant_id = ? OR landlord_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) ListAll(dbc dbctx.Context) ([]*types.Contract, error) {
	var out []*types.Contract
	if err := r.base(dbc).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) CountActiveOnRef(dbc dbctx.Context, ref types.UnitRef, exclude uuid.UUID) (int64, error) {
	var count int64
	q := refScope(r.base(dbc).Model(&types.Contract{}), ref).
		Where("status = ?", types.ContractStatusActive)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contractRepo) ExistsForTenantOnRef(dbc dbctx.Context, tenantID uuid.UUID, ref types.UnitRef, statuses []string) (bool, error) {
	if tenantID == uuid.Nil || len(statuses) == 0 {
		return false, nil
	}
	var count int64
	q := refScope(r.base(dbc).Model(&types.Contract{}), ref).
		Where("tenant_id = ? AND status IN ?", tenantID, statuses)
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contractRepo) ListEndingWithin(dbc dbctx.Context, statuses []string, cutoff time.Time) ([]*types.Contract, error) {
	var out []*types.Contract
	if len(statuses) == 0 {
		return out, nil
	}
	err := r.base(dbc).
		Where("status IN ? AND end_date <= ?", statuses, cutoff).
		Order("end_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) MarkExpiringSoon(dbc dbctx.Context, id uuid.UUID, thresholdDays int) (bool, error) {
	if id == uuid.Nil || thresholdDays <= 0 {
		return false, nil
	}
	res := r.base(dbc).
		Model(&types.Contract{}).
		Where("id = ? AND status IN ?", id, []string{types.ContractStatusActive, types.ContractStatusExpiringSoon}).
		Where("expiry_notice_days = 0 OR expiry_notice_days > ?", thresholdDays).
		Updates(map[string]interface{}{
			"status":             types.ContractStatusExpiringSoon,
			"expiry_notice_days": thresholdDays,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *contractRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Contract{}).
		Where("id = ?", id).
		Updates(updates).Error
}
