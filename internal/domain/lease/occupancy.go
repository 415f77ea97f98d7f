package lease

import (
	"time"

	"github.com/google/uuid"
)

// OccupancyHistory is an immutable occupancy interval for a unit or property.
// To == nil marks the interval as still open; a partial unique index keeps at
// most one open interval per unit (see data/db.AutoMigrateAll).
type OccupancyHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PropertyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	UnitID     *uuid.UUID `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ContractID uuid.UUID  `gorm:"type:uuid;not null;index" json:"contract_id"`
	From       time.Time  `gorm:"column:from_at;not null" json:"from"`
	To         *time.Time `gorm:"column:to_at" json:"to,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (OccupancyHistory) TableName() string { return "occupancy_history" }

// UnitRef identifies the exclusivity scope of a lease: a specific unit when
// UnitID is set, otherwise the whole property.
type UnitRef struct {
	PropertyID uuid.UUID
	UnitID     *uuid.UUID
}

// Ref returns the exclusivity scope the contract occupies.
func (c *Contract) Ref() UnitRef {
	return UnitRef{PropertyID: c.PropertyID, UnitID: c.UnitID}
}
