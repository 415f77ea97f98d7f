package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UnitStatusVacant      = "vacant"
	UnitStatusOccupied    = "occupied"
	UnitStatusReserved    = "reserved"
	UnitStatusMaintenance = "maintenance"
)

// Unit is a tenant-addressable space inside a property. A lease may reference
// either a unit or the whole property; exclusivity is scoped to whichever one
// the contract names.
type Unit struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PropertyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"property_id"`
	UnitNumber string         `gorm:"column:unit_number" json:"unit_number,omitempty"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Unit) TableName() string { return "unit" }
