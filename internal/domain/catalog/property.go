package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PropertyStatusAvailable       = "available"
	PropertyStatusPendingApproval = "pending_approval"
	PropertyStatusRented          = "rented"
)

// Property carries only the occupancy-relevant slice of the catalog entity.
// Listing details, media and pricing history are owned by the catalog layer.
type Property struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LandlordID uuid.UUID      `gorm:"type:uuid;not null;index" json:"landlord_id"`
	Title      string         `gorm:"column:title" json:"title,omitempty"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Property) TableName() string { return "property" }
