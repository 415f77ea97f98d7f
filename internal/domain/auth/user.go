package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

// User is the identity boundary of the engine. Authentication and profile
// management live in a separate layer; only id, email and role are consumed
// here (JWT subject resolution and admin audience fan-out).
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string         `gorm:"not null;uniqueIndex" json:"email"`
	FirstName string         `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName  string         `gorm:"column:last_name" json:"last_name,omitempty"`
	Role      string         `gorm:"column:role;not null;index" json:"role"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }
