package notify

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryLeaseRequested  = "lease_requested"
	CategoryLeaseApproved   = "lease_approved"
	CategoryLeaseRejected   = "lease_rejected"
	CategoryLeaseSigned     = "lease_signed"
	CategoryLeaseActivated  = "lease_activated"
	CategoryLeaseRenewed    = "lease_renewed"
	CategoryLeaseTerminated = "lease_terminated"
	CategoryLeaseExpiring   = "lease_expiring"
	CategoryLeaseExpired    = "lease_expired"
	CategoryDepositDeducted = "deposit_deducted"
	CategoryDepositRefunded = "deposit_refunded"
)

// Notification is one message addressed to one user. Fan-out produces N rows
// for N recipients from a single domain event; only the read flag mutates.
type Notification struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecipientID uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Message     string         `gorm:"column:message;not null" json:"message"`
	Category    string         `gorm:"column:category;not null;index" json:"category"`
	ActorID     *uuid.UUID     `gorm:"type:uuid;column:actor_id" json:"actor_id,omitempty"`
	EntityType  string         `gorm:"column:entity_type;index" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`
	DeepLink    string         `gorm:"column:deep_link" json:"deep_link,omitempty"`
	Read        bool           `gorm:"column:read;not null;default:false;index" json:"read"`
	CreatedAt   time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Notification) TableName() string { return "notification" }
