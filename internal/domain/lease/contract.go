package lease

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContractStatusPending      = "pending"
	ContractStatusActive       = "active"
	ContractStatusExpiringSoon = "expiring_soon"
	ContractStatusExpired      = "expired"
	ContractStatusTerminated   = "terminated"
	ContractStatusRejected     = "rejected"
)

const (
	PaymentCycleMonthly   = "monthly"
	PaymentCycleQuarterly = "quarterly"
	PaymentCycleYearly    = "yearly"
)

// IsTerminalStatus reports whether a contract can never leave the status again.
// expiring_soon is advisory: it may still renew back into active or terminate.
func IsTerminalStatus(status string) bool {
	switch status {
	case ContractStatusExpired, ContractStatusTerminated, ContractStatusRejected:
		return true
	}
	return false
}

// Contract is one lease agreement binding a tenant, a landlord and a rentable
// unit or property for a bounded term. Status is written exclusively by the
// lifecycle engine.
type Contract struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PropertyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	UnitID     *uuid.UUID `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LandlordID uuid.UUID  `gorm:"type:uuid;not null;index" json:"landlord_id"`

	StartDate    time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate      time.Time `gorm:"column:end_date;not null;index" json:"end_date"`
	RentAmount   float64   `gorm:"column:rent_amount;not null;default:0" json:"rent_amount"`
	PaymentCycle string    `gorm:"column:payment_cycle;not null;default:monthly" json:"payment_cycle"`
	Status       string    `gorm:"column:status;not null;index" json:"status"`

	TenantSignedAt   *time.Time `gorm:"column:tenant_signed_at" json:"tenant_signed_at,omitempty"`
	LandlordSignedAt *time.Time `gorm:"column:landlord_signed_at" json:"landlord_signed_at,omitempty"`

	RenewalCount  int        `gorm:"column:renewal_count;not null;default:0" json:"renewal_count"`
	LastRenewedAt *time.Time `gorm:"column:last_renewed_at" json:"last_renewed_at,omitempty"`

	TerminatedBy      *uuid.UUID `gorm:"type:uuid;column:terminated_by" json:"terminated_by,omitempty"`
	TerminationReason string     `gorm:"column:termination_reason" json:"termination_reason,omitempty"`
	TerminatedAt      *time.Time `gorm:"column:terminated_at" json:"terminated_at,omitempty"`

	// ExpiryNoticeDays is the high-water mark of the last expiry threshold the
	// sweep notified on (0 = none, otherwise 30 or 7).
	ExpiryNoticeDays int `gorm:"column:expiry_notice_days;not null;default:0" json:"expiry_notice_days"`

	DocumentKey string `gorm:"column:document_key" json:"document_key,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contract) TableName() string { return "contract" }

// SignedByBoth reports whether both parties have recorded signatures.
func (c *Contract) SignedByBoth() bool {
	return c != nil && c.TenantSignedAt != nil && c.LandlordSignedAt != nil
}

// IsParty reports whether userID is the tenant or the landlord on the contract.
func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c != nil && (c.TenantID == userID || c.LandlordID == userID)
}

// Counterparty returns the other party of the contract relative to userID.
func (c *Contract) Counterparty(userID uuid.UUID) uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	if c.TenantID == userID {
		return c.LandlordID
	}
	return c.TenantID
}
