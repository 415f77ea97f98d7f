package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment is one billing record tied to a contract. AutoCreated marks the
// scaffold payment minted at activation; a partial unique index on
// (contract_id) WHERE auto_created backstops scaffold idempotence under race.
type Payment struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContractID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"contract_id"`
	Amount      float64        `gorm:"column:amount;not null" json:"amount"`
	Method      string         `gorm:"column:method" json:"method,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Date        time.Time      `gorm:"column:date;not null" json:"date"`
	ReceiptKey  string         `gorm:"column:receipt_key" json:"receipt_key,omitempty"`
	AutoCreated bool           `gorm:"column:auto_created;not null;default:false" json:"auto_created"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Payment) TableName() string { return "payment" }
