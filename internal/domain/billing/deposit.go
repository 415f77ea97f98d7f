package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DepositStatusHeld              = "held"
	DepositStatusPartiallyRefunded = "partially_refunded"
	DepositStatusRefunded          = "refunded"
)

// Deduction is one withheld slice of a deposit, stored in the Deductions JSON
// list on the deposit row.
type Deduction struct {
	Amount float64   `json:"amount"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Deposit is the single security-deposit custody record of a contract.
// RefundedAmount + TotalDeducted never exceeds Amount; Status is derived from
// the two running sums. Version backs the per-deposit compare-and-set that
// serializes concurrent deductions and refunds.
type Deposit struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContractID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"contract_id"`
	Amount         float64        `gorm:"column:amount;not null" json:"amount"`
	Currency       string         `gorm:"column:currency;not null;default:USD" json:"currency"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	Deductions     datatypes.JSON `gorm:"column:deductions;type:jsonb" json:"deductions"`
	TotalDeducted  float64        `gorm:"column:total_deducted;not null;default:0" json:"total_deducted"`
	RefundedAmount float64        `gorm:"column:refunded_amount;not null;default:0" json:"refunded_amount"`
	Version        int            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Deposit) TableName() string { return "deposit" }

// DeriveStatus computes custody status from the running sums.
func DeriveStatus(amount, totalDeducted, refundedAmount float64) string {
	switch {
	case refundedAmount > 0 && refundedAmount+totalDeducted >= amount:
		return DepositStatusRefunded
	case refundedAmount > 0:
		return DepositStatusPartiallyRefunded
	default:
		return DepositStatusHeld
	}
}
