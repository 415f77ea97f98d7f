package domain

import (
	"github.com/havenlane/leasehold-backend/internal/domain/auth"
	"github.com/havenlane/leasehold-backend/internal/domain/billing"
	"github.com/havenlane/leasehold-backend/internal/domain/catalog"
	"github.com/havenlane/leasehold-backend/internal/domain/lease"
	"github.com/havenlane/leasehold-backend/internal/domain/notify"
)

type User = auth.User

type Property = catalog.Property
type Unit = catalog.Unit

type Contract = lease.Contract
type OccupancyHistory = lease.OccupancyHistory
type UnitRef = lease.UnitRef

type Payment = billing.Payment
type Deposit = billing.Deposit
type Deduction = billing.Deduction

type Notification = notify.Notification

const (
	RoleTenant   = auth.RoleTenant
	RoleLandlord = auth.RoleLandlord
	RoleAdmin    = auth.RoleAdmin
)

const (
	ContractStatusPending      = lease.ContractStatusPending
	ContractStatusActive       = lease.ContractStatusActive
	ContractStatusExpiringSoon = lease.ContractStatusExpiringSoon
	ContractStatusExpired      = lease.ContractStatusExpired
	ContractStatusTerminated   = lease.ContractStatusTerminated
	ContractStatusRejected     = lease.ContractStatusRejected
)

const (
	PropertyStatusAvailable       = catalog.PropertyStatusAvailable
	PropertyStatusPendingApproval = catalog.PropertyStatusPendingApproval
	PropertyStatusRented          = catalog.PropertyStatusRented

	UnitStatusVacant      = catalog.UnitStatusVacant
	UnitStatusOccupied    = catalog.UnitStatusOccupied
	UnitStatusReserved    = catalog.UnitStatusReserved
	UnitStatusMaintenance = catalog.UnitStatusMaintenance
)

const (
	PaymentStatusPending = billing.PaymentStatusPending
	PaymentStatusPaid    = billing.PaymentStatusPaid
	PaymentStatusFailed  = billing.PaymentStatusFailed

	DepositStatusHeld              = billing.DepositStatusHeld
	DepositStatusPartiallyRefunded = billing.DepositStatusPartiallyRefunded
	DepositStatusRefunded          = billing.DepositStatusRefunded
)
