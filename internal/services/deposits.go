package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	billingrepos "github.com/havenlane/leasehold-backend/internal/data/repos/billing"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/domain/billing"
	"github.com/havenlane/leasehold-backend/internal/domain/notify"
	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
	"github.com/havenlane/leasehold-backend/internal/requestdata"
)

// DepositLedger tracks security-deposit custody per contract. Updates to the
// running sums serialize through a per-row version compare-and-set so
// concurrent deductions never lose writes.
type DepositLedger interface {
	Open(ctx context.Context, contractID uuid.UUID, amount float64, currency string) (*types.Deposit, error)
	Deduct(ctx context.Context, depositID uuid.UUID, amount float64, reason string) (*types.Deposit, error)
	Refund(ctx context.Context, depositID uuid.UUID, amount float64) (*types.Deposit, error)
	GetByContract(ctx context.Context, contractID uuid.UUID) (*types.Deposit, error)
}

type depositLedger struct {
	db           *gorm.DB
	log          *logger.Logger
	guard        aggregates.CASGuard
	depositRepo  billingrepos.DepositRepo
	contractRepo leaserepos.ContractRepo
	dispatcher   FanoutDispatcher
}

func NewDepositLedger(
	db *gorm.DB,
	log *logger.Logger,
	depositRepo billingrepos.DepositRepo,
	contractRepo leaserepos.ContractRepo,
	dispatcher FanoutDispatcher,
) DepositLedger {
	return &depositLedger{
		db:           db,
		log:          log.With("service", "DepositLedger"),
		guard:        aggregates.NewCASGuard(db),
		depositRepo:  depositRepo,
		contractRepo: contractRepo,
		dispatcher:   dispatcher,
	}
}

func (dl *depositLedger) Open(ctx context.Context, contractID uuid.UUID, amount float64, currency string) (*types.Deposit, error) {
	const op = "deposit.open"
	dbc := dbctx.Context{Ctx: ctx}

	contract, err := dl.contractRepo.GetByID(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if err := dl.requireLandlordOrAdmin(ctx, contract); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if amount <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("deposit amount must be positive"))
	}
	if currency == "" {
		currency = "USD"
	}

	existing, err := dl.depositRepo.GetByContract(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing != nil {
		return nil, aggregates.MapError(op, aggregates.ConflictError("contract already has a deposit"))
	}

	deposit := &types.Deposit{
		ID:         uuid.New(),
		ContractID: contractID,
		Amount:     amount,
		Currency:   currency,
		Status:     types.DepositStatusHeld,
		Deductions: datatypes.JSON([]byte("[]")),
	}
	// Unique index on contract_id is the backstop for concurrent opens.
	created, err := dl.depositRepo.Create(dbc, deposit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return created, nil
}

func (dl *depositLedger) Deduct(ctx context.Context, depositID uuid.UUID, amount float64, reason string) (*types.Deposit, error) {
	const op = "deposit.deduct"
	if amount <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("deduction amount must be positive"))
	}
	deposit, err := dl.mutate(ctx, op, depositID, func(d *types.Deposit, deductions []billing.Deduction) (map[string]any, []billing.Deduction, error) {
		if d.Status == types.DepositStatusRefunded {
			return nil, nil, aggregates.ConflictError("deposit already fully settled")
		}
		if d.TotalDeducted+d.RefundedAmount+amount > d.Amount {
			return nil, nil, aggregates.ConflictError("deduction exceeds remaining deposit balance")
		}
		deductions = append(deductions, billing.Deduction{Amount: amount, Reason: reason, At: time.Now().UTC()})
		total := d.TotalDeducted + amount
		return map[string]any{
			"total_deducted": total,
			"status":         billing.DeriveStatus(d.Amount, total, d.RefundedAmount),
		}, deductions, nil
	})
	if err != nil {
		return nil, err
	}
	dl.notifyTenant(ctx, deposit, notify.CategoryDepositDeducted,
		fmt.Sprintf("A deduction of %.2f %s was applied to your security deposit: %s", amount, deposit.Currency, reason))
	return deposit, nil
}

func (dl *depositLedger) Refund(ctx context.Context, depositID uuid.UUID, amount float64) (*types.Deposit, error) {
	const op = "deposit.refund"
	if amount <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("refund amount must be positive"))
	}
	deposit, err := dl.mutate(ctx, op, depositID, func(d *types.Deposit, deductions []billing.Deduction) (map[string]any, []billing.Deduction, error) {
		if d.Status == types.DepositStatusRefunded {
			return nil, nil, aggregates.ConflictError("deposit already fully settled")
		}
		if d.RefundedAmount+amount > d.Amount-d.TotalDeducted {
			return nil, nil, aggregates.ConflictError("refund exceeds remaining deposit balance")
		}
		refunded := d.RefundedAmount + amount
		return map[string]any{
			"refunded_amount": refunded,
			"status":          billing.DeriveStatus(d.Amount, d.TotalDeducted, refunded),
		}, deductions, nil
	})
	if err != nil {
		return nil, err
	}
	dl.notifyTenant(ctx, deposit, notify.CategoryDepositRefunded,
		fmt.Sprintf("A refund of %.2f %s was issued from your security deposit", amount, deposit.Currency))
	return deposit, nil
}

func (dl *depositLedger) GetByContract(ctx context.Context, contractID uuid.UUID) (*types.Deposit, error) {
	const op = "deposit.get"
	dbc := dbctx.Context{Ctx: ctx}
	contract, err := dl.contractRepo.GetByID(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if err := dl.requirePartyOrAdmin(ctx, contract); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	deposit, err := dl.depositRepo.GetByContract(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if deposit == nil {
		return nil, aggregates.MapError(op, gorm.ErrRecordNotFound)
	}
	return deposit, nil
}

// mutate applies fn under a version compare-and-set, retrying once when a
// concurrent writer bumped the version between read and write.
func (dl *depositLedger) mutate(
	ctx context.Context,
	op string,
	depositID uuid.UUID,
	fn func(d *types.Deposit, deductions []billing.Deduction) (map[string]any, []billing.Deduction, error),
) (*types.Deposit, error) {
	dbc := dbctx.Context{Ctx: ctx}
	for attempt := 0; attempt < 2; attempt++ {
		deposit, err := dl.depositRepo.GetByID(dbc, depositID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		contract, err := dl.contractRepo.GetByID(dbc, deposit.ContractID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if err := dl.requireLandlordOrAdmin(ctx, contract); err != nil {
			return nil, aggregates.MapError(op, err)
		}

		var deductions []billing.Deduction
		if len(deposit.Deductions) > 0 {
			if err := json.Unmarshal(deposit.Deductions, &deductions); err != nil {
				return nil, aggregates.MapError(op, err)
			}
		}

		updates, newDeductions, err := fn(deposit, deductions)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if newDeductions != nil {
			raw, err := json.Marshal(newDeductions)
			if err != nil {
				return nil, aggregates.MapError(op, err)
			}
			updates["deductions"] = datatypes.JSON(raw)
		}
		updates["updated_at"] = time.Now()

		ok, err := dl.guard.UpdateByVersion(dbc, types.Deposit{}.TableName(), deposit.ID, deposit.Version, updates)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if !ok {
			dl.log.Debug("Deposit version raced, retrying", "deposit_id", depositID, "attempt", attempt)
			continue
		}
		updated, err := dl.depositRepo.GetByID(dbc, deposit.ID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		return updated, nil
	}
	return nil, aggregates.MapError(op, aggregates.ConflictError("deposit is being modified concurrently"))
}

func (dl *depositLedger) notifyTenant(ctx context.Context, deposit *types.Deposit, category, message string) {
	if dl.dispatcher == nil || deposit == nil {
		return
	}
	contract, err := dl.contractRepo.GetByID(dbctx.Context{Ctx: ctx}, deposit.ContractID)
	if err != nil {
		dl.log.Warn("Failed to resolve contract for deposit notification", "deposit_id", deposit.ID, "error", err)
		return
	}
	var actorID *uuid.UUID
	if rd := requestdata.GetRequestData(ctx); rd != nil {
		id := rd.UserID
		actorID = &id
	}
	entityID := deposit.ID
	if err := dl.dispatcher.Fanout(ctx, events.Event{
		Category:   category,
		Message:    message,
		ActorID:    actorID,
		EntityType: "deposit",
		EntityID:   &entityID,
		OccurredAt: time.Now().UTC(),
		Recipients: []uuid.UUID{contract.TenantID},
	}); err != nil {
		dl.log.Warn("Deposit notification fan-out failed", "deposit_id", deposit.ID, "error", err)
	}
}

func (dl *depositLedger) requireLandlordOrAdmin(ctx context.Context, contract *types.Contract) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return aggregates.ForbiddenError("caller identity missing")
	}
	if rd.Role == types.RoleAdmin || contract.LandlordID == rd.UserID {
		return nil
	}
	return aggregates.ForbiddenError("caller must be the landlord or an admin")
}

func (dl *depositLedger) requirePartyOrAdmin(ctx context.Context, contract *types.Contract) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return aggregates.ForbiddenError("caller identity missing")
	}
	if rd.Role == types.RoleAdmin || contract.IsParty(rd.UserID) {
		return nil
	}
	return aggregates.ForbiddenError("caller is not a party to this contract")
}
