package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	billingrepos "github.com/havenlane/leasehold-backend/internal/data/repos/billing"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// PaymentScaffold keeps the payment floor invariant: every active contract
// has at least one payment row.
type PaymentScaffold interface {
	// EnsureInitialPayment creates the scaffold payment when the contract has
	// none yet. Idempotent: repeated activation/renewal calls insert at most
	// one row. Conflict when the contract carries no positive rent amount.
	EnsureInitialPayment(dbc dbctx.Context, contract *types.Contract) (*types.Payment, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*types.Payment, error)
	MarkPaid(ctx context.Context, paymentID uuid.UUID, method string) (*types.Payment, error)
}

type paymentScaffold struct {
	db           *gorm.DB
	log          *logger.Logger
	guard        aggregates.CASGuard
	paymentRepo  billingrepos.PaymentRepo
	contractRepo leaserepos.ContractRepo
}

func NewPaymentScaffold(
	db *gorm.DB,
	log *logger.Logger,
	paymentRepo billingrepos.PaymentRepo,
	contractRepo leaserepos.ContractRepo,
) PaymentScaffold {
	return &paymentScaffold{
		db:           db,
		log:          log.With("service", "PaymentScaffold"),
		guard:        aggregates.NewCASGuard(db),
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
	}
}

func (ps *paymentScaffold) EnsureInitialPayment(dbc dbctx.Context, contract *types.Contract) (*types.Payment, error) {
	const op = "payment.scaffold"
	if contract == nil {
		return nil, aggregates.MapError(op, aggregates.ValidationError("contract required"))
	}
	if contract.RentAmount <= 0 {
		return nil, aggregates.MapError(op, aggregates.ConflictError("contract has no economic terms"))
	}

	count, err := ps.paymentRepo.CountByContract(dbc, contract.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if count > 0 {
		return nil, nil
	}

	date := contract.StartDate
	if date.IsZero() {
		date = time.Now()
	}
	payment := &types.Payment{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Amount:      contract.RentAmount,
		Status:      types.PaymentStatusPending,
		Date:        date,
		AutoCreated: true,
	}
	created, err := ps.paymentRepo.Create(dbc, payment)
	if err != nil {
		// Two activations can both observe zero rows; the partial unique
		// index lets only one insert through. The loser is still a success.
		mapped := aggregates.MapError(op, err)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			ps.log.Debug("Scaffold payment already created concurrently", "contract_id", contract.ID)
			return nil, nil
		}
		return nil, mapped
	}
	return created, nil
}

func (ps *paymentScaffold) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*types.Payment, error) {
	const op = "payment.list"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	dbc := dbctx.Context{Ctx: ctx}
	contract, err := ps.contractRepo.GetByID(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rd.Role != types.RoleAdmin && !contract.IsParty(rd.UserID) {
		return nil, aggregates.MapError(op, aggregates.ForbiddenError("caller is not a party to this contract"))
	}
	rows, err := ps.paymentRepo.ListByContract(dbc, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (ps *paymentScaffold) MarkPaid(ctx context.Context, paymentID uuid.UUID, method string) (*types.Payment, error) {
	const op = "payment.mark_paid"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	dbc := dbctx.Context{Ctx: ctx}
	payment, err := ps.paymentRepo.GetByID(dbc, paymentID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	contract, err := ps.contractRepo.GetByID(dbc, payment.ContractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rd.Role != types.RoleAdmin && contract.LandlordID != rd.UserID {
		return nil, aggregates.MapError(op, aggregates.ForbiddenError("caller must be the landlord or an admin"))
	}
	if payment.Status == types.PaymentStatusPaid {
		return nil, aggregates.MapError(op, aggregates.ConflictError("payment already settled"))
	}

	updates := map[string]any{
		"status":     types.PaymentStatusPaid,
		"updated_at": time.Now(),
	}
	if method != "" {
		updates["method"] = method
	}
	// Status guard, not blind write: a racing settle loses the CAS and
	// conflicts instead of double-writing.
	ok, err := ps.guard.UpdateByStatus(dbc, types.Payment{}.TableName(), paymentID,
		[]string{types.PaymentStatusPending, types.PaymentStatusFailed}, updates)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if err := aggregates.RequireCASSuccess(ok, "payment already settled"); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	updated, err := ps.paymentRepo.GetByID(dbc, paymentID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return updated, nil
}
