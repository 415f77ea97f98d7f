package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	catalogrepos "github.com/havenlane/leasehold-backend/internal/data/repos/catalog"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/domain/notify"
	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
	"github.com/havenlane/leasehold-backend/internal/requestdata"
)

const (
	expiryHorizonDays     = 30
	expiryFinalNoticeDays = 7
	defaultLeaseTermYears = 1
	contractEntityType    = "contract"
)

// RequestLeaseInput is a tenant's application for a unit or a whole property.
type RequestLeaseInput struct {
	PropertyID   uuid.UUID
	UnitID       *uuid.UUID
	RentAmount   float64
	StartDate    *time.Time
	EndDate      *time.Time
	PaymentCycle string
}

// DirectCreateInput creates a contract on behalf of a tenant, bypassing the
// request step. Status may be pending or active.
type DirectCreateInput struct {
	PropertyID   uuid.UUID
	UnitID       *uuid.UUID
	TenantID     uuid.UUID
	RentAmount   float64
	StartDate    *time.Time
	EndDate      *time.Time
	PaymentCycle string
	Status       string
}

// LifecycleService is the contract state machine. It is the only writer of
// Contract.Status; occupancy, payment scaffolding and fan-out hang off its
// transitions.
type LifecycleService interface {
	Request(ctx context.Context, in RequestLeaseInput) (*types.Contract, error)
	DirectCreate(ctx context.Context, in DirectCreateInput) (*types.Contract, error)
	Approve(ctx context.Context, contractID uuid.UUID) (*types.Contract, error)
	Reject(ctx context.Context, contractID uuid.UUID, reason string) (*types.Contract, error)
	Sign(ctx context.Context, contractID uuid.UUID) (*types.Contract, error)
	Renew(ctx context.Context, contractID uuid.UUID, newStart, newEnd *time.Time) (*types.Contract, error)
	RequestTermination(ctx context.Context, contractID uuid.UUID, reason string) (*types.Contract, error)
	Get(ctx context.Context, contractID uuid.UUID) (*types.Contract, error)
	List(ctx context.Context) ([]*types.Contract, error)

	// ExpireSweep walks active contracts near their end date: past-due ones
	// expire, others move to expiring_soon with at-most-once notification per
	// threshold crossing. Returns the number of contracts it transitioned.
	ExpireSweep(ctx context.Context) (int, error)
}

type lifecycleService struct {
	db           *gorm.DB
	log          *logger.Logger
	runner       aggregates.TxRunner
	guard        aggregates.CASGuard
	contractRepo leaserepos.ContractRepo
	catalogRepo  catalogrepos.CatalogRepo
	occupancy    OccupancyLedger
	scaffold     PaymentScaffold
	dispatcher   FanoutDispatcher
}

func NewLifecycleService(
	db *gorm.DB,
	log *logger.Logger,
	contractRepo leaserepos.ContractRepo,
	catalogRepo catalogrepos.CatalogRepo,
	occupancy OccupancyLedger,
	scaffold PaymentScaffold,
	dispatcher FanoutDispatcher,
) LifecycleService {
	return &lifecycleService{
		db:           db,
		log:          log.With("service", "LifecycleService"),
		runner:       aggregates.NewGormTxRunner(db),
		guard:        aggregates.NewCASGuard(db),
		contractRepo: contractRepo,
		catalogRepo:  catalogRepo,
		occupancy:    occupancy,
		scaffold:     scaffold,
		dispatcher:   dispatcher,
	}
}

func (ls *lifecycleService) Request(ctx context.Context, in RequestLeaseInput) (*types.Contract, error) {
	const op = "lease.request"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rd.Role != types.RoleTenant {
		return nil, aggregates.MapError(op, aggregates.ForbiddenError("only tenants request leases"))
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		property, unit, err := ls.loadRef(dbc, in.PropertyID, in.UnitID)
		if err != nil {
			return err
		}
		if property.LandlordID == rd.UserID {
			return aggregates.ValidationError("tenant and landlord must be different users")
		}

		ref := types.UnitRef{PropertyID: property.ID, UnitID: in.UnitID}
		if unit != nil {
			if unit.Status != types.UnitStatusVacant {
				return aggregates.ConflictError("unit is not available for lease")
			}
		} else if property.Status != types.PropertyStatusAvailable {
			return aggregates.ConflictError("property is not available for lease")
		}

		duplicate, err := ls.contractRepo.ExistsForTenantOnRef(dbc, rd.UserID, ref, []string{types.ContractStatusPending})
		if err != nil {
			return err
		}
		if duplicate {
			return aggregates.ConflictError("tenant already has a pending request for this unit")
		}

		now := time.Now().UTC()
		start := now
		if in.StartDate != nil {
			start = *in.StartDate
		}
		end := start.AddDate(defaultLeaseTermYears, 0, 0)
		if in.EndDate != nil {
			end = *in.EndDate
		}
		cycle := in.PaymentCycle
		if cycle == "" {
			cycle = "monthly"
		}

		contract = &types.Contract{
			ID:           uuid.New(),
			PropertyID:   property.ID,
			UnitID:       in.UnitID,
			TenantID:     rd.UserID,
			LandlordID:   property.LandlordID,
			StartDate:    start,
			EndDate:      end,
			RentAmount:   in.RentAmount,
			PaymentCycle: cycle,
			Status:       types.ContractStatusPending,
		}
		if _, err := ls.contractRepo.Create(dbc, contract); err != nil {
			return err
		}

		// Park the target so concurrent requests fail the availability check
		// early instead of piling up behind approval.
		if unit != nil {
			return ls.catalogRepo.SetUnitStatus(dbc, unit.ID, types.UnitStatusReserved)
		}
		return ls.catalogRepo.SetPropertyStatus(dbc, property.ID, types.PropertyStatusPendingApproval)
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	ls.emit(ctx, contract, notify.CategoryLeaseRequested,
		"A new lease request was submitted",
		[]uuid.UUID{contract.TenantID, contract.LandlordID}, true)
	return contract, nil
}

func (ls *lifecycleService) DirectCreate(ctx context.Context, in DirectCreateInput) (*types.Contract, error) {
	const op = "lease.direct_create"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rd.Role != types.RoleLandlord && rd.Role != types.RoleAdmin {
		return nil, aggregates.MapError(op, aggregates.ForbiddenError("only landlords or admins create contracts directly"))
	}
	if in.RentAmount <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("rentAmount is required and must be positive"))
	}
	if in.TenantID == uuid.Nil {
		return nil, aggregates.MapError(op, aggregates.ValidationError("tenantId is required"))
	}
	status := in.Status
	if status == "" {
		status = types.ContractStatusPending
	}
	if status != types.ContractStatusPending && status != types.ContractStatusActive {
		return nil, aggregates.MapError(op, aggregates.ValidationError("status must be pending or active"))
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		property, _, err := ls.loadRef(dbc, in.PropertyID, in.UnitID)
		if err != nil {
			return err
		}
		if rd.Role == types.RoleLandlord && property.LandlordID != rd.UserID {
			return aggregates.ForbiddenError("landlord does not own this property")
		}
		if in.TenantID == property.LandlordID {
			return aggregates.ValidationError("tenant and landlord must be different users")
		}

		ref := types.UnitRef{PropertyID: property.ID, UnitID: in.UnitID}
		overlap, err := ls.contractRepo.ExistsForTenantOnRef(dbc, in.TenantID, ref,
			[]string{types.ContractStatusPending, types.ContractStatusActive})
		if err != nil {
			return err
		}
		if overlap {
			return aggregates.ConflictError("tenant already has a contract on this unit")
		}

		now := time.Now().UTC()
		start := now
		if in.StartDate != nil {
			start = *in.StartDate
		}
		end := start.AddDate(defaultLeaseTermYears, 0, 0)
		if in.EndDate != nil {
			end = *in.EndDate
		}
		cycle := in.PaymentCycle
		if cycle == "" {
			cycle = "monthly"
		}

		contract = &types.Contract{
			ID:           uuid.New(),
			PropertyID:   property.ID,
			UnitID:       in.UnitID,
			TenantID:     in.TenantID,
			LandlordID:   property.LandlordID,
			StartDate:    start,
			EndDate:      end,
			RentAmount:   in.RentAmount,
			PaymentCycle: cycle,
			Status:       types.ContractStatusPending,
		}
		if _, err := ls.contractRepo.Create(dbc, contract); err != nil {
			return err
		}
		if status == types.ContractStatusActive {
			return ls.activateInTx(dbc, contract, types.ContractStatusPending, now)
		}
		return nil
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	category := notify.CategoryLeaseRequested
	message := "A lease contract was drawn up for you"
	if status == types.ContractStatusActive {
		category = notify.CategoryLeaseActivated
		message = "Your lease is now active"
	}
	ls.emit(ctx, contract, category, message, []uuid.UUID{contract.TenantID, contract.LandlordID}, false)
	return ls.Get(ctx, contract.ID)
}

func (ls *lifecycleService) Approve(ctx context.Context, contractID uuid.UUID) (*types.Contract, error) {
	const op = "lease.approve"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		contract, err = ls.contractRepo.GetByID(dbc, contractID)
		if err != nil {
			return err
		}
		if rd.Role != types.RoleAdmin && contract.LandlordID != rd.UserID {
			return aggregates.ForbiddenError("only the landlord or an admin approves a lease")
		}
		if err := aggregates.RequireStatusAllowed(contract.Status, types.ContractStatusPending); err != nil {
			return err
		}
		return ls.activateInTx(dbc, contract, types.ContractStatusPending, time.Now().UTC())
	})
	if txErr != nil {
		// The transaction rolled back: the contract keeps its prior status.
		return nil, aggregates.MapError(op, txErr)
	}

	ls.emit(ctx, contract, notify.CategoryLeaseActivated,
		"Your lease is now active",
		[]uuid.UUID{contract.TenantID, contract.LandlordID}, false)
	return ls.Get(ctx, contractID)
}

func (ls *lifecycleService) Reject(ctx context.Context, contractID uuid.UUID, reason string) (*types.Contract, error) {
	const op = "lease.reject"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		contract, err = ls.contractRepo.GetByID(dbc, contractID)
		if err != nil {
			return err
		}
		if rd.Role != types.RoleAdmin && contract.LandlordID != rd.UserID {
			return aggregates.ForbiddenError("only the landlord or an admin rejects a lease")
		}
		ok, err := ls.guard.UpdateByStatus(dbc, types.Contract{}.TableName(), contract.ID,
			[]string{types.ContractStatusPending},
			map[string]any{"status": types.ContractStatusRejected, "updated_at": time.Now()})
		if err != nil {
			return err
		}
		if err := aggregates.RequireCASSuccess(ok, "only pending leases can be rejected"); err != nil {
			return err
		}
		return ls.releaseRef(dbc, contract)
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	message := "Your lease request was declined"
	if reason != "" {
		message = fmt.Sprintf("Your lease request was declined: %s", reason)
	}
	ls.emit(ctx, contract, notify.CategoryLeaseRejected, message, []uuid.UUID{contract.TenantID}, false)
	return ls.Get(ctx, contractID)
}

func (ls *lifecycleService) Sign(ctx context.Context, contractID uuid.UUID) (*types.Contract, error) {
	const op = "lease.sign"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var contract *types.Contract
	activated := false
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		contract, err = ls.contractRepo.GetByID(dbc, contractID)
		if err != nil {
			return err
		}
		if !contract.IsParty(rd.UserID) {
			return aggregates.ForbiddenError("only the tenant or the landlord signs this contract")
		}
		if err := aggregates.RequireStatusAllowed(contract.Status, types.ContractStatusPending); err != nil {
			return err
		}

		now := time.Now().UTC()
		var field string
		switch rd.UserID {
		case contract.TenantID:
			if contract.TenantSignedAt != nil {
				return aggregates.ConflictError("tenant already signed this contract")
			}
			field = "tenant_signed_at"
			contract.TenantSignedAt = &now
		default:
			if contract.LandlordSignedAt != nil {
				return aggregates.ConflictError("landlord already signed this contract")
			}
			field = "landlord_signed_at"
			contract.LandlordSignedAt = &now
		}
		if err := ls.contractRepo.UpdateFields(dbc, contract.ID, map[string]interface{}{field: now}); err != nil {
			return err
		}

		if contract.SignedByBoth() {
			activated = true
			return ls.activateInTx(dbc, contract, types.ContractStatusPending, now)
		}
		return nil
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	counterparty := contract.Counterparty(rd.UserID)
	ls.emit(ctx, contract, notify.CategoryLeaseSigned,
		"The contract was signed by the other party",
		[]uuid.UUID{counterparty}, false)
	if activated {
		ls.emit(ctx, contract, notify.CategoryLeaseActivated,
			"Your lease is now active",
			[]uuid.UUID{contract.TenantID, contract.LandlordID}, false)
	}
	return ls.Get(ctx, contractID)
}

func (ls *lifecycleService) Renew(ctx context.Context, contractID uuid.UUID, newStart, newEnd *time.Time) (*types.Contract, error) {
	const op = "lease.renew"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		contract, err = ls.contractRepo.GetByID(dbc, contractID)
		if err != nil {
			return err
		}
		if rd.Role != types.RoleAdmin && !contract.IsParty(rd.UserID) {
			return aggregates.ForbiddenError("caller is not a party to this contract")
		}
		if err := aggregates.RequireStatusAllowed(contract.Status,
			types.ContractStatusActive, types.ContractStatusExpiringSoon); err != nil {
			return err
		}

		start := contract.EndDate
		if newStart != nil {
			start = *newStart
		}
		end := start.AddDate(defaultLeaseTermYears, 0, 0)
		if newEnd != nil {
			end = *newEnd
		}
		if !end.After(start) {
			return aggregates.ValidationError("renewal end date must be after the start date")
		}

		now := time.Now().UTC()
		ok, err := ls.guard.UpdateByStatus(dbc, types.Contract{}.TableName(), contract.ID,
			[]string{types.ContractStatusActive, types.ContractStatusExpiringSoon},
			map[string]any{
				"status":             types.ContractStatusActive,
				"start_date":         start,
				"end_date":           end,
				"renewal_count":      gorm.Expr("renewal_count + 1"),
				"last_renewed_at":    now,
				"expiry_notice_days": 0,
				"updated_at":         now,
			})
		if err != nil {
			return err
		}
		if err := aggregates.RequireCASSuccess(ok, "contract left renewable status concurrently"); err != nil {
			return err
		}

		// The occupancy interval stays open across a renewal; reopen only if
		// an expiry sweep closed it in between.
		if err := ls.occupancy.EnsureOpen(dbc, contract, now); err != nil {
			return err
		}
		if _, err := ls.scaffold.EnsureInitialPayment(dbc, contract); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	ls.emit(ctx, contract, notify.CategoryLeaseRenewed,
		"The lease was renewed",
		transitionRecipients(contract, rd.UserID), false)
	return ls.Get(ctx, contractID)
}

func (ls *lifecycleService) RequestTermination(ctx context.Context, contractID uuid.UUID, reason string) (*types.Contract, error) {
	const op = "lease.terminate"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var contract *types.Contract
	txErr := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		contract, err = ls.contractRepo.GetByID(dbc, contractID)
		if err != nil {
			return err
		}
		if rd.Role != types.RoleAdmin && !contract.IsParty(rd.UserID) {
			return aggregates.ForbiddenError("caller is not a party to this contract")
		}

		now := time.Now().UTC()
		// Unilateral by design of the source system: either party terminates
		// immediately, with attribution recorded on the contract.
		ok, err := ls.guard.UpdateByStatus(dbc, types.Contract{}.TableName(), contract.ID,
			[]string{types.ContractStatusPending, types.ContractStatusActive, types.ContractStatusExpiringSoon},
			map[string]any{
				"status":             types.ContractStatusTerminated,
				"terminated_by":      rd.UserID,
				"termination_reason": reason,
				"terminated_at":      now,
				"updated_at":         now,
			})
		if err != nil {
			return err
		}
		if err := aggregates.RequireCASSuccess(ok, "contract is already in a terminal status"); err != nil {
			return err
		}

		if err := ls.occupancy.CloseInterval(dbc, contract.Ref(), now); err != nil {
			return err
		}
		return ls.releaseRef(dbc, contract)
	})
	if txErr != nil {
		return nil, aggregates.MapError(op, txErr)
	}

	message := "The lease was terminated"
	if reason != "" {
		message = fmt.Sprintf("The lease was terminated: %s", reason)
	}
	ls.emit(ctx, contract, notify.CategoryLeaseTerminated, message,
		transitionRecipients(contract, rd.UserID), false)
	return ls.Get(ctx, contractID)
}

func (ls *lifecycleService) Get(ctx context.Context, contractID uuid.UUID) (*types.Contract, error) {
	const op = "lease.get"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	contract, err := ls.contractRepo.GetByID(dbctx.Context{Ctx: ctx}, contractID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rd.Role != types.RoleAdmin && !contract.IsParty(rd.UserID) {
		return nil, aggregates.MapError(op, aggregates.ForbiddenError("caller is not a party to this contract"))
	}
	return contract, nil
}

func (ls *lifecycleService) List(ctx context.Context) ([]*types.Contract, error) {
	const op = "lease.list"
	rd, err := caller(ctx)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if rd.Role == types.RoleAdmin {
		rows, err := ls.contractRepo.ListAll(dbc)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		return rows, nil
	}
	rows, err := ls.contractRepo.ListByParty(dbc, rd.UserID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (ls *lifecycleService) ExpireSweep(ctx context.Context) (int, error) {
	const op = "lease.expire_sweep"
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, expiryHorizonDays)

	candidates, err := ls.contractRepo.ListEndingWithin(dbctx.Context{Ctx: ctx},
		[]string{types.ContractStatusActive, types.ContractStatusExpiringSoon}, cutoff)
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}

	transitioned := 0
	for _, contract := range candidates {
		if !contract.EndDate.After(now) {
			if err := ls.expireOne(ctx, contract, now); err != nil {
				ls.log.Warn("Failed to expire contract", "contract_id", contract.ID, "error", err)
				continue
			}
			transitioned++
			continue
		}

		threshold := expiryHorizonDays
		if !contract.EndDate.After(now.AddDate(0, 0, expiryFinalNoticeDays)) {
			threshold = expiryFinalNoticeDays
		}
		claimed, err := ls.contractRepo.MarkExpiringSoon(dbctx.Context{Ctx: ctx}, contract.ID, threshold)
		if err != nil {
			ls.log.Warn("Failed to mark contract expiring", "contract_id", contract.ID, "error", err)
			continue
		}
		if !claimed {
			// Another sweep (or a previous run) already notified this
			// threshold crossing.
			continue
		}
		transitioned++
		ls.emit(ctx, contract, notify.CategoryLeaseExpiring,
			fmt.Sprintf("The lease ends within %d days", threshold),
			[]uuid.UUID{contract.TenantID, contract.LandlordID}, false)
	}
	return transitioned, nil
}

func (ls *lifecycleService) expireOne(ctx context.Context, contract *types.Contract, now time.Time) error {
	err := ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		ok, err := ls.guard.UpdateByStatus(dbc, types.Contract{}.TableName(), contract.ID,
			[]string{types.ContractStatusActive, types.ContractStatusExpiringSoon},
			map[string]any{"status": types.ContractStatusExpired, "updated_at": now})
		if err != nil {
			return err
		}
		if !ok {
			// Terminated (or renewed) concurrently; nothing to expire.
			return nil
		}
		if err := ls.occupancy.CloseInterval(dbc, contract.Ref(), now); err != nil {
			return err
		}
		return ls.releaseRef(dbc, contract)
	})
	if err != nil {
		return err
	}
	ls.emit(ctx, contract, notify.CategoryLeaseExpired,
		"The lease has ended",
		[]uuid.UUID{contract.TenantID, contract.LandlordID}, false)
	return nil
}

// activateInTx runs the atomic activation core: exclusivity check-and-set,
// occupancy interval, payment scaffold and catalog status, all inside the
// caller's transaction so any failure reverts the contract to priorStatus.
func (ls *lifecycleService) activateInTx(dbc dbctx.Context, contract *types.Contract, priorStatus string, now time.Time) error {
	if contract.RentAmount <= 0 {
		return aggregates.ConflictError("contract has no economic terms")
	}

	ref := contract.Ref()
	active, err := ls.contractRepo.CountActiveOnRef(dbc, ref, contract.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return aggregates.ConflictError("unit already has an active contract")
	}

	ok, err := ls.guard.UpdateByStatus(dbc, types.Contract{}.TableName(), contract.ID,
		[]string{priorStatus},
		map[string]any{"status": types.ContractStatusActive, "expiry_notice_days": 0, "updated_at": now})
	if err != nil {
		return err
	}
	if err := aggregates.RequireCASSuccess(ok, "contract changed status concurrently"); err != nil {
		return err
	}
	contract.Status = types.ContractStatusActive

	if err := ls.occupancy.EnsureOpen(dbc, contract, now); err != nil {
		return err
	}
	if _, err := ls.scaffold.EnsureInitialPayment(dbc, contract); err != nil {
		return err
	}

	if ref.UnitID != nil {
		return ls.catalogRepo.SetUnitStatus(dbc, *ref.UnitID, types.UnitStatusOccupied)
	}
	return ls.catalogRepo.SetPropertyStatus(dbc, ref.PropertyID, types.PropertyStatusRented)
}

// releaseRef returns the unit/property to the open market.
func (ls *lifecycleService) releaseRef(dbc dbctx.Context, contract *types.Contract) error {
	if contract.UnitID != nil {
		return ls.catalogRepo.SetUnitStatus(dbc, *contract.UnitID, types.UnitStatusVacant)
	}
	return ls.catalogRepo.SetPropertyStatus(dbc, contract.PropertyID, types.PropertyStatusAvailable)
}

func (ls *lifecycleService) loadRef(dbc dbctx.Context, propertyID uuid.UUID, unitID *uuid.UUID) (*types.Property, *types.Unit, error) {
	if unitID != nil && *unitID != uuid.Nil {
		unit, err := ls.catalogRepo.GetUnit(dbc, *unitID)
		if err != nil {
			return nil, nil, err
		}
		property, err := ls.catalogRepo.GetProperty(dbc, unit.PropertyID)
		if err != nil {
			return nil, nil, err
		}
		return property, unit, nil
	}
	if propertyID == uuid.Nil {
		return nil, nil, aggregates.ValidationError("propertyId or unitId is required")
	}
	property, err := ls.catalogRepo.GetProperty(dbc, propertyID)
	if err != nil {
		return nil, nil, err
	}
	return property, nil, nil
}

// emit hands a transition event to the fan-out dispatcher. Fan-out failures
// are logged, never propagated: the transition is already committed.
func (ls *lifecycleService) emit(ctx context.Context, contract *types.Contract, category, message string, recipients []uuid.UUID, allAdmins bool) {
	if ls.dispatcher == nil || contract == nil {
		return
	}
	var actorID *uuid.UUID
	if rd := requestdata.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		id := rd.UserID
		actorID = &id
	}
	entityID := contract.ID
	ev := events.Event{
		Category:   category,
		Message:    message,
		ActorID:    actorID,
		EntityType: contractEntityType,
		EntityID:   &entityID,
		DeepLink:   fmt.Sprintf("/contracts/%s", contract.ID),
		OccurredAt: time.Now().UTC(),
		Recipients: recipients,
		AllAdmins:  allAdmins,
	}
	if err := ls.dispatcher.Fanout(ctx, ev); err != nil {
		ls.log.Warn("Notification fan-out failed", "contract_id", contract.ID, "category", category, "error", err)
	}
}

// transitionRecipients picks who hears about a transition: the counterparty
// when a party acted, both parties when an admin acted on their behalf.
func transitionRecipients(contract *types.Contract, actorID uuid.UUID) []uuid.UUID {
	if contract.IsParty(actorID) {
		return []uuid.UUID{contract.Counterparty(actorID)}
	}
	return []uuid.UUID{contract.TenantID, contract.LandlordID}
}

func caller(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, aggregates.ForbiddenError("caller identity missing")
	}
	return rd, nil
}
