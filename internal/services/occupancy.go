package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/data/aggregates"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// OccupancyLedger is the canonical source of truth for "is this unit leased".
// Contract.Status is a projection kept in lockstep by the lifecycle engine;
// nothing else writes occupancy rows.
type OccupancyLedger interface {
	// OpenInterval starts a new occupancy interval. Conflict when the scope
	// already has an open interval.
	OpenInterval(dbc dbctx.Context, ref types.UnitRef, tenantID, contractID uuid.UUID, from time.Time) (*types.OccupancyHistory, error)
	// EnsureOpen opens the interval for the contract unless the contract
	// already holds it. An interval held by another contract is a conflict.
	EnsureOpen(dbc dbctx.Context, contract *types.Contract, from time.Time) error
	// CloseInterval stamps the open interval for the scope. Closing when none
	// is open is a no-op success: termination may race with expiry.
	CloseInterval(dbc dbctx.Context, ref types.UnitRef, to time.Time) error
	// CurrentOccupant returns the open interval for the scope, or nil.
	CurrentOccupant(ctx context.Context, ref types.UnitRef) (*types.OccupancyHistory, error)
	History(ctx context.Context, ref types.UnitRef) ([]*types.OccupancyHistory, error)
}

type occupancyLedger struct {
	db            *gorm.DB
	log           *logger.Logger
	occupancyRepo leaserepos.OccupancyRepo
}

func NewOccupancyLedger(db *gorm.DB, log *logger.Logger, occupancyRepo leaserepos.OccupancyRepo) OccupancyLedger {
	return &occupancyLedger{
		db:            db,
		log:           log.With("service", "OccupancyLedger"),
		occupancyRepo: occupancyRepo,
	}
}

func (ol *occupancyLedger) OpenInterval(dbc dbctx.Context, ref types.UnitRef, tenantID, contractID uuid.UUID, from time.Time) (*types.OccupancyHistory, error) {
	const op = "occupancy.open"
	open, err := ol.occupancyRepo.GetOpenByRef(dbc, ref)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if open != nil {
		return nil, aggregates.MapError(op, aggregates.ConflictError("unit already has an open occupancy interval"))
	}
	row := &types.OccupancyHistory{
		ID:         uuid.New(),
		PropertyID: ref.PropertyID,
		UnitID:     ref.UnitID,
		TenantID:   tenantID,
		ContractID: contractID,
		From:       from,
	}
	// The partial unique index on open intervals backstops the read above
	// when two activations race; the loser surfaces as a conflict here.
	created, err := ol.occupancyRepo.Create(dbc, row)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return created, nil
}

func (ol *occupancyLedger) EnsureOpen(dbc dbctx.Context, contract *types.Contract, from time.Time) error {
	const op = "occupancy.ensure_open"
	ref := contract.Ref()
	open, err := ol.occupancyRepo.GetOpenByRef(dbc, ref)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if open != nil {
		if open.ContractID == contract.ID {
			return nil
		}
		return aggregates.MapError(op, aggregates.ConflictError("unit already has an open occupancy interval"))
	}
	row := &types.OccupancyHistory{
		ID:         uuid.New(),
		PropertyID: ref.PropertyID,
		UnitID:     ref.UnitID,
		TenantID:   contract.TenantID,
		ContractID: contract.ID,
		From:       from,
	}
	if _, err := ol.occupancyRepo.Create(dbc, row); err != nil {
		return aggregates.MapError(op, err)
	}
	return nil
}

func (ol *occupancyLedger) CloseInterval(dbc dbctx.Context, ref types.UnitRef, to time.Time) error {
	if _, err := ol.occupancyRepo.CloseOpenByRef(dbc, ref, to); err != nil {
		return aggregates.MapError("occupancy.close", err)
	}
	return nil
}

func (ol *occupancyLedger) CurrentOccupant(ctx context.Context, ref types.UnitRef) (*types.OccupancyHistory, error) {
	open, err := ol.occupancyRepo.GetOpenByRef(dbctx.Context{Ctx: ctx}, ref)
	if err != nil {
		return nil, aggregates.MapError("occupancy.current", err)
	}
	return open, nil
}

func (ol *occupancyLedger) History(ctx context.Context, ref types.UnitRef) ([]*types.OccupancyHistory, error) {
	rows, err := ol.occupancyRepo.ListByRef(dbctx.Context{Ctx: ctx}, ref)
	if err != nil {
		return nil, aggregates.MapError("occupancy.history", err)
	}
	return rows, nil
}
