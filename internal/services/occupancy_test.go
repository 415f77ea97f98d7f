package services

import (
	"context"
	"testing"
	"time"

	"github.com/havenlane/leasehold-backend/internal/data/repos/testutil"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
)

func TestEnsureOpenIsExclusivePerScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	tenantA := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	tenantB := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	unit := testutil.SeedUnit(t, ctx, f.tx, property.ID, types.UnitStatusVacant)
	first := testutil.SeedContract(t, ctx, f.tx, tenantA.ID, landlord.ID, property.ID, &unit.ID, types.ContractStatusActive, 1000)
	second := testutil.SeedContract(t, ctx, f.tx, tenantB.ID, landlord.ID, property.ID, &unit.ID, types.ContractStatusPending, 1000)

	now := time.Now().UTC()
	if err := f.occupancy.EnsureOpen(dbc, first, now); err != nil {
		t.Fatalf("first open: %v", err)
	}
	// Same contract again: held already, no second row.
	if err := f.occupancy.EnsureOpen(dbc, first, now); err != nil {
		t.Fatalf("re-open same contract: %v", err)
	}
	if err := f.occupancy.EnsureOpen(dbc, second, now); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("other contract open error = %v, want conflict", err)
	}

	open, err := f.occupancy.CurrentOccupant(ctx, first.Ref())
	if err != nil {
		t.Fatalf("current occupant: %v", err)
	}
	if open == nil || open.ContractID != first.ID {
		t.Fatal("open interval must belong to the first contract")
	}
}

func TestCloseIntervalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	tenant := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	contract := testutil.SeedContract(t, ctx, f.tx, tenant.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 1000)

	now := time.Now().UTC()
	if err := f.occupancy.EnsureOpen(dbc, contract, now); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.occupancy.CloseInterval(dbc, contract.Ref(), now.Add(time.Hour)); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Closing again is a no-op: termination may race with expiry.
	if err := f.occupancy.CloseInterval(dbc, contract.Ref(), now.Add(2*time.Hour)); err != nil {
		t.Fatalf("re-close: %v", err)
	}

	history, err := f.occupancy.History(ctx, contract.Ref())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	if history[0].To == nil {
		t.Fatal("interval must be closed")
	}
}

func TestPropertyScopeIsDistinctFromUnitScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	tenantA := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	tenantB := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	unit := testutil.SeedUnit(t, ctx, f.tx, property.ID, types.UnitStatusVacant)

	wholeProperty := testutil.SeedContract(t, ctx, f.tx, tenantA.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 1000)
	singleUnit := testutil.SeedContract(t, ctx, f.tx, tenantB.ID, landlord.ID, property.ID, &unit.ID, types.ContractStatusActive, 800)

	now := time.Now().UTC()
	if err := f.occupancy.EnsureOpen(dbc, wholeProperty, now); err != nil {
		t.Fatalf("property-scope open: %v", err)
	}
	// A unit-scoped interval on the same property is a different scope.
	if err := f.occupancy.EnsureOpen(dbc, singleUnit, now); err != nil {
		t.Fatalf("unit-scope open: %v", err)
	}
}
