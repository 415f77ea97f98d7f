package services

import (
	"context"
	"testing"

	"github.com/havenlane/leasehold-backend/internal/data/repos/testutil"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
	"github.com/havenlane/leasehold-backend/internal/platform/dbctx"
)

func TestEnsureInitialPaymentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	contract := testutil.SeedContract(t, ctx, f.tx, tenant.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 1250)

	dbc := dbctx.Context{Ctx: ctx}
	created, err := f.payments.EnsureInitialPayment(dbc, contract)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if created == nil {
		t.Fatal("expected a scaffold payment on first call")
	}
	if created.Amount != 1250 || !created.AutoCreated || created.Status != types.PaymentStatusPending {
		t.Fatalf("scaffold payment = %+v", created)
	}

	again, err := f.payments.EnsureInitialPayment(dbc, contract)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if again != nil {
		t.Fatal("second call must be a no-op")
	}
	if n := f.paymentCount(t, contract.ID); n != 1 {
		t.Fatalf("payment count = %d, want 1", n)
	}
}

func TestEnsureInitialPaymentRejectsZeroRent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	contract := testutil.SeedContract(t, ctx, f.tx, tenant.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 0)

	_, err := f.payments.EnsureInitialPayment(dbctx.Context{Ctx: ctx}, contract)
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
	if n := f.paymentCount(t, contract.ID); n != 0 {
		t.Fatalf("payment count = %d, want 0", n)
	}
}

func TestMarkPaidOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	contract := testutil.SeedContract(t, ctx, f.tx, tenant.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 1000)

	created, err := f.payments.EnsureInitialPayment(dbctx.Context{Ctx: ctx}, contract)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	paid, err := f.payments.MarkPaid(asUser(landlord), created.ID, "bank_transfer")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != types.PaymentStatusPaid || paid.Method != "bank_transfer" {
		t.Fatalf("payment = %+v", paid)
	}

	if _, err := f.payments.MarkPaid(asUser(landlord), created.ID, "cash"); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("double pay error = %v, want conflict", err)
	}
}

func TestPaymentAccessIsPartyScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenant := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	landlord := testutil.SeedUser(t, ctx, f.tx, types.RoleLandlord)
	stranger := testutil.SeedUser(t, ctx, f.tx, types.RoleTenant)
	property := testutil.SeedProperty(t, ctx, f.tx, landlord.ID, types.PropertyStatusAvailable)
	contract := testutil.SeedContract(t, ctx, f.tx, tenant.ID, landlord.ID, property.ID, nil, types.ContractStatusActive, 900)

	created, err := f.payments.EnsureInitialPayment(dbctx.Context{Ctx: ctx}, contract)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if _, err := f.payments.ListByContract(asUser(stranger), contract.ID); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("stranger list error = %v, want forbidden", err)
	}
	rows, err := f.payments.ListByContract(asUser(tenant), contract.ID)
	if err != nil {
		t.Fatalf("tenant list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("payments = %d, want 1", len(rows))
	}

	// Settling is a landlord/admin capability; the tenant only reads.
	if _, err := f.payments.MarkPaid(asUser(tenant), created.ID, "cash"); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("tenant settle error = %v, want forbidden", err)
	}
	if _, err := f.payments.MarkPaid(asUser(stranger), created.ID, "cash"); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("stranger settle error = %v, want forbidden", err)
	}
	if got := f.reloadPayment(t, created.ID); got.Status != types.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", got.Status)
	}

	if _, err := f.payments.MarkPaid(asUser(landlord), created.ID, "cash"); err != nil {
		t.Fatalf("landlord settle: %v", err)
	}
}
