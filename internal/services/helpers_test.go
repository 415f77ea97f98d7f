package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	billingrepos "github.com/havenlane/leasehold-backend/internal/data/repos/billing"
	catalogrepos "github.com/havenlane/leasehold-backend/internal/data/repos/catalog"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	"github.com/havenlane/leasehold-backend/internal/data/repos/testutil"
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/requestdata"
)

// recordingDispatcher captures fan-out events in memory so lifecycle tests
// can assert on notification intent without Redis or RabbitMQ.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (rd *recordingDispatcher) Fanout(_ context.Context, ev events.Event) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	rd.events = append(rd.events, ev)
	return nil
}

func (rd *recordingDispatcher) byCategory(category string) []events.Event {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	var out []events.Event
	for _, ev := range rd.events {
		if ev.Category == category {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	tx         *gorm.DB
	lifecycle  LifecycleService
	occupancy  OccupancyLedger
	payments   PaymentScaffold
	deposits   DepositLedger
	dispatcher *recordingDispatcher

	contractRepo  leaserepos.ContractRepo
	occupancyRepo leaserepos.OccupancyRepo
	catalogRepo   catalogrepos.CatalogRepo
	paymentRepo   billingrepos.PaymentRepo
	depositRepo   billingrepos.DepositRepo
}

// newFixture wires the full service stack against a rollback transaction.
// The services own their transactions; on a tx-backed gorm handle those
// become savepoints, so conflict rollbacks behave like production.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	contractRepo := leaserepos.NewContractRepo(tx, log)
	occupancyRepo := leaserepos.NewOccupancyRepo(tx, log)
	catalogRepo := catalogrepos.NewCatalogRepo(tx, log)
	paymentRepo := billingrepos.NewPaymentRepo(tx, log)
	depositRepo := billingrepos.NewDepositRepo(tx, log)

	dispatcher := &recordingDispatcher{}
	occupancy := NewOccupancyLedger(tx, log, occupancyRepo)
	payments := NewPaymentScaffold(tx, log, paymentRepo, contractRepo)
	lifecycle := NewLifecycleService(tx, log, contractRepo, catalogRepo, occupancy, payments, dispatcher)
	deposits := NewDepositLedger(tx, log, depositRepo, contractRepo, dispatcher)

	return &fixture{
		tx:            tx,
		lifecycle:     lifecycle,
		occupancy:     occupancy,
		payments:      payments,
		deposits:      deposits,
		dispatcher:    dispatcher,
		contractRepo:  contractRepo,
		occupancyRepo: occupancyRepo,
		catalogRepo:   catalogRepo,
		paymentRepo:   paymentRepo,
		depositRepo:   depositRepo,
	}
}

func asUser(u *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: u.ID,
		Role:   u.Role,
	})
}

func (f *fixture) reloadContract(t *testing.T, id uuid.UUID) *types.Contract {
	t.Helper()
	var c types.Contract
	if err := f.tx.Where("id = ?", id).First(&c).Error; err != nil {
		t.Fatalf("reload contract: %v", err)
	}
	return &c
}

func (f *fixture) openInterval(t *testing.T, ref types.UnitRef) *types.OccupancyHistory {
	t.Helper()
	var rows []*types.OccupancyHistory
	q := f.tx.Where("to_at IS NULL")
	if ref.UnitID != nil {
		q = q.Where("unit_id = ?", *ref.UnitID)
	} else {
		q = q.Where("property_id = ? AND unit_id IS NULL", ref.PropertyID)
	}
	if err := q.Find(&rows).Error; err != nil {
		t.Fatalf("query open intervals: %v", err)
	}
	if len(rows) > 1 {
		t.Fatalf("expected at most one open interval, got %d", len(rows))
	}
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (f *fixture) reloadPayment(t *testing.T, id uuid.UUID) *types.Payment {
	t.Helper()
	var p types.Payment
	if err := f.tx.Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	return &p
}

func (f *fixture) paymentCount(t *testing.T, contractID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := f.tx.Model(&types.Payment{}).Where("contract_id = ?", contractID).Count(&n).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}
