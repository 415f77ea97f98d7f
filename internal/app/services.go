package app

import (
	"gorm.io/gorm"

	"github.com/havenlane/leasehold-backend/internal/platform/logger"
	"github.com/havenlane/leasehold-backend/internal/services"
)

type Services struct {
	Occupancy     services.OccupancyLedger
	Payments      services.PaymentScaffold
	Deposits      services.DepositLedger
	Notifications services.NotificationService
	Fanout        services.FanoutDispatcher
	Lifecycle     services.LifecycleService
	Sweeper       *services.ExpirySweeper
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	var push services.PushBus
	if clients.PushBus != nil {
		push = clients.PushBus
	}
	fanout := services.NewFanoutDispatcher(db, log, repos.Notification, repos.User, push, clients.Export)

	occupancy := services.NewOccupancyLedger(db, log, repos.Occupancy)
	payments := services.NewPaymentScaffold(db, log, repos.Payment, repos.Contract)
	lifecycle := services.NewLifecycleService(db, log, repos.Contract, repos.Catalog, occupancy, payments, fanout)
	deposits := services.NewDepositLedger(db, log, repos.Deposit, repos.Contract, fanout)
	notifications := services.NewNotificationService(db, log, repos.Notification)
	sweeper := services.NewExpirySweeper(log, lifecycle, cfg.SweepInterval)

	return Services{
		Occupancy:     occupancy,
		Payments:      payments,
		Deposits:      deposits,
		Notifications: notifications,
		Fanout:        fanout,
		Lifecycle:     lifecycle,
		Sweeper:       sweeper,
	}
}
