package app

import (
	"gorm.io/gorm"

	authrepos "github.com/havenlane/leasehold-backend/internal/data/repos/auth"
	billingrepos "github.com/havenlane/leasehold-backend/internal/data/repos/billing"
	catalogrepos "github.com/havenlane/leasehold-backend/internal/data/repos/catalog"
	leaserepos "github.com/havenlane/leasehold-backend/internal/data/repos/lease"
	notifyrepos "github.com/havenlane/leasehold-backend/internal/data/repos/notify"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type Repos struct {
	User         authrepos.UserRepo
	Catalog      catalogrepos.CatalogRepo
	Contract     leaserepos.ContractRepo
	Occupancy    leaserepos.OccupancyRepo
	Payment      billingrepos.PaymentRepo
	Deposit      billingrepos.DepositRepo
	Notification notifyrepos.NotificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         authrepos.NewUserRepo(db, log),
		Catalog:      catalogrepos.NewCatalogRepo(db, log),
		Contract:     leaserepos.NewContractRepo(db, log),
		Occupancy:    leaserepos.NewOccupancyRepo(db, log),
		Payment:      billingrepos.NewPaymentRepo(db, log),
		Deposit:      billingrepos.NewDepositRepo(db, log),
		Notification: notifyrepos.NewNotificationRepo(db, log),
	}
}
