package app

import (
	httpH "github.com/havenlane/leasehold-backend/internal/http/handlers"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type Handlers struct {
	Contract     *httpH.ContractHandler
	Payment      *httpH.PaymentHandler
	Deposit      *httpH.DepositHandler
	Notification *httpH.NotificationHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Contract:     httpH.NewContractHandler(services.Lifecycle, services.Occupancy),
		Payment:      httpH.NewPaymentHandler(services.Payments),
		Deposit:      httpH.NewDepositHandler(services.Deposits),
		Notification: httpH.NewNotificationHandler(services.Notifications),
		Health:       httpH.NewHealthHandler(),
	}
}
