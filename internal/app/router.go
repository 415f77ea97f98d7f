package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/havenlane/leasehold-backend/internal/http"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, mw Middleware) *gin.Engine {
	log.Info("Wiring router...")
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: mw.Auth,
		Throttle:       mw.Throttle,
		ThrottleLimit:  cfg.ThrottleLimit,
		ThrottleWindow: cfg.ThrottleWindow,

		ContractHandler:     handlers.Contract,
		PaymentHandler:      handlers.Payment,
		DepositHandler:      handlers.Deposit,
		NotificationHandler: handlers.Notification,
		HealthHandler:       handlers.Health,
	})
}
