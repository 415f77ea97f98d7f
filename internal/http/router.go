package http

import (
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/havenlane/leasehold-backend/internal/http/handlers"
	httpMW "github.com/havenlane/leasehold-backend/internal/http/middleware"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware
	Throttle       httpMW.WindowCounter
	ThrottleLimit  int64
	ThrottleWindow time.Duration

	ContractHandler     *httpH.ContractHandler
	PaymentHandler      *httpH.PaymentHandler
	DepositHandler      *httpH.DepositHandler
	NotificationHandler *httpH.NotificationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.Throttle != nil {
			protected.Use(httpMW.Throttle(cfg.Throttle, cfg.ThrottleLimit, cfg.ThrottleWindow))
		}

		if cfg.ContractHandler != nil {
			protected.POST("/leases/request", cfg.ContractHandler.RequestLease)
			protected.POST("/contracts", cfg.ContractHandler.CreateContract)
			protected.GET("/contracts", cfg.ContractHandler.ListContracts)
			protected.GET("/contracts/:id", cfg.ContractHandler.GetContract)
			protected.POST("/contracts/:id/approve", cfg.ContractHandler.Approve)
			protected.POST("/contracts/:id/reject", cfg.ContractHandler.Reject)
			protected.POST("/contracts/:id/sign", cfg.ContractHandler.Sign)
			protected.POST("/contracts/:id/renew", cfg.ContractHandler.Renew)
			protected.POST("/contracts/:id/terminate", cfg.ContractHandler.Terminate)

			protected.GET("/occupancy", cfg.ContractHandler.CurrentOccupant)
			protected.GET("/occupancy/history", cfg.ContractHandler.OccupancyHistory)
		}

		if cfg.PaymentHandler != nil {
			protected.GET("/contracts/:id/payments", cfg.PaymentHandler.ListByContract)
			protected.POST("/payments/:id/pay", cfg.PaymentHandler.MarkPaid)
		}

		if cfg.DepositHandler != nil {
			protected.POST("/contracts/:id/deposit", cfg.DepositHandler.Open)
			protected.GET("/contracts/:id/deposit", cfg.DepositHandler.GetByContract)
			protected.POST("/deposits/:id/deduct", cfg.DepositHandler.Deduct)
			protected.POST("/deposits/:id/refund", cfg.DepositHandler.Refund)
		}

		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
			protected.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
		}
	}

	return r
}
