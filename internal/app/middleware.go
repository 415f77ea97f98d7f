package app

import (
	httpMW "github.com/havenlane/leasehold-backend/internal/http/middleware"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type Middleware struct {
	Auth     *httpMW.AuthMiddleware
	Throttle httpMW.WindowCounter
}

func wireMiddleware(log *logger.Logger, cfg Config, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	var counter httpMW.WindowCounter
	if clients.WindowStore != nil {
		counter = clients.WindowStore
	} else {
		counter = httpMW.NewMemoryWindowStore()
	}
	return Middleware{
		Auth:     httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		Throttle: counter,
	}
}
