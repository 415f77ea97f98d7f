package app

import (
	"time"

	"github.com/havenlane/leasehold-backend/internal/platform/logger"
	"github.com/havenlane/leasehold-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string

	SweepInterval time.Duration

	ThrottleLimit  int64
	ThrottleWindow time.Duration

	RabbitURL        string
	RabbitExchange   string
	RabbitRoutingKey string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	sweepIntervalSeconds := utils.GetEnvAsInt("EXPIRY_SWEEP_INTERVAL", 3600, log)
	throttleLimit := utils.GetEnvAsInt("THROTTLE_LIMIT", 120, log)
	throttleWindowSeconds := utils.GetEnvAsInt("THROTTLE_WINDOW", 60, log)
	rabbitURL := utils.GetEnv("RABBITMQ_URL", "", log)
	rabbitExchange := utils.GetEnv("RABBITMQ_EXCHANGE", "lease.events", log)
	rabbitRoutingKey := utils.GetEnv("RABBITMQ_ROUTING_KEY", "lease.transition", log)
	return Config{
		JWTSecretKey:     jwtSecretKey,
		SweepInterval:    time.Duration(sweepIntervalSeconds) * time.Second,
		ThrottleLimit:    int64(throttleLimit),
		ThrottleWindow:   time.Duration(throttleWindowSeconds) * time.Second,
		RabbitURL:        rabbitURL,
		RabbitExchange:   rabbitExchange,
		RabbitRoutingKey: rabbitRoutingKey,
	}
}
