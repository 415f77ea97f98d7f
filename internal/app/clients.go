package app

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/havenlane/leasehold-backend/internal/clients/rabbitmq"
	redisclients "github.com/havenlane/leasehold-backend/internal/clients/redis"
	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

type Clients struct {
	Redis       *goredis.Client
	PushBus     *redisclients.PushBus
	WindowStore *redisclients.WindowStore
	Export      events.Publisher
}

// wireClients connects the optional transports. Redis and RabbitMQ are both
// degradable: the engine runs on Postgres alone, with push/export/throttle
// features disabled.
func wireClients(log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")
	out := Clients{}

	rdb, err := redisclients.NewClient(log)
	if err != nil {
		log.Warn("Redis unavailable, live push and throttling disabled", "error", err)
	} else {
		out.Redis = rdb
		out.PushBus = redisclients.NewPushBus(log, rdb)
		out.WindowStore = redisclients.NewWindowStore(log, rdb)
	}

	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewEventPublisher(log, cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitRoutingKey)
		if err != nil {
			log.Warn("RabbitMQ unavailable, event export disabled", "error", err)
		} else {
			out.Export = pub
		}
	}
	return out
}
