package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// WindowStore counts requests per key in fixed windows, shared across
// service instances. It replaces the old process-local counter map so a
// scaled-out deployment throttles consistently.
type WindowStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewWindowStore(log *logger.Logger, rdb *goredis.Client) *WindowStore {
	return &WindowStore{
		log: log.With("client", "RedisWindowStore"),
		rdb: rdb,
	}
}

func (s *WindowStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, "window:"+key)
	pipe.ExpireNX(ctx, "window:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
