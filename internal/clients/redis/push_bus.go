package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// PushBus delivers persisted notifications to live channels over Redis
// pub/sub. Delivery is best-effort; socket/email workers subscribe per
// recipient channel downstream.
type PushBus struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewPushBus(log *logger.Logger, rdb *goredis.Client) *PushBus {
	return &PushBus{
		log: log.With("client", "RedisPushBus"),
		rdb: rdb,
	}
}

func (b *PushBus) Push(ctx context.Context, recipientID uuid.UUID, n *types.Notification) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("push bus not initialized")
	}
	if recipientID == uuid.Nil || n == nil {
		return nil
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, "notify:"+recipientID.String(), raw).Err()
}
