package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenlane/leasehold-backend/internal/requestdata"
)

// WindowCounter counts hits per key inside a fixed window. The Redis-backed
// implementation shares counts across instances; MemoryWindowStore is the
// single-process fallback.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Throttle rejects a caller once it exceeds limit requests per window. Keys
// on the authenticated user when present, the client IP otherwise. Counter
// failures fail open.
func Throttle(store WindowCounter, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || limit <= 0 {
			c.Next()
			return
		}
		key := c.ClientIP()
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			key = rd.UserID.String()
		}
		n, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			c.Next()
			return
		}
		if n > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "rate limit exceeded", "code": "rate_limited"},
			})
			return
		}
		c.Next()
	}
}

// MemoryWindowStore is a process-local WindowCounter.
type MemoryWindowStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	count   int64
	resetAt time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{buckets: map[string]*memoryBucket{}}
}

func (s *MemoryWindowStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &memoryBucket{resetAt: now.Add(window)}
		s.buckets[key] = b
	}
	b.count++
	return b.count, nil
}
