package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one domain transition emitted by the lifecycle engine. The fan-out
// dispatcher turns it into per-recipient notifications; an optional export
// publisher mirrors it to an external broker.
type Event struct {
	Category   string      `json:"category"`
	Message    string      `json:"message"`
	ActorID    *uuid.UUID  `json:"actor_id,omitempty"`
	EntityType string      `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID  `json:"entity_id,omitempty"`
	DeepLink   string      `json:"deep_link,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Recipients []uuid.UUID `json:"recipients,omitempty"`
	AllAdmins  bool        `json:"all_admins,omitempty"`
}

// Publisher exports domain events to an external consumer. Implementations
// must be best-effort from the engine's perspective: a publish failure never
// fails the transition that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}
