package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/havenlane/leasehold-backend/internal/events"
	"github.com/havenlane/leasehold-backend/internal/platform/logger"
)

// EventPublisher mirrors lifecycle events to a durable topic exchange so
// external consumers (reporting, CRM sync) can follow lease transitions.
type EventPublisher struct {
	log      *logger.Logger
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	key      string
}

func NewEventPublisher(log *logger.Logger, url, exchange, routingKey string) (*EventPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("rabbitmq url required")
	}
	if exchange == "" {
		exchange = "lease.events"
	}
	if routingKey == "" {
		routingKey = "lease.transition"
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &EventPublisher{
		log:      log.With("client", "RabbitEventPublisher"),
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		key:      routingKey,
	}, nil
}

var _ events.Publisher = (*EventPublisher)(nil)

func (p *EventPublisher) Publish(ctx context.Context, ev events.Event) error {
	if p == nil || p.ch == nil {
		return fmt.Errorf("rabbitmq publisher not initialized")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(publishCtx, p.exchange, p.key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

func (p *EventPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
