package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher publishes order events to the fulfillment queue.
type Publisher struct {
	pool      *ChannelPool
	queueName string
	log       *slog.Logger
}

// NewPublisher creates a publisher over an existing channel pool.
func NewPublisher(pool *ChannelPool, queueName string, log *slog.Logger) *Publisher {
	return &Publisher{
		pool:      pool,
		queueName: queueName,
		log:       log,
	}
}

// PublishOrder publishes one order event as a persistent JSON message.
func (p *Publisher) PublishOrder(ctx context.Context, event OrderEvent) error {
	ch, err := p.pool.GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.ReturnChannel(ch)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.log.Info("published order event", "order_id", event.OrderID, "queue", p.queueName)
	return nil
}
