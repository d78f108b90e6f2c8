package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"chat-notifier/internal/events"
	"chat-notifier/internal/observability"
)

// triggerRoutingKey matches every trigger event published by the platform bridge.
const triggerRoutingKey = "trigger.#"

// TriggerHandler processes one trigger event. It must not return control
// before its side effects are done; the delivery is acked right after.
type TriggerHandler interface {
	Dispatch(ctx context.Context, ev events.TriggerEvent)
}

// Consumer delivers trigger events from a durable queue to a TriggerHandler.
// Deliveries are always acked: reactors never fail the underlying trigger,
// and undecodable payloads must not redeliver forever.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer connects and declares the trigger exchange, queue and binding.
func NewConsumer(amqpURL, exchange, queue string) (*Consumer, error) {
	if amqpURL == "" {
		return nil, fmt.Errorf("empty amqp url")
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, triggerRoutingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	log.Printf("rabbitmq consumer connected queue=%s exchange=%s", queue, exchange)
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

// Start consumes deliveries until the context is cancelled or the channel
// closes. Blocking; run it in its own goroutine.
func (c *Consumer) Start(ctx context.Context, handler TriggerHandler) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}

			var ev events.TriggerEvent
			if err := json.Unmarshal(delivery.Body, &ev); err != nil {
				observability.IncAMQPConsumeError()
				log.Printf("rabbitmq: dropping undecodable trigger routing_key=%s: %v", delivery.RoutingKey, err)
				_ = delivery.Ack(false)
				continue
			}

			handler.Dispatch(ctx, ev)
			_ = delivery.Ack(false)
		}
	}
}

// Close tears down the channel and connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
