package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventsExchange is the topic exchange order events are published to; the
// routing key is the event topic (order.created, order.refunded).
const EventsExchange = "pos_events"

// AMQPPublisher publishes events to RabbitMQ with publisher confirms.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
	mu   sync.Mutex // confirms are matched in order, so publishes are serialized
	cb   *CircuitBreaker
}

func NewAMQPPublisher(url string, cb *CircuitBreaker) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: enable confirms: %w", err)
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig("amqp"))
	}
	return &AMQPPublisher{
		conn: conn,
		ch:   ch,
		acks: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		cb:   cb,
	}, nil
}

// Publish sends payload as JSON and waits for the broker ack.
func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("amqp: marshal %s: %w", topic, err)
	}
	return p.cb.Execute(func() error {
		p.mu.Lock()
		defer p.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := p.ch.PublishWithContext(ctx, EventsExchange, topic, false, false, amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Headers:      amqp.Table{"x-source": "retailpos"},
			Body:         body,
		}); err != nil {
			return err
		}

		select {
		case conf := <-p.acks:
			if conf.Ack {
				return nil
			}
			return errors.New("amqp: publish NACK from broker")
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Ping reports whether the connection is still usable.
func (p *AMQPPublisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("amqp: connection is closed")
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
