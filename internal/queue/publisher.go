package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends ledger events. Implementations must not fail the caller's
// business operation: errors are returned for logging only.
type Publisher interface {
	PublishMovementCreated(ctx context.Context, event MovementCreatedEvent) error
	PublishCashRegisterSwept(ctx context.Context, event CashRegisterSweptEvent) error
}

// AMQPPublisher dials the broker per message, declares the durable queue and
// publishes a persistent JSON message on the default exchange.
type AMQPPublisher struct {
	url    string
	logger *logrus.Logger
	dial   func(url string) (*amqp.Connection, error)
}

// NewPublisher returns an AMQP publisher, or a no-op one when url is empty.
func NewPublisher(url string, logger *logrus.Logger) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{url: url, logger: logger, dial: amqp.Dial}
}

func (p *AMQPPublisher) PublishMovementCreated(ctx context.Context, event MovementCreatedEvent) error {
	return p.publish(ctx, QueueMovementCreated, event)
}

func (p *AMQPPublisher) PublishCashRegisterSwept(ctx context.Context, event CashRegisterSweptEvent) error {
	return p.publish(ctx, QueueCashRegisterSwept, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	conn, err := p.dial(p.url)
	if err != nil {
		p.logger.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		p.logger.WithError(err).WithField("queue", queue).Warn("rabbitmq: queue declare failed")
		return err
	}

	msg := Message(body)
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.logger.WithError(err).WithField("queue", queue).Warn("rabbitmq: publish failed")
		return err
	}

	p.logger.WithFields(logrus.Fields{"queue": queue, "message_id": msg.MessageId}).Debug("ledger event published")
	return nil
}

// Message wraps a JSON body as a persistent publishing with a fresh message id.
func Message(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishMovementCreated(context.Context, MovementCreatedEvent) error { return nil }

func (NopPublisher) PublishCashRegisterSwept(context.Context, CashRegisterSweptEvent) error {
	return nil
}
