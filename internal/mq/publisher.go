// Package mq publishes ticket lifecycle events to RabbitMQ. Publishing is
// best-effort: failures are logged and returned, but callers treat them as
// non-fatal so a broker outage never blocks a purchase.
package mq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ticketEventsQueue = "ticket.events"

const (
	EventTicketIssued = "ticket.issued"
	EventTicketUsed   = "ticket.used"
)

type TicketEvent struct {
	Type         string    `json:"type"`
	TicketID     uint      `json:"ticket_id"`
	UserID       uint      `json:"user_id"`
	EventID      uint      `json:"event_id"`
	TicketTypeID uint      `json:"ticket_type_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher struct {
	url string
}

// NewPublisher returns nil when url is empty; a nil *Publisher is a valid
// no-op receiver.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}

	return &Publisher{url: url}
}

// Publish sends the event to the ticket events queue. Messages are durable;
// the queue declaration is idempotent.
func (p *Publisher) Publish(ctx context.Context, event TicketEvent) error {
	if p == nil {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		zap.L().Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		zap.L().Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err = ch.QueueDeclare(ticketEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",
		ticketEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		zap.L().Warn("rabbitmq publish failed", zap.Error(err))
		return err
	}

	return nil
}
