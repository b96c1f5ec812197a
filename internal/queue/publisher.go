package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names. Durable queues, declared idempotently on both ends.
const (
	TicketIssuedQueue    = "ticket.issued"
	TicketCancelledQueue = "ticket.cancelled"
)

// Publisher emits domain events to RabbitMQ. Errors are logged and
// returned so callers can ignore broker failures without interrupting
// the main request flow; a lost event never rolls back a sale.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishTicketIssued publishes a TicketIssuedEvent to the
// ticket.issued queue.
func (p *Publisher) PublishTicketIssued(ctx context.Context, ev TicketIssuedEvent) error {
	return p.publish(ctx, TicketIssuedQueue, ev)
}

// PublishTicketCancelled publishes a TicketCancelledEvent to the
// ticket.cancelled queue.
func (p *Publisher) PublishTicketCancelled(ctx context.Context, ev TicketCancelledEvent) error {
	return p.publish(ctx, TicketCancelledQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
