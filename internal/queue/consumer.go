package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartTicketConsumer connects to RabbitMQ, declares the ticket queues
// (durable), and starts consuming from both. Each message is appended
// to logs/ticket.log in a single-line format. The function runs a
// reconnect loop with exponential backoff; it keeps running across
// broker restarts and rejects malformed messages without requeueing so
// a poison message cannot wedge the consumer.
func StartTicketConsumer(url string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{TicketIssuedQueue, TicketCancelledQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	issued, err := ch.Consume(TicketIssuedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", TicketIssuedQueue, err)
	}
	cancelled, err := ch.Consume(TicketCancelledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", TicketCancelledQueue, err)
	}

	for {
		select {
		case d, ok := <-issued:
			if !ok {
				return errors.New("issued deliveries channel closed")
			}
			ack(d, handleIssued(d.Body))
		case d, ok := <-cancelled:
			if !ok {
				return errors.New("cancelled deliveries channel closed")
			}
			ack(d, handleCancelled(d.Body))
		}
	}
}

func ack(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("ticket-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func handleIssued(body []byte) error {
	var ev TicketIssuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Ticket issued | ticket_id=%d | showtime_id=%d | buyer_id=%d | seller_id=%d | movie=%q | room=%q | seat=%s | price=%d cents\n",
		ev.IssuedAt, ev.TicketID, ev.ShowtimeID, ev.BuyerID, ev.SellerID, ev.MovieTitle, ev.RoomName, ev.SeatLabel, ev.PriceCents)
	return appendTicketLog(line)
}

func handleCancelled(body []byte) error {
	var ev TicketCancelledEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Ticket cancelled | ticket_id=%d | showtime_id=%d | buyer_id=%d | cancelled_by=%d | seat=%s | reason=%q\n",
		ev.CancelledAt, ev.TicketID, ev.ShowtimeID, ev.BuyerID, ev.CancelledBy, ev.SeatLabel, ev.Reason)
	return appendTicketLog(line)
}

func appendTicketLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "ticket.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
