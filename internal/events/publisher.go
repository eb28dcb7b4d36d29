package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
)

// PackageExtracted announces a stored extraction result to downstream
// classifiers.
type PackageExtracted struct {
	ID          string    `json:"id"`
	Digest      string    `json:"digest"`
	Source      string    `json:"source"`
	FileCount   int       `json:"fileCount"`
	Modalities  []string  `json:"modalities"`
	BodyParts   []string  `json:"bodyParts"`
	StudyDate   string    `json:"studyDate,omitempty"`
	Summary     string    `json:"summary"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Publisher delivers events; implementations must be safe for concurrent use
type Publisher interface {
	Publish(ctx context.Context, evt PackageExtracted) error
	Close() error
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(context.Context, PackageExtracted) error { return nil }
func (Nop) Close() error { return nil }

// RabbitPublisher publishes persistent JSON messages to a durable queue and
// waits for the broker to confirm each one.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	queue    string
	confirms chan amqp091.Confirmation

	mu sync.Mutex
}

// NewRabbitPublisher dials url and declares queue
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	return &RabbitPublisher{
		conn:     conn,
		ch:       ch,
		queue:    queue,
		confirms: ch.NotifyPublish(make(chan amqp091.Confirmation, 1)),
	}, nil
}

// Message encodes an event as an AMQP publishing
func Message(evt PackageExtracted) (amqp091.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("encoding event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    evt.ID,
		Timestamp:    evt.ExtractedAt,
		Type:         "package.extracted",
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	}, nil
}

// Publish sends evt and blocks until the broker acks it or ctx ends
func (p *RabbitPublisher) Publish(ctx context.Context, evt PackageExtracted) error {
	msg, err := Message(evt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.queue, err)
	}
	select {
	case c, ok := <-p.confirms:
		if !ok {
			return errors.New("channel closed before confirm")
		}
		if !c.Ack {
			return fmt.Errorf("broker nacked message %s", evt.ID)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for confirm: %w", ctx.Err())
	}
}

func (p *RabbitPublisher) Close() error {
	return p.conn.Close()
}
