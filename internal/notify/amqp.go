// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes events to a RabbitMQ-compatible broker over a
// shared connection. Queues are declared durable on first use so messages
// survive broker restarts.
type AMQPNotifier struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

// NewAMQPNotifier dials the broker and returns a ready notifier.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	n := &AMQPNotifier{url: url, declared: make(map[string]bool)}
	if err := n.connect(); err != nil {
		return nil, err
	}
	slog.Info("amqp connected")
	return n, nil
}

func (n *AMQPNotifier) connect() error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	n.conn = conn
	n.ch = ch
	n.declared = make(map[string]bool)
	return nil
}

// Publish sends event as JSON to the named queue through the default
// exchange. A dead connection is redialed once before giving up.
func (n *AMQPNotifier) Publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil || n.conn.IsClosed() {
		if err := n.connect(); err != nil {
			return err
		}
	}

	if !n.declared[queue] {
		if _, err := n.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		n.declared[queue] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := n.ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		n.ch.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}
