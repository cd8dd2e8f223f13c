package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the queue the email worker consumes reservation events from.
const QueueName = "reservation-events"

// AMQPNotifier publishes reservation events to a RabbitMQ queue.
type AMQPNotifier struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPNotifier connects to the broker at url and declares the durable
// event queue.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: declare queue %s: %w", QueueName, err)
	}

	return &AMQPNotifier{conn: conn, channel: channel}, nil
}

func (n *AMQPNotifier) Publish(ctx context.Context, event Event) error {
	body, err := buildMessage(event)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.channel.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("notify: publish event: %w", err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return fmt.Errorf("notify: close channel: %w", err)
	}
	if err := n.conn.Close(); err != nil {
		return fmt.Errorf("notify: close connection: %w", err)
	}
	return nil
}

func buildMessage(event Event) ([]byte, error) {
	if event.ReservationID == "" {
		return nil, fmt.Errorf("notify: event missing reservation id")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("notify: encode event: %w", err)
	}
	return body, nil
}
