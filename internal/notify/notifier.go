// Package notify publishes reservation lifecycle events for downstream
// consumers such as the email worker.
package notify

import (
	"context"
	"log/slog"
)

// EventType names a reservation lifecycle transition.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is the payload delivered to notification consumers.
type Event struct {
	ReservationID string    `json:"reservationId"`
	EventType     EventType `json:"eventType"`
}

// Notifier delivers reservation events. Delivery is best effort: the
// scheduling flow never fails because a notification could not be sent.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// LogNotifier writes events to the log instead of a broker. It backs
// deployments that run without a message queue.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a notifier that records events via logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(ctx context.Context, event Event) error {
	n.logger.InfoContext(ctx, "reservation event",
		slog.String("reservation_id", event.ReservationID),
		slog.String("event_type", string(event.EventType)))
	return nil
}
