package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"harbor/internal/events"
	"harbor/internal/observability"
)

// Delivery is the event-bus subscriber that owns the real-time transports.
// Business services publish domain events without importing this package;
// Delivery consumes them and pushes to Redis (for cross-instance fan-out)
// and the local hub. Failures are logged and swallowed — the persisted rows
// stay authoritative and delivery never blocks or fails the triggering
// operation.
type Delivery struct {
	notifier *Notifier
	hub      *Hub
}

// NewDelivery creates a Delivery consumer over the given transports. Either
// transport may be nil.
func NewDelivery(notifier *Notifier, hub *Hub) *Delivery {
	return &Delivery{notifier: notifier, hub: hub}
}

// Start subscribes the delivery consumer to the bus.
func (d *Delivery) Start(bus *events.Bus) {
	bus.Subscribe(d.handle)
}

func (d *Delivery) handle(e events.Event) {
	envelope := map[string]interface{}{
		"type":    e.Type,
		"payload": e.Payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		observability.Logger.Error("failed to marshal event",
			slog.String("event", e.Type),
			slog.String("error", err.Error()),
		)
		return
	}
	message := string(data)

	// Prefer Redis: the hub receives it back through its pattern
	// subscription, and so do all other instances. The hub is only written
	// directly when Redis is unavailable.
	ctx := context.Background()
	if e.RecipientID == 0 {
		if d.notifier != nil && d.notifier.Available() {
			if err := d.notifier.PublishBroadcast(ctx, message); err != nil {
				observability.DeliveriesTotal.WithLabelValues("publish_error").Inc()
				observability.Logger.Warn("broadcast publish failed",
					slog.String("event", e.Type),
					slog.String("error", err.Error()),
				)
				return
			}
		} else if d.hub != nil {
			d.hub.BroadcastAll(message)
		}
		observability.DeliveriesTotal.WithLabelValues("broadcast").Inc()
		return
	}

	if d.notifier != nil && d.notifier.Available() {
		if err := d.notifier.PublishUser(ctx, e.RecipientID, message); err != nil {
			observability.DeliveriesTotal.WithLabelValues("publish_error").Inc()
			observability.Logger.Warn("user publish failed",
				slog.String("event", e.Type),
				slog.Uint64("recipient_id", uint64(e.RecipientID)),
				slog.String("error", err.Error()),
			)
			return
		}
	} else if d.hub != nil {
		d.hub.Broadcast(e.RecipientID, message)
	}
	observability.DeliveriesTotal.WithLabelValues("user").Inc()
}
