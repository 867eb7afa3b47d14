// Package events publishes UI-refresh signals over redis pub/sub. The mobile
// clients keep a subscription open and reload affected screens on receipt.
// Delivery is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel UI clients subscribe to.
const DefaultChannel = "hanapbahay.events"

// EventBookingCompleted signals a booking reached the completed state.
const EventBookingCompleted = "booking.completed"

// Completion reasons carried on booking.completed events.
const (
	ReasonAdvanceExhausted     = "advance_deposit_exhausted"
	ReasonTenantEndedImmediate = "tenant_ended_rental_immediate"
)

// BookingCompleted is the payload of EventBookingCompleted.
type BookingCompleted struct {
	BookingID   string    `json:"booking_id"`
	PropertyID  string    `json:"property_id"`
	TenantID    string    `json:"tenant_id"`
	OwnerID     string    `json:"owner_id"`
	Reason      string    `json:"reason"`
	MonthsUsed  int       `json:"months_used"`
	CompletedAt time.Time `json:"completed_at"`
}

type envelope struct {
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Bus publishes events to a redis channel.
type Bus struct {
	client  *redis.Client
	channel string
}

// NewBus builds a Bus. An empty channel falls back to DefaultChannel.
func NewBus(client *redis.Client, channel string) *Bus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{client: client, channel: channel}
}

// Emit publishes a named event with an arbitrary JSON payload.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	data, err := json.Marshal(envelope{Event: name, Payload: raw, OccurredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", name, err)
	}
	return nil
}

// BookingCompleted publishes an EventBookingCompleted event.
func (b *Bus) BookingCompleted(ctx context.Context, evt BookingCompleted) error {
	return b.Emit(ctx, EventBookingCompleted, evt)
}
