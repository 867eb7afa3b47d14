package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBusPublishesBookingCompleted(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, DefaultChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	bus := NewBus(client, "")
	evt := BookingCompleted{
		BookingID:   "b1",
		PropertyID:  "prop-1",
		TenantID:    "tenant-1",
		OwnerID:     "owner-1",
		Reason:      ReasonAdvanceExhausted,
		MonthsUsed:  3,
		CompletedAt: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.BookingCompleted(ctx, evt))

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)
	require.Equal(t, DefaultChannel, msg.Channel)

	var env struct {
		Event      string           `json:"event"`
		Payload    BookingCompleted `json:"payload"`
		OccurredAt time.Time        `json:"occurred_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	require.Equal(t, EventBookingCompleted, env.Event)
	require.Equal(t, evt, env.Payload)
	require.False(t, env.OccurredAt.IsZero())
}

func TestBusCustomChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "tenant.signals")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	bus := NewBus(client, "tenant.signals")
	require.NoError(t, bus.Emit(ctx, "ping", map[string]string{"k": "v"}))

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)
	require.Contains(t, msg.Payload, `"event":"ping"`)
}
