package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "canal fermé")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("aucun événement reçu")
		return Event{}
	}
}

func setupRedisBroker(t *testing.T) (*miniredis.Miniredis, *RedisBroker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisBroker(client, zaptest.NewLogger(t))
}

func exerciseBroker(t *testing.T, b Broker) {
	ctx := context.Background()

	chA, unsubA, err := b.Subscribe(ctx, "a")
	require.NoError(t, err)
	chB, unsubB, err := b.Subscribe(ctx, "b")
	require.NoError(t, err)
	defer unsubB()

	b.Publish(ctx, "a", Event{Type: "cart_updated", ItemCount: 2})
	b.Publish(ctx, "b", Event{Type: "cart_cleared"})

	assert.Equal(t, Event{Type: "cart_updated", ItemCount: 2}, receive(t, chA))
	assert.Equal(t, Event{Type: "cart_cleared"}, receive(t, chB))

	unsubA()
	unsubA()
	select {
	case _, ok := <-chA:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("canal jamais fermé")
	}
	b.Publish(ctx, "a", Event{Type: "cart_updated"})
}

func TestMemoryBroker(t *testing.T) {
	exerciseBroker(t, NewMemoryBroker())
}

func TestRedisBroker(t *testing.T) {
	_, b := setupRedisBroker(t)
	exerciseBroker(t, b)
}

func TestRedisBrokerSharesEventsAcrossInstances(t *testing.T) {
	mr, first := setupRedisBroker(t)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { other.Close() })
	second := NewRedisBroker(other, zaptest.NewLogger(t))
	ctx := context.Background()

	ch, unsub, err := second.Subscribe(ctx, "sid")
	require.NoError(t, err)
	defer unsub()

	first.Publish(ctx, "sid", Event{Type: "cart_updated", ItemCount: 5})
	assert.Equal(t, Event{Type: "cart_updated", ItemCount: 5}, receive(t, ch))
}

func TestRedisBrokerSkipsGarbage(t *testing.T) {
	mr, b := setupRedisBroker(t)
	ctx := context.Background()

	ch, unsub, err := b.Subscribe(ctx, "sid")
	require.NoError(t, err)
	defer unsub()

	mr.Publish(cartChannel("sid"), "{pas du json")
	b.Publish(ctx, "sid", Event{Type: "cart_cleared"})
	assert.Equal(t, Event{Type: "cart_cleared"}, receive(t, ch))
}

func TestRedisBrokerSubscribeFailsWhenServerIsDown(t *testing.T) {
	mr, b := setupRedisBroker(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := b.Subscribe(ctx, "sid")
	assert.Error(t, err)

	// la publication ne panique pas et ne bloque pas l'appelant
	b.Publish(ctx, "sid", Event{Type: "cart_updated"})
}

func TestMemoryBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()
	ch, unsub, err := b.Subscribe(ctx, "a")
	require.NoError(t, err)
	defer unsub()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish(ctx, "a", Event{Type: "cart_updated", ItemCount: i})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestCartMutationsArePublished(t *testing.T) {
	_, _, m := setup(t)
	ctx := context.Background()
	ch, unsub, err := m.broker.Subscribe(ctx, "sid")
	require.NoError(t, err)
	defer unsub()

	c, err := m.Get(ctx, "sid")
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, "1", 2))
	require.NoError(t, c.Clear(ctx))

	assert.Equal(t, Event{Type: "cart_updated", ItemCount: 2}, receive(t, ch))
	assert.Equal(t, Event{Type: "cart_cleared", ItemCount: 0}, receive(t, ch))
}

func TestCartMutationsReachRedisSubscribers(t *testing.T) {
	store, storage, _ := setup(t)
	_, b := setupRedisBroker(t)
	m := NewManager(storage, store, b, zaptest.NewLogger(t))
	ctx := context.Background()

	ch, unsub, err := b.Subscribe(ctx, "sid")
	require.NoError(t, err)
	defer unsub()

	c, err := m.Get(ctx, "sid")
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, "3", 1))
	assert.Equal(t, Event{Type: "cart_updated", ItemCount: 1}, receive(t, ch))
}
