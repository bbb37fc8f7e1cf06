package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySubscribeAndDeliver(t *testing.T) {
	rdb := testRedis(t)
	reg := NewRegistry(rdb, nil)
	n := NewNotifier(rdb)
	ctx := context.Background()

	var mu sync.Mutex
	var events []Event
	require.NoError(t, reg.Subscribe(ctx, FeedTrades, func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.PublishResource(ctx, FeedTrades, Event{Resource: FeedTrades, Action: ActionInsert}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1 && events[0].Action == ActionInsert
	}, testEventuallyTimeout, testPollInterval)

	reg.UnsubscribeAll()
}

func TestRegistryUnsubscribeStopsDelivery(t *testing.T) {
	rdb := testRedis(t)
	reg := NewRegistry(rdb, nil)
	n := NewNotifier(rdb)
	ctx := context.Background()

	var mu sync.Mutex
	var count int
	require.NoError(t, reg.Subscribe(ctx, FeedBarterTrades, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	reg.Unsubscribe(FeedBarterTrades)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.PublishResource(ctx, FeedBarterTrades, Event{Resource: FeedBarterTrades, Action: ActionInsert}))

	assert.Never(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0
	}, 20*testPollInterval, testPollInterval)
}

func TestRegistryUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRedis(t), nil)

	// Names that were never subscribed are no-ops, repeatedly.
	reg.Unsubscribe("never-subscribed")
	reg.Unsubscribe("never-subscribed")
	reg.UnsubscribeAll()
	reg.UnsubscribeAll()
	assert.Empty(t, reg.Active())
}

func TestRegistryResubscribeReplacesHandler(t *testing.T) {
	rdb := testRedis(t)
	reg := NewRegistry(rdb, nil)
	n := NewNotifier(rdb)
	ctx := context.Background()

	var mu sync.Mutex
	var first, second int
	require.NoError(t, reg.Subscribe(ctx, FeedNotifications, func(Event) {
		mu.Lock()
		first++
		mu.Unlock()
	}))
	require.NoError(t, reg.Subscribe(ctx, FeedNotifications, func(Event) {
		mu.Lock()
		second++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.PublishResource(ctx, FeedNotifications, Event{Resource: FeedNotifications, Action: ActionInsert}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second >= 1
	}, testEventuallyTimeout, testPollInterval)

	mu.Lock()
	assert.Zero(t, first)
	mu.Unlock()

	assert.Equal(t, []string{FeedNotifications}, reg.Active())
	reg.UnsubscribeAll()
	assert.Empty(t, reg.Active())
}

func TestHubRegisterLimitsAndBroadcast(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.Broadcast(10, "hello")
	assert.Equal(t, []byte("hello"), <-clientA.Send)
	assert.Equal(t, []byte("hello"), <-clientB.Send)

	hub.UnregisterClient(clientA)
	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))
}

func TestHubPerUserConnectionLimit(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.Error(t, err)
}
