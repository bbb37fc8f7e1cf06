// Package notifications delivers realtime change events: Redis pub/sub on
// the publish side, websocket fan-out on the delivery side.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Resource feed names.
const (
	FeedFoodListings  = "food_listings"
	FeedTrades        = "trades"
	FeedBarterTrades  = "barter_trades"
	FeedNotifications = "notifications"
)

// Event actions.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Event is a change notification published to a feed channel.
type Event struct {
	Resource string      `json:"resource"`
	Action   string      `json:"action"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Notifier publishes change events into Redis channels. All methods are
// no-ops on a nil Redis client so callers never need to branch.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event to one user's feed channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishResource sends an event to a shared resource feed channel.
func (n *Notifier) PublishResource(ctx context.Context, resource string, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, ResourceChannel(resource), payload).Err()
}

// StartPatternSubscriber subscribes to every feed channel and calls
// onMessage for each incoming message. A panic in onMessage is recovered so
// one bad handler cannot kill the subscriber goroutine.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "feed:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in feed subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

func decodeEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// UserChannel derives the Redis channel name for a user's feed.
func UserChannel(userID uint) string {
	return "feed:user:" + strconv.FormatUint(uint64(userID), 10)
}

// ResourceChannel derives the Redis channel name for a resource feed.
func ResourceChannel(resource string) string {
	return "feed:" + resource
}
