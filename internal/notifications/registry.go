package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Handler receives decoded events from a feed subscription. Handlers run on
// the subscription's own goroutine; there is no ordering guarantee relative
// to the data layer calls that produced the events.
type Handler func(Event)

// Registry tracks named feed subscriptions so callers can tear them down by
// name. Unsubscribing a name that was never subscribed is a no-op.
type Registry struct {
	rdb    *redis.Client
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]context.CancelFunc
}

// NewRegistry returns an empty Registry over the given Redis client.
func NewRegistry(rdb *redis.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		rdb:    rdb,
		logger: logger,
		subs:   make(map[string]context.CancelFunc),
	}
}

// Subscribe opens a subscription on the named resource feed. Subscribing a
// name that is already live replaces the old subscription.
func (r *Registry) Subscribe(ctx context.Context, name string, handler Handler) error {
	if r.rdb == nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if old, ok := r.subs[name]; ok {
		old()
	}
	r.subs[name] = cancel
	r.mu.Unlock()

	sub := r.rdb.Subscribe(subCtx, ResourceChannel(name))
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, err := decodeEvent(msg.Payload)
				if err != nil {
					r.logger.Warn("dropping malformed feed event",
						"channel", msg.Channel, "error", err)
					continue
				}
				func() {
					defer func() {
						if rec := recover(); rec != nil {
							r.logger.Error("panic in feed handler",
								"channel", msg.Channel, "panic", rec,
								"stack", string(debug.Stack()))
						}
					}()
					handler(event)
				}()
			}
		}
	}()

	return nil
}

// Unsubscribe tears down the named subscription if it exists.
func (r *Registry) Unsubscribe(name string) {
	r.mu.Lock()
	cancel, ok := r.subs[name]
	if ok {
		delete(r.subs, name)
	}
	r.mu.Unlock()

	if ok {
		cancel()
	}
}

// UnsubscribeAll tears down every live subscription.
func (r *Registry) UnsubscribeAll() {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.subs))
	for _, cancel := range r.subs {
		cancels = append(cancels, cancel)
	}
	r.subs = make(map[string]context.CancelFunc)
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Active returns the names of live subscriptions.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.subs))
	for name := range r.subs {
		names = append(names, name)
	}
	return names
}
