// Package bus routes published payloads to every live subscriber of a room.
// It is the only shared mutable state between connection goroutines: a
// membership map from room ID to the set of subscribed sessions, guarded by
// a single RWMutex with short critical sections.
package bus

import (
	"sync"

	"github.com/real-rm/golog"
	"github.com/samber/lo"

	"github.com/real-rm/chatrelay/internal/metrics"
	"github.com/real-rm/chatrelay/internal/room"
)

// Subscriber is a non-owning reference to a live connection. The bus only
// ever pushes payloads through TrySend; it never mutates session state.
// TrySend must not block: it returns false when the subscriber cannot accept
// the payload (buffer full or connection tearing down).
type Subscriber interface {
	TrySend(data []byte) bool
}

// Bus maintains room membership and fans published payloads out to all
// current subscribers of a room. It is constructed explicitly and passed by
// handle into the relay; there is no package-global registry.
type Bus struct {
	mu     sync.RWMutex
	rooms  map[room.ID]map[Subscriber]struct{}
	logger *golog.Logger
}

// New creates a bus with an empty membership map.
func New(logger *golog.Logger) *Bus {
	return &Bus{
		rooms:  make(map[room.ID]map[Subscriber]struct{}),
		logger: logger.WithGroup("bus"),
	}
}

// Subscribe adds sub to the room's membership set. Multiple subscribers may
// share a room (the same identity connected from two devices subscribes
// twice, once per connection). Subscribing twice is a no-op.
func (b *Bus) Subscribe(id room.ID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// No else needed: initialize if needed (lazy initialization)
	if b.rooms[id] == nil {
		b.rooms[id] = make(map[Subscriber]struct{})
		metrics.ActiveRooms.Inc()
	}
	b.rooms[id][sub] = struct{}{}
	metrics.RoomSubscribers.Inc()

	b.logger.Debug("Subscriber joined room",
		"room", string(id),
		"subscribers", len(b.rooms[id]))
}

// Unsubscribe removes sub from the room's membership set. Empty rooms are
// pruned so the map never accumulates dangling entries. Unsubscribing a
// subscriber that is not a member is a no-op.
func (b *Bus) Unsubscribe(id room.ID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[id]
	// No else needed: early return pattern (guard clause)
	if !ok {
		return
	}
	// No else needed: early return pattern (guard clause)
	if _, member := members[sub]; !member {
		return
	}

	delete(members, sub)
	metrics.RoomSubscribers.Dec()
	// No else needed: optional operation (prune empty room)
	if len(members) == 0 {
		delete(b.rooms, id)
		metrics.ActiveRooms.Dec()
	}

	b.logger.Debug("Subscriber left room",
		"room", string(id),
		"subscribers", len(members))
}

// Publish delivers data to every current subscriber of the room, including
// the publisher's own session if it subscribed independently. A subscriber
// that cannot accept the payload is skipped; it never blocks or fails
// delivery to the rest. Returns the number of successful deliveries.
//
// Sends happen under the read lock: TrySend is non-blocking, and keeping
// membership stable for the duration of one publish preserves per-room FIFO
// ordering for a single publisher.
func (b *Bus) Publish(id room.ID, data []byte) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.rooms[id] {
		if sub.TrySend(data) {
			delivered++
		} else {
			// Stale entry: the subscriber's own pump tears it down and
			// unsubscribes lazily.
			metrics.DeliveryDrops.Inc()
			b.logger.Warn("Dropped delivery to unresponsive subscriber",
				"room", string(id))
		}
	}
	return delivered
}

// Members returns the number of current subscribers of the room.
func (b *Bus) Members(id room.ID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[id])
}

// Rooms returns the IDs of all rooms with at least one subscriber.
func (b *Bus) Rooms() []room.ID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lo.Keys(b.rooms)
}

// Drain drops all subscriptions. Called during teardown; subscribers are not
// notified, their own pumps observe the closing connection.
func (b *Bus) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, members := range b.rooms {
		metrics.RoomSubscribers.Sub(float64(len(members)))
		metrics.ActiveRooms.Dec()
		delete(b.rooms, id)
	}

	b.logger.Info("Bus drained, all subscriptions dropped")
}
