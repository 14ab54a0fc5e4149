// Package broadcast fans seat-availability deltas out to in-process
// watchers of a trip.  Delivery is best-effort and at-most-once: a
// subscriber whose buffer is full simply misses the event, which is safe
// because every delta carries the full unavailable set and the next
// state change re-publishes it.  The hub keeps no durable subscriber
// state; a reconnecting watcher must fetch a fresh snapshot before
// relying on events again.
package broadcast

import (
    "sync"

    "github.com/iliyamo/bus-seat-reservation/internal/inventory"
)

// DefaultBuffer is the per-subscriber event buffer used when a caller
// passes a non-positive size.
const DefaultBuffer = 8

// Subscriber is one watcher of a trip's seat map.  Consume events from
// Events and call Hub.Unsubscribe on disconnect.
type Subscriber struct {
    tripID uint64
    events chan inventory.SeatDelta
}

// Events returns the subscriber's delta stream.  The channel is closed
// by Unsubscribe.
func (s *Subscriber) Events() <-chan inventory.SeatDelta { return s.events }

// Hub maps trip IDs to their current subscriber sets.
type Hub struct {
    mu     sync.RWMutex
    topics map[uint64]map[*Subscriber]struct{}
}

// New returns an empty hub.
func New() *Hub {
    return &Hub{topics: make(map[uint64]map[*Subscriber]struct{})}
}

// Subscribe joins the per-trip topic with the given event buffer size.
func (h *Hub) Subscribe(tripID uint64, buffer int) *Subscriber {
    if buffer <= 0 {
        buffer = DefaultBuffer
    }
    sub := &Subscriber{tripID: tripID, events: make(chan inventory.SeatDelta, buffer)}
    h.mu.Lock()
    subs, ok := h.topics[tripID]
    if !ok {
        subs = make(map[*Subscriber]struct{})
        h.topics[tripID] = subs
    }
    subs[sub] = struct{}{}
    h.mu.Unlock()
    return sub
}

// Unsubscribe leaves the topic and closes the subscriber's channel.
// Calling it twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscriber) {
    h.mu.Lock()
    subs, ok := h.topics[sub.tripID]
    if ok {
        if _, member := subs[sub]; member {
            delete(subs, sub)
            close(sub.events)
        }
        if len(subs) == 0 {
            delete(h.topics, sub.tripID)
        }
    }
    h.mu.Unlock()
}

// Publish delivers a delta to every current subscriber of the trip.  The
// engine calls this while holding the trip's guard, so sends never block:
// a full buffer drops the event for that subscriber.
func (h *Hub) Publish(tripID uint64, delta inventory.SeatDelta) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    for sub := range h.topics[tripID] {
        select {
        case sub.events <- delta:
        default:
            // Slow subscriber; the next state change re-sends the full set.
        }
    }
}
