package broadcast

import (
	"testing"

	"github.com/iliyamo/bus-seat-reservation/internal/inventory"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := New()
	a := h.Subscribe(7, 4)
	b := h.Subscribe(7, 4)
	other := h.Subscribe(8, 4)

	delta := inventory.SeatDelta{
		TripID: 7,
		UnavailableSeats: map[model.Channel][]uint32{
			model.ChannelOnline: {1, 2},
		},
	}
	h.Publish(7, delta)

	for i, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.Events():
			if got.TripID != 7 || len(got.UnavailableSeats[model.ChannelOnline]) != 2 {
				t.Fatalf("subscriber %d: unexpected delta %+v", i, got)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
	select {
	case got := <-other.Events():
		t.Fatalf("trip 8 subscriber got trip 7 delta: %+v", got)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := New()
	sub := h.Subscribe(1, 1)

	// Second publish overflows the 1-slot buffer; it must not block.
	h.Publish(1, inventory.SeatDelta{TripID: 1, FreedSeats: []uint32{1}})
	h.Publish(1, inventory.SeatDelta{TripID: 1, FreedSeats: []uint32{2}})

	got := <-sub.Events()
	if len(got.FreedSeats) != 1 || got.FreedSeats[0] != 1 {
		t.Fatalf("first delta: %+v", got)
	}
	select {
	case extra := <-sub.Events():
		t.Fatalf("overflowed delta should have been dropped, got %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	sub := h.Subscribe(1, 2)
	h.Unsubscribe(sub)

	if _, open := <-sub.Events(); open {
		t.Fatal("channel still open after Unsubscribe")
	}
	// A second call must not panic on the closed channel.
	h.Unsubscribe(sub)
	// Publishing to the now-empty topic is a no-op.
	h.Publish(1, inventory.SeatDelta{TripID: 1})
}
