package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// fakeStore is an in-memory Store with a switchable failure so tests can
// exercise the store-first write discipline.
type fakeStore struct {
	mu       sync.Mutex
	fail     error
	nextTrip uint64
	deleted  []string
	consumed []string

	loadTrips    []*model.Trip
	loadHolds    []*model.Hold
	loadBookings []*model.Booking
}

func (s *fakeStore) failWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *fakeStore) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *fakeStore) CreateTrip(_ context.Context, trip *model.Trip) error {
	if err := s.failure(); err != nil {
		return err
	}
	s.mu.Lock()
	s.nextTrip++
	trip.ID = s.nextTrip
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) CreateHold(context.Context, *model.Hold) error {
	return s.failure()
}

func (s *fakeStore) RenewHold(context.Context, string, time.Time) error {
	return s.failure()
}

func (s *fakeStore) DeleteHolds(_ context.Context, ids []string) error {
	if err := s.failure(); err != nil {
		return err
	}
	s.mu.Lock()
	s.deleted = append(s.deleted, ids...)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) CreateBooking(_ context.Context, _ *model.Booking, consumedHoldID string) error {
	if err := s.failure(); err != nil {
		return err
	}
	if consumedHoldID != "" {
		s.mu.Lock()
		s.consumed = append(s.consumed, consumedHoldID)
		s.mu.Unlock()
	}
	return nil
}

func (s *fakeStore) CancelBooking(context.Context, string) error {
	return s.failure()
}

func (s *fakeStore) Load(context.Context, time.Time) ([]*model.Trip, []*model.Hold, []*model.Booking, error) {
	if err := s.failure(); err != nil {
		return nil, nil, nil, err
	}
	return s.loadTrips, s.loadHolds, s.loadBookings, nil
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// deltaRecorder collects published deltas.
type deltaRecorder struct {
	mu     sync.Mutex
	deltas []SeatDelta
}

func (r *deltaRecorder) publish(_ uint64, d SeatDelta) {
	r.mu.Lock()
	r.deltas = append(r.deltas, d)
	r.mu.Unlock()
}

func (r *deltaRecorder) last() (SeatDelta, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.deltas) == 0 {
		return SeatDelta{}, false
	}
	return r.deltas[len(r.deltas)-1], true
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *fakeClock, *deltaRecorder) {
	t.Helper()
	store := &fakeStore{}
	clock := newFakeClock()
	rec := &deltaRecorder{}
	return NewEngine(store, rec.publish, clock), store, clock, rec
}

// registerTrip registers a 4-seat trip split 2 online / 1 offline, the
// smallest layout that exercises every capacity edge.
func registerTrip(t *testing.T, e *Engine) *model.Trip {
	t.Helper()
	trip, err := e.RegisterTrip(context.Background(), 4, map[model.Channel]uint32{
		model.ChannelOnline:  2,
		model.ChannelOffline: 1,
	})
	if err != nil {
		t.Fatalf("RegisterTrip: %v", err)
	}
	return trip
}

func TestRegisterTripValidation(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.RegisterTrip(ctx, 0, nil); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("zero seats: got %v, want ErrInvalidSeats", err)
	}
	if _, err := e.RegisterTrip(ctx, 3, map[model.Channel]uint32{
		model.ChannelOnline:  3,
		model.ChannelOffline: 1,
	}); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("oversubscribed capacity: got %v, want ErrInvalidSeats", err)
	}

	trip := registerTrip(t, e)
	if trip.ID == 0 {
		t.Fatal("RegisterTrip did not assign an ID")
	}
	if trip.ChannelCapacity[model.ChannelOnline] != 2 || trip.ChannelCapacity[model.ChannelOffline] != 1 {
		t.Fatalf("unexpected capacity map: %v", trip.ChannelCapacity)
	}
}

func TestCreateHoldConflictAndCapacity(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	hold, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 0)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if len(hold.ID) == 0 || len(hold.SeatNumbers) != 2 {
		t.Fatalf("malformed hold: %+v", hold)
	}

	// Seat 2 is already under alice's hold; channel does not matter.
	_, err = e.CreateHold(ctx, trip.ID, model.ChannelOffline, []uint32{2}, "bob", 0)
	var conflict *SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("overlapping hold: got %v, want SeatConflictError", err)
	}
	if len(conflict.Seats) != 1 || conflict.Seats[0] != 2 {
		t.Fatalf("conflict seats: got %v, want [2]", conflict.Seats)
	}

	// Online allotment is exhausted even though seat 3 itself is free.
	_, err = e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{3}, "bob", 0)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("online over capacity: got %v, want CapacityError", err)
	}
	if capErr.Channel != model.ChannelOnline || capErr.Requested != 1 || capErr.Available != 0 {
		t.Fatalf("capacity detail: %+v", capErr)
	}

	// The offline allotment is untouched.
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOffline, []uint32{3}, "bob", 0); err != nil {
		t.Fatalf("offline hold: %v", err)
	}

	if _, err := e.CreateHold(ctx, 999, model.ChannelOnline, []uint32{1}, "x", 0); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("unknown trip: got %v, want ErrTripNotFound", err)
	}
}

func TestCreateHoldSeatValidation(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	cases := []struct {
		name  string
		seats []uint32
	}{
		{"empty", nil},
		{"zero seat", []uint32{0}},
		{"out of range", []uint32{5}},
		{"duplicate", []uint32{1, 1}},
	}
	for _, tc := range cases {
		if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, tc.seats, "alice", 0); !errors.Is(err, ErrInvalidSeats) {
			t.Errorf("%s: got %v, want ErrInvalidSeats", tc.name, err)
		}
	}
}

func TestCommitBookingFromHold(t *testing.T) {
	e, store, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	hold, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 0)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	// Seat set must match the hold exactly.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{1}, 2500, hold.ID, "alice"); !errors.Is(err, ErrHoldMismatch) {
		t.Fatalf("partial seat set: got %v, want ErrHoldMismatch", err)
	}
	// So must the owner.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, 2500, hold.ID, "mallory"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign owner: got %v, want ErrForbidden", err)
	}

	booking, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{2, 1}, 2500, hold.ID, "alice")
	if err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
	if booking.Status != model.BookingConfirmed || booking.FareCents != 2500 {
		t.Fatalf("unexpected booking: %+v", booking)
	}
	if len(store.consumed) != 1 || store.consumed[0] != hold.ID {
		t.Fatalf("hold not consumed in store: %v", store.consumed)
	}

	// The hold is gone; committing it again must fail.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, 2500, hold.ID, "alice"); !errors.Is(err, ErrHoldMismatch) {
		t.Fatalf("re-commit: got %v, want ErrHoldMismatch", err)
	}
	if _, err := e.RenewHold(ctx, hold.ID, "alice", 0); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("renew after commit: got %v, want ErrHoldNotFound", err)
	}

	snap, err := e.Snapshot(trip.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ConfirmedCount[model.ChannelOnline] != 2 {
		t.Fatalf("confirmed count: got %d, want 2", snap.ConfirmedCount[model.ChannelOnline])
	}
}

func TestDirectCommitCountsActiveHolds(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 0); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	// Both online seats are under an active hold, so a direct sale on that
	// channel must not squeeze past it even though seat 3 is physically free.
	_, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{3}, 1000, "", "conductor-1")
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("direct sale past holds: got %v, want ErrCapacityExceeded", err)
	}

	// The offline allotment is independent.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOffline, []uint32{3}, 1000, "", "conductor-1"); err != nil {
		t.Fatalf("offline direct sale: %v", err)
	}

	// A direct sale on a held seat is a conflict, not a capacity problem.
	_, err = e.CommitBooking(ctx, trip.ID, model.ChannelOffline, []uint32{1}, 1000, "", "conductor-1")
	if !errors.Is(err, ErrSeatConflict) {
		t.Fatalf("direct sale on held seat: got %v, want ErrSeatConflict", err)
	}
}

func TestHoldExpiryAndSweep(t *testing.T) {
	e, store, clock, rec := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	hold, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 5*time.Second)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	clock.advance(10 * time.Second)

	if swept := e.SweepExpired(ctx); swept != 1 {
		t.Fatalf("SweepExpired: got %d trips, want 1", swept)
	}
	if len(store.deleted) != 1 || store.deleted[0] != hold.ID {
		t.Fatalf("store deletion: %v", store.deleted)
	}
	delta, ok := rec.last()
	if !ok {
		t.Fatal("no delta published by sweep")
	}
	if len(delta.FreedSeats) != 2 {
		t.Fatalf("freed seats: got %v, want [1 2]", delta.FreedSeats)
	}
	if len(delta.UnavailableSeats[model.ChannelOnline]) != 0 {
		t.Fatalf("unavailable after sweep: %v", delta.UnavailableSeats)
	}

	// Committing the swept hold fails; the seats are free for others.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, 2500, hold.ID, "alice"); !errors.Is(err, ErrHoldMismatch) {
		t.Fatalf("commit swept hold: got %v, want ErrHoldMismatch", err)
	}
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "bob", 0); err != nil {
		t.Fatalf("re-hold swept seats: %v", err)
	}

	// A second sweep finds nothing.
	if swept := e.SweepExpired(ctx); swept != 0 {
		t.Fatalf("idle sweep: got %d, want 0", swept)
	}
}

func TestExpiredHoldPrunedOnTouch(t *testing.T) {
	e, _, clock, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 5*time.Second); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	clock.advance(10 * time.Second)

	// No sweep has run, but the expired hold must not block a new buyer.
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "bob", 0); err != nil {
		t.Fatalf("hold after expiry, before sweep: %v", err)
	}
}

func TestRenewHold(t *testing.T) {
	e, _, clock, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	hold, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1}, "alice", 5*time.Second)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	if _, err := e.RenewHold(ctx, hold.ID, "mallory", 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign renew: got %v, want ErrForbidden", err)
	}

	clock.advance(3 * time.Second)
	renewed, err := e.RenewHold(ctx, hold.ID, "alice", 5*time.Second)
	if err != nil {
		t.Fatalf("RenewHold: %v", err)
	}
	want := clock.Now().Add(5 * time.Second)
	if !renewed.ExpiresAt.Equal(want) {
		t.Fatalf("renewed expiry: got %v, want %v", renewed.ExpiresAt, want)
	}

	// Past the new expiry a renewal loses and the hold is gone for good.
	clock.advance(6 * time.Second)
	if _, err := e.RenewHold(ctx, hold.ID, "alice", 0); !errors.Is(err, ErrExpiredAlready) {
		t.Fatalf("stale renew: got %v, want ErrExpiredAlready", err)
	}
	if _, err := e.RenewHold(ctx, hold.ID, "alice", 0); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("renew after drop: got %v, want ErrHoldNotFound", err)
	}
}

func TestReleaseHold(t *testing.T) {
	e, _, _, rec := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	hold, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "alice", 0)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if err := e.ReleaseHold(ctx, hold.ID, "mallory"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign release: got %v, want ErrForbidden", err)
	}
	if err := e.ReleaseHold(ctx, hold.ID, "alice"); err != nil {
		t.Fatalf("ReleaseHold: %v", err)
	}
	delta, _ := rec.last()
	if len(delta.FreedSeats) != 2 {
		t.Fatalf("freed seats: got %v, want [1 2]", delta.FreedSeats)
	}
	// Releasing again is a no-op signalled as not found.
	if err := e.ReleaseHold(ctx, hold.ID, "alice"); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("double release: got %v, want ErrHoldNotFound", err)
	}
	// The seats are immediately reusable.
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1, 2}, "bob", 0); err != nil {
		t.Fatalf("re-hold released seats: %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	booking, err := e.CommitBooking(ctx, trip.ID, model.ChannelOffline, []uint32{3}, 1000, "", "conductor-1")
	if err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
	if err := e.CancelBooking(ctx, "no-such-booking"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("unknown booking: got %v, want ErrBookingNotFound", err)
	}
	if err := e.CancelBooking(ctx, booking.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if err := e.CancelBooking(ctx, booking.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("double cancel: got %v, want ErrAlreadyCancelled", err)
	}

	snap, err := e.Snapshot(trip.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ConfirmedCount[model.ChannelOffline] != 0 {
		t.Fatalf("confirmed after cancel: got %d, want 0", snap.ConfirmedCount[model.ChannelOffline])
	}
	// The seat went back to the pool.
	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOffline, []uint32{3}, 1000, "", "conductor-1"); err != nil {
		t.Fatalf("rebook cancelled seat: %v", err)
	}
}

func TestStorageFailureLeavesMemoryUntouched(t *testing.T) {
	e, store, _, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	boom := errors.New("mysql is down")
	store.failWith(boom)
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1}, "alice", 0); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("hold during outage: got %v, want ErrStorageUnavailable", err)
	}

	// Nothing was recorded in memory: the same seats succeed once the
	// store is healthy again.
	store.failWith(nil)
	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1}, "alice", 0); err != nil {
		t.Fatalf("hold after recovery: %v", err)
	}
}

func TestSweepRetriesAfterStorageFailure(t *testing.T) {
	e, store, clock, _ := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{1}, "alice", 5*time.Second); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	clock.advance(10 * time.Second)

	store.failWith(errors.New("mysql is down"))
	if swept := e.SweepExpired(ctx); swept != 0 {
		t.Fatalf("sweep during outage: got %d, want 0", swept)
	}

	store.failWith(nil)
	if swept := e.SweepExpired(ctx); swept != 1 {
		t.Fatalf("sweep after recovery: got %d, want 1", swept)
	}
}

func TestConcurrentHoldsNeverOverbook(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	trip, err := e.RegisterTrip(ctx, 40, map[model.Channel]uint32{
		model.ChannelOnline:  5,
		model.ChannelOffline: 0,
	})
	if err != nil {
		t.Fatalf("RegisterTrip: %v", err)
	}

	// 40 buyers race for distinct seats on a 5-seat allotment.
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := uint32(1); i <= 40; i++ {
		wg.Add(1)
		go func(seat uint32) {
			defer wg.Done()
			if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{seat}, "buyer", 0); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if granted != 5 {
		t.Fatalf("granted holds: got %d, want exactly 5", granted)
	}

	// And a race on a single seat yields exactly one winner.
	trip2, err := e.RegisterTrip(ctx, 4, map[model.Channel]uint32{
		model.ChannelOnline: 4,
	})
	if err != nil {
		t.Fatalf("RegisterTrip: %v", err)
	}
	granted = 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.CreateHold(ctx, trip2.ID, model.ChannelOnline, []uint32{1}, "buyer", 0); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if granted != 1 {
		t.Fatalf("single-seat race: got %d winners, want exactly 1", granted)
	}
}

func TestDeltaCarriesFullUnavailableSet(t *testing.T) {
	e, _, _, rec := newTestEngine(t)
	ctx := context.Background()
	trip := registerTrip(t, e)

	if _, err := e.CreateHold(ctx, trip.ID, model.ChannelOnline, []uint32{2, 1}, "alice", 0); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	delta, ok := rec.last()
	if !ok {
		t.Fatal("no delta published")
	}
	got := delta.UnavailableSeats[model.ChannelOnline]
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unavailable online seats: got %v, want [1 2]", got)
	}

	if _, err := e.CommitBooking(ctx, trip.ID, model.ChannelOffline, []uint32{4}, 1000, "", "conductor-1"); err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
	delta, _ = rec.last()
	if got := delta.UnavailableSeats[model.ChannelOnline]; len(got) != 2 {
		t.Fatalf("delta lost the held seats: %v", delta.UnavailableSeats)
	}
	if got := delta.UnavailableSeats[model.ChannelOffline]; len(got) != 1 || got[0] != 4 {
		t.Fatalf("unavailable offline seats: got %v, want [4]", got)
	}
}

func TestRestore(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()
	store := &fakeStore{
		nextTrip: 1,
		loadTrips: []*model.Trip{{
			ID:         1,
			TotalSeats: 4,
			ChannelCapacity: map[model.Channel]uint32{
				model.ChannelOnline:  2,
				model.ChannelOffline: 1,
			},
		}},
		loadHolds: []*model.Hold{
			{
				ID: "live-hold", TripID: 1, Channel: model.ChannelOnline,
				SeatNumbers: []uint32{1}, OwnerRef: "alice",
				ExpiresAt: now.Add(time.Minute),
			},
			{
				ID: "stale-hold", TripID: 1, Channel: model.ChannelOnline,
				SeatNumbers: []uint32{2}, OwnerRef: "bob",
				ExpiresAt: now.Add(-time.Minute),
			},
		},
		loadBookings: []*model.Booking{{
			ID: "b-1", TripID: 1, Channel: model.ChannelOffline,
			SeatNumbers: []uint32{3}, Status: model.BookingConfirmed,
		}},
	}
	e := NewEngine(store, nil, clock)
	if err := e.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	snap, err := e.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ConfirmedCount[model.ChannelOffline] != 1 {
		t.Fatalf("restored confirmed: got %d, want 1", snap.ConfirmedCount[model.ChannelOffline])
	}
	if got := snap.UnavailableSeats[model.ChannelOnline]; len(got) != 1 || got[0] != 1 {
		t.Fatalf("restored holds: got %v, want [1]", got)
	}

	// The live hold is renewable, the stale one never made it in.
	if _, err := e.RenewHold(context.Background(), "live-hold", "alice", 0); err != nil {
		t.Fatalf("renew restored hold: %v", err)
	}
	if _, err := e.RenewHold(context.Background(), "stale-hold", "bob", 0); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("renew stale hold: got %v, want ErrHoldNotFound", err)
	}
	// Seat 2, freed by the skipped stale hold, is available again.
	if _, err := e.CreateHold(context.Background(), 1, model.ChannelOnline, []uint32{2}, "carol", 0); err != nil {
		t.Fatalf("hold on freed seat: %v", err)
	}
}
