package inventory

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "log"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// DefaultHoldTTL is applied when a caller does not specify a time-to-live.
// Holds are meant to cover a checkout window: minutes, not hours.
const DefaultHoldTTL = 5 * time.Minute

// SeatDelta is the payload published to watchers of a trip after every
// state change.  It always carries the full authoritative unavailable-seat
// set per channel rather than an incremental diff, so a subscriber that
// misses an event self-heals on the next one.  FreedSeats additionally
// names the seats released by the triggering operation (release, sweep or
// cancellation) for display purposes.
type SeatDelta struct {
    TripID           uint64                      `json:"trip_id"`
    UnavailableSeats map[model.Channel][]uint32  `json:"unavailable_seats_by_channel"`
    FreedSeats       []uint32                    `json:"freed_seats,omitempty"`
}

// PublishFunc delivers a SeatDelta to current watchers of a trip.  The
// engine trusts the transport to be best-effort and at-most-once; it is
// called while the trip's guard is held, so implementations must not
// block (the in-process hub uses non-blocking sends).
type PublishFunc func(tripID uint64, delta SeatDelta)

// SeatMapSnapshot is the read-model returned by Snapshot, matching what a
// subscriber needs before joining the live topic and what a seat-selection
// UI renders.
type SeatMapSnapshot struct {
    TripID           uint64                     `json:"trip_id"`
    TotalSeats       uint32                     `json:"total_seats"`
    ChannelCapacity  map[model.Channel]uint32   `json:"channel_capacity"`
    ConfirmedCount   map[model.Channel]uint32   `json:"confirmed_count"`
    UnavailableSeats map[model.Channel][]uint32 `json:"unavailable_seats_by_channel"`
}

// bookedSeat records which booking claimed a seat and on which channel,
// so cancellation and availability reporting need no cross lookups.
type bookedSeat struct {
    bookingID string
    channel   model.Channel
}

// tripState is one trip's seat map plus the mutex serializing every
// mutation of it.  The engine locks tripState.mu for the whole
// read-validate-write sequence of an operation; operations on different
// trips never contend.
type tripState struct {
    mu sync.Mutex

    trip      *model.Trip
    confirmed map[model.Channel]uint32 // seats permanently committed per channel
    held      map[model.Channel]uint32 // seats under active holds per channel
    holds     map[string]*model.Hold   // hold_id -> hold
    seatHold  map[uint32]string        // seat number -> hold_id owning it
    seatBook  map[uint32]bookedSeat    // seat number -> confirmed booking
}

// Engine owns every trip seat map and enforces the two core invariants:
// no channel's confirmed+held seats ever exceed its capacity, and no seat
// is ever claimed by two active holds or by a hold and a confirmed
// booking at once.  The registry lock (mu) guards only the maps below;
// it is never held across a trip operation.  When a trip operation needs
// to update the registry (hold index, trips-with-holds set, bookings) it
// takes mu while already holding the trip's mutex; that ordering is
// fixed throughout to stay deadlock free.
type Engine struct {
    mu        sync.RWMutex
    trips     map[uint64]*tripState
    holdTrip  map[string]uint64        // hold_id -> trip_id, for renew/release lookup
    withHolds map[uint64]struct{}      // trips with >=1 active hold; lets the sweeper skip idle trips in O(1)
    bookings  map[string]*model.Booking

    store   Store
    publish PublishFunc
    clock   Clock
}

// NewEngine builds an engine over the given durable store, broadcast
// function and clock.  Call Restore before serving traffic to rebuild
// state from the store.
func NewEngine(store Store, publish PublishFunc, clock Clock) *Engine {
    if clock == nil {
        clock = SystemClock()
    }
    if publish == nil {
        publish = func(uint64, SeatDelta) {}
    }
    return &Engine{
        trips:     make(map[uint64]*tripState),
        holdTrip:  make(map[string]uint64),
        withHolds: make(map[uint64]struct{}),
        bookings:  make(map[string]*model.Booking),
        store:     store,
        publish:   publish,
        clock:     clock,
    }
}

// RegisterTrip validates and persists a new trip seat map supplied by the
// scheduling collaborator, then makes it available for holds and bookings.
func (e *Engine) RegisterTrip(ctx context.Context, totalSeats uint32, capacity map[model.Channel]uint32) (*model.Trip, error) {
    if totalSeats == 0 {
        return nil, &InvalidSeatsError{Reason: "total_seats must be positive"}
    }
    var sum uint32
    caps := make(map[model.Channel]uint32, len(model.Channels))
    for _, ch := range model.Channels {
        caps[ch] = capacity[ch]
        sum += capacity[ch]
    }
    for ch := range capacity {
        if _, ok := model.ParseChannel(string(ch)); !ok {
            return nil, &InvalidSeatsError{Reason: "unknown channel " + string(ch)}
        }
    }
    if sum > totalSeats {
        return nil, &InvalidSeatsError{Reason: "channel capacities exceed total seats"}
    }
    trip := &model.Trip{
        TotalSeats:      totalSeats,
        ChannelCapacity: caps,
        CreatedAt:       e.clock.Now(),
    }
    if err := e.store.CreateTrip(ctx, trip); err != nil {
        return nil, storageError(err)
    }
    e.mu.Lock()
    e.trips[trip.ID] = newTripState(trip)
    e.mu.Unlock()
    return trip, nil
}

func newTripState(trip *model.Trip) *tripState {
    return &tripState{
        trip:      trip,
        confirmed: make(map[model.Channel]uint32),
        held:      make(map[model.Channel]uint32),
        holds:     make(map[string]*model.Hold),
        seatHold:  make(map[uint32]string),
        seatBook:  make(map[uint32]bookedSeat),
    }
}

// Restore rebuilds the in-memory seat maps from the durable store.  Holds
// already expired at load time are skipped; their rows are purged lazily
// by later sweeps of the same trip.  Cancelled bookings are ignored.
func (e *Engine) Restore(ctx context.Context) error {
    now := e.clock.Now()
    trips, holds, bookings, err := e.store.Load(ctx, now)
    if err != nil {
        return storageError(err)
    }
    e.mu.Lock()
    defer e.mu.Unlock()
    for _, t := range trips {
        e.trips[t.ID] = newTripState(t)
    }
    for _, b := range bookings {
        st, ok := e.trips[b.TripID]
        if !ok || b.Status != model.BookingConfirmed {
            continue
        }
        e.bookings[b.ID] = b
        st.confirmed[b.Channel] += uint32(len(b.SeatNumbers))
        for _, seat := range b.SeatNumbers {
            st.seatBook[seat] = bookedSeat{bookingID: b.ID, channel: b.Channel}
        }
    }
    for _, h := range holds {
        st, ok := e.trips[h.TripID]
        if !ok || h.Expired(now) {
            continue
        }
        st.holds[h.ID] = h
        st.held[h.Channel] += uint32(len(h.SeatNumbers))
        for _, seat := range h.SeatNumbers {
            st.seatHold[seat] = h.ID
        }
        e.holdTrip[h.ID] = h.TripID
        e.withHolds[h.TripID] = struct{}{}
    }
    return nil
}

// CreateHold grants a time-boxed claim on the requested seats.  It prunes
// expired holds on the trip first (so an unswept expired hold never blocks
// a willing buyer), then validates seat numbers, seat exclusivity and
// channel capacity under the trip's guard, persists the hold and
// broadcasts the new unavailable set.
func (e *Engine) CreateHold(ctx context.Context, tripID uint64, channel model.Channel, seats []uint32, ownerRef string, ttl time.Duration) (*model.Hold, error) {
    st, err := e.tripState(tripID)
    if err != nil {
        return nil, err
    }
    if ttl <= 0 {
        ttl = DefaultHoldTTL
    }
    st.mu.Lock()
    defer st.mu.Unlock()

    now := e.clock.Now()
    freed, err := e.pruneExpiredLocked(ctx, st, now)
    if err != nil {
        return nil, err
    }
    if err := st.validateSeats(seats); err != nil {
        return nil, err
    }
    if _, ok := st.trip.ChannelCapacity[channel]; !ok {
        return nil, &InvalidSeatsError{Reason: "unknown channel " + string(channel)}
    }
    if conflicts := st.conflictingSeats(seats); len(conflicts) > 0 {
        return nil, &SeatConflictError{Seats: conflicts}
    }
    capSeats := st.trip.ChannelCapacity[channel]
    used := st.confirmed[channel] + st.held[channel]
    if used+uint32(len(seats)) > capSeats {
        return nil, &CapacityError{Channel: channel, Requested: uint32(len(seats)), Available: capSeats - used}
    }

    hold := &model.Hold{
        ID:          newHoldID(),
        TripID:      tripID,
        Channel:     channel,
        SeatNumbers: sortedCopy(seats),
        OwnerRef:    ownerRef,
        CreatedAt:   now,
        ExpiresAt:   now.Add(ttl),
    }
    if err := e.store.CreateHold(ctx, hold); err != nil {
        return nil, storageError(err)
    }
    st.holds[hold.ID] = hold
    st.held[channel] += uint32(len(hold.SeatNumbers))
    for _, seat := range hold.SeatNumbers {
        st.seatHold[seat] = hold.ID
    }
    e.mu.Lock()
    e.holdTrip[hold.ID] = tripID
    e.withHolds[tripID] = struct{}{}
    e.mu.Unlock()

    e.publish(tripID, SeatDelta{TripID: tripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: freed})
    return copyHold(hold), nil
}

// RenewHold extends a hold's expiry without changing its seat membership.
// Only the hold's owner may renew, and only while the current expiry has
// not passed: a renewal racing a sweep loses explicitly with
// ErrExpiredAlready rather than silently resurrecting the hold.
func (e *Engine) RenewHold(ctx context.Context, holdID, ownerRef string, ttl time.Duration) (*model.Hold, error) {
    st, err := e.holdTripState(holdID)
    if err != nil {
        return nil, err
    }
    if ttl <= 0 {
        ttl = DefaultHoldTTL
    }
    st.mu.Lock()
    defer st.mu.Unlock()

    hold, ok := st.holds[holdID]
    if !ok {
        return nil, ErrHoldNotFound
    }
    if hold.OwnerRef != ownerRef {
        return nil, ErrForbidden
    }
    now := e.clock.Now()
    if hold.Expired(now) {
        // The hold is gone as far as callers are concerned; drop it now
        // instead of waiting for the sweeper.
        if err := e.removeHoldsLocked(ctx, st, []string{holdID}); err != nil {
            return nil, err
        }
        e.publish(hold.TripID, SeatDelta{TripID: hold.TripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: hold.SeatNumbers})
        return nil, ErrExpiredAlready
    }
    expiresAt := now.Add(ttl)
    if err := e.store.RenewHold(ctx, holdID, expiresAt); err != nil {
        return nil, storageError(err)
    }
    hold.ExpiresAt = expiresAt
    return copyHold(hold), nil
}

// ReleaseHold frees a hold's seats before expiry.  Releasing a hold that
// is already gone returns ErrHoldNotFound, which callers may treat as a
// non-fatal signal.
func (e *Engine) ReleaseHold(ctx context.Context, holdID, ownerRef string) error {
    st, err := e.holdTripState(holdID)
    if err != nil {
        return err
    }
    st.mu.Lock()
    defer st.mu.Unlock()

    hold, ok := st.holds[holdID]
    if !ok {
        return ErrHoldNotFound
    }
    if hold.OwnerRef != ownerRef {
        return ErrForbidden
    }
    expired := hold.Expired(e.clock.Now())
    if err := e.removeHoldsLocked(ctx, st, []string{holdID}); err != nil {
        return err
    }
    e.publish(hold.TripID, SeatDelta{TripID: hold.TripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: hold.SeatNumbers})
    if expired {
        // The seats were freed, but to the caller an expired hold never
        // existed any more.
        return ErrHoldNotFound
    }
    return nil
}

// CommitBooking converts claimed seats into a confirmed booking.  Two seat
// sources are supported: an existing hold (holdID non-empty, must belong
// to ownerRef and cover exactly the requested seats) or a direct sale
// without a prior hold, used by conductors for walk-up passengers.  The
// entire check-then-write sequence runs under the trip's guard; payment
// has already been settled by the caller before this is invoked.
func (e *Engine) CommitBooking(ctx context.Context, tripID uint64, channel model.Channel, seats []uint32, fareCents uint32, holdID, ownerRef string) (*model.Booking, error) {
    st, err := e.tripState(tripID)
    if err != nil {
        return nil, err
    }
    st.mu.Lock()
    defer st.mu.Unlock()

    now := e.clock.Now()
    freed, err := e.pruneExpiredLocked(ctx, st, now)
    if err != nil {
        return nil, err
    }
    if err := st.validateSeats(seats); err != nil {
        return nil, err
    }
    if _, ok := st.trip.ChannelCapacity[channel]; !ok {
        return nil, &InvalidSeatsError{Reason: "unknown channel " + string(channel)}
    }

    var consumed *model.Hold
    if holdID != "" {
        hold, ok := st.holds[holdID]
        if !ok {
            // Expired, already consumed, or never existed.
            return nil, ErrHoldMismatch
        }
        if hold.OwnerRef != ownerRef {
            return nil, ErrForbidden
        }
        if hold.Channel != channel || !sameSeatSet(hold.SeatNumbers, seats) {
            return nil, ErrHoldMismatch
        }
        consumed = hold
    } else {
        if conflicts := st.conflictingSeats(seats); len(conflicts) > 0 {
            return nil, &SeatConflictError{Seats: conflicts}
        }
        // Active holds count against the capacity check too: the channel
        // invariant binds confirmed and held seats together, so a direct
        // sale may not squeeze past outstanding holds.
        capSeats := st.trip.ChannelCapacity[channel]
        used := st.confirmed[channel] + st.held[channel]
        if used+uint32(len(seats)) > capSeats {
            return nil, &CapacityError{Channel: channel, Requested: uint32(len(seats)), Available: capSeats - used}
        }
    }

    booking := &model.Booking{
        ID:          uuid.NewString(),
        TripID:      tripID,
        Channel:     channel,
        SeatNumbers: sortedCopy(seats),
        FareCents:   fareCents,
        Status:      model.BookingConfirmed,
        CreatedAt:   now,
    }
    if err := e.store.CreateBooking(ctx, booking, holdID); err != nil {
        return nil, storageError(err)
    }
    if consumed != nil {
        e.dropHoldLocked(st, consumed)
    }
    st.confirmed[channel] += uint32(len(booking.SeatNumbers))
    for _, seat := range booking.SeatNumbers {
        st.seatBook[seat] = bookedSeat{bookingID: booking.ID, channel: channel}
    }
    e.mu.Lock()
    e.bookings[booking.ID] = booking
    e.mu.Unlock()

    e.publish(tripID, SeatDelta{TripID: tripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: freed})
    return copyBooking(booking), nil
}

// CancelBooking flips a booking to CANCELLED and returns its seats to the
// channel's pool.  A second cancellation fails with ErrAlreadyCancelled
// and never double-decrements the confirmed count.
func (e *Engine) CancelBooking(ctx context.Context, bookingID string) error {
    e.mu.RLock()
    booking, ok := e.bookings[bookingID]
    e.mu.RUnlock()
    if !ok {
        return ErrBookingNotFound
    }
    st, err := e.tripState(booking.TripID)
    if err != nil {
        return err
    }
    st.mu.Lock()
    defer st.mu.Unlock()

    if booking.Status == model.BookingCancelled {
        return ErrAlreadyCancelled
    }
    if err := e.store.CancelBooking(ctx, bookingID); err != nil {
        return storageError(err)
    }
    booking.Status = model.BookingCancelled
    st.confirmed[booking.Channel] -= uint32(len(booking.SeatNumbers))
    for _, seat := range booking.SeatNumbers {
        delete(st.seatBook, seat)
    }
    e.publish(booking.TripID, SeatDelta{TripID: booking.TripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: booking.SeatNumbers})
    return nil
}

// Snapshot returns the current seat map read-model for a trip.  Watchers
// fetch this before subscribing to the live topic so that incremental
// events have a baseline.
func (e *Engine) Snapshot(tripID uint64) (*SeatMapSnapshot, error) {
    st, err := e.tripState(tripID)
    if err != nil {
        return nil, err
    }
    st.mu.Lock()
    defer st.mu.Unlock()
    snap := &SeatMapSnapshot{
        TripID:           tripID,
        TotalSeats:       st.trip.TotalSeats,
        ChannelCapacity:  make(map[model.Channel]uint32, len(st.trip.ChannelCapacity)),
        ConfirmedCount:   make(map[model.Channel]uint32, len(st.confirmed)),
        UnavailableSeats: st.unavailableLocked(),
    }
    for ch, c := range st.trip.ChannelCapacity {
        snap.ChannelCapacity[ch] = c
    }
    for _, ch := range model.Channels {
        snap.ConfirmedCount[ch] = st.confirmed[ch]
    }
    return snap, nil
}

// SweepExpired removes every hold whose expiry has passed, one trip at a
// time under that trip's guard, and broadcasts the freed seats per trip.
// Trips with zero active holds are skipped without touching their seat
// state.  A storage failure on one trip is logged and left for the next
// cycle; expired holds are inert in the meantime (nothing can renew or
// commit them), so a delayed sweep only delays availability.  It returns
// the number of trips that had holds removed.
func (e *Engine) SweepExpired(ctx context.Context) int {
    e.mu.RLock()
    tripIDs := make([]uint64, 0, len(e.withHolds))
    for id := range e.withHolds {
        tripIDs = append(tripIDs, id)
    }
    e.mu.RUnlock()

    now := e.clock.Now()
    swept := 0
    for _, tripID := range tripIDs {
        st, err := e.tripState(tripID)
        if err != nil {
            continue
        }
        st.mu.Lock()
        freed, err := e.pruneExpiredLocked(ctx, st, now)
        if err != nil {
            log.Printf("sweep: trip %d: %v (will retry next cycle)", tripID, err)
            st.mu.Unlock()
            continue
        }
        if len(freed) > 0 {
            swept++
            e.publish(tripID, SeatDelta{TripID: tripID, UnavailableSeats: st.unavailableLocked(), FreedSeats: freed})
        }
        st.mu.Unlock()
    }
    return swept
}

// tripState resolves a trip ID under the registry read lock.
func (e *Engine) tripState(tripID uint64) (*tripState, error) {
    e.mu.RLock()
    st, ok := e.trips[tripID]
    e.mu.RUnlock()
    if !ok {
        return nil, ErrTripNotFound
    }
    return st, nil
}

// holdTripState resolves a hold ID to its trip's state.  The hold may
// still disappear between this lookup and the trip lock; callers re-check
// under the guard.
func (e *Engine) holdTripState(holdID string) (*tripState, error) {
    e.mu.RLock()
    tripID, ok := e.holdTrip[holdID]
    e.mu.RUnlock()
    if !ok {
        return nil, ErrHoldNotFound
    }
    return e.tripState(tripID)
}

// pruneExpiredLocked removes every hold on the trip whose expiry has
// passed.  The store is updated first; on failure nothing changes in
// memory and the error is surfaced (interactive callers return it, the
// sweeper retries).  Returns the freed seat numbers.
func (e *Engine) pruneExpiredLocked(ctx context.Context, st *tripState, now time.Time) ([]uint32, error) {
    var ids []string
    var freed []uint32
    for id, h := range st.holds {
        if h.Expired(now) {
            ids = append(ids, id)
            freed = append(freed, h.SeatNumbers...)
        }
    }
    if len(ids) == 0 {
        return nil, nil
    }
    if err := e.removeHoldsLocked(ctx, st, ids); err != nil {
        return nil, err
    }
    sort.Slice(freed, func(i, j int) bool { return freed[i] < freed[j] })
    return freed, nil
}

// removeHoldsLocked deletes holds from the store and then from memory.
func (e *Engine) removeHoldsLocked(ctx context.Context, st *tripState, ids []string) error {
    if err := e.store.DeleteHolds(ctx, ids); err != nil {
        return storageError(err)
    }
    for _, id := range ids {
        if h, ok := st.holds[id]; ok {
            e.dropHoldLocked(st, h)
        }
    }
    return nil
}

// dropHoldLocked removes a hold from the trip's state and the registry
// indexes.  Memory only; the store row is already gone (or goes in the
// same transaction as the booking that consumed it).
func (e *Engine) dropHoldLocked(st *tripState, hold *model.Hold) {
    delete(st.holds, hold.ID)
    st.held[hold.Channel] -= uint32(len(hold.SeatNumbers))
    for _, seat := range hold.SeatNumbers {
        if st.seatHold[seat] == hold.ID {
            delete(st.seatHold, seat)
        }
    }
    e.mu.Lock()
    delete(e.holdTrip, hold.ID)
    if len(st.holds) == 0 {
        delete(e.withHolds, hold.TripID)
    }
    e.mu.Unlock()
}

// validateSeats checks range and uniqueness of a seat request.
func (st *tripState) validateSeats(seats []uint32) error {
    if len(seats) == 0 {
        return &InvalidSeatsError{Reason: "seat_numbers must not be empty"}
    }
    seen := make(map[uint32]struct{}, len(seats))
    var bad []uint32
    for _, seat := range seats {
        if seat == 0 || seat > st.trip.TotalSeats {
            bad = append(bad, seat)
            continue
        }
        if _, dup := seen[seat]; dup {
            return &InvalidSeatsError{Reason: "duplicate seat in request", Seats: []uint32{seat}}
        }
        seen[seat] = struct{}{}
    }
    if len(bad) > 0 {
        return &InvalidSeatsError{Reason: "outside the trip's seat range", Seats: bad}
    }
    return nil
}

// conflictingSeats returns the requested seats already claimed by an
// active hold or a confirmed booking.  Seat exclusivity is trip-global:
// a seat held on one channel conflicts with any request regardless of
// channel.  Lookups are O(seats requested) via the seat indexes.
func (st *tripState) conflictingSeats(seats []uint32) []uint32 {
    var conflicts []uint32
    for _, seat := range seats {
        if _, held := st.seatHold[seat]; held {
            conflicts = append(conflicts, seat)
            continue
        }
        if _, booked := st.seatBook[seat]; booked {
            conflicts = append(conflicts, seat)
        }
    }
    return conflicts
}

// unavailableLocked builds the full authoritative unavailable set per
// channel: every seat under an active hold or a confirmed booking,
// attributed to the channel that claimed it.
func (st *tripState) unavailableLocked() map[model.Channel][]uint32 {
    out := make(map[model.Channel][]uint32, len(model.Channels))
    for _, ch := range model.Channels {
        out[ch] = []uint32{}
    }
    for _, h := range st.holds {
        out[h.Channel] = append(out[h.Channel], h.SeatNumbers...)
    }
    for seat, b := range st.seatBook {
        out[b.channel] = append(out[b.channel], seat)
    }
    for ch := range out {
        sort.Slice(out[ch], func(i, j int) bool { return out[ch][i] < out[ch][j] })
    }
    return out
}

// newHoldID returns a random 32-character hex token used as the opaque
// hold identifier handed back to clients.
func newHoldID() string {
    b := make([]byte, 16)
    if _, err := rand.Read(b); err != nil {
        // crypto/rand failing means the process is in serious trouble;
        // fall back to a UUID rather than return a partial token.
        return uuid.NewString()
    }
    return hex.EncodeToString(b)
}

func sortedCopy(seats []uint32) []uint32 {
    out := make([]uint32, len(seats))
    copy(out, seats)
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out
}

// sameSeatSet reports whether two seat lists contain exactly the same
// seats, irrespective of order.
func sameSeatSet(a, b []uint32) bool {
    if len(a) != len(b) {
        return false
    }
    set := make(map[uint32]struct{}, len(a))
    for _, s := range a {
        set[s] = struct{}{}
    }
    for _, s := range b {
        if _, ok := set[s]; !ok {
            return false
        }
    }
    return true
}

func copyHold(h *model.Hold) *model.Hold {
    out := *h
    out.SeatNumbers = append([]uint32(nil), h.SeatNumbers...)
    return &out
}

func copyBooking(b *model.Booking) *model.Booking {
    out := *b
    out.SeatNumbers = append([]uint32(nil), b.SeatNumbers...)
    return &out
}
