package inventory

import (
    "context"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// Store is the durable record behind the in-memory seat maps.  The engine
// is the single writer: every call happens inside the owning trip's guard,
// so implementations never see concurrent writes for the same trip.  Any
// returned error is surfaced to callers as ErrStorageUnavailable; the
// in-memory state is only mutated after the store call succeeds, keeping
// memory and disk consistent.
//
// The MySQL implementation lives in internal/repository.
type Store interface {
    // CreateTrip persists a new trip seat map and assigns trip.ID.
    CreateTrip(ctx context.Context, trip *model.Trip) error
    // CreateHold persists a new hold together with its seat numbers.
    CreateHold(ctx context.Context, hold *model.Hold) error
    // RenewHold replaces the expiry timestamp of an existing hold.
    RenewHold(ctx context.Context, holdID string, expiresAt time.Time) error
    // DeleteHolds removes holds (released, swept, or expired on touch).
    // An empty slice is a no-op.
    DeleteHolds(ctx context.Context, holdIDs []string) error
    // CreateBooking persists a confirmed booking and, when consumedHoldID
    // is non-empty, removes the consumed hold in the same transaction.
    CreateBooking(ctx context.Context, booking *model.Booking, consumedHoldID string) error
    // CancelBooking flips a booking's status to CANCELLED.
    CancelBooking(ctx context.Context, bookingID string) error
    // Load returns all trips, the holds that have not yet expired at the
    // given instant, and all confirmed bookings.  Used once at startup to
    // rebuild the in-memory state.
    Load(ctx context.Context, now time.Time) ([]*model.Trip, []*model.Hold, []*model.Booking, error)
}
