package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// Store composes the trip, hold and booking repositories into the durable
// backend behind the inventory engine.  Multi-statement writes run in a
// transaction with the usual commit-flag rollback pattern; the engine only
// applies the matching in-memory change after the call returns nil.
type Store struct {
    db       *sql.DB
    trips    *TripRepo
    holds    *HoldRepo
    bookings *BookingRepo
}

// NewStore returns a Store over the given database.
func NewStore(db *sql.DB) *Store {
    return &Store{
        db:       db,
        trips:    NewTripRepo(db),
        holds:    NewHoldRepo(db),
        bookings: NewBookingRepo(db),
    }
}

// CreateTrip persists a trip seat map and assigns its ID.
func (s *Store) CreateTrip(ctx context.Context, trip *model.Trip) error {
    return s.trips.Create(ctx, trip)
}

// CreateHold persists a hold with its seat rows.
func (s *Store) CreateHold(ctx context.Context, hold *model.Hold) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.holds.CreateTx(ctx, tx, hold); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// RenewHold replaces a hold's expiry timestamp.
func (s *Store) RenewHold(ctx context.Context, holdID string, expiresAt time.Time) error {
    return s.holds.UpdateExpiry(ctx, holdID, expiresAt)
}

// DeleteHolds removes holds released, swept or expired on touch.
func (s *Store) DeleteHolds(ctx context.Context, holdIDs []string) error {
    if len(holdIDs) == 0 {
        return nil
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.holds.DeleteTx(ctx, tx, holdIDs); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// CreateBooking persists a booking and, when consumedHoldID is non-empty,
// removes the consumed hold in the same transaction so the conversion is
// atomic on disk as well as in memory.
func (s *Store) CreateBooking(ctx context.Context, booking *model.Booking, consumedHoldID string) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if consumedHoldID != "" {
        if err := s.holds.DeleteTx(ctx, tx, []string{consumedHoldID}); err != nil {
            return err
        }
    }
    if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// CancelBooking flips a booking's status to CANCELLED.
func (s *Store) CancelBooking(ctx context.Context, bookingID string) error {
    return s.bookings.MarkCancelled(ctx, bookingID)
}

// Load returns trips, non-expired holds and confirmed bookings for
// startup recovery.
func (s *Store) Load(ctx context.Context, now time.Time) ([]*model.Trip, []*model.Hold, []*model.Booking, error) {
    trips, err := s.trips.ListAll(ctx)
    if err != nil {
        return nil, nil, nil, err
    }
    holds, err := s.holds.ListActive(ctx, now)
    if err != nil {
        return nil, nil, nil, err
    }
    bookings, err := s.bookings.ListConfirmed(ctx)
    if err != nil {
        return nil, nil, nil, err
    }
    return trips, holds, bookings, nil
}
