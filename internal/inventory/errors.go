// Package inventory implements the seat inventory and reservation engine:
// per-trip seat maps with channel capacity accounting, time-boxed holds,
// hold-to-booking conversion, periodic expiry sweeping and availability
// broadcasting.  All mutations of a trip's seat state run under that
// trip's own mutex; a registry lock protects only trip lookup.
package inventory

import (
    "errors"
    "fmt"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// Sentinel errors returned by the engine.  Handlers compare with
// errors.Is and translate each kind into an HTTP status.  The operations
// never treat any of these as fatal; they are ordinary typed results.
var (
    // ErrInvalidSeats signals seat numbers outside the trip's range,
    // duplicated within a request, or an empty seat set.
    ErrInvalidSeats = errors.New("invalid seats")
    // ErrSeatConflict signals that a requested seat is already held or
    // confirmed on the trip.
    ErrSeatConflict = errors.New("seat conflict")
    // ErrCapacityExceeded signals that granting the request would push a
    // channel past its allotted capacity.
    ErrCapacityExceeded = errors.New("channel capacity exceeded")
    // ErrTripNotFound signals an unknown trip ID.
    ErrTripNotFound = errors.New("trip not found")
    // ErrHoldNotFound signals that a hold no longer exists: it was
    // released, converted or swept.  Callers releasing a hold may treat
    // this as a non-fatal signal (e.g. an abandonment callback firing
    // twice).
    ErrHoldNotFound = errors.New("hold not found")
    // ErrBookingNotFound signals an unknown booking ID.
    ErrBookingNotFound = errors.New("booking not found")
    // ErrForbidden signals that the caller does not own the hold it is
    // trying to renew, release or commit.
    ErrForbidden = errors.New("forbidden")
    // ErrExpiredAlready signals a renewal attempted after the hold's
    // expiry passed.  A stale renewal must not resurrect a hold; the
    // caller has to request a fresh one.
    ErrExpiredAlready = errors.New("hold already expired")
    // ErrHoldMismatch signals a commit referencing a hold that is gone,
    // expired, or does not exactly cover the seats being booked.
    ErrHoldMismatch = errors.New("hold mismatch")
    // ErrAlreadyCancelled signals a second cancellation of the same
    // booking; the confirmed count is only ever decremented once.
    ErrAlreadyCancelled = errors.New("booking already cancelled")
    // ErrStorageUnavailable wraps persistence failures.  Interactive
    // operations surface it immediately so the caller can retry; the
    // sweeper logs it and retries the trip on the next cycle.
    ErrStorageUnavailable = errors.New("storage unavailable")
)

// SeatConflictError carries the specific seats that were already taken so
// a client can re-render an updated seat map instead of blindly retrying.
type SeatConflictError struct {
    Seats []uint32
}

func (e *SeatConflictError) Error() string {
    return fmt.Sprintf("seat conflict: seats %v are already held or booked", e.Seats)
}

// Is makes errors.Is(err, ErrSeatConflict) match.
func (e *SeatConflictError) Is(target error) bool { return target == ErrSeatConflict }

// CapacityError reports how many seats the channel has left so a client
// can adjust the request rather than repeat a doomed one.
type CapacityError struct {
    Channel   model.Channel
    Requested uint32
    Available uint32
}

func (e *CapacityError) Error() string {
    return fmt.Sprintf("channel %s capacity exceeded: requested %d, available %d",
        e.Channel, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// InvalidSeatsError names the offending seats (out of range or duplicated)
// alongside a short reason.
type InvalidSeatsError struct {
    Reason string
    Seats  []uint32
}

func (e *InvalidSeatsError) Error() string {
    if len(e.Seats) == 0 {
        return "invalid seats: " + e.Reason
    }
    return fmt.Sprintf("invalid seats %v: %s", e.Seats, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidSeats) match.
func (e *InvalidSeatsError) Is(target error) bool { return target == ErrInvalidSeats }

// storageError wraps a persistence failure in ErrStorageUnavailable while
// keeping the underlying cause in the message.
func storageError(err error) error {
    return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
