package model

import "time"

// Hold represents a temporary claim on specific seats while a buyer
// completes checkout.  A hold reserves its seats against both channels'
// availability without yet confirming a sale, and expires automatically
// at ExpiresAt unless it is renewed, released, or converted into a
// booking first.  Once terminated a hold is gone for good: a stale hold
// identifier can never resurrect seats.
//
// Fields:
//  ID          – opaque random token generated at creation, returned to
//                the client for renewal/release/commit correlation.
//  TripID      – trip whose seats are claimed.
//  Channel     – sales channel the claim counts against.
//  SeatNumbers – the claimed seats, unique within the hold.
//  OwnerRef    – opaque identifier of the requesting session/user; used
//                only to authorize renewal and release.
//  CreatedAt   – when the hold was created.
//  ExpiresAt   – when the hold lapses; always after CreatedAt.
type Hold struct {
    ID          string    // seat_holds.hold_id
    TripID      uint64    // seat_holds.trip_id
    Channel     Channel   // seat_holds.channel
    SeatNumbers []uint32  // seat_hold_seats.seat_number
    OwnerRef    string    // seat_holds.owner_ref
    CreatedAt   time.Time // seat_holds.created_at
    ExpiresAt   time.Time // seat_holds.expires_at
}

// Expired reports whether the hold has lapsed at the given instant.
func (h *Hold) Expired(now time.Time) bool {
    return !h.ExpiresAt.After(now)
}
