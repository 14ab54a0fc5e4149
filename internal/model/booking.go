package model

import "time"

// Booking status values.  A booking is immutable after creation except for
// the one-way transition CONFIRMED -> CANCELLED.
const (
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
)

// Booking records a permanent seat purchase on a trip.  Bookings are
// created only by the booking committer, either by converting a hold
// (online checkout) or directly without one (offline conductor sale).
// Cancellation returns the seats to the channel's pool and is the only
// permitted mutation after creation.
//
// Fields:
//  ID          – UUID assigned at commit time.
//  TripID      – trip on which the seats were purchased.
//  Channel     – sales channel the purchase counts against.
//  SeatNumbers – the purchased seats.
//  FareCents   – total fare in cents; pricing happens upstream, the
//                engine only records the amount.
//  Status      – CONFIRMED or CANCELLED.
//  CreatedAt   – when the booking was committed.
type Booking struct {
    ID          string    // bookings.booking_id
    TripID      uint64    // bookings.trip_id
    Channel     Channel   // bookings.channel
    SeatNumbers []uint32  // booking_seats.seat_number
    FareCents   uint32    // bookings.fare_cents
    Status      string    // bookings.status
    CreatedAt   time.Time // bookings.created_at
}
