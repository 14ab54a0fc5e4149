// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// committed.  It carries enough information for downstream consumers
// (ticket email/SMS notification, analytics) to act without querying the
// primary database.
type BookingConfirmedEvent struct {
    BookingID   string   `json:"booking_id"`
    TripID      uint64   `json:"trip_id"`
    Channel     string   `json:"channel"`
    SeatNumbers []uint32 `json:"seat_numbers"`
    FareCents   uint32   `json:"fare_cents"`
    OwnerRef    string   `json:"owner_ref"`
    ConfirmedAt string   `json:"confirmed_at"`
}
