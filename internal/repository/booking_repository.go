package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// BookingRepo provides data access to the bookings and booking_seats
// tables.  Bookings are immutable after insertion apart from the one-way
// status flip to CANCELLED.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking and its seat rows within the provided
// transaction.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, booking *model.Booking) error {
    const q = `INSERT INTO bookings (booking_id, trip_id, channel, fare_cents, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q,
        booking.ID, booking.TripID, string(booking.Channel), booking.FareCents, booking.Status,
        booking.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
    )
    if err != nil {
        return err
    }
    if len(booking.SeatNumbers) == 0 {
        return nil
    }
    query := `INSERT INTO booking_seats (booking_id, seat_number) VALUES `
    args := make([]interface{}, 0, len(booking.SeatNumbers)*2)
    for i, seat := range booking.SeatNumbers {
        if i > 0 {
            query += ","
        }
        query += "(?, ?)"
        args = append(args, booking.ID, seat)
    }
    _, err = tx.ExecContext(ctx, query, args...)
    return err
}

// MarkCancelled flips a confirmed booking to CANCELLED.  The engine has
// already rejected double cancellations under the trip's guard, so the
// status predicate is belt-and-braces against drift between memory and
// the database.
func (r *BookingRepo) MarkCancelled(ctx context.Context, bookingID string) error {
    const q = `UPDATE bookings SET status = ? WHERE booking_id = ? AND status = ?`
    _, err := r.db.ExecContext(ctx, q, model.BookingCancelled, bookingID, model.BookingConfirmed)
    return err
}

// ListConfirmed returns every confirmed booking with seat numbers
// populated.  Used once at startup to rebuild confirmed counts and the
// per-seat booking index.
func (r *BookingRepo) ListConfirmed(ctx context.Context) ([]*model.Booking, error) {
    const q = `SELECT booking_id, trip_id, channel, fare_cents, status, created_at
               FROM bookings WHERE status = ?`
    rows, err := r.db.QueryContext(ctx, q, model.BookingConfirmed)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var bookings []*model.Booking
    index := make(map[string]int)
    for rows.Next() {
        var b model.Booking
        var channel string
        if err := rows.Scan(&b.ID, &b.TripID, &channel, &b.FareCents, &b.Status, &b.CreatedAt); err != nil {
            return nil, err
        }
        b.Channel = model.Channel(channel)
        index[b.ID] = len(bookings)
        bookings = append(bookings, &b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(bookings) == 0 {
        return bookings, nil
    }
    placeholders := make([]string, 0, len(bookings))
    args := make([]interface{}, 0, len(bookings))
    for _, b := range bookings {
        placeholders = append(placeholders, "?")
        args = append(args, b.ID)
    }
    seatQ := `SELECT booking_id, seat_number FROM booking_seats
              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY booking_id, seat_number`
    srows, err := r.db.QueryContext(ctx, seatQ, args...)
    if err != nil {
        return nil, err
    }
    defer srows.Close()
    for srows.Next() {
        var id string
        var seat uint32
        if err := srows.Scan(&id, &seat); err != nil {
            return nil, err
        }
        if idx, ok := index[id]; ok {
            bookings[idx].SeatNumbers = append(bookings[idx].SeatNumbers, seat)
        }
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }
    return bookings, nil
}
