package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// TripRepo provides data access to the trips table.  A trip row carries
// only the seat-inventory fields: total seats and the per-channel split
// supplied by the scheduling collaborator at creation time.  Route,
// vehicle and driver data live elsewhere in the platform.
type TripRepo struct {
    db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the provided database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// Create inserts a trip and populates the generated ID on the model.
func (r *TripRepo) Create(ctx context.Context, trip *model.Trip) error {
    const q = `INSERT INTO trips (total_seats, online_capacity, offline_capacity) VALUES (?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        trip.TotalSeats,
        trip.ChannelCapacity[model.ChannelOnline],
        trip.ChannelCapacity[model.ChannelOffline],
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    trip.ID = uint64(id)
    return nil
}

// ListAll returns every trip ordered by ID.  Used once at startup to
// rebuild the in-memory seat maps.
func (r *TripRepo) ListAll(ctx context.Context) ([]*model.Trip, error) {
    const q = `SELECT id, total_seats, online_capacity, offline_capacity, created_at FROM trips ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var trips []*model.Trip
    for rows.Next() {
        var t model.Trip
        var online, offline uint32
        if err := rows.Scan(&t.ID, &t.TotalSeats, &online, &offline, &t.CreatedAt); err != nil {
            return nil, err
        }
        t.ChannelCapacity = map[model.Channel]uint32{
            model.ChannelOnline:  online,
            model.ChannelOffline: offline,
        }
        trips = append(trips, &t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return trips, nil
}
