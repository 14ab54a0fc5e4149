package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// HoldRepo provides data access to the seat_holds and seat_hold_seats
// tables.  A hold row carries the claim's metadata; its seat numbers live
// one-per-row in seat_hold_seats.  All timestamps are stored in UTC.
// The engine is the single writer per trip, so these methods never see
// concurrent writes for the same hold.
type HoldRepo struct {
    db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// CreateTx inserts a hold and its seat rows within the provided
// transaction.  The caller must commit or roll back.
func (r *HoldRepo) CreateTx(ctx context.Context, tx *sql.Tx, hold *model.Hold) error {
    const q = `INSERT INTO seat_holds (hold_id, trip_id, channel, owner_ref, expires_at, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q,
        hold.ID, hold.TripID, string(hold.Channel), hold.OwnerRef,
        hold.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
        hold.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
    )
    if err != nil {
        return err
    }
    if len(hold.SeatNumbers) == 0 {
        return nil
    }
    query := `INSERT INTO seat_hold_seats (hold_id, seat_number) VALUES `
    args := make([]interface{}, 0, len(hold.SeatNumbers)*2)
    for i, seat := range hold.SeatNumbers {
        if i > 0 {
            query += ","
        }
        query += "(?, ?)"
        args = append(args, hold.ID, seat)
    }
    _, err = tx.ExecContext(ctx, query, args...)
    return err
}

// UpdateExpiry replaces a hold's expiry timestamp.
func (r *HoldRepo) UpdateExpiry(ctx context.Context, holdID string, expiresAt time.Time) error {
    const q = `UPDATE seat_holds SET expires_at = ? WHERE hold_id = ?`
    _, err := r.db.ExecContext(ctx, q, expiresAt.UTC().Format("2006-01-02 15:04:05"), holdID)
    return err
}

// DeleteTx removes the given holds and their seat rows within the
// provided transaction.  Passing an empty slice has no effect.
func (r *HoldRepo) DeleteTx(ctx context.Context, tx *sql.Tx, holdIDs []string) error {
    if len(holdIDs) == 0 {
        return nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(holdIDs)), ",")
    args := make([]interface{}, 0, len(holdIDs))
    for _, id := range holdIDs {
        args = append(args, id)
    }
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_hold_seats WHERE hold_id IN (`+placeholders+`)`, args...); err != nil {
        return err
    }
    _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE hold_id IN (`+placeholders+`)`, args...)
    return err
}

// ListActive returns every hold whose expiry is after the given instant,
// with seat numbers populated.  Rows already expired are left for the
// sweeper's lazy cleanup and simply skipped here.
func (r *HoldRepo) ListActive(ctx context.Context, now time.Time) ([]*model.Hold, error) {
    const q = `SELECT hold_id, trip_id, channel, owner_ref, expires_at, created_at
               FROM seat_holds WHERE expires_at > ?`
    rows, err := r.db.QueryContext(ctx, q, now.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var holds []*model.Hold
    index := make(map[string]int)
    for rows.Next() {
        var h model.Hold
        var channel string
        if err := rows.Scan(&h.ID, &h.TripID, &channel, &h.OwnerRef, &h.ExpiresAt, &h.CreatedAt); err != nil {
            return nil, err
        }
        h.Channel = model.Channel(channel)
        index[h.ID] = len(holds)
        holds = append(holds, &h)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(holds) == 0 {
        return holds, nil
    }
    // Populate seat numbers for all holds in one query.
    placeholders := make([]string, 0, len(holds))
    args := make([]interface{}, 0, len(holds))
    for _, h := range holds {
        placeholders = append(placeholders, "?")
        args = append(args, h.ID)
    }
    seatQ := `SELECT hold_id, seat_number FROM seat_hold_seats
              WHERE hold_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY hold_id, seat_number`
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
            holds[idx].SeatNumbers = append(holds[idx].SeatNumbers, seat)
        }
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }
    return holds, nil
}
