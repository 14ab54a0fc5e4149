package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/inventory"
    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/queue"
)

// BookingHandler exposes booking commit and cancellation.  Payment (or
// the conductor's cash sale) is settled before these endpoints are called;
// the engine treats it as a pre-validated external fact and never waits on
// a gateway while holding a trip's guard.
type BookingHandler struct {
    Engine *inventory.Engine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be non-nil.
func NewBookingHandler(engine *inventory.Engine) *BookingHandler {
    if engine == nil {
        panic("nil engine passed to NewBookingHandler")
    }
    return &BookingHandler{Engine: engine}
}

// CommitBooking handles POST /v1/trips/:id/bookings.  Online customers
// pass the hold_id from their checkout; conductors selling to walk-up
// passengers omit it and commit directly on the offline channel.  Direct
// offline commits require the CONDUCTOR (or ADMIN) role.
func (h *BookingHandler) CommitBooking(c echo.Context) error {
    owner, err := ownerRef(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tripID, err := parseTripID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Channel     string   `json:"channel"`
        SeatNumbers []uint32 `json:"seat_numbers"`
        FareCents   uint32   `json:"fare_cents"`
        HoldID      string   `json:"hold_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    channel, ok := model.ParseChannel(body.Channel)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel"})
    }
    if channel == model.ChannelOffline {
        if role := currentRole(c); role != model.RoleConductor && role != model.RoleAdmin {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "offline sales require conductor role"})
        }
    }
    booking, err := h.Engine.CommitBooking(c.Request().Context(), tripID, channel, body.SeatNumbers, body.FareCents, body.HoldID, owner)
    if err != nil {
        return engineError(c, err)
    }

    // Notify downstream consumers (ticket email/SMS) off the request path.
    // A publish failure is logged inside the publisher and never unwinds a
    // committed booking.
    event := queue.BookingConfirmedEvent{
        BookingID:   booking.ID,
        TripID:      booking.TripID,
        Channel:     string(booking.Channel),
        SeatNumbers: booking.SeatNumbers,
        FareCents:   booking.FareCents,
        OwnerRef:    owner,
        ConfirmedAt: booking.CreatedAt.UTC().Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := queue.PublishBookingConfirmed(ctx, event); err != nil {
            log.Printf("booking %s: publish confirmed event failed: %v", booking.ID, err)
        }
    }()

    return c.JSON(http.StatusCreated, echo.Map{
        "booking_id":   booking.ID,
        "trip_id":      booking.TripID,
        "channel":      booking.Channel,
        "seat_numbers": booking.SeatNumbers,
        "fare_cents":   booking.FareCents,
        "status":       booking.Status,
    })
}

// CancelBooking handles DELETE /v1/bookings/:id.  Cancellation is the only
// way confirmed capacity returns to the pool; a second cancellation gets
// 409 and never double-decrements.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    bookingID := c.Param("id")
    if bookingID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Engine.CancelBooking(c.Request().Context(), bookingID); err != nil {
        return engineError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
