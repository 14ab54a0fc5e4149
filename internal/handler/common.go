package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/inventory"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores the raw claim value, whose concrete type depends
// on how the JSON number was decoded.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// ownerRef returns the string form of the authenticated subject.  It is
// recorded on holds as the owner reference and checked by the engine when
// the hold is renewed, released or committed.
func ownerRef(c echo.Context) (string, error) {
    id, err := getUserID(c)
    if err != nil {
        return "", err
    }
    return strconv.FormatUint(id, 10), nil
}

// currentRole returns the role claim injected by the JWT middleware.
func currentRole(c echo.Context) string {
    if role, ok := c.Get("role").(string); ok {
        return role
    }
    return ""
}

// engineError translates an engine error into the matching HTTP response.
// Seat conflicts and capacity failures include the detail the client needs
// to re-render an updated seat map instead of retrying blindly.
func engineError(c echo.Context, err error) error {
    var conflict *inventory.SeatConflictError
    if errors.As(err, &conflict) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":             "seat conflict",
            "conflicting_seats": conflict.Seats,
        })
    }
    var capErr *inventory.CapacityError
    if errors.As(err, &capErr) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":           "capacity exceeded",
            "channel":         capErr.Channel,
            "requested_seats": capErr.Requested,
            "available_seats": capErr.Available,
        })
    }
    switch {
    case errors.Is(err, inventory.ErrInvalidSeats):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, inventory.ErrTripNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
    case errors.Is(err, inventory.ErrHoldNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
    case errors.Is(err, inventory.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case errors.Is(err, inventory.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, inventory.ErrExpiredAlready):
        return c.JSON(http.StatusGone, echo.Map{"error": "hold already expired"})
    case errors.Is(err, inventory.ErrHoldMismatch):
        return c.JSON(http.StatusConflict, echo.Map{"error": "hold mismatch"})
    case errors.Is(err, inventory.ErrAlreadyCancelled):
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
    case errors.Is(err, inventory.ErrStorageUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable, retry"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// parseTripID parses the :id path parameter.
func parseTripID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid trip id")
    }
    return id, nil
}
