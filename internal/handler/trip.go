package handler

import (
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/broadcast"
    "github.com/iliyamo/bus-seat-reservation/internal/inventory"
    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// TripHandler exposes trip registration, the seat-map snapshot query, and
// the live availability stream.  Trip capacity splits come from the
// scheduling collaborator at registration time; this service records and
// enforces them but never derives them from a vehicle record itself.
type TripHandler struct {
    Engine *inventory.Engine
    Hub    *broadcast.Hub
}

// NewTripHandler constructs a TripHandler.  Both dependencies must be non-nil.
func NewTripHandler(engine *inventory.Engine, hub *broadcast.Hub) *TripHandler {
    if engine == nil || hub == nil {
        panic("nil dependency passed to NewTripHandler")
    }
    return &TripHandler{Engine: engine, Hub: hub}
}

// CreateTrip handles POST /v1/trips.  The body carries the vehicle's total
// seat count and the per-channel allotment decided by scheduling.
func (h *TripHandler) CreateTrip(c echo.Context) error {
    var body struct {
        TotalSeats      uint32            `json:"total_seats"`
        ChannelCapacity map[string]uint32 `json:"channel_capacity"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    capacity := make(map[model.Channel]uint32, len(body.ChannelCapacity))
    for raw, n := range body.ChannelCapacity {
        ch, ok := model.ParseChannel(raw)
        if !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown channel " + raw})
        }
        capacity[ch] = n
    }
    trip, err := h.Engine.RegisterTrip(c.Request().Context(), body.TotalSeats, capacity)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "trip_id":          trip.ID,
        "total_seats":      trip.TotalSeats,
        "channel_capacity": trip.ChannelCapacity,
    })
}

// GetSeatMap handles GET /v1/trips/:id/seat-map.  It returns the snapshot
// a seat-selection UI renders and a subscriber fetches before joining the
// live stream.  Responses may be served from the short-TTL Redis cache.
func (h *TripHandler) GetSeatMap(c echo.Context) error {
    tripID, err := parseTripID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    snap, err := h.Engine.Snapshot(tripID)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, snap)
}

// StreamSeatMap handles GET /v1/trips/:id/seat-map/live.  It implements
// the snapshot-then-subscribe handshake over server-sent events: the
// subscription is registered first, then a full snapshot is sent as the
// opening event, so no state change between the two can be missed.  Each
// subsequent event carries the full unavailable set, so a dropped event
// heals on the next one.
func (h *TripHandler) StreamSeatMap(c echo.Context) error {
    tripID, err := parseTripID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    sub := h.Hub.Subscribe(tripID, broadcast.DefaultBuffer)
    defer h.Hub.Unsubscribe(sub)

    snap, err := h.Engine.Snapshot(tripID)
    if err != nil {
        return engineError(c, err)
    }

    res := c.Response()
    res.Header().Set(echo.HeaderContentType, "text/event-stream")
    res.Header().Set("Cache-Control", "no-store")
    res.Header().Set("Connection", "keep-alive")
    res.WriteHeader(http.StatusOK)

    if err := writeSSE(c, "snapshot", snap); err != nil {
        return nil
    }

    ctx := c.Request().Context()
    for {
        select {
        case <-ctx.Done():
            return nil
        case delta, ok := <-sub.Events():
            if !ok {
                return nil
            }
            if err := writeSSE(c, "delta", delta); err != nil {
                return nil
            }
        }
    }
}

// writeSSE marshals the payload and writes one named server-sent event.
func writeSSE(c echo.Context, event string, payload interface{}) error {
    data, err := json.Marshal(payload)
    if err != nil {
        return err
    }
    if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data); err != nil {
        return err
    }
    c.Response().Flush()
    return nil
}
