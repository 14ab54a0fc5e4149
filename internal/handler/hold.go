package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/inventory"
    "github.com/iliyamo/bus-seat-reservation/internal/model"
)

// HoldHandler exposes the hold lifecycle over HTTP: create, renew and
// release.  All methods assume JWT authentication has already run; the
// authenticated subject becomes the hold's owner reference.  The engine
// performs every validation under the trip's guard, so the handler only
// parses, delegates and translates errors.
type HoldHandler struct {
    Engine     *inventory.Engine
    DefaultTTL time.Duration
}

// NewHoldHandler constructs a HoldHandler.  The engine must be non-nil.
func NewHoldHandler(engine *inventory.Engine, defaultTTL time.Duration) *HoldHandler {
    if engine == nil {
        panic("nil engine passed to NewHoldHandler")
    }
    return &HoldHandler{Engine: engine, DefaultTTL: defaultTTL}
}

type holdResponse struct {
    HoldID      string   `json:"hold_id"`
    TripID      uint64   `json:"trip_id"`
    Channel     string   `json:"channel"`
    SeatNumbers []uint32 `json:"seat_numbers"`
    ExpiresAt   string   `json:"expires_at"`
}

func newHoldResponse(h *model.Hold) holdResponse {
    return holdResponse{
        HoldID:      h.ID,
        TripID:      h.TripID,
        Channel:     string(h.Channel),
        SeatNumbers: h.SeatNumbers,
        ExpiresAt:   h.ExpiresAt.UTC().Format(time.RFC3339),
    }
}

// CreateHold handles POST /v1/trips/:id/holds.  The request body carries
// the channel, the seat numbers and an optional TTL in seconds (clamped
// to the configured default when absent or non-positive).  Offline holds
// are unusual (conductors normally commit directly), but a conductor may
// still hold seats while a group boards; like offline commits they
// require the conductor role.
func (h *HoldHandler) CreateHold(c echo.Context) error {
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
        TTLSeconds  int      `json:"ttl_seconds"`
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
            return c.JSON(http.StatusForbidden, echo.Map{"error": "offline holds require conductor role"})
        }
    }
    ttl := h.DefaultTTL
    if body.TTLSeconds > 0 {
        ttl = time.Duration(body.TTLSeconds) * time.Second
    }
    hold, err := h.Engine.CreateHold(c.Request().Context(), tripID, channel, body.SeatNumbers, owner, ttl)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, newHoldResponse(hold))
}

// RenewHold handles PATCH /v1/holds/:id.  Only the hold's owner may renew,
// and only before the current expiry; a renewal arriving after expiry gets
// 410 Gone and must create a fresh hold.
func (h *HoldHandler) RenewHold(c echo.Context) error {
    owner, err := ownerRef(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    holdID := c.Param("id")
    if holdID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
    }
    var body struct {
        TTLSeconds int `json:"ttl_seconds"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ttl := h.DefaultTTL
    if body.TTLSeconds > 0 {
        ttl = time.Duration(body.TTLSeconds) * time.Second
    }
    hold, err := h.Engine.RenewHold(c.Request().Context(), holdID, owner, ttl)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, newHoldResponse(hold))
}

// ReleaseHold handles DELETE /v1/holds/:id.  Releasing a hold that is
// already gone returns 404; checkout-abandonment callbacks firing twice
// should treat that as success.
func (h *HoldHandler) ReleaseHold(c echo.Context) error {
    owner, err := ownerRef(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    holdID := c.Param("id")
    if holdID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
    }
    if err := h.Engine.ReleaseHold(c.Request().Context(), holdID, owner); err != nil {
        return engineError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
