package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// Deps bundles everything route registration needs.  The Redis client may
// be nil, in which case rate limiting and snapshot caching are skipped.
type Deps struct {
	Cfg     config.Config
	Auth    *handler.AuthHandler
	Trips   *handler.TripHandler
	Holds   *handler.HoldHandler
	Booking *handler.BookingHandler
	Redis   *redis.Client
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the auth, trip, hold and booking endpoints.
// Unauthenticated operations live under /v1/auth; everything else
// requires a valid access token.  Seat-map reads are public so guests
// can preview availability before registering.
func RegisterAPI(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)

	// Public seat-map reads.  The snapshot endpoint sits behind a short
	// TTL response cache so a burst of seat-selection screens does not
	// hammer the engine; the live stream is never cached.
	snap := e.Group("/v1/trips")
	if d.Redis != nil {
		cacheCfg := config.LoadCacheConfig()
		snap.GET("/:id/seat-map", d.Trips.GetSeatMap, middleware.NewSnapshotCache(cacheCfg, d.Redis))
	} else {
		snap.GET("/:id/seat-map", d.Trips.GetSeatMap)
	}
	snap.GET("/:id/seat-map/live", d.Trips.StreamSeatMap)

	// Protected group: every mutating seat operation needs an access
	// token, and the per-user token bucket throttles hold churn.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	if d.Redis != nil {
		rlCfg := config.LoadRateLimitConfig()
		auth.Use(middleware.NewTokenBucket(rlCfg, d.Redis))
	}

	// Trip registration is an admin operation.
	auth.POST("/trips", d.Trips.CreateTrip,
		middleware.RequireRole(model.RoleAdmin))

	// Hold lifecycle: any authenticated account may take, renew and
	// release holds on its own behalf.
	auth.POST("/trips/:id/holds", d.Holds.CreateHold)
	auth.PATCH("/holds/:id", d.Holds.RenewHold)
	auth.DELETE("/holds/:id", d.Holds.ReleaseHold)

	// Booking commit and cancel.  Channel-specific role checks (offline
	// sales require a conductor) happen inside the handler because the
	// channel is part of the request body, not the route.
	auth.POST("/trips/:id/bookings", d.Booking.CommitBooking)
	auth.DELETE("/bookings/:id", d.Booking.CancelBooking,
		middleware.RequireRole(model.RoleConductor, model.RoleAdmin))
}
