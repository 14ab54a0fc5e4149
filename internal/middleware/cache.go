package middleware

import (
    "bytes"
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
)

// snapshotWriter captures the response body while forwarding it to the
// client, so a successful snapshot can be stored after the handler runs.
type snapshotWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
}

func (w *snapshotWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *snapshotWriter) Write(b []byte) (int, error) {
    w.buf.Write(b)
    return w.ResponseWriter.Write(b)
}

// NewSnapshotCache returns a middleware that caches seat-map snapshot
// responses in Redis for a short TTL.  Only GET requests are cached, keyed
// by the trip ID path parameter.  Seat availability shown to a browsing
// user may lag by up to the TTL; every write path still goes through the
// trip's guard, so a stale display can never oversell.
func NewSnapshotCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cfg.Prefix + ":trip:" + c.Param("id")

            if body, err := rdb.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
                c.Response().Header().Set("X-Cache", "HIT")
                return c.JSONBlob(http.StatusOK, body)
            }

            w := &snapshotWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = w
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if w.status == http.StatusOK && w.buf.Len() > 0 {
                // Use a fresh context: the request may already be done and
                // the cache write should still land.
                _ = rdb.SetEx(context.Background(), key, w.buf.Bytes(), cfg.TTL).Err()
            }
            return nil
        }
    }
}
