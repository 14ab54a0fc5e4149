package inventory

import (
    "context"
    "log"
    "time"
)

// Sweeper periodically reclaims expired holds.  It is the safety net
// behind the engine's expire-on-touch pruning: a trip nobody touches
// still gets its seats back within one sweep interval.  The sweep runs
// through the same per-trip guard as interactive operations, so it can
// never race a concurrent commit into an inconsistent state.
type Sweeper struct {
    engine   *Engine
    interval time.Duration
}

// NewSweeper builds a sweeper over the engine.  The interval is clamped
// to one second to avoid a busy loop on misconfiguration.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
    if interval < time.Second {
        interval = time.Second
    }
    return &Sweeper{engine: engine, interval: interval}
}

// Run sweeps on the fixed cadence until the context is cancelled.  It is
// meant to be started once, as its own goroutine, from main.
func (s *Sweeper) Run(ctx context.Context) {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if swept := s.engine.SweepExpired(ctx); swept > 0 {
                log.Printf("sweep: reclaimed expired holds on %d trip(s)", swept)
            }
        }
    }
}
