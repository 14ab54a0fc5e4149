package inventory

import "time"

// Clock supplies the current time to the engine and the sweeper.  All
// expiry comparisons go through the same injected clock so tests can
// advance time deterministically instead of sleeping.
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }
