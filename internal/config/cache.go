package config

import (
    "time"
)

// CacheConfig defines settings for the seat-map snapshot cache.  Snapshot
// reads are explicitly allowed to be eventually consistent (a slightly
// stale availability display is tolerated; a stale write path is not), so
// the only cached route is the seat-map snapshot and the TTL stays short.
// When Enabled is false or no Redis client is configured, caching is
// disabled.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: envBool("CACHE_ENABLED", true),
        TTL:     envDur("CACHE_TTL", 2*time.Second),
        Prefix:  envStr("CACHE_PREFIX", "seatmap"),
    }
}
