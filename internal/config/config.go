package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time expresses the hold TTL and sweep cadence as durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// hold window and sweep cadence.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret used to sign JWTs
    AccessTTLMin  int           // access token time‑to‑live in minutes
    BcryptCost    int           // bcrypt cost for password hashing
    HoldTTL       time.Duration // default seat hold time‑to‑live
    SweepInterval time.Duration // cadence of the expiry sweeper
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The hold TTL and
// sweep interval have operational defaults (minutes and one minute
// respectively) and may be overridden.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),                 // environment (dev/test/prod)
        Port:          must("APP_PORT"),                // port to bind the HTTP server
        DBUser:        must("DB_USER"),                 // database user
        DBPass:        os.Getenv("DB_PASS"),            // database password (empty allowed)
        DBHost:        must("DB_HOST"),                 // database host
        DBPort:        must("DB_PORT"),                 // database port
        DBName:        must("DB_NAME"),                 // database name
        JWTSecret:     must("JWT_SECRET"),              // secret used for signing JWTs
        AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"), // TTL for access tokens in minutes
        BcryptCost:    mustInt("BCRYPT_COST"),          // bcrypt cost factor
        HoldTTL:       minutes("HOLD_TTL_MIN", 5),      // checkout window granted per hold
        SweepInterval: seconds("SWEEP_INTERVAL_SEC", 60), // how often expired holds are reclaimed
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// minutes reads an optional integer variable expressed in minutes, falling
// back to the given default when unset or invalid.
func minutes(key string, def int) time.Duration {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            return time.Duration(n) * time.Minute
        }
        log.Printf("invalid int for %s: %q, using default %dm", key, v, def)
    }
    return time.Duration(def) * time.Minute
}

// seconds reads an optional integer variable expressed in seconds, falling
// back to the given default when unset or invalid.
func seconds(key string, def int) time.Duration {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            return time.Duration(n) * time.Second
        }
        log.Printf("invalid int for %s: %q, using default %ds", key, v, def)
    }
    return time.Duration(def) * time.Second
}
