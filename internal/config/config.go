package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to warn about insecure development defaults
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// defaultJWTSecret is the signing secret used when JWT_SECRET is unset.
// It exists so the server can boot in a development environment without a
// .env file; running with it in production is a configuration error and
// a warning is logged on startup.
const defaultJWTSecret = "super-secret-key-for-development"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations,
// costs and size caps.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
    UploadDir      string // directory where report photos are stored
    MaxUploadBytes int64  // hard cap on an uploaded photo's size in bytes
}

// Load reads configuration values from environment variables and returns a
// Config.  Every value has a development default so the server can start
// without any environment set; the defaults mirror a local MySQL install
// and must not be used in production.
func Load() Config {
    cfg := Config{
        Env:            env("APP_ENV", "dev"),               // environment (dev/test/prod)
        Port:           env("APP_PORT", "5000"),             // port to bind the HTTP server
        DBUser:         env("DB_USER", "root"),              // database user
        DBPass:         os.Getenv("DB_PASSWORD"),            // database password (empty allowed)
        DBHost:         env("DB_HOST", "127.0.0.1"),         // database host
        DBPort:         env("DB_PORT", "3306"),              // database port
        DBName:         env("DB_NAME", "cleanwatercheck"),   // database name
        JWTSecret:      env("JWT_SECRET", defaultJWTSecret), // secret used for signing JWTs
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 1440),  // access tokens live 24h by default
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),   // TTL for refresh tokens in days
        BcryptCost:     envInt("BCRYPT_COST", 10),             // bcrypt cost factor
        UploadDir:      env("UPLOAD_DIR", "uploads"),          // photo storage directory
        MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5<<20)), // 5 MiB photo cap
    }
    if cfg.JWTSecret == defaultJWTSecret && cfg.Env != "dev" {
        log.Printf("config: JWT_SECRET is the development default; set a real secret before going live")
    }
    return cfg
}

// env retrieves the value of an environment variable, falling back to def
// when the variable is unset or empty.
func env(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envInt is like env() but converts the retrieved string into an integer.
// A value that does not parse falls back to the default.
func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("config: invalid int for %s: %q (using %d)", key, v, def)
        return def
    }
    return n
}
