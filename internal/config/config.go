package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv parses optional numeric and boolean settings
	"time"    // time parses duration-valued settings
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Token issuance happens outside this
// service; JWTSecret is only needed to verify bearer tokens.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to verify JWTs
	AMQPURL       string        // RabbitMQ connection URL (optional, events disabled when empty)
	HoldTTL       time.Duration // how long a seat hold blocks a seat
	SweepInterval time.Duration // how often the background sweeper reaps expired holds
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),                                // environment (dev/test/prod)
		Port:          must("APP_PORT"),                               // port to bind the HTTP server
		DBUser:        must("DB_USER"),                                // database user
		DBPass:        os.Getenv("DB_PASS"),                           // database password (empty allowed)
		DBHost:        must("DB_HOST"),                                // database host
		DBPort:        must("DB_PORT"),                                // database port
		DBName:        must("DB_NAME"),                                // database name
		JWTSecret:     must("JWT_SECRET"),                             // secret used to verify bearer tokens
		AMQPURL:       os.Getenv("AMQP_URL"),                          // broker URL, empty disables events
		HoldTTL:       mustDur("HOLD_TTL", 5*time.Minute),             // seat hold lifetime
		SweepInterval: mustDur("HOLD_SWEEP_INTERVAL", 1*time.Minute),  // sweeper cadence
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustDur parses a duration-valued variable, falling back to def when
// unset. An unparsable value is fatal.
func mustDur(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

// getEnv returns an optional variable or its default.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getBool parses an optional boolean variable, falling back to def on
// absence or a value strconv.ParseBool rejects.
func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getInt parses an optional integer variable, falling back to def on
// absence or a parse error.
func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
