package config

import "time"

// RateLimitConfig tunes the Redis token bucket. One bucket exists per
// (client IP, user, route) combination.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads the limiter settings from the environment
// and clamps them to sane minimums.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        getBool("RATE_LIMIT_ENABLED", true),
		Capacity:       getInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   getInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: mustDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            mustDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// A bucket key must outlive several refill intervals or an idle
	// bucket resets to full capacity early.
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
