package config

import "time"

// CacheConfig tunes the Redis response cache. Only successful GET
// responses are cached; bodies larger than MaxBodyBytes are skipped.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the cache settings from the environment,
// falling back to defaults when unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getBool("CACHE_ENABLED", true),
		TTL:          mustDur("CACHE_TTL", 30*time.Second),
		Prefix:       getEnv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: getInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
