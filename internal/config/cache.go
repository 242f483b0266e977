package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is disabled.
// Methods lists the HTTP methods to cache and TTL the lifetime of entries.
// KeyStrategy determines which parts of the request contribute to the key.
type CacheConfig struct {
	Enabled      bool   `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   string `env:"CACHE_METHODS" envDefault:"GET"`
	Methods      map[string]bool
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	// AvailabilitySize bounds the in-process blocked-day cache (entries = ads).
	AvailabilitySize int64         `env:"AVAILABILITY_CACHE_SIZE" envDefault:"1000"`
	AvailabilityTTL  time.Duration `env:"AVAILABILITY_CACHE_TTL" envDefault:"5m"`
}

// LoadCacheConfig reads the CACHE_* variables.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	cfg, err := env.ParseAs[CacheConfig]()
	if err != nil {
		cfg = CacheConfig{
			Enabled:          true,
			MethodList:       "GET",
			TTL:              30 * time.Second,
			KeyStrategy:      "route_query",
			Prefix:           "cache",
			MaxBodyBytes:     1 << 20,
			AvailabilitySize: 1000,
			AvailabilityTTL:  5 * time.Minute,
		}
	}
	cfg.Methods = parseMethods(cfg.MethodList)
	if cfg.TTL <= 0 {
		cfg.TTL = time.Second
	}
	return cfg
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
