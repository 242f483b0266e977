package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// RateLimitConfig drives the Redis token bucket middleware.  Capacity tokens
// are available per key and RefillTokens are added every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_user_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`
}

// LoadRateLimitConfig parses the RATE_LIMIT_* variables.  Malformed values
// fall back to the defaults and out-of-range values are clamped.
func LoadRateLimitConfig() RateLimitConfig {
	def, err := env.ParseAs[RateLimitConfig]()
	if err != nil {
		def = RateLimitConfig{
			Enabled:        true,
			Capacity:       60,
			RefillTokens:   1,
			RefillInterval: time.Second,
			TTL:            10 * time.Minute,
			KeyStrategy:    "ip_user_route",
			Prefix:         "rl",
		}
	}
	return def.normalized()
}

func (def RateLimitConfig) normalized() RateLimitConfig {
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
