package config

// This file defines the Redis client constructor.  Redis backs the
// distributed rate limiter and the HTTP response cache.  When the server
// cannot be reached at startup the constructor returns nil and callers
// degrade by disabling both middlewares.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the REDIS_* variables.  Addr is the host:port shorthand;
// Host and Port take precedence when both are set.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	TLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

func (rc RedisConfig) address() string {
	if rc.Host != "" && rc.Port != "" {
		return rc.Host + ":" + rc.Port
	}
	if rc.Addr == "" {
		return "localhost:6379"
	}
	return rc.Addr
}

// NewRedisClient instantiates a Redis client from the environment and pings
// it with a short timeout.  The returned client is nil when the environment
// is malformed or the server is unreachable.
func NewRedisClient() *redis.Client {
	rc, err := env.ParseAs[RedisConfig]()
	if err != nil {
		return nil
	}
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.address(),
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
