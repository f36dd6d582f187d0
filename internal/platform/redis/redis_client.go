// Package redis builds the shared Redis client used by the candle cache and the run store.
package redis

import (
	"context"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Config holds the connection settings read from REDIS_* variables.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Enabled reports whether a host was configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// LoadConfig reads REDIS_HOST, REDIS_PORT (default 6379), REDIS_PASSWORD and REDIS_DB.
func LoadConfig() Config {
	cfg := Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if cfg.Port == "" {
		cfg.Port = "6379"
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DB = n
		} else {
			slog.Warn("ignoring invalid REDIS_DB", "value", v)
		}
	}
	return cfg
}

// NewRedisClient connects and pings. Callers treat an error as "run without Redis".
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}
