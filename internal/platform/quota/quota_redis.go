// Package quota enforces a per-client request quota for the API using Redis counters.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"stock_backtest/internal/api"
	jwtmw "stock_backtest/internal/platform/jwt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DefaultPerMinute is the request budget of one client per minute.
const DefaultPerMinute = 60

// Decision is the outcome of one quota check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// RedisLimiter counts requests per client in fixed windows. Each window is one
// key <prefix>:<clientID>:<windowStartUnix> created with the window as TTL.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a RedisLimiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "quota"
	}
	if limit <= 0 {
		limit = DefaultPerMinute
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// windowKey returns the Redis key of the window starting at start.
func (l *RedisLimiter) windowKey(clientID string, start time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, clientID, start.Unix())
}

// Allow counts one request for clientID. On a Redis error the request is
// reported as allowed together with the error.
func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (Decision, error) {
	now := l.now()
	start := now.Truncate(l.window)
	key := l.windowKey(clientID, start)
	open := Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}

	// SET NX EX と INCR を1つのトランザクションで送り、キーが必ず期限付きで作られるようにする
	var incr *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		incr = pipe.Incr(ctx, key)
		return nil
	}); err != nil {
		return open, err
	}
	n := incr.Val()

	return Decision{
		Allowed:   n <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(l.limit-int(n), 0),
		ResetIn:   start.Add(l.window).Sub(now),
	}, nil
}

// Middleware enforces the quota for the authenticated client (falling back to
// the remote IP). It must run after jwtmw.AuthRequired.
func (l *RedisLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.GetString(jwtmw.ContextClientID)
		if client == "" {
			client = c.ClientIP()
		}

		d, err := l.Allow(c.Request.Context(), client)
		if err != nil {
			slog.Warn("quota check failed, allowing request", "client", client, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.ResetIn.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
