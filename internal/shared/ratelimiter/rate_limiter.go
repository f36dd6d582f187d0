// Package ratelimiter paces outbound calls to quota-limited market data APIs.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は、API呼び出しなどの操作の頻度を制限します。
// limit 回までは即座に通し、以降は interval/limit ごとに1回のペースで待たせます。
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter は interval あたり limit 回を許可するRateLimiterを生成します。
// limit が0以下の場合は無制限になります。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	every := rate.Every(interval / time.Duration(limit))
	return &RateLimiter{lim: rate.NewLimiter(every, limit)}
}

// Wait はトークンが得られるまでブロックします。ctx が先に終わった場合はそのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if r := rl.lim.Reserve(); r.OK() {
		delay := r.Delay()
		if delay == 0 {
			return nil
		}
		slog.Info("rate limit reached, waiting", "delay", delay)
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return rl.lim.Wait(ctx)
}
