// Package metrics exposes Prometheus instrumentation for backtest runs and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_backtest"

// Collector records backtest and HTTP metrics on one registry.
type Collector struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	pricePoints  prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector registers all collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backtest_runs_total",
				Help:      "Backtest runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backtest_run_duration_seconds",
				Help:      "Wall time of a backtest run including price retrieval",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"outcome"},
		),
		pricePoints: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backtest_price_points",
				Help:      "Number of closes evaluated per successful run",
				Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveRun records one backtest run. points is ignored unless outcome is "ok".
func (c *Collector) ObserveRun(outcome string, d time.Duration, points int) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == "ok" {
		c.pricePoints.Observe(float64(points))
	}
}

// GinMiddleware counts requests by matched route template so path params do not explode cardinality.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
