// Package router assembles the HTTP API.
package router

import (
	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	platformhandler "stock_backtest/internal/platform/http/handler"
	"stock_backtest/internal/platform/http/middleware"
	jwtmw "stock_backtest/internal/platform/jwt"
	"stock_backtest/internal/platform/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers are the feature handlers mounted behind authentication.
type Handlers struct {
	Candles   *candleshandler.CandlesHandler
	Symbols   *symbollisthandler.SymbolHandler
	Backtests *backtesthandler.BacktestHandler
}

// Options configures the public surface of the router.
type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	Metrics            *metrics.Collector  // nil disables HTTP instrumentation
	Gatherer           prometheus.Gatherer // nil disables /metrics
	ReadyChecks        []platformhandler.Check
	ClientQuota        gin.HandlerFunc // nil disables the per-client quota
}

func NewRouter(h Handlers, opt Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(nil), gin.Recovery())

	if len(opt.CORSAllowedOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opt.CORSAllowedOrigins
		cfg.AddAllowHeaders("Authorization")
		r.Use(cors.New(cfg))
	}
	if opt.Metrics != nil {
		r.Use(opt.Metrics.GinMiddleware())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.GET("/readyz", platformhandler.Ready(opt.ReadyChecks...))
	if opt.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opt.Gatherer, promhttp.HandlerOpts{})))
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opt.JWTSecret))
	if opt.ClientQuota != nil {
		auth.Use(opt.ClientQuota)
	}
	{
		auth.GET("/candles/:code", h.Candles.GetCandlesHandler)
		auth.GET("/symbols", h.Symbols.List)
		auth.GET("/backtests/:code", h.Backtests.GetBacktestHandler)
		auth.POST("/backtests", h.Backtests.PostBacktestsHandler)
	}

	return r
}
