package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_backtest/internal/app/di"
	"stock_backtest/internal/app/router"
	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	backtestusecase "stock_backtest/internal/feature/backtest/usecase"
	candlesadapters "stock_backtest/internal/feature/candles/adapters"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
	platformhandler "stock_backtest/internal/platform/http/handler"
	jwtmw "stock_backtest/internal/platform/jwt"
	"stock_backtest/internal/platform/logging"
	"stock_backtest/internal/platform/metrics"
	"stock_backtest/internal/platform/quota"
	infraredis "stock_backtest/internal/platform/redis"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadDotEnv()
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	secret, err := jwtmw.SecretFromEnv()
	if err != nil {
		return err
	}

	// db
	gdb, err := db.Open(db.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis
	var rdb *redisv9.Client
	if rc := infraredis.LoadConfig(); rc.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, rc); err != nil {
			slog.Warn("Redis unavailable. Running without cache and client quota.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Repository（Redisキャッシュでラップ）
	candleRepo := di.NewCandleRepository(rdb, candlesadapters.NewCandleRepository(gdb))
	symbolRepo := symbollistadapters.NewSymbolRepository(gdb)
	prices, err := di.NewPriceSource(cfg.PriceSource, candleRepo)
	if err != nil {
		return err
	}

	// Usecase
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolRepo)
	candlesUC := candlesusecase.NewCandlesUsecase(candleRepo)
	backtestUC := backtestusecase.NewBacktestUsecase(prices, symbolUC, collector, backtestusecase.Config{
		Calendar:    cfg.Calendar,
		MaxParallel: cfg.MaxParallel,
		Source:      cfg.PriceSource,
	})

	// Handler
	checks := []platformhandler.Check{{Name: "db", Ping: sqlDB.PingContext}}
	var clientQuota gin.HandlerFunc
	if rdb != nil {
		perMin, err := config.PositiveInt("API_RATE_LIMIT_PER_MIN", quota.DefaultPerMinute)
		if err != nil {
			return err
		}
		clientQuota = quota.NewRedisLimiter(rdb, "quota", perMin, time.Minute).Middleware()
		checks = append(checks, platformhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	// ルータ生成
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.NewRouter(router.Handlers{
		Candles:   candleshandler.NewCandlesHandler(candlesUC),
		Symbols:   symbollisthandler.NewSymbolHandler(symbolUC),
		Backtests: backtesthandler.NewBacktestHandler(backtestUC),
	}, router.Options{
		JWTSecret:          secret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            collector,
		Gatherer:           reg,
		ReadyChecks:        checks,
		ClientQuota:        clientQuota,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "price_source", cfg.PriceSource)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
