package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stock_backtest/internal/app/di"
	candlesadapters "stock_backtest/internal/feature/candles/adapters"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
	"stock_backtest/internal/platform/logging"
	infraredis "stock_backtest/internal/platform/redis"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	flagSource   string
	flagFrom     string
	flagTo       string
	flagRegister []string
	flagMarket   string
	flagTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ingest [SYMBOL...]",
	Short: "Backfill daily candles into the database",
	Long: `Fetch daily candles from a market data provider and upsert them into the
candles table. Without arguments every active symbol is ingested.`,
	SilenceUsage: true,
	RunE:         runIngest,
}

func init() {
	rootCmd.Flags().StringVar(&flagSource, "source", config.SourceTwelveData, "market data provider: twelvedata or alpaca")
	rootCmd.Flags().StringVar(&flagFrom, "from", "", "first day (YYYY-MM-DD, default: 3 years before --to)")
	rootCmd.Flags().StringVar(&flagTo, "to", "", "last day (YYYY-MM-DD, default: today)")
	rootCmd.Flags().StringSliceVar(&flagRegister, "register", nil, "symbols to mark active before ingesting")
	rootCmd.Flags().StringVar(&flagMarket, "market", "US", "market name stored with --register")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Minute, "overall deadline")
}

func main() {
	config.LoadDotEnv()
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	from, to, err := dateRange(flagFrom, flagTo, time.Now())
	if err != nil {
		return err
	}
	market, err := di.NewMarket(flagSource)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	gdb, err := db.Open(db.LoadConfigFromEnv())
	if err != nil {
		return err
	}

	// 取り込み後に古いキャッシュが残らないよう、Redisがあればキャッシュ経由で保存する
	var rdb *redisv9.Client
	if rc := infraredis.LoadConfig(); rc.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, rc); err == nil {
			rdb = tmp
			defer func() { _ = rdb.Close() }()
		}
	}
	candleRepo := di.NewCandleRepository(rdb, candlesadapters.NewCandleRepository(gdb))
	symbolUC := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(gdb))

	if len(flagRegister) > 0 {
		if err := symbolUC.Register(ctx, flagMarket, flagRegister); err != nil {
			return fmt.Errorf("failed to register symbols: %w", err)
		}
	}

	symbols := args
	if len(symbols) == 0 {
		if symbols, err = symbolUC.ListActiveCodes(ctx); err != nil {
			return fmt.Errorf("failed to load symbols: %w", err)
		}
	}

	uc := candlesusecase.NewIngestUsecase(market.Repo, candleRepo, market.Limiter)
	summary, err := uc.IngestAll(ctx, symbols, from, to)
	slog.Info("ingest finished",
		"source", flagSource,
		"from", from.Format(dateLayout),
		"to", to.Format(dateLayout),
		"symbols", summary.Symbols,
		"candles", summary.Candles,
		"failed", strings.Join(summary.Failed, ","),
	)
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d symbols failed", len(summary.Failed), summary.Symbols)
	}
	return nil
}

// dateRange resolves --from/--to. to defaults to today (UTC) and from to three years before to.
func dateRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		to = t
	}
	from := to.AddDate(-3, 0, 0)
	if fromStr != "" {
		f, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		from = f
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", from.Format(dateLayout), to.Format(dateLayout))
	}
	return from, to, nil
}
