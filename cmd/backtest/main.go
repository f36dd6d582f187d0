// Command backtest runs moving-average crossover backtests from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/logging"

	"github.com/spf13/cobra"
)

var (
	flagSource   string
	flagParallel int
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run moving-average crossover backtests",
	Long: `Run dual moving-average crossover backtests against stored candles or a
market data provider and print buy-and-hold versus strategy performance.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "price source: db, twelvedata or alpaca (default: PRICE_SOURCE or db)")
	rootCmd.PersistentFlags().IntVar(&flagParallel, "parallel", 0, "concurrent runs (default: BACKTEST_MAX_PARALLEL or 4)")
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
