package main

import (
	"fmt"
	"io"

	"stock_backtest/internal/app/di"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/cli"
	"stock_backtest/internal/feature/backtest/usecase"
	candlesadapters "stock_backtest/internal/feature/candles/adapters"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"

	"github.com/spf13/cobra"
)

type runOptions struct {
	source   string
	calendar *cli.CalendarSpec
}

// execute builds the usecase for opts, runs reqs and prints one report per request.
func execute(cmd *cobra.Command, opts runOptions, reqs []usecase.Request) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	if opts.source != "" {
		if err := config.ValidateSource(opts.source); err != nil {
			return err
		}
		app.PriceSource = opts.source
	}
	if flagParallel > 0 {
		app.MaxParallel = flagParallel
	}
	file := cli.BatchFile{Calendar: opts.calendar}

	uc, err := newUsecase(app, file.CalendarOrDefault(app.Calendar))
	if err != nil {
		return err
	}

	items, err := uc.RunBatch(cmd.Context(), reqs)
	if err != nil {
		return err
	}
	return printItems(cmd.OutOrStdout(), cmd.ErrOrStderr(), items)
}

func newUsecase(app config.App, calendar entity.Calendar) (*usecase.BacktestUsecase, error) {
	cfg := usecase.Config{Calendar: calendar, MaxParallel: app.MaxParallel, Source: app.PriceSource}

	if app.PriceSource != config.SourceDB {
		prices, err := di.NewPriceSource(app.PriceSource, nil)
		if err != nil {
			return nil, err
		}
		return usecase.NewBacktestUsecase(prices, nil, nil, cfg), nil
	}

	gdb, err := db.Open(db.LoadConfigFromEnv())
	if err != nil {
		return nil, err
	}
	prices, err := di.NewPriceSource(app.PriceSource, candlesadapters.NewCandleRepository(gdb))
	if err != nil {
		return nil, err
	}
	symbols := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(gdb))
	return usecase.NewBacktestUsecase(prices, symbols, nil, cfg), nil
}

// printItems writes reports to out and failures to errOut. It fails when any run failed.
func printItems(out, errOut io.Writer, items []usecase.BatchItem) error {
	failed := 0
	for i, it := range items {
		if it.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", it.Request.Symbol, it.Err)
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := cli.PrintReport(out, it.Report); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backtests failed", failed, len(items))
	}
	return nil
}
