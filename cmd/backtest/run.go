package main

import (
	"fmt"
	"time"

	"stock_backtest/internal/feature/backtest/usecase"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	flagStart string
	flagEnd   string
	flagShort int
	flagLong  int
)

var runCmd = &cobra.Command{
	Use:   "run SYMBOL...",
	Short: "Backtest one or more symbols with the same parameters",
	Example: `  backtest run AAPL --start 2020-01-01 --end 2023-01-01
  backtest run AAPL TSLA --short 10 --long 200 --source twelvedata`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseDate(flagStart)
		if err != nil {
			return err
		}
		end, err := parseDate(flagEnd)
		if err != nil {
			return err
		}

		short, err := usecase.OptionalWindow(&flagShort)
		if err != nil {
			return fmt.Errorf("--short: %w", err)
		}
		long, err := usecase.OptionalWindow(&flagLong)
		if err != nil {
			return fmt.Errorf("--long: %w", err)
		}

		reqs := make([]usecase.Request, 0, len(args))
		for _, s := range args {
			reqs = append(reqs, usecase.Request{
				Symbol:      s,
				Start:       start,
				End:         end,
				ShortWindow: short,
				LongWindow:  long,
			})
		}
		return execute(cmd, runOptions{source: flagSource}, reqs)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagStart, "start", "", "first day (YYYY-MM-DD, default: 3 years before --end)")
	runCmd.Flags().StringVar(&flagEnd, "end", "", "last day (YYYY-MM-DD, default: today)")
	runCmd.Flags().IntVar(&flagShort, "short", usecase.DefaultShortWindow, "short moving-average window")
	runCmd.Flags().IntVar(&flagLong, "long", usecase.DefaultLongWindow, "long moving-average window")
	rootCmd.AddCommand(runCmd)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
