// Package cli renders backtest reports for the terminal and reads batch run files.
package cli

import (
	"fmt"
	"io"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"

	"github.com/shopspring/decimal"
)

// LastEvents is how many trailing events PrintReport lists.
const LastEvents = 5

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// PrintReport writes a human-readable summary of rep to w.
func PrintReport(w io.Writer, rep *usecase.Report) error {
	res := rep.Result
	p := &printer{w: w}

	p.printf("=== %s Performance Metrics ===\n", rep.Symbol)
	p.printf("Period:   %s .. %s (%d prices", rep.Start.Format(dateLayout), rep.End.Format(dateLayout), len(res.Prices))
	if rep.Source != "" {
		p.printf(", source %s", rep.Source)
	}
	p.printf(")\n")
	p.printf("Windows:  short %d / long %d\n\n", res.ShortWindow, res.LongWindow)

	p.printf("%-14s %22s %22s\n", "", "Buy & Hold", "Strategy")
	p.printf("%-14s %22s %22s\n", "CAGR", percent(res.Market.CAGR), percent(res.Strategy.CAGR))
	p.printf("%-14s %22s %22s\n", "Volatility", percent(res.Market.Volatility), percent(res.Strategy.Volatility))
	p.printf("%-14s %22s %22s\n", "Sharpe", ratio(res.Market.Sharpe), ratio(res.Strategy.Sharpe))
	p.printf("%-14s %22s %22s\n\n", "Max Drawdown", percent(res.Market.MaxDrawdown), percent(res.Strategy.MaxDrawdown))

	p.printf("Outperformed: %s\n", outperformed(rep.Outperformed))

	buys, sells := res.CountEvents()
	p.printf("Events:       %d buys, %d sells\n", buys, sells)
	events := res.Events
	if len(events) > LastEvents {
		events = events[len(events)-LastEvents:]
	}
	for _, e := range events {
		p.printf("  %s %-4s @ %s\n", e.Time.Format(dateLayout), e.Kind, decimal.NewFromFloat(e.Price).StringFixed(2))
	}
	return p.err
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func percent(m entity.Metric) string {
	if !m.Defined {
		return undefined(m)
	}
	return decimal.NewFromFloat(m.Value).Mul(hundred).StringFixed(2) + "%"
}

func ratio(m entity.Metric) string {
	if !m.Defined {
		return undefined(m)
	}
	return decimal.NewFromFloat(m.Value).StringFixed(2)
}

func undefined(m entity.Metric) string {
	return fmt.Sprintf("n/a (%s)", m.Reason)
}

func outperformed(m entity.Maybe[bool]) string {
	beat, ok := m.Get()
	switch {
	case !ok:
		return "n/a"
	case beat:
		return "yes"
	default:
		return "no"
	}
}
