package crossover

import (
	"fmt"
	"math"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
)

// Params configures one backtest run.
type Params struct {
	ShortWindow int
	LongWindow  int
	// Calendar holds the annualisation constants; the zero value means DefaultCalendar.
	Calendar entity.Calendar
}

// Run evaluates the crossover rule on prices. ShortWindow >= LongWindow is
// accepted and yields a degenerate but valid result.
//
// It returns ErrInvalidWindow for a non-positive window and
// ErrInputContractViolation when prices are not strictly increasing in time
// or hold a non-positive close. Any other shortfall of data shows up as
// undefined entries and metrics instead of an error.
func Run(prices entity.PriceSeries, p Params) (*entity.Result, error) {
	if p.ShortWindow <= 0 || p.LongWindow <= 0 {
		return nil, fmt.Errorf("%w: short=%d long=%d", domain.ErrInvalidWindow, p.ShortWindow, p.LongWindow)
	}
	if err := Validate(prices); err != nil {
		return nil, err
	}
	cal := p.Calendar
	if cal.IsZero() {
		cal = entity.DefaultCalendar()
	}

	closes := prices.Closes()
	res := &entity.Result{
		Prices:      prices,
		ShortWindow: p.ShortWindow,
		LongWindow:  p.LongWindow,
		ShortMA:     MovingAverage(closes, p.ShortWindow),
		LongMA:      MovingAverage(closes, p.LongWindow),
	}

	res.Signals = Signals(res.ShortMA, res.LongMA)
	res.Positions = Positions(res.Signals)

	res.MarketReturns = MarketReturns(closes)
	res.StrategyReturns = StrategyReturns(res.MarketReturns, res.Positions)
	res.CumulativeMarket = Cumulative(res.MarketReturns)
	res.CumulativeStrategy = Cumulative(res.StrategyReturns)

	var days int
	if first, last, ok := prices.Span(); ok {
		days = ElapsedDays(first, last)
	}
	res.Market = Evaluate(res.MarketReturns, res.CumulativeMarket, days, cal)
	res.Strategy = Evaluate(res.StrategyReturns, res.CumulativeStrategy, days, cal)

	res.Events = Events(prices, res.Positions)
	return res, nil
}

// Validate checks that timestamps strictly increase and closes are positive and finite.
func Validate(prices entity.PriceSeries) error {
	for i, pt := range prices {
		if math.IsNaN(pt.Close) || math.IsInf(pt.Close, 0) || pt.Close <= 0 {
			return fmt.Errorf("%w: close %v at index %d", domain.ErrInputContractViolation, pt.Close, i)
		}
		if i > 0 && !pt.Time.After(prices[i-1].Time) {
			return fmt.Errorf("%w: timestamp %s at index %d does not follow %s",
				domain.ErrInputContractViolation,
				pt.Time.Format("2006-01-02 15:04:05"), i,
				prices[i-1].Time.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
