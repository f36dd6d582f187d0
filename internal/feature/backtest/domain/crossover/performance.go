package crossover

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// ElapsedDays returns the whole calendar days between first and last.
func ElapsedDays(first, last time.Time) int {
	return int(last.Sub(first) / (24 * time.Hour))
}

// Evaluate reduces a return series and its cumulative growth to performance
// metrics. days is the calendar span between the first and last observation.
func Evaluate(returns, cumulative entity.Series, days int, cal entity.Calendar) entity.PerformanceMetrics {
	cagr := CAGR(cumulative.Last(), days, cal)
	vol := AnnualizedVolatility(returns, cal)
	return entity.PerformanceMetrics{
		CAGR:        cagr,
		Volatility:  vol,
		Sharpe:      Sharpe(cagr, vol),
		MaxDrawdown: MaxDrawdown(returns),
	}
}

// CAGR returns final^(DaysPerYear/days) - 1.
func CAGR(final entity.Value, days int, cal entity.Calendar) entity.Metric {
	if days <= 0 {
		return entity.UndefinedMetric(entity.ReasonDegenerateTimeSpan)
	}
	g, ok := final.Get()
	if !ok {
		return entity.UndefinedMetric(entity.ReasonInsufficientData)
	}
	return finite(math.Pow(g, cal.DaysPerYear/float64(days)) - 1)
}

// AnnualizedVolatility returns the sample standard deviation of the defined
// returns scaled by sqrt(TradingPeriodsPerYear). It needs two returns.
func AnnualizedVolatility(returns entity.Series, cal entity.Calendar) entity.Metric {
	xs := returns.DefinedValues()
	if len(xs) < 2 {
		return entity.UndefinedMetric(entity.ReasonInsufficientData)
	}
	return finite(stat.StdDev(xs, nil) * math.Sqrt(cal.TradingPeriodsPerYear))
}

// Sharpe returns cagr / vol. Unlike the textbook ratio no risk-free rate is
// subtracted. It is undefined when vol is zero or either input is undefined.
func Sharpe(cagr, vol entity.Metric) entity.Metric {
	switch {
	case !vol.Defined:
		return entity.UndefinedMetric(vol.Reason)
	case vol.Value == 0:
		return entity.UndefinedMetric(entity.ReasonZeroVolatility)
	case !cagr.Defined:
		return entity.UndefinedMetric(cagr.Reason)
	}
	return finite(cagr.Value / vol.Value)
}

// MaxDrawdown compounds (1 + r) over the defined returns, tracks the running
// peak and returns the most negative (value - peak) / peak. It is 0 when the
// compounded series never declines.
func MaxDrawdown(returns entity.Series) entity.Metric {
	var (
		value float64 = 1
		peak  float64
		worst float64
		seen  bool
	)
	for _, r := range returns {
		x, ok := r.Get()
		if !ok {
			continue
		}
		value *= 1 + x
		if !seen || value > peak {
			peak = value
			seen = true
		}
		if dd := (value - peak) / peak; dd < worst {
			worst = dd
		}
	}
	if !seen {
		return entity.UndefinedMetric(entity.ReasonInsufficientData)
	}
	return finite(worst)
}

func finite(v float64) entity.Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return entity.UndefinedMetric(entity.ReasonNonFinite)
	}
	return entity.DefinedMetric(v)
}
