package entity

// UndefinedReason explains why a metric has no value.
type UndefinedReason string

const (
	// ReasonInsufficientData: too few observations (e.g. fewer than two returns for volatility).
	ReasonInsufficientData UndefinedReason = "insufficient_data"
	// ReasonDegenerateTimeSpan: first and last observation are less than one day apart.
	ReasonDegenerateTimeSpan UndefinedReason = "degenerate_time_span"
	// ReasonZeroVolatility: Sharpe ratio with an annualized volatility of exactly zero.
	ReasonZeroVolatility UndefinedReason = "zero_volatility"
	// ReasonNonFinite: the formula produced NaN or Inf, e.g. a fractional power of a
	// non-positive growth factor after a short position lost more than 100%.
	ReasonNonFinite UndefinedReason = "non_finite"
)

// Metric is a scalar performance figure expressed as an exact fraction
// (0.154 means 15.4%), or an explicit undefined outcome.
type Metric struct {
	Value   float64
	Defined bool
	Reason  UndefinedReason
}

// DefinedMetric returns a metric holding v.
func DefinedMetric(v float64) Metric {
	return Metric{Value: v, Defined: true}
}

// UndefinedMetric returns a metric without value for the given reason.
func UndefinedMetric(reason UndefinedReason) Metric {
	return Metric{Reason: reason}
}

// PerformanceMetrics summarises one return series.
type PerformanceMetrics struct {
	CAGR        Metric // Compound annual growth rate
	Volatility  Metric // Annualized sample standard deviation of returns
	Sharpe      Metric // CAGR / Volatility (no risk-free rate)
	MaxDrawdown Metric // Most negative decline from a running peak, <= 0
}

// Calendar holds the annualisation constants.
type Calendar struct {
	TradingPeriodsPerYear float64 // Periods used to annualize volatility
	DaysPerYear           float64 // Calendar days used to annualize growth
}

const (
	// DefaultTradingPeriodsPerYear is the usual count of US equity sessions per year.
	DefaultTradingPeriodsPerYear = 252
	// DefaultDaysPerYear is the calendar-day year used for CAGR.
	DefaultDaysPerYear = 365
)

// DefaultCalendar returns the 252/365 calendar.
func DefaultCalendar() Calendar {
	return Calendar{
		TradingPeriodsPerYear: DefaultTradingPeriodsPerYear,
		DaysPerYear:           DefaultDaysPerYear,
	}
}

// IsZero reports whether the calendar is unset.
func (c Calendar) IsZero() bool {
	return c.TradingPeriodsPerYear == 0 && c.DaysPerYear == 0
}
