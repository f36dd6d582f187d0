package entity

// Result carries every derived series of one backtest run, aligned with
// Prices, plus the metrics for buy-and-hold (Market) and the crossover
// rule (Strategy).
type Result struct {
	Prices      PriceSeries
	ShortWindow int
	LongWindow  int

	ShortMA Series
	LongMA  Series

	Signals   []Signal
	Positions []Position

	MarketReturns   Series
	StrategyReturns Series

	CumulativeMarket   Series
	CumulativeStrategy Series

	Market   PerformanceMetrics
	Strategy PerformanceMetrics

	Events []Event
}

// Outperformed reports whether the strategy's CAGR beat buy-and-hold.
// The second value is false when either CAGR is undefined.
func (r *Result) Outperformed() (bool, bool) {
	if !r.Market.CAGR.Defined || !r.Strategy.CAGR.Defined {
		return false, false
	}
	return r.Strategy.CAGR.Value > r.Market.CAGR.Value, true
}

// CountEvents returns the number of buy and sell events.
func (r *Result) CountEvents() (buys, sells int) {
	for _, e := range r.Events {
		switch e.Kind {
		case EventBuy:
			buys++
		case EventSell:
			sells++
		}
	}
	return buys, sells
}
