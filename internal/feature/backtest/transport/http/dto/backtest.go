// Package dto holds the JSON shapes of the backtest API.
package dto

// MetricDTO is a performance figure as an exact fraction. Value is null when
// the metric is undefined, and UndefinedReason says why.
type MetricDTO struct {
	Value           *float64 `json:"value"`
	UndefinedReason string   `json:"undefined_reason,omitempty"`
}

// PerformanceDTO groups the four metrics of one return series.
type PerformanceDTO struct {
	CAGR        MetricDTO `json:"cagr"`
	Volatility  MetricDTO `json:"volatility"`
	Sharpe      MetricDTO `json:"sharpe"`
	MaxDrawdown MetricDTO `json:"max_drawdown"`
}

// EventDTO is a switch into a long (buy) or short (sell) position.
type EventDTO struct {
	Kind  string  `json:"kind"`
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// PointDTO is one row of the per-period series. Undefined entries are null.
type PointDTO struct {
	Time               string   `json:"time"`
	Close              float64  `json:"close"`
	ShortMA            *float64 `json:"short_ma"`
	LongMA             *float64 `json:"long_ma"`
	Signal             int      `json:"signal"`
	Position           *int     `json:"position"`
	MarketReturn       *float64 `json:"market_return"`
	StrategyReturn     *float64 `json:"strategy_return"`
	CumulativeMarket   *float64 `json:"cumulative_market"`
	CumulativeStrategy *float64 `json:"cumulative_strategy"`
}

// BacktestResponse is the result of one backtest.
type BacktestResponse struct {
	Symbol       string         `json:"symbol"`
	Start        string         `json:"start"`
	End          string         `json:"end"`
	ShortWindow  int            `json:"short_window"`
	LongWindow   int            `json:"long_window"`
	Source       string         `json:"source,omitempty"`
	Market       PerformanceDTO `json:"market"`
	Strategy     PerformanceDTO `json:"strategy"`
	Outperformed *bool          `json:"outperformed"`
	Events       []EventDTO     `json:"events"`
	Points       []PointDTO     `json:"points,omitempty"`
}

// RunRequest is one entry of a batch request. Empty fields take the usual defaults.
type RunRequest struct {
	Symbol string `json:"symbol"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Short  *int   `json:"short"`
	Long   *int   `json:"long"`
}

// BatchRequest is the body of POST /backtests. An empty list runs every active symbol.
type BatchRequest struct {
	Runs []RunRequest `json:"runs"`
}

// BatchResult holds either Error or Result.
type BatchResult struct {
	Symbol string            `json:"symbol"`
	Error  string            `json:"error,omitempty"`
	Result *BacktestResponse `json:"result,omitempty"`
}

// BatchResponse keeps the order of the request.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}
