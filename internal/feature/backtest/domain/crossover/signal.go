package crossover

import "stock_backtest/internal/feature/backtest/domain/entity"

// Signals compares short and long point-wise: Bullish when short > long,
// Bearish when short < long, Neutral on equality or when either is undefined.
// The result has the length of the shorter input.
func Signals(short, long entity.Series) []entity.Signal {
	n := min(len(short), len(long))
	out := make([]entity.Signal, n)
	for i := 0; i < n; i++ {
		out[i] = compare(short[i], long[i])
	}
	return out
}

func compare(short, long entity.Value) entity.Signal {
	s, okS := short.Get()
	l, okL := long.Get()
	switch {
	case !okS || !okL:
		return entity.Neutral
	case s > l:
		return entity.Bullish
	case s < l:
		return entity.Bearish
	default:
		return entity.Neutral
	}
}

// Positions lags signals by one period: position[t] = signal[t-1].
// position[0] is undefined since nothing was known before the first close.
func Positions(signals []entity.Signal) []entity.Position {
	out := make([]entity.Position, len(signals))
	for t := 1; t < len(signals); t++ {
		out[t] = entity.Some(signals[t-1])
	}
	return out
}
