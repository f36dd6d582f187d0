package crossover

import (
	"gonum.org/v1/gonum/floats"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

// MarketReturns returns closes[t]/closes[t-1] - 1, undefined at t=0.
func MarketReturns(closes []float64) entity.Series {
	out := make(entity.Series, len(closes))
	for t := 1; t < len(closes); t++ {
		out[t] = entity.Some(closes[t]/closes[t-1] - 1)
	}
	return out
}

// StrategyReturns masks market returns by the position held during each period.
// A period with a market return but no position has zero exposure and returns 0.
// Only periods without a market return stay undefined.
func StrategyReturns(market entity.Series, positions []entity.Position) entity.Series {
	out := make(entity.Series, len(market))
	for t, m := range market {
		r, ok := m.Get()
		if !ok {
			continue
		}
		var pos entity.Signal
		if t < len(positions) {
			pos = positions[t].Or(entity.Neutral)
		}
		out[t] = entity.Some(r * float64(pos))
	}
	return out
}

// Cumulative returns the running product of (1 + r), seeded at 1 before the
// first defined return. Entries before it are undefined; later gaps carry the
// previous value forward.
func Cumulative(returns entity.Series) entity.Series {
	out := make(entity.Series, len(returns))
	first := -1
	for i, r := range returns {
		if r.IsDefined() {
			first = i
			break
		}
	}
	if first < 0 {
		return out
	}

	growth := make([]float64, len(returns)-first)
	for i, r := range returns[first:] {
		growth[i] = 1 + r.Or(0)
	}
	floats.CumProd(growth, growth)

	for i, g := range growth {
		out[first+i] = entity.Some(g)
	}
	return out
}

// Events extracts buy and sell transitions from positions. A buy fires where
// the position becomes Bullish from anything else (including undefined), a
// sell where it becomes Bearish. Index 0 never fires.
func Events(prices entity.PriceSeries, positions []entity.Position) []entity.Event {
	var out []entity.Event
	for t := 1; t < len(positions) && t < len(prices); t++ {
		cur, ok := positions[t].Get()
		if !ok {
			continue
		}
		prev, prevOK := positions[t-1].Get()
		if prevOK && prev == cur {
			continue
		}

		var kind entity.EventKind
		switch cur {
		case entity.Bullish:
			kind = entity.EventBuy
		case entity.Bearish:
			kind = entity.EventSell
		default:
			continue
		}
		out = append(out, entity.Event{
			Kind:  kind,
			Index: t,
			Time:  prices[t].Time,
			Price: prices[t].Close,
		})
	}
	return out
}
