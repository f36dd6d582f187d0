package handler

import (
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	"stock_backtest/internal/feature/backtest/usecase"
)

// dateLayout はクエリパラメータと応答で使う日付形式です。
const dateLayout = "2006-01-02"

func toResponse(rep *usecase.Report, withPoints bool) dto.BacktestResponse {
	res := rep.Result
	out := dto.BacktestResponse{
		Symbol:      rep.Symbol,
		Start:       rep.Start.UTC().Format(dateLayout),
		End:         rep.End.UTC().Format(dateLayout),
		ShortWindow: res.ShortWindow,
		LongWindow:  res.LongWindow,
		Source:      rep.Source,
		Market:      toPerformance(res.Market),
		Strategy:    toPerformance(res.Strategy),
		Events:      make([]dto.EventDTO, 0, len(res.Events)),
	}
	if beat, ok := rep.Outperformed.Get(); ok {
		out.Outperformed = &beat
	}
	for _, e := range res.Events {
		out.Events = append(out.Events, dto.EventDTO{
			Kind:  string(e.Kind),
			Time:  e.Time.UTC().Format(dateLayout),
			Price: e.Price,
		})
	}
	if withPoints {
		out.Points = toPoints(res)
	}
	return out
}

func toPerformance(m entity.PerformanceMetrics) dto.PerformanceDTO {
	return dto.PerformanceDTO{
		CAGR:        toMetric(m.CAGR),
		Volatility:  toMetric(m.Volatility),
		Sharpe:      toMetric(m.Sharpe),
		MaxDrawdown: toMetric(m.MaxDrawdown),
	}
}

func toMetric(m entity.Metric) dto.MetricDTO {
	if !m.Defined {
		return dto.MetricDTO{UndefinedReason: string(m.Reason)}
	}
	v := m.Value
	return dto.MetricDTO{Value: &v}
}

func toPoints(res *entity.Result) []dto.PointDTO {
	out := make([]dto.PointDTO, len(res.Prices))
	for i, p := range res.Prices {
		pt := dto.PointDTO{
			Time:               p.Time.UTC().Format(dateLayout),
			Close:              p.Close,
			ShortMA:            valueAt(res.ShortMA, i),
			LongMA:             valueAt(res.LongMA, i),
			MarketReturn:       valueAt(res.MarketReturns, i),
			StrategyReturn:     valueAt(res.StrategyReturns, i),
			CumulativeMarket:   valueAt(res.CumulativeMarket, i),
			CumulativeStrategy: valueAt(res.CumulativeStrategy, i),
		}
		if i < len(res.Signals) {
			pt.Signal = int(res.Signals[i])
		}
		if i < len(res.Positions) {
			if s, ok := res.Positions[i].Get(); ok {
				v := int(s)
				pt.Position = &v
			}
		}
		out[i] = pt
	}
	return out
}

func valueAt(s entity.Series, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	v, ok := s[i].Get()
	if !ok {
		return nil
	}
	return &v
}
