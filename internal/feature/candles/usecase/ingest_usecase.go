package usecase

import (
	"context"
	"log/slog"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
)

// MarketRepository は外部APIから株価の時系列データを取得するリポジトリです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetTimeSeriesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
}

// Limiter は外部API呼び出しの頻度を制限します。
type Limiter interface {
	Wait(ctx context.Context) error
}

// IngestSummary は一括取り込みの結果です。
type IngestSummary struct {
	Symbols int      // 対象銘柄数
	Candles int      // 保存したローソク足の件数
	Failed  []string // 取得または保存に失敗した銘柄
}

// IngestUsecase は外部APIから日足を取得し、データベースに永続化するユースケースです。
type IngestUsecase struct {
	market  MarketRepository
	candle  CandleRepository
	limiter Limiter
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, limiter Limiter) *IngestUsecase {
	return &IngestUsecase{market: market, candle: candle, limiter: limiter}
}

// ingestOne は1銘柄の日足を期間指定で取得し、一括で挿入（または更新）します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string, from, to time.Time) (int, error) {
	cs, err := iu.market.GetTimeSeriesRange(ctx, symbol, entity.DailyInterval, from, to)
	if err != nil {
		return 0, err
	}

	// 取得したデータに銘柄コードと時間足を設定
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = entity.DailyInterval
	}
	if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
		return 0, err
	}
	return len(cs), nil
}

// IngestAll は指定された全銘柄の日足を [from, to] の範囲で取得して保存します。
// 1銘柄の失敗では止まらず、失敗した銘柄をサマリーに記録して次へ進みます。
// コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string, from, to time.Time) (IngestSummary, error) {
	summary := IngestSummary{Symbols: len(symbols)}
	for _, s := range symbols {
		if err := iu.limiter.Wait(ctx); err != nil {
			return summary, err
		}
		n, err := iu.ingestOne(ctx, s, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			slog.Error("failed to ingest data", "symbol", s, "error", err)
			summary.Failed = append(summary.Failed, s)
			continue
		}
		slog.Info("ingested candles", "symbol", s, "count", n)
		summary.Candles += n
	}
	return summary, nil
}
