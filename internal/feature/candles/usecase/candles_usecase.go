// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = entity.DailyInterval
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
)

// ErrInvalidRange は期間指定の開始日が終了日より後の場合に返されます。
var ErrInvalidRange = errors.New("from must not be after to")

// CandleRepository はローソク足データの読み書きレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// Find は新しい順に最大 outputsize 件のローソク足を返します。
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	// FindRange は [from, to] に含まれるローソク足を古い順に返します。
	FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
	// UpsertBatch は (symbol, interval, time) をキーに一括で挿入または更新します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// candlesUsecase はローソク足データ操作のユースケースを定義します。
type candlesUsecase struct {
	candle CandleRepository
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(candle CandleRepository) *candlesUsecase {
	return &candlesUsecase{candle: candle}
}

// GetCandles は指定された銘柄と時間間隔のローソク足データを取得します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}

	return cu.candle.Find(ctx, symbol, interval, outputsize)
}

// GetCandlesBetween は期間 [from, to] のローソク足データを古い順に取得します。
func (cu *candlesUsecase) GetCandlesBetween(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	return cu.candle.FindRange(ctx, symbol, interval, from, to)
}
