// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"stock_backtest/internal/api"
	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/transport/http/dto"
	"stock_backtest/internal/feature/candles/usecase"

	"github.com/gin-gonic/gin"
)

// dateLayout はクエリパラメータと応答で使う日付形式です。
const dateLayout = "2006-01-02"

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	GetCandlesBetween(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は銘柄コードと時間間隔を受け取り、ローソク足データをJSONで返します。
// from と to の両方が指定された場合は期間指定で古い順に返します。
//
// エンドポイント例:
// GET /candles/:code?interval=1day&outputsize=200
// GET /candles/:code?from=2020-01-01&to=2023-01-01
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	// 未指定の場合はデフォルト値を使用
	interval := c.DefaultQuery("interval", entity.DailyInterval)

	fromStr, toStr := c.Query("from"), c.Query("to")

	var (
		candles []entity.Candle
		err     error
	)
	switch {
	case fromStr == "" && toStr == "":
		outputsize, _ := strconv.Atoi(c.DefaultQuery("outputsize", "200"))
		candles, err = h.uc.GetCandles(c.Request.Context(), code, interval, outputsize)
	case fromStr == "" || toStr == "":
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from and to must be given together"})
		return
	default:
		from, perr := time.Parse(dateLayout, fromStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from date"})
			return
		}
		to, perr := time.Parse(dateLayout, toStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to date"})
			return
		}
		candles, err = h.uc.GetCandlesBetween(c.Request.Context(), code, interval, from, to)
	}

	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	// データをフォーマット
	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			Time:   x.Time.UTC().Format(dateLayout),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
