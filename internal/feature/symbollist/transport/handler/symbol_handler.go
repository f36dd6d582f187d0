// Package handler はsymbollistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"stock_backtest/internal/api"
	"stock_backtest/internal/feature/symbollist/domain/entity"
	"stock_backtest/internal/feature/symbollist/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// SymbolUsecase は銘柄情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄情報に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧をsort_key順に返します。
// バックテストのバッチ実行で銘柄が省略された場合もこの一覧が対象になります。
//
// エンドポイント例:
// GET /symbols
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Market: s.Market})
	}
	c.JSON(http.StatusOK, out)
}
