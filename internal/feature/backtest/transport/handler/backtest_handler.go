// Package handler exposes the backtest usecase over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock_backtest/internal/api"
	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	"stock_backtest/internal/feature/backtest/usecase"
	"stock_backtest/internal/platform/http/middleware"

	"github.com/gin-gonic/gin"
)

// BacktestUsecase is the backtest usecase as seen by the handler.
// The interface lives on the consumer side.
type BacktestUsecase interface {
	Run(ctx context.Context, req usecase.Request) (*usecase.Report, error)
	RunBatch(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error)
}

// BacktestHandler serves backtest requests.
type BacktestHandler struct {
	uc BacktestUsecase
}

// NewBacktestHandler creates a BacktestHandler.
func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// GetBacktestHandler runs one backtest.
//
// Example:
// GET /backtests/:code?start=2020-01-01&end=2023-01-01&short=20&long=50&series=true
func (h *BacktestHandler) GetBacktestHandler(c *gin.Context) {
	req := usecase.Request{Symbol: c.Param("code")}

	var err error
	if req.Start, err = parseDate(c.Query("start")); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid start date"})
		return
	}
	if req.End, err = parseDate(c.Query("end")); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid end date"})
		return
	}
	if req.ShortWindow, err = parseWindow(c.Query("short")); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid short window"})
		return
	}
	if req.LongWindow, err = parseWindow(c.Query("long")); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid long window"})
		return
	}
	withPoints := false
	if s := c.Query("series"); s != "" {
		if withPoints, err = strconv.ParseBool(s); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid series flag"})
			return
		}
	}

	rep, err := h.uc.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(rep, withPoints))
}

// PostBacktestsHandler runs a batch.
//
// POST /backtests {"runs":[{"symbol":"AAPL","start":"2020-01-01","end":"2023-01-01","short":20,"long":50}]}
func (h *BacktestHandler) PostBacktestsHandler(c *gin.Context) {
	var body dto.BatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	reqs := make([]usecase.Request, 0, len(body.Runs))
	for i, r := range body.Runs {
		start, err := parseDate(r.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("runs[%d]: invalid start date", i)})
			return
		}
		end, err := parseDate(r.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("runs[%d]: invalid end date", i)})
			return
		}
		short, err := usecase.OptionalWindow(r.Short)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("runs[%d]: invalid short window", i)})
			return
		}
		long, err := usecase.OptionalWindow(r.Long)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("runs[%d]: invalid long window", i)})
			return
		}
		reqs = append(reqs, usecase.Request{
			Symbol:      r.Symbol,
			Start:       start,
			End:         end,
			ShortWindow: short,
			LongWindow:  long,
		})
	}

	items, err := h.uc.RunBatch(c.Request.Context(), reqs)
	if err != nil {
		writeError(c, err)
		return
	}

	out := dto.BatchResponse{Results: make([]dto.BatchResult, 0, len(items))}
	for _, it := range items {
		if it.Err != nil {
			symbol := strings.ToUpper(strings.TrimSpace(it.Request.Symbol))
			_, msg := classify(c, it.Err, "symbol", symbol)
			out.Results = append(out.Results, dto.BatchResult{Symbol: symbol, Error: msg})
			continue
		}
		res := toResponse(it.Report, false)
		out.Results = append(out.Results, dto.BatchResult{Symbol: it.Report.Symbol, Result: &res})
	}
	c.JSON(http.StatusOK, out)
}

func writeError(c *gin.Context, err error) {
	status, msg := classify(c, err)
	c.JSON(status, api.ErrorResponse{Error: msg})
}

// classify maps err to a status and the message shown to the caller.
// Upstream and internal failures get a fixed message; their detail, which can
// carry provider URLs, only goes to the log.
func classify(c *gin.Context, err error, attrs ...any) (int, string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		return status, err.Error()
	}

	msg := "internal error"
	switch {
	case errors.Is(err, usecase.ErrPriceSource):
		msg = "price source unavailable"
	case errors.Is(err, domain.ErrInputContractViolation):
		msg = "price source returned invalid data"
	}
	attrs = append(attrs,
		"path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequestID), "error", err)
	slog.Error("backtest request failed", attrs...)
	return status, msg
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrSymbolRequired),
		errors.Is(err, usecase.ErrInvalidDateRange),
		errors.Is(err, usecase.ErrTooManyRuns),
		errors.Is(err, domain.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoPriceData):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrPriceSource),
		errors.Is(err, domain.ErrInputContractViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// parseWindow reads an optional window query value; an empty value selects the default.
func parseWindow(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return usecase.OptionalWindow(&n)
}
