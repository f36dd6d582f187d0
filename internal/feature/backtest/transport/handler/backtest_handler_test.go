package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/crossover"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/handler"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	"stock_backtest/internal/feature/backtest/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

// mockBacktestUsecase はBacktestUsecaseインターフェースのモック実装です。
type mockBacktestUsecase struct {
	RunFunc      func(ctx context.Context, req usecase.Request) (*usecase.Report, error)
	RunBatchFunc func(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error)
}

func (m *mockBacktestUsecase) Run(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
	return m.RunFunc(ctx, req)
}

func (m *mockBacktestUsecase) RunBatch(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error) {
	return m.RunBatchFunc(ctx, reqs)
}

func notCalled(t *testing.T) *mockBacktestUsecase {
	return &mockBacktestUsecase{
		RunFunc: func(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
			t.Error("Run should not be called")
			return nil, nil
		},
		RunBatchFunc: func(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error) {
			t.Error("RunBatch should not be called")
			return nil, nil
		},
	}
}

// report runs the real pipeline on a short zig-zag series.
func report(t *testing.T, symbol string) *usecase.Report {
	t.Helper()
	closes := []float64{10, 11, 12, 11, 10, 9, 10, 11, 12, 13}
	prices := make(entity.PriceSeries, len(closes))
	for i, c := range closes {
		prices[i] = entity.PricePoint{Time: day0.AddDate(0, 0, i), Close: c}
	}
	res, err := crossover.Run(prices, crossover.Params{ShortWindow: 2, LongWindow: 3})
	require.NoError(t, err)

	rep := &usecase.Report{Symbol: symbol, Start: day0, End: day0.AddDate(0, 0, 9), Source: "db", Result: res}
	if beat, ok := res.Outperformed(); ok {
		rep.Outperformed = entity.Some(beat)
	}
	return rep
}

func newRouter(h *handler.BacktestHandler) *gin.Engine {
	r := gin.New()
	r.GET("/backtests/:code", h.GetBacktestHandler)
	r.POST("/backtests", h.PostBacktestsHandler)
	return r
}

func do(r http.Handler, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBacktestHandler_GetBacktest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got usecase.Request
	uc := &mockBacktestUsecase{RunFunc: func(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
		got = req
		return report(t, "AAPL"), nil
	}}
	r := newRouter(handler.NewBacktestHandler(uc))

	w := do(r, http.MethodGet, "/backtests/aapl?start=2022-01-03&end=2022-01-12&short=2&long=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, usecase.Request{Symbol: "aapl", Start: day0, End: day0.AddDate(0, 0, 9), ShortWindow: 2, LongWindow: 3}, got)

	var resp dto.BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, "2022-01-03", resp.Start)
	assert.Equal(t, "2022-01-12", resp.End)
	assert.Equal(t, 2, resp.ShortWindow)
	require.NotNil(t, resp.Market.CAGR.Value)
	require.NotNil(t, resp.Outperformed)
	assert.NotEmpty(t, resp.Events)
	assert.Nil(t, resp.Points)
	assert.NotContains(t, w.Body.String(), `"points"`)
}

func TestBacktestHandler_GetBacktest_Series(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockBacktestUsecase{RunFunc: func(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
		return report(t, "AAPL"), nil
	}}
	r := newRouter(handler.NewBacktestHandler(uc))

	w := do(r, http.MethodGet, "/backtests/AAPL?series=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 10)

	first := resp.Points[0]
	assert.Equal(t, "2022-01-03", first.Time)
	assert.Nil(t, first.ShortMA)
	assert.Nil(t, first.LongMA)
	assert.Nil(t, first.Position)
	assert.Nil(t, first.MarketReturn)

	last := resp.Points[9]
	require.NotNil(t, last.ShortMA)
	assert.InDelta(t, 12.5, *last.ShortMA, 1e-12)
	require.NotNil(t, last.LongMA)
	assert.InDelta(t, 12.0, *last.LongMA, 1e-12)
	assert.Equal(t, 1, last.Signal)
	require.NotNil(t, last.Position)
	require.NotNil(t, last.CumulativeStrategy)

	// undefined metrics keep the key with a null value
	assert.Contains(t, w.Body.String(), `"short_ma":null`)
}

func TestBacktestHandler_GetBacktest_BadQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"bad start", "/backtests/AAPL?start=2022-13-01", "invalid start date"},
		{"bad end", "/backtests/AAPL?end=yesterday", "invalid end date"},
		{"bad short", "/backtests/AAPL?short=x", "invalid short window"},
		{"bad long", "/backtests/AAPL?long=1.5", "invalid long window"},
		{"zero short", "/backtests/AAPL?short=0", "invalid short window"},
		{"negative long", "/backtests/AAPL?long=-5", "invalid long window"},
		{"bad series", "/backtests/AAPL?series=maybe", "invalid series flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(handler.NewBacktestHandler(notCalled(t)))
			w := do(r, http.MethodGet, tt.url, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), w.Body.String())
		})
	}
}

func TestBacktestHandler_GetBacktest_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"symbol required", usecase.ErrSymbolRequired, http.StatusBadRequest, ""},
		{"invalid window", fmt.Errorf("%w: short=-1 long=50", domain.ErrInvalidWindow), http.StatusBadRequest, ""},
		{"date range", usecase.ErrInvalidDateRange, http.StatusBadRequest, ""},
		{"no data", fmt.Errorf("%w: ZZZZ", usecase.ErrNoPriceData), http.StatusNotFound, ""},
		{"provider", fmt.Errorf("%w: AAPL: timeout", usecase.ErrPriceSource), http.StatusBadGateway, `{"error":"price source unavailable"}`},
		{"contract", fmt.Errorf("AAPL: %w", domain.ErrInputContractViolation), http.StatusBadGateway, `{"error":"price source returned invalid data"}`},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockBacktestUsecase{RunFunc: func(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
				return nil, tt.err
			}}
			r := newRouter(handler.NewBacktestHandler(uc))
			w := do(r, http.MethodGet, "/backtests/AAPL", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			want := tt.wantBody
			if want == "" {
				want = fmt.Sprintf(`{"error":%q}`, tt.err.Error())
			}
			assert.JSONEq(t, want, w.Body.String())
		})
	}
}

func TestBacktestHandler_UpstreamErrorDetailIsNotExposed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const secret = "SECRET-KEY-123"
	upstream := &url.Error{
		Op:  "Get",
		URL: "http://127.0.0.1:1/time_series?apikey=" + secret + "&symbol=AAPL",
		Err: errors.New("connect: connection refused"),
	}
	srcErr := fmt.Errorf("%w: AAPL: %w", usecase.ErrPriceSource, upstream)

	uc := &mockBacktestUsecase{
		RunFunc: func(ctx context.Context, req usecase.Request) (*usecase.Report, error) {
			return nil, srcErr
		},
		RunBatchFunc: func(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error) {
			return []usecase.BatchItem{{Request: reqs[0], Err: srcErr}}, nil
		},
	}
	r := newRouter(handler.NewBacktestHandler(uc))

	w := do(r, http.MethodGet, "/backtests/AAPL", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), secret)
	assert.JSONEq(t, `{"error":"price source unavailable"}`, w.Body.String())

	w = do(r, http.MethodPost, "/backtests", []byte(`{"runs":[{"symbol":"aapl"}]}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), secret)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "AAPL", resp.Results[0].Symbol)
	assert.Equal(t, "price source unavailable", resp.Results[0].Error)
}

func TestBacktestHandler_PostBacktests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got []usecase.Request
	uc := &mockBacktestUsecase{RunBatchFunc: func(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error) {
		got = reqs
		return []usecase.BatchItem{
			{Request: reqs[0], Report: report(t, "AAPL")},
			{Request: reqs[1], Err: fmt.Errorf("%w: zzzz", usecase.ErrNoPriceData)},
		}, nil
	}}
	r := newRouter(handler.NewBacktestHandler(uc))

	body := []byte(`{"runs":[{"symbol":"AAPL","start":"2022-01-03","end":"2022-01-12","short":2,"long":3},{"symbol":" zzzz"}]}`)
	w := do(r, http.MethodPost, "/backtests", body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, got, 2)
	assert.Equal(t, usecase.Request{Symbol: "AAPL", Start: day0, End: day0.AddDate(0, 0, 9), ShortWindow: 2, LongWindow: 3}, got[0])
	assert.True(t, got[1].Start.IsZero())

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "AAPL", resp.Results[0].Symbol)
	require.NotNil(t, resp.Results[0].Result)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, "ZZZZ", resp.Results[1].Symbol)
	assert.Nil(t, resp.Results[1].Result)
	assert.Contains(t, resp.Results[1].Error, "no price data")
}

func TestBacktestHandler_PostBacktests_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		batchErr   error
		wantStatus int
	}{
		{"malformed json", `{"runs":`, nil, http.StatusBadRequest},
		{"bad date", `{"runs":[{"symbol":"AAPL","start":"03/01/2022"}]}`, nil, http.StatusBadRequest},
		{"explicit zero window", `{"runs":[{"symbol":"AAPL","short":0}]}`, nil, http.StatusBadRequest},
		{"too many runs", `{"runs":[]}`, usecase.ErrTooManyRuns, http.StatusBadRequest},
		{"canceled", `{"runs":[]}`, context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := notCalled(t)
			if tt.batchErr != nil {
				uc.RunBatchFunc = func(ctx context.Context, reqs []usecase.Request) ([]usecase.BatchItem, error) {
					return nil, tt.batchErr
				}
			}
			r := newRouter(handler.NewBacktestHandler(uc))
			w := do(r, http.MethodPost, "/backtests", []byte(tt.body))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
