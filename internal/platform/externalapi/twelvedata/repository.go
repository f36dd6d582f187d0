package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
	"stock_backtest/internal/platform/externalapi/twelvedata/dto"
)

const (
	// maxOutputSize is the per-request row cap of the time_series endpoint.
	maxOutputSize = 5000
	dateLayout    = "2006-01-02"
)

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetTimeSeriesRange は [from, to] の時系列株価データを取得し、古い順のローソク足として返します。
// 両端の日付を含みます。
func (t *TwelveDataMarket) GetTimeSeriesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("start_date", from.UTC().Format(dateLayout))
	// end_date は排他的なので翌日を指定する
	q.Set("end_date", to.UTC().AddDate(0, 0, 1).Format(dateLayout))
	q.Set("order", "ASC")
	q.Set("outputsize", strconv.Itoa(maxOutputSize))

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// APIキーはクエリに含めずヘッダーで送る
	req.Header.Set("Authorization", "apikey "+t.cfg.TwelveDataAPIKey)

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		c, err := toCandle(v)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	// order=ASC が無視されるプランでも古い順を保証する
	entity.SortByTime(candles)
	return candles, nil
}

func toCandle(v dto.TimeSeriesValue) (entity.Candle, error) {
	tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
	if err != nil {
		tm, err = time.Parse(dateLayout, v.Datetime)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}

	var c entity.Candle
	c.Time = tm
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", v.Open, &c.Open},
		{"high", v.High, &c.High},
		{"low", v.Low, &c.Low},
		{"close", v.Close, &c.Close},
	} {
		x, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = x
	}

	if v.Volume != "" {
		vol, err := strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
		c.Volume = vol
	}
	return c, nil
}
