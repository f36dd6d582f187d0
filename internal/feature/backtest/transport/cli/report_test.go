package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func sampleReport() *usecase.Report {
	events := make([]entity.Event, 0, 7)
	for i := range 7 {
		kind := entity.EventBuy
		if i%2 == 1 {
			kind = entity.EventSell
		}
		events = append(events, entity.Event{Kind: kind, Index: i, Time: day0.AddDate(0, 0, i), Price: 100 + float64(i) + 0.125})
	}
	return &usecase.Report{
		Symbol: "AAPL",
		Start:  day0,
		End:    day0.AddDate(3, 0, 0),
		Source: "db",
		Result: &entity.Result{
			Prices:      make(entity.PriceSeries, 756),
			ShortWindow: 20,
			LongWindow:  50,
			Market: entity.PerformanceMetrics{
				CAGR:        entity.DefinedMetric(0.154),
				Volatility:  entity.DefinedMetric(0.2),
				Sharpe:      entity.DefinedMetric(0.77),
				MaxDrawdown: entity.DefinedMetric(-0.1234),
			},
			Strategy: entity.PerformanceMetrics{
				CAGR:        entity.UndefinedMetric(entity.ReasonNonFinite),
				Volatility:  entity.DefinedMetric(0),
				Sharpe:      entity.UndefinedMetric(entity.ReasonZeroVolatility),
				MaxDrawdown: entity.DefinedMetric(0),
			},
			Events: events,
		},
	}
}

// row returns the whitespace-separated fields of the first line starting with label.
func row(t *testing.T, out, label string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.Fields(strings.TrimPrefix(line, label))
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", label, out)
	return nil
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintReport(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "=== AAPL Performance Metrics ===\n"))
	assert.Contains(t, out, "Period:   2020-01-02 .. 2023-01-02 (756 prices, source db)")
	assert.Contains(t, out, "Windows:  short 20 / long 50")

	assert.Equal(t, []string{"15.40%", "n/a", "(non_finite)"}, row(t, out, "CAGR"))
	assert.Equal(t, []string{"20.00%", "0.00%"}, row(t, out, "Volatility"))
	assert.Equal(t, []string{"0.77", "n/a", "(zero_volatility)"}, row(t, out, "Sharpe"))
	assert.Equal(t, []string{"-12.34%", "0.00%"}, row(t, out, "Max Drawdown"))

	assert.Contains(t, out, "Outperformed: n/a")
	assert.Contains(t, out, "Events:       4 buys, 3 sells")

	// only the trailing LastEvents events are listed
	assert.NotContains(t, out, "2020-01-03 sell")
	assert.Contains(t, out, "2020-01-04 buy  @ 102.13")
	assert.Contains(t, out, "2020-01-08 buy  @ 106.13")
}

func TestOutperformed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "yes", outperformed(entity.Some(true)))
	assert.Equal(t, "no", outperformed(entity.Some(false)))
	assert.Equal(t, "n/a", outperformed(entity.None[bool]()))
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestPrintReport_WriteError(t *testing.T) {
	t.Parallel()

	w := &failingWriter{}
	err := PrintReport(w, sampleReport())
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 1, w.n, "printing stops after the first failure")
}
