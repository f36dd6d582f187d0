// Package usecase runs moving-average crossover backtests against a price history source.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/crossover"
	"stock_backtest/internal/feature/backtest/domain/entity"
)

const (
	DefaultShortWindow   = 20
	DefaultLongWindow    = 50
	DefaultLookbackYears = 3
	DefaultMaxParallel   = 4
)

// Outcome labels passed to RunObserver.
const (
	OutcomeOK                = "ok"
	OutcomeInvalidRequest    = "invalid_request"
	OutcomeNoData            = "no_data"
	OutcomeContractViolation = "contract_violation"
	OutcomeSourceError       = "source_error"
	OutcomeCanceled          = "canceled"
)

// PriceHistoryRepository returns daily closes for [from, to], oldest first.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceHistoryRepository interface {
	GetCloses(ctx context.Context, symbol string, from, to time.Time) (entity.PriceSeries, error)
}

// SymbolLister supplies the default universe for an empty batch.
type SymbolLister interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// RunObserver is notified once per run, successful or not.
type RunObserver interface {
	ObserveRun(outcome string, d time.Duration, points int)
}

// Request describes one backtest. Zero fields take defaults: the last
// DefaultLookbackYears ending today, windows 20/50.
type Request struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	ShortWindow int
	LongWindow  int
}

// Report is the outcome of one run.
type Report struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Source string
	Result *entity.Result
	// Outperformed is undefined when either CAGR is undefined.
	Outperformed entity.Maybe[bool]
}

// Config tunes the usecase.
type Config struct {
	Calendar    entity.Calendar
	MaxParallel int
	Source      string // label copied into every Report
}

// BacktestUsecase runs crossover backtests.
type BacktestUsecase struct {
	prices   PriceHistoryRepository
	symbols  SymbolLister
	observer RunObserver
	cfg      Config
	now      func() time.Time
}

type noopObserver struct{}

func (noopObserver) ObserveRun(string, time.Duration, int) {}

// NewBacktestUsecase wires a usecase. symbols and observer may be nil.
func NewBacktestUsecase(prices PriceHistoryRepository, symbols SymbolLister, observer RunObserver, cfg Config) *BacktestUsecase {
	if observer == nil {
		observer = noopObserver{}
	}
	if cfg.Calendar.IsZero() {
		cfg.Calendar = entity.DefaultCalendar()
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	return &BacktestUsecase{
		prices:   prices,
		symbols:  symbols,
		observer: observer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// OptionalWindow converts a window supplied by a caller: nil selects the
// default (0 in Request), an explicit value must be positive.
func OptionalWindow(w *int) (int, error) {
	if w == nil {
		return 0, nil
	}
	if *w <= 0 {
		return 0, fmt.Errorf("%w: got %d", domain.ErrInvalidWindow, *w)
	}
	return *w, nil
}

// Normalize fills defaults and validates req without fetching anything.
func (u *BacktestUsecase) Normalize(req Request) (Request, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return req, ErrSymbolRequired
	}

	if req.ShortWindow == 0 {
		req.ShortWindow = DefaultShortWindow
	}
	if req.LongWindow == 0 {
		req.LongWindow = DefaultLongWindow
	}
	if req.ShortWindow < 0 || req.LongWindow < 0 {
		return req, fmt.Errorf("%w: short=%d long=%d", domain.ErrInvalidWindow, req.ShortWindow, req.LongWindow)
	}

	if req.End.IsZero() {
		req.End = truncateDay(u.now())
	}
	if req.Start.IsZero() {
		req.Start = req.End.AddDate(-DefaultLookbackYears, 0, 0)
	}
	if req.Start.After(req.End) {
		return req, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly))
	}
	return req, nil
}

// Run executes one backtest.
func (u *BacktestUsecase) Run(ctx context.Context, req Request) (*Report, error) {
	started := u.now()
	rep, err := u.run(ctx, req)

	points := 0
	if rep != nil {
		points = len(rep.Result.Prices)
	}
	outcome := classify(err)
	u.observer.ObserveRun(outcome, u.now().Sub(started), points)

	if err != nil {
		slog.Warn("backtest failed", "symbol", req.Symbol, "outcome", outcome, "error", err)
		return nil, err
	}
	slog.Info("backtest finished",
		"symbol", rep.Symbol,
		"start", rep.Start.Format(time.DateOnly),
		"end", rep.End.Format(time.DateOnly),
		"points", points,
		"events", len(rep.Result.Events),
	)
	return rep, nil
}

func (u *BacktestUsecase) run(ctx context.Context, req Request) (*Report, error) {
	req, err := u.Normalize(req)
	if err != nil {
		return nil, err
	}

	prices, err := u.prices.GetCloses(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrPriceSource, req.Symbol, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, req.Symbol)
	}

	res, err := crossover.Run(prices, crossover.Params{
		ShortWindow: req.ShortWindow,
		LongWindow:  req.LongWindow,
		Calendar:    u.cfg.Calendar,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Symbol, err)
	}

	rep := &Report{
		Symbol: req.Symbol,
		Start:  req.Start,
		End:    req.End,
		Source: u.cfg.Source,
		Result: res,
	}
	if beat, ok := res.Outperformed(); ok {
		rep.Outperformed = entity.Some(beat)
	}
	return rep, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, ErrSymbolRequired), errors.Is(err, ErrInvalidDateRange), errors.Is(err, domain.ErrInvalidWindow):
		return OutcomeInvalidRequest
	case errors.Is(err, ErrNoPriceData):
		return OutcomeNoData
	case errors.Is(err, domain.ErrInputContractViolation):
		return OutcomeContractViolation
	default:
		return OutcomeSourceError
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
