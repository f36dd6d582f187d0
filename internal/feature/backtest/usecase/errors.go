package usecase

import "errors"

var (
	// ErrSymbolRequired is returned when a request carries no ticker.
	ErrSymbolRequired = errors.New("symbol is required")
	// ErrInvalidDateRange is returned when start is after end.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	// ErrNoPriceData is returned when the source has no closes for the range.
	ErrNoPriceData = errors.New("no price data for symbol in range")
	// ErrPriceSource wraps failures of the price history collaborator.
	ErrPriceSource = errors.New("price source failed")
	// ErrTooManyRuns is returned when a batch exceeds MaxBatchSize.
	ErrTooManyRuns = errors.New("too many runs in batch")
)
