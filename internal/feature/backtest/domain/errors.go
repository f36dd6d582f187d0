// Package domain defines domain-level errors for the backtest feature.
package domain

import "errors"

var (
	// ErrInputContractViolation indicates the price series broke its contract:
	// timestamps not strictly increasing, or a non-positive or non-finite close.
	// It is the only condition that aborts a run; it points at malformed upstream data.
	ErrInputContractViolation = errors.New("price series violates input contract")

	// ErrInvalidWindow indicates a moving-average window that is not a positive integer.
	ErrInvalidWindow = errors.New("moving average window must be a positive integer")
)
