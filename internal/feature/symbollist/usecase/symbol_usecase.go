// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"errors"

	"stock_backtest/internal/feature/symbollist/domain/entity"
)

// ErrEmptyCode is returned by Register when a code is blank after normalization.
var ErrEmptyCode = errors.New("symbol code must not be empty")

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, symbols []entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols ordered by sort key.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes returns the codes of all active symbols ordered by sort key.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Register marks the given codes as active, creating them when missing.
// Sort keys follow argument order; duplicates after normalization are collapsed.
func (u *SymbolUsecase) Register(ctx context.Context, market string, codes []string) error {
	seen := make(map[string]struct{}, len(codes))
	symbols := make([]entity.Symbol, 0, len(codes))
	for _, c := range codes {
		code := entity.NormalizeCode(c)
		if code == "" {
			return ErrEmptyCode
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		symbols = append(symbols, entity.Symbol{
			Code:     code,
			Name:     code,
			Market:   market,
			IsActive: true,
			SortKey:  len(symbols) + 1,
		})
	}
	if len(symbols) == 0 {
		return nil
	}
	return u.repo.Upsert(ctx, symbols)
}
