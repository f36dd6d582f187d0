package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MaxBatchSize caps the number of runs accepted by RunBatch.
const MaxBatchSize = 50

// BatchItem is the outcome of one request in a batch. Exactly one of Report and Err is set.
type BatchItem struct {
	Request Request
	Report  *Report
	Err     error
}

// RunBatch runs reqs concurrently, at most Config.MaxParallel at a time,
// and returns one item per request in request order. A failing run is
// recorded in its item; only cancellation of ctx fails the whole batch.
//
// An empty reqs runs the defaults for every active symbol. MaxBatchSize
// applies to the caller's requests, not to the size of that universe.
func (u *BacktestUsecase) RunBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	if len(reqs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRuns, len(reqs), MaxBatchSize)
	}
	if len(reqs) == 0 {
		defaults, err := u.defaultRequests(ctx)
		if err != nil {
			return nil, err
		}
		reqs = defaults
	}

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.MaxParallel)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := u.Run(gctx, req)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			items[i] = BatchItem{Request: req, Report: rep, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (u *BacktestUsecase) defaultRequests(ctx context.Context) ([]Request, error) {
	if u.symbols == nil {
		return nil, nil
	}
	codes, err := u.symbols.ListActiveCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active symbols: %w", err)
	}
	reqs := make([]Request, 0, len(codes))
	for _, c := range codes {
		reqs = append(reqs, Request{Symbol: c})
	}
	return reqs, nil
}
