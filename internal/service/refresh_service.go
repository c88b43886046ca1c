package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
	"github.com/avries/Asset-Ledger-Backend/internal/quote"
)

// RefreshService runs the market price refresh cycle: fetch a quote for
// every held asset, then apply the collected prices to the ledger in one
// atomic commit.
//
// Starting a refresh supersedes any refresh already in flight
// (last-started-wins at full-cycle granularity). A superseded, failed, or
// cancelled cycle never applies anything: positions and prices stay as
// they were, stale but not cleared.
type RefreshService struct {
	ledger   *ledger.PositionLedger
	provider quote.Provider

	mu      sync.Mutex
	current context.Context
	cancel  context.CancelFunc
}

// RefreshResult reports the outcome of one refresh cycle.
type RefreshResult struct {
	Updated     []model.AssetType `json:"updated"`
	Skipped     []model.AssetType `json:"skipped"`
	RefreshedAt time.Time         `json:"refreshedAt"`
}

// NewRefreshService creates a RefreshService over the given ledger and
// quote provider.
func NewRefreshService(l *ledger.PositionLedger, provider quote.Provider) *RefreshService {
	return &RefreshService{
		ledger:   l,
		provider: provider,
	}
}

// RefreshAll runs one refresh cycle. Assets whose quote is unavailable
// are skipped for the cycle; cancellation between fetch and apply aborts
// the whole cycle before anything is committed.
func (s *RefreshService) RefreshAll(ctx context.Context) (RefreshResult, error) {
	cycleCtx, cancel := s.begin(ctx)
	defer s.end(cycleCtx, cancel)

	positions := s.ledger.Positions()
	if len(positions) == 0 {
		return RefreshResult{RefreshedAt: s.ledger.RefreshedAt()}, nil
	}

	type outcome struct {
		asset model.AssetType
		q     quote.Quote
		err   error
	}
	outcomes := make([]outcome, len(positions))

	g, fetchCtx := errgroup.WithContext(cycleCtx)
	for i, pos := range positions {
		g.Go(func() error {
			q, err := s.provider.Quote(fetchCtx, pos.Asset)
			outcomes[i] = outcome{asset: pos.Asset, q: q, err: err}
			if err != nil && fetchCtx.Err() != nil {
				// Propagate cancellation only; per-asset failures are
				// recorded and skipped.
				return fetchCtx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RefreshResult{}, s.cycleError(ctx, cycleCtx)
	}

	// Sole commit point: re-check cancellation between fetch and apply so
	// a superseding cycle can never interleave its prices with ours.
	if cycleCtx.Err() != nil {
		return RefreshResult{}, s.cycleError(ctx, cycleCtx)
	}

	prices := make(map[model.AssetType]float64, len(outcomes))
	var skipped []model.AssetType
	for _, o := range outcomes {
		if o.err != nil {
			skipped = append(skipped, o.asset)
			continue
		}
		prices[o.asset] = o.q.Price
	}

	updated, err := s.ledger.RefreshAll(prices)
	if err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		Updated:     updated,
		Skipped:     skipped,
		RefreshedAt: s.ledger.RefreshedAt(),
	}, nil
}

// Cancel aborts any refresh cycle currently in flight.
func (s *RefreshService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// begin registers a new cycle, cancelling whichever cycle was in flight.
func (s *RefreshService) begin(ctx context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	s.current = cycleCtx
	s.cancel = cancel
	return cycleCtx, cancel
}

// end releases the cycle's slot unless a newer cycle already took it.
func (s *RefreshService) end(cycleCtx context.Context, cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == cycleCtx {
		s.current = nil
		s.cancel = nil
	}
}

// cycleError distinguishes an external cancellation from being superseded
// by a newer cycle.
func (s *RefreshService) cycleError(parent, cycleCtx context.Context) error {
	if parent.Err() != nil {
		return fmt.Errorf("refresh cycle cancelled: %w", parent.Err())
	}
	if cycleCtx.Err() != nil {
		return apperrors.ErrRefreshSuperseded
	}
	return errors.New("refresh cycle aborted")
}
