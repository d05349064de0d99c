package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/log"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/storage/lock"
)

const trackedPageSize = 200

// ProductIngester refreshes one tracked product.
type ProductIngester interface {
	IngestProduct(ctx context.Context, product model.Product) (ProductResult, error)
	DiscoverAndTrack(ctx context.Context, storeHandle string, limit int) (DiscoverResult, error)
}

// ProductLister pages through tracked products by ascending id.
type ProductLister interface {
	ListTrackedProducts(ctx context.Context, afterID int64, limit int32) ([]model.Product, error)
}

// SweepResult summarizes one pass over the tracked products.
type SweepResult struct {
	Ingested int64
	Skipped  int64
	Failed   int64
	Appended int64
}

// Scheduler periodically ingests every tracked product with bounded
// parallelism. A product leased by another process is skipped for the pass.
type Scheduler struct {
	cfg      config.Ingest
	logger   *slog.Logger
	ingester ProductIngester
	products ProductLister
	locker   lock.Locker

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewScheduler(
	cfg config.Ingest,
	logger *slog.Logger,
	ingester ProductIngester,
	products ProductLister,
	locker lock.Locker,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		logger:   logger.With(slog.String("service", "ingest-scheduler")),
		ingester: ingester,
		products: products,
		locker:   locker,
		stopChan: make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Scheduler) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		s.stopOnce.Do(func() { close(s.stopChan) })
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	// the first pass starts right away
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-timer.C:
			passCtx, cancel := context.WithCancel(ctx)
			go func() {
				select {
				case <-s.stopChan:
					cancel()
				case <-passCtx.Done():
				}
			}()

			s.discover(passCtx)
			if _, err := s.Sweep(passCtx); err != nil {
				s.logger.ErrorContext(ctx, "error sweeping tracked products", slog.Any("error", err))
			}
			cancel()

			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Scheduler) discover(ctx context.Context) {
	for _, handle := range s.cfg.DiscoverStores {
		if _, err := s.ingester.DiscoverAndTrack(ctx, handle, s.cfg.DiscoverLimit); err != nil {
			s.logger.ErrorContext(ctx, "error discovering store",
				slog.String("store", handle),
				slog.Any("error", err),
			)
		}
	}
}

// Sweep ingests every tracked product once.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		result                    SweepResult
		ingested, skipped, failed atomic.Int64
		appended                  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	var afterID int64
	for {
		products, err := s.products.ListTrackedProducts(gctx, afterID, trackedPageSize)
		if err != nil {
			//nolint:errcheck
			g.Wait()
			return result, fmt.Errorf("list tracked products: %w", err)
		}

		for _, product := range products {
			g.Go(func() error {
				pctx := log.WithAttrs(gctx, slog.String("product_id", product.PublicID.String()))
				release, ok, err := s.locker.TryAcquire(pctx, "product:"+strconv.FormatInt(product.ID, 10), s.cfg.LeaseTTL)
				if err != nil {
					failed.Add(1)
					s.logger.WarnContext(pctx, "error acquiring product lease", slog.Any("error", err))
					return nil
				}
				if !ok {
					skipped.Add(1)
					return nil
				}
				defer func() {
					if err := release(context.WithoutCancel(pctx)); err != nil {
						s.logger.WarnContext(pctx, "error releasing product lease", slog.Any("error", err))
					}
				}()

				res, err := s.ingester.IngestProduct(pctx, product)
				if err != nil {
					if pctx.Err() != nil {
						return pctx.Err()
					}
					failed.Add(1)
					return nil
				}
				ingested.Add(1)
				appended.Add(int64(res.Appended))
				return nil
			})
		}

		if len(products) < trackedPageSize {
			break
		}
		afterID = products[len(products)-1].ID
	}

	err := g.Wait()
	result = SweepResult{
		Ingested: ingested.Load(),
		Skipped:  skipped.Load(),
		Failed:   failed.Load(),
		Appended: appended.Load(),
	}

	s.logger.InfoContext(ctx, "tracked products swept",
		slog.Int64("ingested", result.Ingested),
		slog.Int64("skipped", result.Skipped),
		slog.Int64("failed", result.Failed),
		slog.Int64("appended", result.Appended),
	)

	if err != nil {
		return result, fmt.Errorf("ingest tracked products: %w", err)
	}
	return result, nil
}
