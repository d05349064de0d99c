// Package ingest drives adapters, normalizes their output and feeds the price
// diff engine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/pricediff"
	"github.com/awardrobe/pricetracker/internal/repository"
	"github.com/awardrobe/pricetracker/internal/variant"
)

// Resolver finds the adapter for a URL or store handle.
type Resolver interface {
	Resolve(urlOrHandle string) (adapter.Adapter, error)
	Adapters() []adapter.Adapter
}

// Recorder appends price observations.
type Recorder interface {
	Record(ctx context.Context, obs pricediff.Observation) (pricediff.Outcome, error)
}

// ProductResult summarizes one product ingestion.
type ProductResult struct {
	Product  model.Product
	Variants []model.ProductVariant
	Appended int
}

// DiscoverResult summarizes a discovery run over one store.
type DiscoverResult struct {
	Discovered int `json:"discovered"`
	Added      int `json:"added"`
	Existing   int `json:"existing"`
	Failed     int `json:"failed"`
}

type Service struct {
	cfg         config.Ingest
	logger      *slog.Logger
	registry    Resolver
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	recorder    Recorder
}

func NewService(
	cfg config.Ingest,
	logger *slog.Logger,
	registry Resolver,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	recorder Recorder,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      logger.With(slog.String("service", "ingest")),
		registry:    registry,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		recorder:    recorder,
	}
}

// SeedStores upserts a store row for every registered adapter.
func (s *Service) SeedStores(ctx context.Context) error {
	adapters := s.registry.Adapters()
	stores := make([]model.Store, 0, len(adapters))
	for _, a := range adapters {
		prefixes := a.URLPrefixes()
		externalURL := ""
		if len(prefixes) > 0 {
			externalURL = prefixes[0]
		}
		stores = append(stores, model.Store{
			Handle:      a.Handle(),
			Name:        a.Name(),
			ExternalURL: externalURL,
			URLPrefixes: prefixes,
		})
	}

	if err := s.storeRepo.EnsureStores(ctx, stores); err != nil {
		return fmt.Errorf("ensure stores: %w", err)
	}

	return nil
}

// AddProduct starts tracking the product behind productURL and records its
// first observation.
func (s *Service) AddProduct(ctx context.Context, productURL string) (ProductResult, error) {
	a, err := s.registry.Resolve(productURL)
	if err != nil {
		return ProductResult{}, err
	}

	code, err := withRetry(ctx, s, func(ctx context.Context) (string, error) {
		return a.ResolveProductCode(ctx, productURL)
	})
	if err != nil {
		return ProductResult{}, s.failed(ctx, a.Handle(), "", fmt.Errorf("resolve product code: %w", err))
	}

	store, err := s.storeRepo.GetStoreByHandle(ctx, a.Handle())
	if err != nil {
		return ProductResult{}, fmt.Errorf("get store: %w", err)
	}

	return s.track(ctx, a, store, code)
}

func (s *Service) track(ctx context.Context, a adapter.Adapter, store model.Store, code string) (ProductResult, error) {
	exists, err := s.productRepo.ProductExists(ctx, store.ID, code)
	if err != nil {
		return ProductResult{}, fmt.Errorf("check product: %w", err)
	}
	if exists {
		return ProductResult{}, &apperr.ConflictError{Resource: "product", Key: store.Handle + "/" + code}
	}

	name, observed, variants, err := s.fetch(ctx, a, code)
	if err != nil {
		return ProductResult{}, s.failed(ctx, a.Handle(), code, err)
	}

	product, stored, err := s.productRepo.CreateProductWithVariants(ctx, repository.CreateProductParams{
		StoreID:     store.ID,
		StoreHandle: store.Handle,
		ProductCode: code,
		Name:        name,
		Variants:    variants,
	})
	if err != nil {
		return ProductResult{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product tracked",
		slog.String("store", store.Handle),
		slog.String("product_code", code),
		slog.String("product_id", product.PublicID.String()),
		slog.Int("variants", len(stored)),
	)

	return s.record(ctx, product, stored, observed)
}

// IngestProduct refreshes a tracked product. Only changed variants get a new
// price row.
func (s *Service) IngestProduct(ctx context.Context, product model.Product) (ProductResult, error) {
	a, err := s.registry.Resolve(product.StoreHandle)
	if err != nil {
		return ProductResult{}, err
	}

	_, observed, variants, err := s.fetch(ctx, a, product.ProductCode)
	if err != nil {
		return ProductResult{}, s.failed(ctx, a.Handle(), product.ProductCode, err)
	}

	stored, err := s.productRepo.EnsureVariants(ctx, product.ID, variants)
	if err != nil {
		return ProductResult{}, fmt.Errorf("ensure variants: %w", err)
	}

	return s.record(ctx, product, stored, observed)
}

// DiscoverAndTrack lists a store's catalogue and tracks every product not yet
// tracked. One failing product does not stop the others.
func (s *Service) DiscoverAndTrack(ctx context.Context, storeHandle string, limit int) (DiscoverResult, error) {
	a, err := s.registry.Resolve(storeHandle)
	if err != nil {
		return DiscoverResult{}, err
	}

	store, err := s.storeRepo.GetStoreByHandle(ctx, a.Handle())
	if err != nil {
		return DiscoverResult{}, fmt.Errorf("get store: %w", err)
	}

	codes, err := withRetry(ctx, s, func(ctx context.Context) ([]string, error) {
		return a.DiscoverProducts(ctx, limit)
	})
	if err != nil {
		return DiscoverResult{}, s.failed(ctx, a.Handle(), "", fmt.Errorf("discover products: %w", err))
	}

	var (
		mu     sync.Mutex
		result = DiscoverResult{Discovered: len(codes)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for _, code := range codes {
		g.Go(func() error {
			_, err := s.track(gctx, a, store, code)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Added++
			case apperr.IsConflict(err):
				result.Existing++
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				result.Failed++
				s.logger.WarnContext(gctx, "error tracking discovered product",
					slog.String("store", a.Handle()),
					slog.String("product_code", code),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("track discovered products: %w", err)
	}

	s.logger.InfoContext(ctx, "store discovery completed",
		slog.String("store", a.Handle()),
		slog.Int("discovered", result.Discovered),
		slog.Int("added", result.Added),
		slog.Int("existing", result.Existing),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

// fetch returns the product name, its normalized observations and the variant
// rows they map to, index aligned. Nothing is persisted here.
func (s *Service) fetch(ctx context.Context, a adapter.Adapter, code string) (string, []adapter.ProductPrice, []model.ProductVariant, error) {
	details, err := withRetry(ctx, s, func(ctx context.Context) (adapter.ProductDetails, error) {
		return a.FetchProductDetails(ctx, code)
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("fetch product details: %w", err)
	}

	// adapters keep incomplete variants only when in stock
	used := adapter.UsedDimensions(details.Variants)
	for _, v := range details.Variants {
		if !adapter.Complete(v, used) {
			incompleteInStock.WithLabelValues(a.Handle()).Inc()
			s.logger.WarnContext(ctx, "keeping in-stock variant with missing attributes",
				slog.String("store", a.Handle()),
				slog.String("product_code", code),
				slog.Any("attributes", v.Attributes),
			)
		}
	}

	observed, err := variant.Normalize(details.Variants)
	if err != nil {
		return "", nil, nil, fmt.Errorf("normalize variants: %w", err)
	}

	variants := make([]model.ProductVariant, 0, len(observed))
	for _, v := range observed {
		variants = append(variants, model.ProductVariant{
			ProductURL:    v.ProductURL,
			Attributes:    v.Attributes,
			AttributesKey: variant.Key(v.Attributes),
		})
	}

	return details.Name, observed, variants, nil
}

// record feeds one observation per variant to the diff engine.
func (s *Service) record(ctx context.Context, product model.Product, stored []model.ProductVariant, observed []adapter.ProductPrice) (ProductResult, error) {
	result := ProductResult{Product: product, Variants: stored}
	if len(stored) != len(observed) {
		return result, fmt.Errorf("stored %d variants for %d observed", len(stored), len(observed))
	}

	for i, v := range stored {
		outcome, err := s.recorder.Record(ctx, pricediff.Observation{
			VariantID:       v.ID,
			VariantPublicID: v.PublicID,
			ProductPublicID: product.PublicID,
			PriceInCents:    observed[i].PriceInCents,
			InStock:         observed[i].InStock,
		})
		if err != nil {
			return result, fmt.Errorf("record price of variant %s: %w", v.PublicID, err)
		}

		if outcome.Appended {
			result.Appended++
		}
		current := outcome.Current
		result.Variants[i].LatestPriceID = &current.ID
		result.Variants[i].LatestPrice = &current
	}

	productRuns.WithLabelValues(product.StoreHandle, "ok").Inc()

	return result, nil
}

// failed logs and counts an upstream failure, then returns err unchanged.
func (s *Service) failed(ctx context.Context, store, code string, err error) error {
	kind := apperr.Kind(err)
	productRuns.WithLabelValues(store, kind).Inc()

	attrs := []any{
		slog.String("store", store),
		slog.String("product_code", code),
		slog.String("kind", kind),
		slog.Any("error", err),
	}
	switch {
	case apperr.IsParse(err):
		schemaDrift.WithLabelValues(store).Inc()
		s.logger.ErrorContext(ctx, "upstream schema drift", attrs...)
	case apperr.IsRetryable(err):
		s.logger.WarnContext(ctx, "upstream unavailable", attrs...)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.InfoContext(ctx, "product rejected", attrs...)
	}

	return err
}

func (s *Service) workers() int {
	if s.cfg.Workers <= 0 {
		return 1
	}
	return s.cfg.Workers
}

// withRetry retries fn while it fails with a network error. Any other error,
// shape drift included, is returned at once.
func withRetry[T any](ctx context.Context, s *Service, fn func(context.Context) (T, error)) (T, error) {
	backoff := retry.WithMaxRetries(s.cfg.RetryAttempts, retry.NewExponential(s.retryBase()))

	var out T
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		if apperr.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return out, err
}

func (s *Service) retryBase() time.Duration {
	if s.cfg.RetryBackoff <= 0 {
		return 500 * time.Millisecond
	}
	return s.cfg.RetryBackoff
}
