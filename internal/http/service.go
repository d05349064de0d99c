package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/awardrobe/pricetracker/api-contract"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/http/metric"
	"github.com/awardrobe/pricetracker/internal/http/middleware"
	"github.com/awardrobe/pricetracker/internal/http/swagger"
	"github.com/awardrobe/pricetracker/internal/service"
	"github.com/awardrobe/pricetracker/internal/storage/db"
	"github.com/awardrobe/pricetracker/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator
	health    db.HealthChecker

	productSvc service.ProductService
	tracker    Tracker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	reg prometheus.Registerer,
	v validator.Validator,
	health db.HealthChecker,
	productSvc service.ProductService,
	tracker Tracker,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(reg),
		validator:  v,
		health:     health,
		productSvc: productSvc,
		tracker:    tracker,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Router(ctx)
	if err != nil {
		return nil, err
	}
	return s.RunWithServer(ctx, handler)
}

// Router builds the full handler tree.
func (s *Service) Router(ctx context.Context) (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		doc, err := apicontract.Load(ctx)
		if err != nil {
			return nil, err
		}
		if err := swagger.Register(r, doc); err != nil {
			return nil, err
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	// WriteTimeout leaves room for add-product calls that wait on upstream retries
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      90 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", lis.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.CorrelationID(),
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.Cors(s.cfg.CorsOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	rs := &responder{logger: s.logger, validator: s.validator}
	products := newProductHandler(rs, s.productSvc, s.tracker)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", products.CreateProduct)
		r.Get("/products", products.ListProducts)
		r.Get("/products/{productId}", products.GetProduct)
		r.Post("/products/{productId}/notifications", products.CreateNotification)
		r.Get("/variants/{variantId}/prices", products.ListPriceHistory)
		r.Post("/stores/{storeHandle}/discover", products.DiscoverStore)
	})

	r.Get(middleware.HealthPath, s.handleHealth)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if ok, err := s.health.IsHealthy(ctx); !ok || err != nil {
		s.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
