// Package fetch performs outbound requests to store APIs.
//
// A Fetcher only moves bytes: it validates the status code and enforces a
// timeout, but never interprets the body and never retries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/config"
)

const maxBodyBytes = 32 << 20 // 32 MB

var (
	tracer = otel.Tracer("internal/fetch")

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricetracker_upstream_request_duration_seconds",
		Help:    "Latency of requests sent to upstream store APIs",
		Buckets: prometheus.DefBuckets,
	}, []string{"host", "outcome"})
)

// Options tune a single request.
type Options struct {
	UseProxy bool
	// Timeout overrides the fetcher default when positive.
	Timeout time.Duration
}

// Response is the raw upstream reply. Body is unparsed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts Options) (Response, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)

type HTTPFetcher struct {
	direct    *http.Client
	proxies   *ProxyPool
	timeout   time.Duration
	userAgent string
}

// New creates a fetcher from explicit configuration. It never reads proxy
// settings from the process environment.
func New(cfg config.Fetch) (*HTTPFetcher, error) {
	proxies, err := NewProxyPool(cfg.ProxyURLs)
	if err != nil {
		return nil, fmt.Errorf("new proxy pool: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPFetcher{
		direct:    &http.Client{Transport: newTransport(nil)},
		proxies:   proxies,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (Response, error) {
	client := f.direct
	if opts.UseProxy {
		proxied, err := f.proxies.client()
		if err != nil {
			// fail closed: the target url is not attached and no direct attempt is made
			return Response{}, &apperr.NetworkError{Err: err}
		}
		client = proxied
	}

	host := hostOf(rawURL)
	ctx, span := tracer.Start(ctx, "Fetcher.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.host", host),
			attribute.Bool("fetch.proxied", opts.UseProxy),
		),
	)
	defer span.End()

	timeout := f.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := f.do(ctx, client, rawURL)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream request failed")
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	requestDuration.WithLabelValues(host, outcome).Observe(time.Since(start).Seconds())

	return res, err
}

func (f *HTTPFetcher) do(ctx context.Context, client *http.Client, rawURL string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, &apperr.NetworkError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return Response{}, &apperr.NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		//nolint:errcheck
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return Response{StatusCode: resp.StatusCode}, &apperr.NetworkError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			err = ctx.Err()
		}
		return Response{StatusCode: resp.StatusCode}, &apperr.NetworkError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
