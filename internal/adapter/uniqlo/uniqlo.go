// Package uniqlo implements the store adapter for uniqlo.com (US).
package uniqlo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
)

const (
	Handle = "uniqlo-us"

	DefaultBaseURL = "https://www.uniqlo.com/us/api/commerce/v5/en"
	siteURL        = "https://www.uniqlo.com/us/en/products"

	pageSize = 100
)

var codePattern = regexp.MustCompile(`[a-zA-Z0-9]{7}-[0-9]{3}`)

var _ adapter.Adapter = (*Adapter)(nil)

type Adapter struct {
	client  *adapter.Client
	baseURL string
}

// New creates the adapter. An empty baseURL selects the production API.
func New(client *adapter.Client, baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{client: client, baseURL: baseURL}
}

func (a *Adapter) Handle() string { return Handle }

func (a *Adapter) Name() string { return "Uniqlo US" }

func (a *Adapter) URLPrefixes() []string {
	return []string{"https://www.uniqlo.com/us/"}
}

func (a *Adapter) DiscoverProducts(ctx context.Context, limit int) ([]string, error) {
	total := limit
	if limit <= 0 {
		total = pageSize
	}

	var codes []string
	for offset := 0; offset < total; offset += pageSize {
		query := url.Values{}
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(min(total-offset, pageSize)))
		query.Set("httpFailure", "true")

		page, err := adapter.GetJSON[productsResponse](ctx, a.client, a.baseURL+"/products?"+query.Encode(), productsShape)
		if err != nil {
			return nil, fmt.Errorf("get products page offset=%d: %w", offset, err)
		}

		for _, item := range page.Result.Items {
			codes = append(codes, item.ProductID)
		}

		reported := page.Result.Pagination.Total
		if limit <= 0 || reported < total {
			total = reported
		}
	}

	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

func (a *Adapter) ResolveProductCode(ctx context.Context, productURL string) (string, error) {
	code := codePattern.FindString(productURL)
	if code == "" {
		return "", &apperr.InvalidURLError{URL: productURL}
	}

	if _, err := adapter.GetJSON[detailsResponse](ctx, a.client, a.detailsURL(code), detailsShape); err != nil {
		return "", fmt.Errorf("get product details: %w", notFound(code, err))
	}

	return code, nil
}

func (a *Adapter) FetchProductDetails(ctx context.Context, productCode string) (adapter.ProductDetails, error) {
	var (
		details detailsResponse
		l2s     l2sResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = adapter.GetJSON[detailsResponse](gctx, a.client, a.detailsURL(productCode), detailsShape)
		if err != nil {
			return fmt.Errorf("get product details: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		l2s, err = adapter.GetJSON[l2sResponse](gctx, a.client, a.l2sURL(productCode), l2sShape)
		if err != nil {
			return fmt.Errorf("get product l2s: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return adapter.ProductDetails{}, notFound(productCode, err)
	}

	colors := indexOptions(details.Result.Colors)
	sizes := indexOptions(details.Result.Sizes)
	plds := indexOptions(details.Result.Plds)

	variants := make([]adapter.ProductPrice, 0, len(l2s.Result.L2s))
	for _, l2 := range l2s.Result.L2s {
		stock, hasStock := l2s.Result.Stocks[l2.L2ID]
		price, hasPrice := l2s.Result.Prices[l2.L2ID]
		color, hasColor := colors[l2.Color.Code]
		size, hasSize := sizes[l2.Size.Code]
		pld, hasPld := plds[l2.Pld.Code]
		if !hasStock || !hasPrice || !hasColor || !hasSize || !hasPld {
			continue
		}

		var attributes []model.VariantAttribute
		if color.Display.ShowFlag {
			attributes = append(attributes, model.VariantAttribute{
				Name:  adapter.AttrColor,
				Value: adapter.TitleCase(color.DisplayCode + " " + color.Name),
			})
		}
		if size.Display.ShowFlag {
			attributes = append(attributes, model.VariantAttribute{Name: adapter.AttrSize, Value: size.Name})
		}
		if pld.Display.ShowFlag {
			attributes = append(attributes, model.VariantAttribute{Name: adapter.AttrLength, Value: pld.Name})
		}

		variants = append(variants, adapter.ProductPrice{
			ProductURL:   productURL(productCode, color, size),
			Attributes:   attributes,
			PriceInCents: adapter.DollarsToCents(price.Base.Value),
			InStock:      stock.Quantity > 0,
		})
	}

	return adapter.ProductDetails{
		Name:     details.Result.Name,
		Variants: adapter.FilterIncomplete(variants),
	}, nil
}

func (a *Adapter) detailsURL(code string) string {
	return fmt.Sprintf("%s/products/%s/price-groups/00/details?includeModelSize=false&httpFailure=true",
		a.baseURL, url.PathEscape(code))
}

func (a *Adapter) l2sURL(code string) string {
	return fmt.Sprintf("%s/products/%s/price-groups/00/l2s?withPrices=true&withStocks=true&httpFailure=true",
		a.baseURL, url.PathEscape(code))
}

func productURL(code string, color, size option) string {
	query := url.Values{}
	if color.DisplayCode != "" {
		query.Set("colorDisplayCode", color.DisplayCode)
	}
	if size.DisplayCode != "" {
		query.Set("sizeDisplayCode", size.DisplayCode)
	}

	u := fmt.Sprintf("%s/%s/00", siteURL, code)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func indexOptions(opts []option) map[string]option {
	m := make(map[string]option, len(opts))
	for _, o := range opts {
		m[o.Code] = o
	}
	return m
}

// notFoundStatus is the status sentinel of the store's "no such product" reply.
const notFoundStatus = "nok"

// notFound maps the store's "no such product" replies to NotFoundError. The API
// answers either 404 or a "nok" status sentinel. A missing or mistyped status
// is drift and stays a ParseError.
func notFound(code string, err error) error {
	var (
		netErr   *apperr.NetworkError
		parseErr *apperr.ParseError
	)
	switch {
	case errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound:
	case errors.As(err, &parseErr) && parseErr.Status == notFoundStatus:
	default:
		return err
	}
	return &apperr.NotFoundError{Resource: "product", Key: code}
}
