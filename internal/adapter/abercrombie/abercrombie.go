// Package abercrombie implements the store adapter for abercrombie.com (US).
//
// The product collection endpoint carries names, offer prices and inventory in
// one reply, so a product needs a single request.
package abercrombie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
)

const (
	Handle = "abercrombie-us"

	DefaultBaseURL = "https://www.abercrombie.com"

	pageSize = 100
)

// codePattern matches the numeric id that ends the slug of a product page,
// e.g. /shop/us/p/relaxed-crew-tee-55032819.
var codePattern = regexp.MustCompile(`/p/(?:[^/?#]*-)?([0-9]+)(?:[/?#]|$)`)

// attributeNames maps definingAttrs keys to canonical attribute names.
var attributeNames = map[string]string{
	"color":         adapter.AttrColor,
	"sizePrimary":   adapter.AttrSize,
	"sizeSecondary": adapter.AttrLength,
}

var _ adapter.Adapter = (*Adapter)(nil)

type Adapter struct {
	client  *adapter.Client
	baseURL string
}

// New creates the adapter. An empty baseURL selects the production site.
func New(client *adapter.Client, baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{client: client, baseURL: baseURL}
}

func (a *Adapter) Handle() string { return Handle }

func (a *Adapter) Name() string { return "Abercrombie & Fitch US" }

func (a *Adapter) URLPrefixes() []string {
	return []string{"https://www.abercrombie.com/shop/us/"}
}

func (a *Adapter) DiscoverProducts(ctx context.Context, limit int) ([]string, error) {
	total := limit
	if limit <= 0 {
		total = pageSize
	}

	var codes []string
	for start := 0; start < total; start += pageSize {
		query := url.Values{}
		query.Set("start", strconv.Itoa(start))
		query.Set("rows", strconv.Itoa(min(total-start, pageSize)))

		page, err := adapter.GetJSON[searchResponse](ctx, a.client, a.baseURL+"/api/search/a-us/search?"+query.Encode(), searchShape)
		if err != nil {
			return nil, fmt.Errorf("get search page start=%d: %w", start, err)
		}

		results := page[0].Results
		for _, p := range results.Products {
			codes = append(codes, p.ProductID)
		}

		if limit <= 0 || results.Stats.Total < total {
			total = results.Stats.Total
		}
	}

	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

func (a *Adapter) ResolveProductCode(ctx context.Context, productURL string) (string, error) {
	matches := codePattern.FindStringSubmatch(productURL)
	if matches == nil {
		return "", &apperr.InvalidURLError{URL: productURL}
	}
	code := matches[1]

	if _, err := a.collection(ctx, code); err != nil {
		return "", fmt.Errorf("get product collection: %w", err)
	}

	return code, nil
}

func (a *Adapter) FetchProductDetails(ctx context.Context, productCode string) (adapter.ProductDetails, error) {
	coll, err := a.collection(ctx, productCode)
	if err != nil {
		return adapter.ProductDetails{}, fmt.Errorf("get product collection: %w", err)
	}

	product := coll.Products[0]
	variants := make([]adapter.ProductPrice, 0, len(product.Items))
	for _, item := range product.Items {
		type named struct {
			name string
			attr definingAttr
		}
		attrs := make([]named, 0, len(item.DefiningAttrs))
		for key, attr := range item.DefiningAttrs {
			if name, ok := attributeNames[key]; ok {
				attrs = append(attrs, named{name: name, attr: attr})
			}
		}
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].attr.Sequence < attrs[j].attr.Sequence })

		attributes := make([]model.VariantAttribute, 0, len(attrs))
		for _, na := range attrs {
			attributes = append(attributes, model.VariantAttribute{Name: na.name, Value: na.attr.Value})
		}

		variants = append(variants, adapter.ProductPrice{
			ProductURL:   productURL(productCode, item.ItemID),
			Attributes:   attributes,
			PriceInCents: adapter.DollarsToCents(item.OfferPrice),
			InStock:      item.Inventory.Inventory > 0,
		})
	}

	return adapter.ProductDetails{
		Name:     product.Name,
		Variants: adapter.FilterIncomplete(variants),
	}, nil
}

// collection fetches one product. A 404 or an empty reply is NotFoundError.
func (a *Adapter) collection(ctx context.Context, code string) (collectionResponse, error) {
	endpoint := fmt.Sprintf("%s/api/ecomm/a-us/product/collection/%s", a.baseURL, url.PathEscape(code))

	coll, err := adapter.GetJSON[collectionResponse](ctx, a.client, endpoint, collectionShape)
	if err != nil {
		var netErr *apperr.NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
			return coll, &apperr.NotFoundError{Resource: "product", Key: code}
		}
		return coll, err
	}
	if len(coll.Products) == 0 {
		return coll, &apperr.NotFoundError{Resource: "product", Key: code}
	}

	return coll, nil
}

func productURL(code, itemID string) string {
	return fmt.Sprintf("%s/shop/us/p/%s?itemId=%s", DefaultBaseURL, code, url.QueryEscape(itemID))
}
