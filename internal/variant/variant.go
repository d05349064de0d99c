// Package variant gives variants a canonical attribute order and identity.
package variant

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
)

// Sort returns a copy of attrs ordered by name, then value.
func Sort(attrs []model.VariantAttribute) []model.VariantAttribute {
	sorted := slices.Clone(attrs)
	slices.SortStableFunc(sorted, func(a, b model.VariantAttribute) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.Value, b.Value))
	})
	return sorted
}

// Key is the identity of a variant within its product. Attribute order does
// not affect it.
func Key(attrs []model.VariantAttribute) string {
	sorted := Sort(attrs)
	if sorted == nil {
		sorted = []model.VariantAttribute{}
	}
	//nolint:errchkjson
	b, _ := json.Marshal(sorted)
	return string(b)
}

// Normalize sorts each variant's attributes and rejects two variants that
// share an identity. The input is not modified.
func Normalize(variants []adapter.ProductPrice) ([]adapter.ProductPrice, error) {
	out := make([]adapter.ProductPrice, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))

	for _, v := range variants {
		v.Attributes = Sort(v.Attributes)
		key := Key(v.Attributes)
		if _, dup := seen[key]; dup {
			return nil, &apperr.ConflictError{Resource: "variant", Key: key}
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	return out, nil
}
