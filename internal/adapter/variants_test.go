package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/model"
)

func attrs(kv ...string) []model.VariantAttribute {
	out := make([]model.VariantAttribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, model.VariantAttribute{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestFilterIncomplete(t *testing.T) {
	t.Run("Should drop an out of stock variant missing a used dimension", func(t *testing.T) {
		variants := []adapter.ProductPrice{
			{Attributes: attrs("Color", "Black", "Size", "M"), PriceInCents: 1999, InStock: true},
			{Attributes: attrs("Color", "Black"), PriceInCents: 1999, InStock: false},
		}

		got := adapter.FilterIncomplete(variants)

		assert.Equal(t, variants[:1], got)
	})

	t.Run("Should keep an in stock variant missing a used dimension", func(t *testing.T) {
		variants := []adapter.ProductPrice{
			{Attributes: attrs("Color", "Black", "Size", "M"), InStock: false},
			{Attributes: attrs("Color", "Black"), InStock: true},
		}

		got := adapter.FilterIncomplete(variants)

		assert.Equal(t, variants, got)
	})

	t.Run("Should not require dimensions no variant declares", func(t *testing.T) {
		variants := []adapter.ProductPrice{
			{Attributes: attrs("Size", "S")},
			{Attributes: attrs("Size", "M")},
		}

		assert.Equal(t, variants, adapter.FilterIncomplete(variants))
	})

	t.Run("Should ignore attributes outside the tracked dimensions", func(t *testing.T) {
		variants := []adapter.ProductPrice{
			{Attributes: attrs("Size", "S", "Fit", "Slim")},
			{Attributes: attrs("Size", "M")},
		}

		assert.Equal(t, variants, adapter.FilterIncomplete(variants))
		assert.Equal(t, map[string]bool{"Size": true}, adapter.UsedDimensions(variants))
	})

	t.Run("Should return an empty slice for no variants", func(t *testing.T) {
		assert.Empty(t, adapter.FilterIncomplete(nil))
	})
}

func TestDollarsToCents(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int64
	}{
		{19.99, 1999},
		{17.99, 1799},
		{29, 2900},
		{0.295, 30},
		{0.005, 1},
		{0, 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, adapter.DollarsToCents(tc.dollars), "dollars=%v", tc.dollars)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "09 Black", adapter.TitleCase("09 BLACK"))
	assert.Equal(t, "69 Navy Blue", adapter.TitleCase("69  navy BLUE"))
	assert.Equal(t, "", adapter.TitleCase(""))
}
