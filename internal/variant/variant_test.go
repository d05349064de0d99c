package variant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/variant"
)

func TestKey(t *testing.T) {
	t.Run("Should ignore attribute order", func(t *testing.T) {
		a := []model.VariantAttribute{{Name: "Size", Value: "M"}, {Name: "Color", Value: "09 Black"}}
		b := []model.VariantAttribute{{Name: "Color", Value: "09 Black"}, {Name: "Size", Value: "M"}}

		assert.Equal(t, variant.Key(a), variant.Key(b))
	})

	t.Run("Should distinguish values", func(t *testing.T) {
		a := []model.VariantAttribute{{Name: "Size", Value: "M"}}
		b := []model.VariantAttribute{{Name: "Size", Value: "L"}}

		assert.NotEqual(t, variant.Key(a), variant.Key(b))
	})

	t.Run("Should not be fooled by separators inside values", func(t *testing.T) {
		a := []model.VariantAttribute{{Name: "Color", Value: "Red;Size=M"}}
		b := []model.VariantAttribute{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}}

		assert.NotEqual(t, variant.Key(a), variant.Key(b))
	})

	t.Run("Should ignore the order of attributes sharing a name", func(t *testing.T) {
		a := []model.VariantAttribute{{Name: "Color", Value: "69 Navy"}, {Name: "Size", Value: "M"}, {Name: "Color", Value: "09 Black"}}
		b := []model.VariantAttribute{{Name: "Color", Value: "09 Black"}, {Name: "Color", Value: "69 Navy"}, {Name: "Size", Value: "M"}}

		assert.Equal(t, variant.Key(a), variant.Key(b))
		assert.Equal(t, []model.VariantAttribute{
			{Name: "Color", Value: "09 Black"},
			{Name: "Color", Value: "69 Navy"},
			{Name: "Size", Value: "M"},
		}, variant.Sort(a))
	})

	t.Run("Should treat nil and empty attributes alike", func(t *testing.T) {
		assert.Equal(t, variant.Key(nil), variant.Key([]model.VariantAttribute{}))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("Should sort attributes by name without touching the input", func(t *testing.T) {
		in := []adapter.ProductPrice{{
			Attributes: []model.VariantAttribute{
				{Name: "Size", Value: "M"},
				{Name: "Length", Value: "30"},
				{Name: "Color", Value: "Blue"},
			},
			PriceInCents: 1999,
		}}

		got, err := variant.Normalize(in)

		require.NoError(t, err)
		assert.Equal(t, []model.VariantAttribute{
			{Name: "Color", Value: "Blue"},
			{Name: "Length", Value: "30"},
			{Name: "Size", Value: "M"},
		}, got[0].Attributes)
		assert.Equal(t, "Size", in[0].Attributes[0].Name)
		assert.Equal(t, int64(1999), got[0].PriceInCents)
	})

	t.Run("Should reject two variants with the same identity", func(t *testing.T) {
		in := []adapter.ProductPrice{
			{Attributes: []model.VariantAttribute{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "M"}}},
			{Attributes: []model.VariantAttribute{{Name: "Size", Value: "M"}, {Name: "Color", Value: "Blue"}}},
		}

		_, err := variant.Normalize(in)

		assert.True(t, apperr.IsConflict(err))
	})
}
