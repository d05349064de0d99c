package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awardrobe/pricetracker/internal/model"
)

func TestPriceSameState(t *testing.T) {
	p := model.Price{PriceInCents: 1999, InStock: true}

	assert.True(t, p.SameState(1999, true))
	assert.False(t, p.SameState(1799, true))
	assert.False(t, p.SameState(1999, false))
}
