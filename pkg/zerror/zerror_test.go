package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awardrobe/pricetracker/pkg/zerror"
)

var errProductNotFound = zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

func TestZError(t *testing.T) {
	t.Run("Should match predefined errors after wrapping", func(t *testing.T) {
		cause := errors.New("no rows")
		err := fmt.Errorf("get product: %w", errProductNotFound.WrapParent(cause))

		assert.ErrorIs(t, err, errProductNotFound)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, zerror.NewConflict("PRODUCT_CONFLICT", "exists"))
	})

	t.Run("Should keep the parent out of the caller message", func(t *testing.T) {
		err := errProductNotFound.WrapParent(errors.New("select products: no rows")).WithMsg("product %s not found", "p-1")

		assert.Equal(t, "product p-1 not found", err.Msg())
		assert.Contains(t, err.Error(), "select products")
		assert.Equal(t, "product not found", errProductNotFound.Msg())
	})

	t.Run("Should classify caller faults", func(t *testing.T) {
		assert.True(t, zerror.StatusConflict.Client())
		assert.False(t, zerror.StatusBadGateway.Client())
		assert.Equal(t, "BAD_GATEWAY", zerror.StatusBadGateway.String())
		assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
	})
}
