package apicontract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/awardrobe/pricetracker/api-contract"
)

func TestLoad(t *testing.T) {
	t.Run("Should load a valid document", func(t *testing.T) {
		doc, err := apicontract.Load(context.Background())
		require.NoError(t, err)

		for _, path := range []string{
			"/products",
			"/products/{productId}",
			"/products/{productId}/notifications",
			"/variants/{variantId}/prices",
			"/stores/{storeHandle}/discover",
		} {
			assert.NotNil(t, doc.Paths.Find(path), path)
		}
	})
}
