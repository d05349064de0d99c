package validator_test

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/pkg/validator"
)

type trackRequest struct {
	ProductURL string `validate:"required,weburl"`
	Store      string `validate:"omitempty,storehandle"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept a product url and store handle", func(t *testing.T) {
		err := v.Validate(trackRequest{
			ProductURL: "https://www.uniqlo.com/us/en/products/E457264-000/00",
			Store:      "uniqlo-us",
		})
		assert.NoError(t, err)
	})

	t.Run("Should reject relative urls", func(t *testing.T) {
		err := v.Validate(trackRequest{ProductURL: "/us/en/products/E457264-000"})
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		var fieldErrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "must be an absolute http or https URL", validator.ValidationErrorMessage(fieldErrs[0]))
	})

	t.Run("Should reject malformed store handles", func(t *testing.T) {
		err := v.Validate(trackRequest{ProductURL: "https://example.com/p/1", Store: "Uniqlo US"})
		require.Error(t, err)
	})
}
