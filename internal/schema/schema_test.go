package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/schema"
)

type listing struct {
	Status string `json:"status"`
	Result struct {
		Items []struct {
			ProductID string  `json:"productId"`
			Price     float64 `json:"price"`
			Badge     *string `json:"badge"`
		} `json:"items"`
		Total int `json:"total"`
	} `json:"result"`
}

var listingShape = schema.Shape{
	Name: "test/listing",
	Schema: schema.Object(
		schema.Req("status", schema.Enum("ok", "nok")),
		schema.Req("result", schema.Object(
			schema.Req("items", schema.Array(schema.Object(
				schema.Req("productId", schema.String()),
				schema.Req("price", schema.Number()),
				schema.Opt("badge", schema.String()),
			))),
			schema.Req("total", schema.Integer()),
		)),
	),
	StatusField: "status",
	OKValue:     "ok",
}

func TestDecode(t *testing.T) {
	t.Run("Should decode a conforming payload and tolerate extra fields", func(t *testing.T) {
		body := `{"status":"ok","extra":true,"result":{"total":2,"items":[
			{"productId":"E1","price":19.9},
			{"productId":"E2","price":29,"badge":null,"new":"field"}]}}`

		got, err := schema.Decode[listing]([]byte(body), listingShape)

		require.NoError(t, err)
		require.Len(t, got.Result.Items, 2)
		assert.Equal(t, "E2", got.Result.Items[1].ProductID)
		assert.Equal(t, 2, got.Result.Total)
		assert.Nil(t, got.Result.Items[1].Badge)
	})

	t.Run("Should report the path of a missing field", func(t *testing.T) {
		body := `{"status":"ok","result":{"total":2,"items":[{"productId":"E1","price":1},{"price":2}]}}`

		_, err := schema.Decode[listing]([]byte(body), listingShape)

		var parseErr *apperr.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/result/items/1/productId", parseErr.Path)
		assert.Equal(t, "test/listing", parseErr.Source)
	})

	t.Run("Should reject a number sent as a string", func(t *testing.T) {
		body := `{"status":"ok","result":{"total":1,"items":[{"productId":"E1","price":"19.90"}]}}`

		_, err := schema.Decode[listing]([]byte(body), listingShape)

		var parseErr *apperr.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/result/items/0/price", parseErr.Path)
	})

	t.Run("Should reject a fractional integer", func(t *testing.T) {
		body := `{"status":"ok","result":{"total":1.5,"items":[]}}`

		_, err := schema.Decode[listing]([]byte(body), listingShape)

		var parseErr *apperr.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/result/total", parseErr.Path)
	})

	t.Run("Should reject the not-ok sentinel", func(t *testing.T) {
		body := `{"status":"nok","result":{"total":0,"items":[]}}`

		_, err := schema.Decode[listing]([]byte(body), listingShape)

		var parseErr *apperr.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/status", parseErr.Path)

		assert.Equal(t, "nok", parseErr.Status)

		_, err = schema.Decode[listing]([]byte(`{"status":"nok","error":{"code":"404"}}`), listingShape)
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/status", parseErr.Path)
		assert.Equal(t, "nok", parseErr.Status)
	})

	t.Run("Should report a missing or mistyped status as drift", func(t *testing.T) {
		for _, body := range []string{
			`{"result":{"total":0,"items":[]}}`,
			`{"status":1,"result":{"total":0,"items":[]}}`,
			`{"status":null,"result":{"total":0,"items":[]}}`,
			`[]`,
		} {
			_, err := schema.Decode[listing]([]byte(body), listingShape)

			var parseErr *apperr.ParseError
			require.ErrorAs(t, err, &parseErr, body)
			assert.Equal(t, "/status", parseErr.Path, body)
			assert.Empty(t, parseErr.Status, body)
		}
	})

	t.Run("Should reject invalid json", func(t *testing.T) {
		_, err := schema.Decode[listing]([]byte(`{"status":`), listingShape)
		assert.True(t, apperr.IsParse(err))

		_, err = schema.Decode[listing]([]byte(`{} {}`), listingShape)
		assert.True(t, apperr.IsParse(err))
	})

	t.Run("Should validate map values", func(t *testing.T) {
		shape := schema.Shape{
			Name:   "test/map",
			Schema: schema.Map(schema.Object(schema.Req("quantity", schema.Integer()))),
		}

		got, err := schema.Decode[map[string]struct {
			Quantity int `json:"quantity"`
		}]([]byte(`{"a":{"quantity":3}}`), shape)
		require.NoError(t, err)
		assert.Equal(t, 3, got["a"].Quantity)

		_, err = schema.Decode[map[string]any]([]byte(`{"a":{"quantity":"3"}}`), shape)
		var parseErr *apperr.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "/a/quantity", parseErr.Path)
	})
}
