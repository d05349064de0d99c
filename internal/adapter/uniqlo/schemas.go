package uniqlo

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/awardrobe/pricetracker/internal/schema"
)

type productsResponse struct {
	Result struct {
		Items []struct {
			ProductID string `json:"productId"`
		} `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"result"`
}

type option struct {
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	Name        string `json:"name"`
	Display     struct {
		ShowFlag bool `json:"showFlag"`
	} `json:"display"`
}

type detailsResponse struct {
	Result struct {
		Name   string   `json:"name"`
		Colors []option `json:"colors"`
		Sizes  []option `json:"sizes"`
		Plds   []option `json:"plds"`
	} `json:"result"`
}

type codeRef struct {
	Code string `json:"code"`
}

type l2sResponse struct {
	Result struct {
		L2s []struct {
			L2ID  string  `json:"l2Id"`
			Color codeRef `json:"color"`
			Size  codeRef `json:"size"`
			Pld   codeRef `json:"pld"`
		} `json:"l2s"`
		Stocks map[string]struct {
			Quantity int `json:"quantity"`
		} `json:"stocks"`
		Prices map[string]struct {
			Base struct {
				Value float64 `json:"value"`
			} `json:"base"`
		} `json:"prices"`
	} `json:"result"`
}

func envelope(name string, result *openapi3.Schema) schema.Shape {
	return schema.Shape{
		Name:        name,
		Schema:      schema.Object(schema.Req("status", schema.String()), schema.Req("result", result)),
		StatusField: "status",
		OKValue:     "ok",
	}
}

func optionSchema(displayCode schema.Field) *openapi3.Schema {
	return schema.Object(
		schema.Req("code", schema.String()),
		displayCode,
		schema.Req("name", schema.String()),
		schema.Req("display", schema.Object(schema.Req("showFlag", schema.Bool()))),
	)
}

var (
	productsShape = envelope(Handle+"/products", schema.Object(
		schema.Req("items", schema.Array(schema.Object(
			schema.Req("productId", schema.String()),
		))),
		schema.Req("pagination", schema.Object(
			schema.Req("total", schema.Integer()),
		)),
	))

	detailsShape = envelope(Handle+"/details", schema.Object(
		schema.Req("name", schema.String()),
		schema.Req("colors", schema.Array(optionSchema(schema.Req("displayCode", schema.String())))),
		schema.Req("sizes", schema.Array(optionSchema(schema.Opt("displayCode", schema.String())))),
		schema.Req("plds", schema.Array(optionSchema(schema.Opt("displayCode", schema.String())))),
	))

	l2sShape = envelope(Handle+"/l2s", schema.Object(
		schema.Req("l2s", schema.Array(schema.Object(
			schema.Req("l2Id", schema.String()),
			schema.Req("color", schema.Object(schema.Req("code", schema.String()))),
			schema.Req("size", schema.Object(schema.Req("code", schema.String()))),
			schema.Req("pld", schema.Object(schema.Req("code", schema.String()))),
		))),
		schema.Req("stocks", schema.Map(schema.Object(
			schema.Req("quantity", schema.Integer()),
		))),
		schema.Req("prices", schema.Map(schema.Object(
			schema.Req("base", schema.Object(schema.Req("value", schema.Number()))),
		))),
	))
)
