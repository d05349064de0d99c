package abercrombie

import "github.com/awardrobe/pricetracker/internal/schema"

type searchResponse []struct {
	Results struct {
		Stats struct {
			Count    int `json:"count"`
			Total    int `json:"total"`
			StartNum int `json:"startNum"`
		} `json:"stats"`
		Products []struct {
			ProductID       string `json:"productId"`
			Collection      string `json:"collection"`
			ProductSeoToken string `json:"productSeoToken"`
		} `json:"products"`
	} `json:"results"`
}

type definingAttr struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Value         string `json:"value"`
	Sequence      int    `json:"sequence"`
	ValueSequence int    `json:"valueSequence"`
}

type collectionResponse struct {
	Products []struct {
		ProductID         string  `json:"productId"`
		Name              string  `json:"name"`
		LowContractPrice  float64 `json:"lowContractPrice"`
		HighContractPrice float64 `json:"highContractPrice"`
		Items             []struct {
			ItemID        string                  `json:"itemId"`
			ListPrice     float64                 `json:"listPrice"`
			OfferPrice    float64                 `json:"offerPrice"`
			DefiningAttrs map[string]definingAttr `json:"definingAttrs"`
			Inventory     struct {
				Inventory int `json:"inventory"`
			} `json:"inventory"`
		} `json:"items"`
	} `json:"products"`
}

var searchShape = func() schema.Shape {
	s := schema.Array(schema.Object(
		schema.Req("results", schema.Object(
			schema.Req("stats", schema.Object(
				schema.Req("count", schema.Integer()),
				schema.Req("total", schema.Integer()),
				schema.Req("startNum", schema.Integer()),
			)),
			schema.Opt("products", schema.Array(schema.Object(
				schema.Req("productId", schema.String()),
				schema.Req("collection", schema.String()),
				schema.Req("productSeoToken", schema.String()),
			))),
		)),
	))
	s.MinItems = 1
	return schema.Shape{Name: Handle + "/search", Schema: s}
}()

var collectionShape = schema.Shape{
	Name: Handle + "/collection",
	Schema: schema.Object(
		schema.Req("products", schema.Array(schema.Object(
			schema.Req("productId", schema.String()),
			schema.Req("name", schema.String()),
			schema.Req("lowContractPrice", schema.Number()),
			schema.Req("highContractPrice", schema.Number()),
			schema.Req("items", schema.Array(schema.Object(
				schema.Req("itemId", schema.String()),
				schema.Req("listPrice", schema.Number()),
				schema.Req("offerPrice", schema.Number()),
				schema.Req("definingAttrs", schema.Map(schema.Object(
					schema.Req("name", schema.String()),
					schema.Req("description", schema.String()),
					schema.Req("value", schema.String()),
					schema.Req("sequence", schema.Integer()),
					schema.Req("valueSequence", schema.Integer()),
				))),
				schema.Req("inventory", schema.Object(
					schema.Req("inventory", schema.Integer()),
				)),
			))),
		))),
	),
}
