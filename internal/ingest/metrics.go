package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	productRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricetracker_ingest_product_runs_total",
		Help: "Product ingestion runs by store and outcome",
	}, []string{"store", "outcome"})

	schemaDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricetracker_upstream_schema_drift_total",
		Help: "Upstream payloads rejected by schema validation",
	}, []string{"store"})

	incompleteInStock = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricetracker_incomplete_in_stock_variants_total",
		Help: "In-stock variants kept although they miss a dimension the product uses",
	}, []string{"store"})
)
