package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/awardrobe/pricetracker/internal/config"
)

func TestInitTracer(t *testing.T) {
	t.Run("Should only install propagators without a collector", func(t *testing.T) {
		cleanup, err := InitTracer(context.Background(), config.Otel{ServiceName: "pt-test"})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
		assert.NoError(t, cleanup(context.Background()))
	})
}

func TestResourceAttributes(t *testing.T) {
	t.Run("Should add kubernetes attributes when set", func(t *testing.T) {
		attrs := resourceAttributes(config.Otel{ServiceName: "pt-ingest", K8sPodName: "pod-1"})

		require.Len(t, attrs, 2)
		assert.Equal(t, "pt-ingest", attrs[0].Value.AsString())
		assert.Equal(t, "pod-1", attrs[1].Value.AsString())
	})
}
