package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/awardrobe/pricetracker/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should carry key and sorted headers", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "price.changed",
			Headers:      map[string]string{"traceparent": "00-abc", "X-Correlation-ID": "corr-1"},
			Payload:      []byte(`{"a":1}`),
			PartitionKey: ptr.New("variant-1"),
		})

		assert.Equal(t, "price.changed", rec.Topic)
		assert.Equal(t, []byte("variant-1"), rec.Key)
		assert.Equal(t, []byte(`{"a":1}`), rec.Value)
		assert.Equal(t, []kgo.RecordHeader{
			{Key: "X-Correlation-ID", Value: []byte("corr-1")},
			{Key: "traceparent", Value: []byte("00-abc")},
		}, rec.Headers)
	})

	t.Run("Should leave the key empty without partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "price.created"})

		assert.Nil(t, rec.Key)
		assert.Empty(t, rec.Headers)
	})
}
