package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/awardrobe/pricetracker/internal/storage/mq"
	"github.com/awardrobe/pricetracker/pkg/outbox"
	"github.com/awardrobe/pricetracker/pkg/ptr"
)

const TopicNotificationTriggered = "notification.triggered"

var _ Sink = (*KafkaSink)(nil)

// KafkaSink publishes triggers for the delivery workers, keyed by user.
type KafkaSink struct {
	producer mq.Producer
}

func NewKafkaSink(producer mq.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Send(ctx context.Context, trigger Trigger) error {
	payload, err := json.Marshal(trigger)
	if err != nil {
		return fmt.Errorf("marshal trigger: %w", err)
	}

	if err := s.producer.Produce(ctx, mq.ProduceMsg{
		Topic:        TopicNotificationTriggered,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(trigger.UserID),
	}); err != nil {
		return fmt.Errorf("produce trigger: %w", err)
	}

	return nil
}
