package interfaces

import (
	"context"

	"repayment-worker/internal/pkg/models"
)

// KafkaPublisherInterface defines the methods for publishing messages to Kafka.
type KafkaPublisherInterface interface {
	PublishAllocation(ctx context.Context, msg models.KafkaMessageForPublishing) error
	PublishRejected(ctx context.Context, msg models.KafkaMessageForPublishing) error
}
