package kafka

import (
	"context"
	"encoding/json"

	"repayment-worker/internal/pkg/kafka"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/models"
)

// RepaymentKafkaService handles publishing allocation audit events to the
// accounting topic.
type RepaymentKafkaService struct {
	KafkaProducer kafka.KafkaProducerInterface
}

// NewRepaymentKafkaService creates a new instance of RepaymentKafkaService.
func NewRepaymentKafkaService(producer kafka.KafkaProducerInterface) *RepaymentKafkaService {
	return &RepaymentKafkaService{
		KafkaProducer: producer,
	}
}

// publishMessage is a helper function to publish a message to Kafka.
func (s *RepaymentKafkaService) publishMessage(
	ctx context.Context,
	msg models.KafkaMessageForPublishing,
	messageType string,
) error {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.CtxError(ctx, "Failed to marshal "+messageType+" message", err)
		return err
	}
	err = s.KafkaProducer.Publish(ctx, data)
	if err != nil {
		logger.CtxError(ctx, "Failed to publish "+messageType+" message to Kafka", err)
		return err
	}
	logger.CtxInfo(ctx, "Successfully published "+messageType+" message to Kafka")
	return nil
}

// PublishAllocation publishes one allocation audit record to Kafka.
func (s *RepaymentKafkaService) PublishAllocation(ctx context.Context, msg models.KafkaMessageForPublishing) error {
	return s.publishMessage(ctx, msg, "allocation")
}

// PublishRejected publishes a rejected-payment event to Kafka.
func (s *RepaymentKafkaService) PublishRejected(ctx context.Context, msg models.KafkaMessageForPublishing) error {
	return s.publishMessage(ctx, msg, "rejected")
}
