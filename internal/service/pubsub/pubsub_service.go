package pubsub_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/models"
	"repayment-worker/internal/pkg/otel"
	"repayment-worker/internal/service/repayment"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
)

var validate *validator.Validate = validator.New()

// MessageIgnoreError is a special error type that signals the PubSub consumer
// to neither ACK nor NACK the message, effectively letting it be redelivered
// after the redelivery timeout
type MessageIgnoreError struct {
	Err error
}

func (e *MessageIgnoreError) Error() string {
	return fmt.Sprintf("message ignored for redelivery: %v", e.Err)
}

type PaymentMessageConsumerInterface interface {
	HandlePaymentMessage(ctx context.Context, msg []byte) error
}

// PaymentMessageConsumer decodes payment-received messages and hands them to
// the repayment orchestrator.
type PaymentMessageConsumer struct {
	RepaymentService repayment.RepaymentServiceInterface
}

// NewPaymentMessageConsumer creates the Pub/Sub consumer service.
func NewPaymentMessageConsumer(repaymentService repayment.RepaymentServiceInterface) PaymentMessageConsumerInterface {
	return &PaymentMessageConsumer{
		RepaymentService: repaymentService,
	}
}

// HandlePaymentMessage processes incoming PubSub messages
func (c *PaymentMessageConsumer) HandlePaymentMessage(ctx context.Context, msg []byte) error {
	logger.CtxInfo(ctx, "Handling PubSub message", slog.String("payload", string(msg)))

	var event models.PaymentReceivedMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		logger.CtxError(ctx, "Failed to unmarshal PubSub message", err)
		return err
	}

	// Extract publish time from context (use the shared key from models)
	if publishTime, ok := ctx.Value(models.PublishTimeKey).(time.Time); ok {
		event.PublishTime = publishTime
	}

	if err := validate.Struct(event); err != nil {
		logger.CtxError(ctx, "Validation failed for PubSub message", err)
		return err
	}

	// Set the payment ID in context for tracing
	ctx = logger.WithTraceID(ctx, event.PaymentID)

	ctx, span := otel.GetTracer().Start(ctx, "repayment.process")
	span.SetAttributes(
		attribute.String("payment.id", event.PaymentID),
		attribute.String("loan.id", event.LoanID),
		attribute.String("payment.channel", event.Channel),
	)
	defer span.End()

	logger.CtxInfo(ctx, "Event details", slog.String("event", event.String()))

	_, err := c.RepaymentService.ProcessPayment(ctx, &event)
	if err != nil {
		// Lock contention means another allocation for the same loan is in
		// flight; let the redelivery timeout space the retry out instead of
		// nacking into an immediate collision.
		if errors.Is(err, repayment.ErrLoanLocked) {
			return &MessageIgnoreError{Err: err}
		}
		logger.CtxError(ctx, "Payment processing returned error", err)
		return err
	}
	return nil
}
