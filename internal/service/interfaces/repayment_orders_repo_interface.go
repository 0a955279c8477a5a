package interfaces

import (
	"context"

	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/mongo/options"
)

type RepaymentOrdersRepoInterface interface {
	// GetActiveOrderByChannel returns the active split configuration for a
	// channel, or mongo.ErrNoDocuments when none is configured.
	GetActiveOrderByChannel(ctx context.Context, channel string) (*models.RepaymentOrders, error)
}

type RepaymentOrdersStoreInterface interface {
	FindOne(ctx context.Context, filter interface{}, opt *options.FindOneOptions) (models.RepaymentOrders, error)
}
