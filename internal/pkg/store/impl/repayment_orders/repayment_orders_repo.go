package repayment_orders

import (
	"context"
	"errors"
	"log/slog"

	"repayment-worker/internal/pkg/consts"
	mongodb "repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/pkg/store/repository"
	"repayment-worker/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RepaymentOrdersRepository struct {
	repo interfaces.RepaymentOrdersStoreInterface
}

var _ interfaces.RepaymentOrdersRepoInterface = (*RepaymentOrdersRepository)(nil)

func NewRepaymentOrdersRepository(client *mongodb.MongoClient) *RepaymentOrdersRepository {
	collection := client.Database.Collection(consts.RepaymentOrdersCollection)
	repo := repository.NewMongoRepository[models.RepaymentOrders](collection)
	return &RepaymentOrdersRepository{repo: repo}
}

func NewRepaymentOrdersRepositoryWithInterface(repo interfaces.RepaymentOrdersStoreInterface) *RepaymentOrdersRepository {
	return &RepaymentOrdersRepository{repo: repo}
}

func (rr *RepaymentOrdersRepository) GetActiveOrderByChannel(ctx context.Context,
	channel string) (*models.RepaymentOrders, error) {

	filter := bson.M{"channel": channel, "active": true}
	order, err := rr.repo.FindOne(ctx, filter, options.FindOne())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxDebug(ctx, "No repayment order configured for channel", slog.String("channel", channel))
			return nil, err
		}
		logger.CtxError(ctx, log_messages.ErrorFetchingRepaymentOrderDocument, err, slog.String("channel", channel))
		return nil, err
	}

	return &order, nil
}
