package system_level_rules

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repayment-worker/internal/pkg/consts"
	mongodb "repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/pkg/store/repository"
	"repayment-worker/internal/service/interfaces"
)

type SystemLevelRulesRepository struct {
	repo interfaces.SystemLevelRulesStore
}

func NewSystemLevelRulesRepository(client *mongodb.MongoClient) *SystemLevelRulesRepository {
	collection := client.Database.Collection(consts.SystemLevelRulesCollection)
	repo := repository.NewMongoRepository[models.SystemLevelRules](collection)
	return &SystemLevelRulesRepository{repo: repo}
}

func NewSystemLevelRulesRepositoryWithInterface(repo interfaces.SystemLevelRulesStore) *SystemLevelRulesRepository {
	return &SystemLevelRulesRepository{repo: repo}
}

func (slr *SystemLevelRulesRepository) FetchSystemLevelRulesConfiguration(
	ctx context.Context) (models.SystemLevelRules, error) {
	filter := bson.M{}
	opts := options.FindOne()

	rules, err := slr.repo.FindOne(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorFetchingSystemRulesDocument, err)
		return models.SystemLevelRules{}, err
	}

	logger.CtxDebug(ctx, "Successfully fetched system level rules")
	return rules, nil
}
