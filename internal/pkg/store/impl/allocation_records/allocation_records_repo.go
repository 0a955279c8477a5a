package allocation_records

import (
	"context"
	"log/slog"
	"time"

	"repayment-worker/internal/pkg/consts"
	mongodb "repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/pkg/store/repository"
	"repayment-worker/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AllocationRecordsRepository implements the AllocationRecordsRepoInterface

type AllocationRecordsRepository struct {
	repo       *repository.MongoRepository[models.AllocationRecords]
	createMany func(ctx context.Context, documents []interface{}) (*mongo.InsertManyResult, error)
	updateOne  func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	updateMany func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	find       func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error)
}

// Ensure AllocationRecordsRepository implements the AllocationRecordsRepoInterface
var _ interfaces.AllocationRecordsRepoInterface = (*AllocationRecordsRepository)(nil)

func NewAllocationRecordsRepository(client *mongodb.MongoClient) interfaces.AllocationRecordsRepoInterface {
	collection := client.Database.Collection(consts.AllocationRecordsCollection)
	repo := repository.NewMongoRepository[models.AllocationRecords](collection)
	r := &AllocationRecordsRepository{
		repo: repo,
	}
	r.createMany = repo.CreateMany
	r.updateOne = repo.UpdateOne
	r.updateMany = repo.Update
	r.find = repo.Find
	return r
}

// CreateEntries inserts the per-installment audit documents of one payment.
// Records are write-once; nothing here ever updates monetary fields.
func (r *AllocationRecordsRepository) CreateEntries(ctx context.Context,
	records []models.AllocationRecords) ([]primitive.ObjectID, error) {

	if len(records) == 0 {
		return nil, nil
	}

	documents := make([]interface{}, 0, len(records))
	for i := range records {
		documents = append(documents, records[i])
	}

	result, err := r.createMany(ctx, documents)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorCreatingAllocationRecords, err,
			slog.String("payment_id", records[0].PaymentID))
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(result.InsertedIDs))
	for _, id := range result.InsertedIDs {
		ids = append(ids, id.(primitive.ObjectID))
	}

	logger.CtxInfo(ctx, log_messages.SuccessAllocationRecordsCreation,
		slog.String("payment_id", records[0].PaymentID),
		slog.Int("count", len(ids)),
	)
	return ids, nil
}

func (r *AllocationRecordsRepository) GetRecordsByLoanID(ctx context.Context,
	loanID primitive.ObjectID) ([]models.AllocationRecords, error) {

	filter := bson.M{"loanId": loanID}
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "sequence", Value: 1},
	})

	records, err := r.find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, "Error fetching allocation records by loan id", err,
			slog.String("loan_id", loanID.Hex()))
		return nil, err
	}
	return records, nil
}

func (r *AllocationRecordsRepository) GetRecordsByPaymentID(ctx context.Context,
	paymentID string) ([]models.AllocationRecords, error) {

	filter := bson.M{"paymentId": paymentID}
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	records, err := r.find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, "Error fetching allocation records by payment id", err,
			slog.String("payment_id", paymentID))
		return nil, err
	}
	return records, nil
}

func (r *AllocationRecordsRepository) UpdatePublishToKafka(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"publishedToKafka": true}
	_, err := r.updateOne(ctx, filter, update)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorUpdatingKafkaFlag, err)
		return err
	}
	logger.CtxDebug(ctx, "Marked allocation record as published", slog.String("record_id", id.Hex()))

	return nil
}

func (r *AllocationRecordsRepository) UpdatePublishedToKafkaInBulk(ctx context.Context,
	recordIds []string) ([]string, error) {

	objectIDs := make([]primitive.ObjectID, len(recordIds))
	for i, id := range recordIds {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			logger.CtxError(ctx, "Invalid allocation record ObjectID", err)
			return nil, err
		}
		objectIDs[i] = objectID
	}

	filter := bson.M{"_id": bson.M{"$in": objectIDs}}
	update := bson.M{"$set": bson.M{"publishedToKafka": true}}

	updateResult, err := r.updateMany(ctx, filter, update)
	if err != nil {
		return nil, err
	}

	failedUpdateIDs := []string{}
	if updateResult.MatchedCount != updateResult.ModifiedCount {
		filterFailed := bson.M{
			"_id":              bson.M{"$in": objectIDs},
			"publishedToKafka": bson.M{"$ne": true},
		}
		failedUpdate, err := r.find(ctx, filterFailed)
		if err != nil {
			return nil, err
		}
		for i := range failedUpdate {
			failedUpdateIDs = append(failedUpdateIDs, failedUpdate[i].ID.Hex())
		}
	}
	if len(failedUpdateIDs) > 0 {
		logger.CtxInfo(ctx, log_messages.SomeRecordsFailedToUpdateKafkaFlag,
			slog.Any("failedUpdateIDs", failedUpdateIDs))
	}
	return failedUpdateIDs, nil
}

// GetUnpublishedEntriesCursor streams records with publishedToKafka=false
// created on or after startDate, batched for the republish worker pool.
func (r *AllocationRecordsRepository) GetUnpublishedEntriesCursor(ctx context.Context,
	startDate string, batchSize int32) (*mongo.Cursor, error) {

	thresholdDate, err := time.Parse(consts.DateFormat, startDate)
	if err != nil {
		logger.CtxError(ctx, "Invalid start date format for audit republish", err)
		return nil, err
	}

	collection := r.repo.GetCollection()

	filter := bson.M{
		"publishedToKafka": false,
		"createdAt":        bson.M{"$gte": thresholdDate},
	}
	opts := options.Find().
		SetBatchSize(batchSize).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, "Failed to get unpublished allocation records", err)
		return nil, err
	}

	return cursor, nil
}
