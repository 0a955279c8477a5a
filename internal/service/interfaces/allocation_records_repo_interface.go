package interfaces

import (
	"context"

	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AllocationRecordsRepoInterface defines the interface for allocation
// records repository operations
type AllocationRecordsRepoInterface interface {
	CreateEntries(ctx context.Context, records []models.AllocationRecords) ([]primitive.ObjectID, error)
	GetRecordsByLoanID(ctx context.Context, loanID primitive.ObjectID) ([]models.AllocationRecords, error)
	GetRecordsByPaymentID(ctx context.Context, paymentID string) ([]models.AllocationRecords, error)
	UpdatePublishToKafka(ctx context.Context, id primitive.ObjectID) error
	UpdatePublishedToKafkaInBulk(ctx context.Context, recordIds []string) ([]string, error)
	GetUnpublishedEntriesCursor(ctx context.Context, startDate string, batchSize int32) (*mongo.Cursor, error)
}

type AllocationRecordsStoreInterface interface {
	CreateMany(ctx context.Context, documents []interface{}) (*mongo.InsertManyResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	Update(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}
