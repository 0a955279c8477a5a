package allocation_records

import (
	"context"
	"errors"
	"testing"

	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const databaseConnectionErrorMsg = "database connection error"

func testRecord() models.AllocationRecords {
	return models.AllocationRecords{
		ID:               primitive.NewObjectID(),
		PaymentID:        "PAY-1",
		LoanID:           primitive.NewObjectID(),
		InstallmentID:    primitive.NewObjectID(),
		Sequence:         1,
		TotalApplied:     money.FromFloat(1100),
		PublishedToKafka: false,
	}
}

func TestNewAllocationRecordsRepository(t *testing.T) {
	t.Run("function exists and is callable", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Logf("NewAllocationRecordsRepository panicked as expected without a database: %v", r)
			}
		}()
		_ = NewAllocationRecordsRepository(nil)
	})
}

func TestCreateEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts all records", func(t *testing.T) {
		records := []models.AllocationRecords{testRecord(), testRecord()}
		repo := &AllocationRecordsRepository{
			createMany: func(ctx context.Context, documents []interface{}) (*mongo.InsertManyResult, error) {
				if len(documents) != 2 {
					t.Errorf("Expected 2 documents, got %d", len(documents))
				}
				return &mongo.InsertManyResult{
					InsertedIDs: []interface{}{records[0].ID, records[1].ID},
				}, nil
			},
		}

		ids, err := repo.CreateEntries(ctx, records)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 inserted ids, got %d", len(ids))
		}
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			createMany: func(ctx context.Context, documents []interface{}) (*mongo.InsertManyResult, error) {
				t.Error("CreateMany should not be called for an empty slice")
				return nil, nil
			},
		}

		ids, err := repo.CreateEntries(ctx, nil)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if ids != nil {
			t.Errorf("Expected nil ids, got %v", ids)
		}
	})

	t.Run("database error", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			createMany: func(ctx context.Context, documents []interface{}) (*mongo.InsertManyResult, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}

		if _, err := repo.CreateEntries(ctx, []models.AllocationRecords{testRecord()}); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestGetRecordsByLoanID(t *testing.T) {
	ctx := context.Background()
	loanID := primitive.NewObjectID()

	t.Run("success with sort", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			find: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error) {
				f, ok := filter.(bson.M)
				if !ok || f["loanId"] != loanID {
					t.Errorf("unexpected filter: %v", filter)
				}
				if len(opts) == 0 || opts[0].Sort == nil {
					t.Error("Expected a sort option on the query")
				}
				return []models.AllocationRecords{testRecord()}, nil
			},
		}

		records, err := repo.GetRecordsByLoanID(ctx, loanID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Expected 1 record, got %d", len(records))
		}
	})

	t.Run("database error", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			find: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}

		if _, err := repo.GetRecordsByLoanID(ctx, loanID); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestGetRecordsByPaymentID(t *testing.T) {
	ctx := context.Background()

	repo := &AllocationRecordsRepository{
		find: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error) {
			f, ok := filter.(bson.M)
			if !ok || f["paymentId"] != "PAY-1" {
				t.Errorf("unexpected filter: %v", filter)
			}
			return []models.AllocationRecords{testRecord()}, nil
		},
	}

	records, err := repo.GetRecordsByPaymentID(ctx, "PAY-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestUpdatePublishToKafka(t *testing.T) {
	ctx := context.Background()
	recordID := primitive.NewObjectID()

	t.Run("success", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			updateOne: func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
				f, ok := filter.(bson.M)
				if !ok || f["_id"] != recordID {
					t.Errorf("unexpected filter: %v", filter)
				}
				u, ok := update.(bson.M)
				if !ok || u["publishedToKafka"] != true {
					t.Errorf("unexpected update: %v", update)
				}
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		}

		if err := repo.UpdatePublishToKafka(ctx, recordID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("database error", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			updateOne: func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}

		if err := repo.UpdatePublishToKafka(ctx, recordID); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestUpdatePublishedToKafkaInBulk(t *testing.T) {
	ctx := context.Background()
	ids := []string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()}

	t.Run("all updated", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			updateMany: func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
				return &mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil
			},
		}

		failed, err := repo.UpdatePublishedToKafkaInBulk(ctx, ids)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(failed) != 0 {
			t.Errorf("Expected no failed ids, got %v", failed)
		}
	})

	t.Run("partial update reports failed ids", func(t *testing.T) {
		leftBehind := testRecord()
		repo := &AllocationRecordsRepository{
			updateMany: func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
				return &mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 1}, nil
			},
			find: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AllocationRecords, error) {
				return []models.AllocationRecords{leftBehind}, nil
			},
		}

		failed, err := repo.UpdatePublishedToKafkaInBulk(ctx, ids)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(failed) != 1 || failed[0] != leftBehind.ID.Hex() {
			t.Errorf("Expected failed id %s, got %v", leftBehind.ID.Hex(), failed)
		}
	})

	t.Run("invalid object id", func(t *testing.T) {
		repo := &AllocationRecordsRepository{}
		if _, err := repo.UpdatePublishedToKafkaInBulk(ctx, []string{"not-an-object-id"}); err == nil {
			t.Error("Expected error for malformed id, got nil")
		}
	})

	t.Run("database error", func(t *testing.T) {
		repo := &AllocationRecordsRepository{
			updateMany: func(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}

		if _, err := repo.UpdatePublishedToKafkaInBulk(ctx, ids); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestGetUnpublishedEntriesCursorInvalidDate(t *testing.T) {
	ctx := context.Background()
	repo := &AllocationRecordsRepository{}

	if _, err := repo.GetUnpublishedEntriesCursor(ctx, "not-a-date", 100); err == nil {
		t.Error("Expected error for malformed start date, got nil")
	}
}
