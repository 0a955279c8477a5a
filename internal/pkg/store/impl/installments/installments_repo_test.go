package installments

import (
	"context"
	"errors"
	"testing"
	"time"

	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mockNotImplementedMsg = "mock not implemented"
const databaseConnectionErrorMsg = "database connection error"

type mockInstallmentsStore struct {
	findFunc      func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error)
	bulkWriteFunc func(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error)
}

func (m *mockInstallmentsStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, opts...)
	}
	return nil, errors.New(mockNotImplementedMsg)
}

func (m *mockInstallmentsStore) BulkWrite(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
	if m.bulkWriteFunc != nil {
		return m.bulkWriteFunc(ctx, writeModels)
	}
	return nil, errors.New(mockNotImplementedMsg)
}

func testInstallment(sequence int32, due time.Time) models.Installments {
	return models.Installments{
		ID:              primitive.NewObjectID(),
		LoanID:          primitive.NewObjectID(),
		Sequence:        sequence,
		Interest:        money.FromFloat(275),
		Principal:       money.FromFloat(825),
		NextPaymentDate: due,
	}
}

func TestNewInstallmentsRepository(t *testing.T) {
	t.Run("function exists and is callable", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Logf("NewInstallmentsRepository panicked as expected without a database: %v", r)
			}
		}()
		_ = NewInstallmentsRepository(nil)
	})
}

func TestGetInstallmentsByLoanID(t *testing.T) {
	ctx := context.Background()
	loanID := primitive.NewObjectID()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success with due date sort", func(t *testing.T) {
		store := &mockInstallmentsStore{
			findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error) {
				f, ok := filter.(bson.M)
				if !ok || f["loanId"] != loanID {
					t.Errorf("unexpected filter: %v", filter)
				}
				if len(opts) == 0 || opts[0].Sort == nil {
					t.Error("Expected a sort option on the query")
				}
				return []models.Installments{testInstallment(1, due), testInstallment(2, due.AddDate(0, 1, 0))}, nil
			},
		}
		repo := NewInstallmentsRepositoryWithInterface(store)

		got, err := repo.GetInstallmentsByLoanID(ctx, loanID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 installments, got %d", len(got))
		}
	})

	t.Run("database error", func(t *testing.T) {
		store := &mockInstallmentsStore{
			findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}
		repo := NewInstallmentsRepositoryWithInterface(store)

		if _, err := repo.GetInstallmentsByLoanID(ctx, loanID); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestGetOpenInstallmentsByLoanID(t *testing.T) {
	ctx := context.Background()
	loanID := primitive.NewObjectID()

	store := &mockInstallmentsStore{
		findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error) {
			f, ok := filter.(bson.M)
			if !ok {
				t.Fatalf("unexpected filter type: %T", filter)
			}
			if f["isCompleted"] != false {
				t.Errorf("Expected filter on open rows, got %v", f)
			}
			return []models.Installments{}, nil
		},
	}
	repo := NewInstallmentsRepositoryWithInterface(store)

	if _, err := repo.GetOpenInstallmentsByLoanID(ctx, loanID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestUpdateInstallmentDocuments(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("bulk writes one model per row", func(t *testing.T) {
		rows := []models.Installments{testInstallment(1, due), testInstallment(2, due)}
		store := &mockInstallmentsStore{
			bulkWriteFunc: func(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
				if len(writeModels) != 2 {
					t.Errorf("Expected 2 write models, got %d", len(writeModels))
				}
				return &mongo.BulkWriteResult{MatchedCount: 2, ModifiedCount: 2}, nil
			},
		}
		repo := NewInstallmentsRepositoryWithInterface(store)

		if err := repo.UpdateInstallmentDocuments(ctx, rows); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		store := &mockInstallmentsStore{
			bulkWriteFunc: func(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
				t.Error("BulkWrite should not be called for an empty slice")
				return nil, nil
			},
		}
		repo := NewInstallmentsRepositoryWithInterface(store)

		if err := repo.UpdateInstallmentDocuments(ctx, nil); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("database error", func(t *testing.T) {
		rows := []models.Installments{testInstallment(1, due)}
		store := &mockInstallmentsStore{
			bulkWriteFunc: func(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
				return nil, errors.New(databaseConnectionErrorMsg)
			},
		}
		repo := NewInstallmentsRepositoryWithInterface(store)

		if err := repo.UpdateInstallmentDocuments(ctx, rows); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}
