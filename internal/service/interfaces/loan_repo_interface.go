package interfaces

import (
	"context"

	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LoanRepositoryInterface interface {
	GetLoanByID(ctx context.Context, loanID primitive.ObjectID) (*models.Loans, error)
	GetLoanByGUID(ctx context.Context, guid string) (*models.Loans, error)
	// UpdateLoanDocument persists the post-allocation loan state. The update
	// filter pins the version the snapshot was read at; a concurrent writer
	// makes the update match nothing and an error is returned.
	UpdateLoanDocument(ctx context.Context, loan *models.Loans, readVersion int32) error
}

type LoanStoreInterface interface {
	FindOne(ctx context.Context, filter interface{}, opt *options.FindOneOptions) (models.Loans, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}
