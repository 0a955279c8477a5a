package interfaces

import (
	"context"

	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InstallmentsRepositoryInterface interface {
	// GetInstallmentsByLoanID returns all schedule rows of a loan ordered by
	// nextPaymentDate ascending, sequence as tie-break.
	GetInstallmentsByLoanID(ctx context.Context, loanID primitive.ObjectID) ([]models.Installments, error)
	GetOpenInstallmentsByLoanID(ctx context.Context, loanID primitive.ObjectID) ([]models.Installments, error)
	UpdateInstallmentDocuments(ctx context.Context, installments []models.Installments) error
}

type InstallmentsStoreInterface interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Installments, error)
	BulkWrite(ctx context.Context, writeModels []mongo.WriteModel) (*mongo.BulkWriteResult, error)
}
