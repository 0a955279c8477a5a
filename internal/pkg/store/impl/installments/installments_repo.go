package installments

import (
	"context"
	"log/slog"

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

type InstallmentsRepository struct {
	repo interfaces.InstallmentsStoreInterface
}

// Ensure InstallmentsRepository implements the InstallmentsRepositoryInterface
var _ interfaces.InstallmentsRepositoryInterface = (*InstallmentsRepository)(nil)

func NewInstallmentsRepository(client *mongodb.MongoClient) *InstallmentsRepository {
	collection := client.Database.Collection(consts.InstallmentsCollection)
	repo := repository.NewMongoRepository[models.Installments](collection)
	return &InstallmentsRepository{repo: repo}
}

func NewInstallmentsRepositoryWithInterface(repo interfaces.InstallmentsStoreInterface) *InstallmentsRepository {
	return &InstallmentsRepository{repo: repo}
}

// dueDateSort orders schedule rows the way the waterfall consumes them:
// earliest due date first, sequence as tie-break.
func dueDateSort() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "nextPaymentDate", Value: 1},
		{Key: "sequence", Value: 1},
	})
}

func (ir *InstallmentsRepository) GetInstallmentsByLoanID(ctx context.Context,
	loanID primitive.ObjectID) ([]models.Installments, error) {

	filter := bson.M{"loanId": loanID}
	installments, err := ir.repo.Find(ctx, filter, dueDateSort())
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorFetchingInstallmentDocuments, err, slog.String("loan_id", loanID.Hex()))
		return nil, err
	}

	logger.CtxDebug(ctx, "Fetched installments by loan id",
		slog.String("loan_id", loanID.Hex()),
		slog.Int("count", len(installments)),
	)
	return installments, nil
}

func (ir *InstallmentsRepository) GetOpenInstallmentsByLoanID(ctx context.Context,
	loanID primitive.ObjectID) ([]models.Installments, error) {

	filter := bson.M{
		"loanId":      loanID,
		"isCompleted": false,
	}
	installments, err := ir.repo.Find(ctx, filter, dueDateSort())
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorFetchingInstallmentDocuments, err, slog.String("loan_id", loanID.Hex()))
		return nil, err
	}

	return installments, nil
}

// UpdateInstallmentDocuments persists the post-allocation state of the
// touched rows in one bulk write.
func (ir *InstallmentsRepository) UpdateInstallmentDocuments(ctx context.Context,
	installments []models.Installments) error {

	if len(installments) == 0 {
		return nil
	}

	writeModels := make([]mongo.WriteModel, 0, len(installments))
	for i := range installments {
		inst := installments[i]
		update := bson.M{"$set": bson.M{
			"principal":     inst.Principal,
			"interest":      inst.Interest,
			"tax":           inst.Tax,
			"penalty":       inst.Penalty,
			"principalPaid": inst.PrincipalPaid,
			"interestPaid":  inst.InterestPaid,
			"taxPaid":       inst.TaxPaid,
			"penaltyPaid":   inst.PenaltyPaid,
			"totalDue":      inst.TotalDue,
			"paid":          inst.Paid,
			"status":        inst.Status,
			"isCompleted":   inst.IsCompleted,
			"updatedAt":     inst.UpdatedAt,
		}}
		writeModels = append(writeModels,
			mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": inst.ID}).
				SetUpdate(update),
		)
	}

	if _, err := ir.repo.BulkWrite(ctx, writeModels); err != nil {
		logger.CtxError(ctx, log_messages.ErrorUpdatingInstallmentDocument, err)
		return err
	}

	logger.CtxInfo(ctx, "Updated installment documents", slog.Int("count", len(installments)))
	return nil
}
