package loans

import (
	"context"
	"errors"
	"fmt"
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

// ErrLoanVersionConflict is returned when the version-guarded update matched
// no document, meaning another writer advanced the loan in between.
var ErrLoanVersionConflict = errors.New("loan version conflict")

type LoanRepository struct {
	repo interfaces.LoanStoreInterface
}

func NewLoansRepository(client *mongodb.MongoClient) *LoanRepository {
	collection := client.Database.Collection(consts.LoansCollection)
	repo := repository.NewMongoRepository[models.Loans](collection)
	return &LoanRepository{repo: repo}
}

func NewLoanRepositoryWithInterface(repo interfaces.LoanStoreInterface) *LoanRepository {
	return &LoanRepository{repo: repo}
}

func (lr *LoanRepository) GetLoanByID(ctx context.Context, loanID primitive.ObjectID) (*models.Loans, error) {
	filter := bson.M{"_id": loanID}
	loan, err := lr.repo.FindOne(ctx, filter, options.FindOne())

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, "No loan found for id", slog.String("loan_id", loanID.Hex()))
			return nil, err
		}
		logger.CtxError(ctx, log_messages.ErrorFetchingLoanDocument, err, slog.String("loan_id", loanID.Hex()))
		return nil, err
	}

	logger.CtxDebug(ctx, "Fetched loan by id", slog.String("loan_id", loan.LoanID.Hex()))
	return &loan, nil
}

func (lr *LoanRepository) GetLoanByGUID(ctx context.Context, guid string) (*models.Loans, error) {
	if len(guid) == 0 {
		logger.CtxWarn(ctx, "Loan GUID is empty")
		return nil, fmt.Errorf("no loan GUID provided")
	}

	filter := bson.M{"GUID": guid}
	loan, err := lr.repo.FindOne(ctx, filter, options.FindOne())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, "No loan found for GUID", slog.String("guid", guid))
			return nil, err
		}
		logger.CtxError(ctx, log_messages.ErrorFetchingLoanDocument, err, slog.String("guid", guid))
		return nil, err
	}

	logger.CtxDebug(ctx, "Fetched loan by GUID",
		slog.String("guid", guid),
		slog.String("loan_id", loan.LoanID.Hex()),
	)
	return &loan, nil
}

// UpdateLoanDocument writes the post-allocation loan state. The filter pins
// the version read at snapshot time; the stored version is bumped by one.
func (lr *LoanRepository) UpdateLoanDocument(ctx context.Context, loan *models.Loans, readVersion int32) error {
	loan.Version = readVersion + 1

	update := bson.M{
		"balance":               loan.Balance,
		"accrualInterest":       loan.AccrualInterest,
		"tax":                   loan.Tax,
		"penalty":               loan.Penalty,
		"dueAmount":             loan.DueAmount,
		"paid":                  loan.Paid,
		"totalPrincipalPaid":    loan.TotalPrincipalPaid,
		"accrualInterestPaid":   loan.AccrualInterestPaid,
		"taxPaid":               loan.TaxPaid,
		"penaltyPaid":           loan.PenaltyPaid,
		"lastPayment":           loan.LastPayment,
		"lastPaymentDate":       loan.LastPaymentDate,
		"loanStatus":            loan.LoanStatus,
		"isCompleted":           loan.IsCompleted,
		"advancedPaymentDays":   loan.AdvancedPaymentDays,
		"advancedPaymentAmount": loan.AdvancedPaymentAmount,
		"delinquentDays":        loan.DelinquentDays,
		"delinquentAmount":      loan.DelinquentAmount,
		"nextPaymentDate":       loan.NextPaymentDate,
		"version":               loan.Version,
		"updatedAt":             loan.UpdatedAt,
	}

	filter := bson.M{"_id": loan.LoanID, "version": readVersion}
	result, err := lr.repo.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorUpdatingLoanDocument, err, slog.String("loan_id", loan.LoanID.Hex()))
		return err
	}
	if result.MatchedCount == 0 {
		logger.CtxWarn(ctx, "Loan changed since snapshot, aborting update",
			slog.String("loan_id", loan.LoanID.Hex()),
			slog.Int("read_version", int(readVersion)),
		)
		return ErrLoanVersionConflict
	}

	logger.CtxInfo(ctx, log_messages.SuccessLoanDocumentUpdate, slog.String("loan_id", loan.LoanID.Hex()))
	return nil
}
