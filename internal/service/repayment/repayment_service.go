package repayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"repayment-worker/internal/pkg/common"
	"repayment-worker/internal/pkg/config"
	"repayment-worker/internal/pkg/consts"
	mongodb "repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/models"
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/impl/allocation_records"
	"repayment-worker/internal/pkg/store/impl/installments"
	"repayment-worker/internal/pkg/store/impl/loans"
	"repayment-worker/internal/pkg/store/impl/repayment_orders"
	"repayment-worker/internal/pkg/store/impl/system_level_rules"
	dbModels "repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/service/allocation"
	serviceinterfaces "repayment-worker/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// nowFunc is an injectable clock so tests can pin record timestamps.
var nowFunc = time.Now

// runTransaction is an injectable hook that runs a transaction. Tests can replace
var runTransaction = func(
	ctx context.Context,
	mc *mongodb.MongoClient,
	cb func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	session, err := mc.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB session: %w", err)
	}
	defer session.EndSession(context.Background())

	wrapper := func(sc mongo.SessionContext) (interface{}, error) {
		return cb(sc)
	}
	return session.WithTransaction(ctx, wrapper)
}

// ErrLoanLocked means another allocation currently holds the per-loan lock.
// The Pub/Sub layer maps it to a redelivery instead of a nack storm.
var ErrLoanLocked = errors.New("loan is locked by another allocation")

// ErrLoanNotFound is returned when the referenced loan does not exist.
var ErrLoanNotFound = errors.New("loan not found")

// ErrPaymentNotApplied is returned on the manual path when the payment was
// rejected or deduplicated and produced no allocation.
var ErrPaymentNotApplied = errors.New("payment was not applied to the loan")

// RepaymentServiceInterface is what callers (Pub/Sub consumer, HTTP
// handlers) see of the orchestrator.
type RepaymentServiceInterface interface {
	ProcessPayment(ctx context.Context, msg *models.PaymentReceivedMessage) (*allocation.Result, error)
	ManualRepayment(ctx context.Context, loanID string, req *models.ManualRepaymentRequest) (*models.ManualRepaymentResponse, error)
	GetLedger(ctx context.Context, loanID string) ([]dbModels.AllocationRecords, error)
}

// RepaymentService orchestrates one payment end to end: idempotency and
// locking in Redis, the pure allocation walk, the Mongo transaction, and the
// post-commit publishing fan-out.
type RepaymentService struct {
	MongoClient       *mongodb.MongoClient
	LoanRepo          serviceinterfaces.LoanRepositoryInterface
	InstallmentsRepo  serviceinterfaces.InstallmentsRepositoryInterface
	RecordsRepo       serviceinterfaces.AllocationRecordsRepoInterface
	OrdersRepo        serviceinterfaces.RepaymentOrdersRepoInterface
	RulesRepo         serviceinterfaces.SystemLevelRulesRepository
	RedisStore        serviceinterfaces.RedisStoreOperations
	PubSubPublisher   serviceinterfaces.RuntimePubSubPublisher
	KafkaService      serviceinterfaces.KafkaPublisherInterface
	GcsClient         serviceinterfaces.GCSUploaderInterface
	Engine            allocation.Engine
	Config            config.AllocationConfig
	NotificationTopic string
}

// NewRepaymentService wires the orchestrator with real repositories.
func NewRepaymentService(
	mongoClient *mongodb.MongoClient,
	redisStore serviceinterfaces.RedisStoreOperations,
	pubSubPublisher serviceinterfaces.RuntimePubSubPublisher,
	kafkaService serviceinterfaces.KafkaPublisherInterface,
	gcsClient serviceinterfaces.GCSUploaderInterface,
	cfg config.AllocationConfig,
	notificationTopic string,
) *RepaymentService {
	return &RepaymentService{
		MongoClient:       mongoClient,
		LoanRepo:          loans.NewLoansRepository(mongoClient),
		InstallmentsRepo:  installments.NewInstallmentsRepository(mongoClient),
		RecordsRepo:       allocation_records.NewAllocationRecordsRepository(mongoClient),
		OrdersRepo:        repayment_orders.NewRepaymentOrdersRepository(mongoClient),
		RulesRepo:         system_level_rules.NewSystemLevelRulesRepository(mongoClient),
		RedisStore:        redisStore,
		PubSubPublisher:   pubSubPublisher,
		KafkaService:      kafkaService,
		GcsClient:         gcsClient,
		Engine:            allocation.NewEngine(),
		Config:            cfg,
		NotificationTopic: notificationTopic,
	}
}

// ProcessPayment allocates one received payment against its loan. Validation
// failures are terminal: they are archived, reported to the accounting topic
// and the message is acked. Transient failures (lock contention, Mongo,
// Redis) return an error so the message is redelivered.
func (s *RepaymentService) ProcessPayment(
	ctx context.Context,
	msg *models.PaymentReceivedMessage,
) (*allocation.Result, error) {
	loanID, err := primitive.ObjectIDFromHex(msg.LoanID)
	if err != nil {
		logger.CtxWarn(ctx, "Payment references a malformed loan ID", slog.String("loanId", msg.LoanID))
		return nil, s.rejectPayment(ctx, msg, "InvalidLoanID")
	}

	effectiveDate, err := time.Parse(consts.DateFormat, msg.EffectiveDate)
	if err != nil {
		logger.CtxWarn(ctx, "Payment has a malformed effective date", slog.String("effectiveDate", msg.EffectiveDate))
		return nil, s.rejectPayment(ctx, msg, "InvalidEffectiveDate")
	}

	seen, err := s.RedisStore.Exists(ctx, consts.PaymentSeenKeyPrefix+msg.PaymentID)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorCheckingPaymentIdempotency, err)
		return nil, err
	}
	if seen {
		logger.CtxInfo(ctx, log_messages.DuplicatePaymentIgnored, slog.String("paymentId", msg.PaymentID))
		return nil, nil
	}

	lockKey := consts.LoanLockKeyPrefix + msg.LoanID
	acquired, err := s.RedisStore.SetNX(ctx, lockKey, msg.PaymentID, s.resolveLockTTL(ctx))
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorAcquiringLoanLock, err)
		return nil, err
	}
	if !acquired {
		logger.CtxWarn(ctx, log_messages.LoanLockNotAcquired, slog.String("loanId", msg.LoanID))
		return nil, ErrLoanLocked
	}
	defer func() {
		if err := s.RedisStore.Delete(ctx, lockKey); err != nil {
			logger.CtxError(ctx, log_messages.ErrorReleasingLoanLock, err)
		}
	}()

	loan, err := s.LoanRepo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, "Payment references an unknown loan", slog.String("loanId", msg.LoanID))
			return nil, s.rejectPayment(ctx, msg, "LoanNotFound")
		}
		logger.CtxError(ctx, log_messages.ErrorFetchingLoanDocument, err)
		return nil, err
	}
	readVersion := loan.Version

	loanInstallments, err := s.InstallmentsRepo.GetInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorFetchingInstallmentDocuments, err)
		return nil, err
	}

	req := allocation.PaymentRequest{
		PaymentID:     msg.PaymentID,
		LoanID:        loanID,
		Total:         money.FromFloat(msg.Amount),
		Channel:       msg.Channel,
		EffectiveDate: effectiveDate,
	}
	if msg.Split != nil {
		split := allocation.ComponentAmounts{
			Interest:  money.FromFloat(msg.Split.Interest),
			Principal: money.FromFloat(msg.Split.Principal),
			Tax:       money.FromFloat(msg.Split.Tax),
			Penalty:   money.FromFloat(msg.Split.Penalty),
		}
		req.Split = &split
	} else {
		order := s.resolveOrder(ctx, msg.Channel)
		req.Order = &order
	}
	snap := allocation.LoanSnapshot{
		Loan:         *loan,
		Installments: loanInstallments,
		VATRateBps:   s.resolveVATRate(ctx),
	}

	result, err := s.Engine.Allocate(req, snap)
	if err != nil {
		if allocation.IsValidationError(err) {
			logger.CtxWarn(ctx, "Payment rejected by allocation engine", slog.String("reason", err.Error()))
			return nil, s.rejectPayment(ctx, msg, err.Error())
		}
		return nil, err
	}

	now := nowFunc()
	result.Loan.UpdatedAt = now
	for i := range result.Installments {
		result.Installments[i].UpdatedAt = now
	}
	for i := range result.Records {
		result.Records[i].ID = primitive.NewObjectID()
		result.Records[i].CreatedAt = now
	}

	_, err = runTransaction(ctx, s.MongoClient, func(txCtx context.Context) (interface{}, error) {
		if err := s.LoanRepo.UpdateLoanDocument(txCtx, &result.Loan, readVersion); err != nil {
			logger.CtxError(txCtx, log_messages.ErrorUpdatingLoanDocument, err)
			return nil, err
		}
		if err := s.InstallmentsRepo.UpdateInstallmentDocuments(txCtx, result.Installments); err != nil {
			logger.CtxError(txCtx, log_messages.ErrorUpdatingInstallmentDocument, err)
			return nil, err
		}
		if len(result.Records) > 0 {
			if _, err := s.RecordsRepo.CreateEntries(txCtx, result.Records); err != nil {
				logger.CtxError(txCtx, log_messages.ErrorCreatingAllocationRecords, err)
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		logger.CtxError(ctx, log_messages.MongoTransactionFailed, err)
		return nil, err
	}
	logger.CtxInfo(ctx, log_messages.SuccessLoanDocumentUpdate,
		slog.String("loanId", msg.LoanID),
		slog.String("loanStatus", string(result.Loan.LoanStatus)),
		slog.Float64("totalApplied", result.TotalApplied.Float64()))

	if err := s.RedisStore.Set(ctx, consts.PaymentSeenKeyPrefix+msg.PaymentID,
		msg.LoanID, s.Config.PaymentSeenTTL); err != nil {
		// The allocation is committed; a lost marker only risks a duplicate
		// delivery hitting the version guard later.
		logger.CtxError(ctx, log_messages.ErrorCheckingPaymentIdempotency, err)
	}

	s.publishOutcome(ctx, msg, &result, now)

	if result.Remainder.IsPositive() {
		logger.CtxWarn(ctx, log_messages.UnconsumedRemainderReported,
			slog.String("paymentId", msg.PaymentID),
			slog.Float64("remainder", result.Remainder.Float64()))
		s.archiveRemainder(ctx, msg, &result)
	}

	return &result, nil
}

// resolveOrder looks up the channel's split configuration, falling back to
// the default 25/75 split when none is configured or the stored one is
// inconsistent.
func (s *RepaymentService) resolveOrder(ctx context.Context, channel string) allocation.Order {
	stored, err := s.OrdersRepo.GetActiveOrderByChannel(ctx, channel)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, log_messages.ErrorFetchingRepaymentOrderDocument, err)
		}
		return allocation.DefaultOrder()
	}
	order := allocation.OrderFromModel(stored)
	if !order.Valid() {
		logger.CtxWarn(ctx, "Stored repayment order rates do not sum to 100, using default split",
			slog.String("channel", channel))
		return allocation.DefaultOrder()
	}
	return order
}

// resolveLockTTL prefers the persisted system level rules over the static
// configuration default.
func (s *RepaymentService) resolveLockTTL(ctx context.Context) time.Duration {
	rules, err := s.RulesRepo.FetchSystemLevelRulesConfiguration(ctx)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, log_messages.ErrorFetchingSystemRulesDocument, err)
		}
		return s.Config.LoanLockTTL
	}
	if rules.LoanLockTTLSeconds <= 0 {
		return s.Config.LoanLockTTL
	}
	return time.Duration(rules.LoanLockTTLSeconds) * time.Second
}

// resolveVATRate prefers the persisted system level rules over the static
// configuration default.
func (s *RepaymentService) resolveVATRate(ctx context.Context) int64 {
	rules, err := s.RulesRepo.FetchSystemLevelRulesConfiguration(ctx)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, log_messages.ErrorFetchingSystemRulesDocument, err)
		}
		return s.Config.VATRateBps
	}
	return rules.VATRateBps
}

// publishOutcome fans the committed allocation out: one notification on
// Pub/Sub, one audit message per record on Kafka. Publishing failures are
// logged and left to the republish job, never propagated.
func (s *RepaymentService) publishOutcome(
	ctx context.Context,
	msg *models.PaymentReceivedMessage,
	result *allocation.Result,
	processedAt time.Time,
) {
	notification := common.SerializeNotification(msg, result, processedAt)
	payload, err := json.Marshal(notification)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
	} else if err := s.PubSubPublisher.Publish(ctx, s.NotificationTopic, payload); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInNotificationPublishing, err)
	} else {
		logger.CtxInfo(ctx, log_messages.SuccessNotificationPublished,
			slog.String("event", notification.Event))
	}

	for i := range result.Records {
		record := &result.Records[i]
		audit := common.SerializeAuditMessage(record, processedAt)
		if err := s.KafkaService.PublishAllocation(ctx, *audit); err != nil {
			// Flag stays false so the audit republish job picks it up.
			logger.CtxError(ctx, log_messages.ErrorInAuditPublishing, err,
				slog.String("allocationRecordId", record.ID.Hex()))
			continue
		}
		if err := s.RecordsRepo.UpdatePublishToKafka(ctx, record.ID); err != nil {
			logger.CtxError(ctx, log_messages.ErrorUpdatingKafkaFlag, err,
				slog.String("allocationRecordId", record.ID.Hex()))
		}
	}
}

// rejectPayment handles terminally invalid payments: the raw message is
// archived to the bucket and a rejected event goes to the accounting topic.
// It returns nil so the Pub/Sub message is acked instead of redelivered.
func (s *RepaymentService) rejectPayment(ctx context.Context, msg *models.PaymentReceivedMessage, reason string) error {
	now := nowFunc()

	payload, err := json.Marshal(msg)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
	} else {
		objectName := fmt.Sprintf("rejected-%s-%s.json", msg.PaymentID, now.Format(consts.DateFormat))
		if err := s.GcsClient.Upload(ctx, objectName, payload); err != nil {
			logger.CtxError(ctx, log_messages.ErrorUploadingToGCSBucket, err)
		}
	}

	rejected := common.SerializeRejectedAuditMessage(msg, reason, now)
	if err := s.KafkaService.PublishRejected(ctx, *rejected); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInAuditPublishing, err)
	}
	return nil
}

// archiveRemainder writes the unapplied part of an overpayment to the bucket
// so finance can refund it manually.
func (s *RepaymentService) archiveRemainder(ctx context.Context, msg *models.PaymentReceivedMessage, result *allocation.Result) {
	remainder := struct {
		PaymentID     string  `json:"paymentId"`
		LoanID        string  `json:"loanId"`
		Channel       string  `json:"channel"`
		AmountTotal   float64 `json:"amountTotal"`
		AmountApplied float64 `json:"amountApplied"`
		Remainder     float64 `json:"remainder"`
		EffectiveDate string  `json:"effectiveDate"`
	}{
		PaymentID:     msg.PaymentID,
		LoanID:        msg.LoanID,
		Channel:       msg.Channel,
		AmountTotal:   msg.Amount,
		AmountApplied: result.TotalApplied.Float64(),
		Remainder:     result.Remainder.Float64(),
		EffectiveDate: msg.EffectiveDate,
	}

	payload, err := json.Marshal(remainder)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
		return
	}
	objectName := fmt.Sprintf("remainder-%s-%s.json", msg.PaymentID, nowFunc().Format(consts.DateFormat))
	if err := s.GcsClient.Upload(ctx, objectName, payload); err != nil {
		logger.CtxError(ctx, log_messages.ErrorUploadingToGCSBucket, err)
	}
}

// ManualRepayment runs the same allocation path for a back-office request.
// Unlike the Pub/Sub path, validation failures surface to the caller.
func (s *RepaymentService) ManualRepayment(
	ctx context.Context,
	loanID string,
	req *models.ManualRepaymentRequest,
) (*models.ManualRepaymentResponse, error) {
	channel := req.Channel
	if channel == "" {
		channel = consts.ChannelManual
	}

	msg := &models.PaymentReceivedMessage{
		PaymentID:     req.PaymentID,
		LoanID:        loanID,
		Amount:        req.Amount,
		Channel:       channel,
		EffectiveDate: req.EffectiveDate,
		Reference:     req.Reference,
		Split:         req.Split,
	}

	result, err := s.ProcessPayment(ctx, msg)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: payment %s", ErrPaymentNotApplied, req.PaymentID)
	}

	return &models.ManualRepaymentResponse{
		PaymentID:      req.PaymentID,
		LoanID:         loanID,
		AmountReceived: req.Amount,
		AmountApplied:  result.TotalApplied.Float64(),
		Remainder:      result.Remainder.Float64(),
		LoanStatus:     string(result.Loan.LoanStatus),
		RemainingDue:   result.Loan.DueAmount.Float64(),
		RecordCount:    len(result.Records),
	}, nil
}

// GetLedger returns the full allocation history of a loan, oldest first.
func (s *RepaymentService) GetLedger(ctx context.Context, loanID string) ([]dbModels.AllocationRecords, error) {
	id, err := primitive.ObjectIDFromHex(loanID)
	if err != nil {
		return nil, fmt.Errorf("malformed loan ID %q: %w", loanID, err)
	}
	records, err := s.RecordsRepo.GetRecordsByLoanID(ctx, id)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorFetchingLoanDocument, err)
		return nil, err
	}
	return records, nil
}
