package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"repayment-worker/internal/pkg/common"
	"repayment-worker/internal/pkg/config"
	"repayment-worker/internal/pkg/kafka"
	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/store/impl/allocation_records"
	"repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/service/interfaces"

	mongodb "repayment-worker/internal/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type AuditRepublishServiceInterface interface {
	RepublishAuditMessages(ctx context.Context) *AuditRepublishResponse
}

// AuditRepublishService re-publishes allocation records whose Kafka delivery
// failed at commit time. Records are streamed from Mongo through a worker
// pool and published in batches.
type AuditRepublishService struct {
	RecordsRepo   interfaces.AllocationRecordsRepoInterface
	kafkaProducer kafka.KafkaProducerInterface
	workerConfig  config.AuditRepublishConfig
	cursorHandler *DefaultCursorHandler
}

type DefaultCursorHandler struct{}

func (h *DefaultCursorHandler) StreamDocuments(
	ctx context.Context,
	cursor *mongo.Cursor,
	docChan chan<- models.AllocationRecords,
	errorChan chan<- error,
) {
	defer close(docChan)

	hasDocuments := false

	for cursor.Next(ctx) {
		hasDocuments = true
		var doc models.AllocationRecords
		if err := cursor.Decode(&doc); err != nil {
			logger.CtxError(ctx, log_messages.ErrorDecodingDocument, err)
			continue
		}

		select {
		case docChan <- doc:
		case <-ctx.Done():
			return
		}
	}

	if !hasDocuments {
		logger.CtxInfo(ctx, log_messages.NoUnpublishedRecordsInDuration)
	}

	if err := cursor.Err(); err != nil {
		select {
		case errorChan <- fmt.Errorf(log_messages.CursorError, err):
		case <-ctx.Done():
		default:
			logger.CtxError(ctx, log_messages.ErrorChannelFullLoggingCursorError, err)
		}
	}
}

func NewAuditRepublishService(client *mongodb.MongoClient,
	kafkaProducer kafka.KafkaProducerInterface, cfg config.AuditRepublishConfig) *AuditRepublishService {
	return &AuditRepublishService{
		RecordsRepo:   allocation_records.NewAllocationRecordsRepository(client),
		kafkaProducer: kafkaProducer,
		cursorHandler: &DefaultCursorHandler{},
		workerConfig:  cfg,
	}
}

func NewAuditRepublishServiceWithDeps(
	recordsRepo interfaces.AllocationRecordsRepoInterface,
	kafkaProducer kafka.KafkaProducerInterface,
	workerConfig config.AuditRepublishConfig,
) *AuditRepublishService {
	return &AuditRepublishService{
		RecordsRepo:   recordsRepo,
		kafkaProducer: kafkaProducer,
		workerConfig:  workerConfig,
		cursorHandler: &DefaultCursorHandler{},
	}
}

func (as *AuditRepublishService) setupChannelsAndWorkers(
	ctx context.Context,
	response *AuditRepublishResponse,
) (chan models.AllocationRecords, chan []string,
	chan []string, chan error, chan struct{}, *sync.WaitGroup, *[]error, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	workerCount := as.workerConfig.WorkerCount
	bufferSize := as.workerConfig.BufferSize

	docChan := make(chan models.AllocationRecords, bufferSize)

	successChan := make(chan []string, bufferSize)
	failureChan := make(chan []string, bufferSize)
	errorChan := make(chan error, bufferSize)

	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			as.processDocumentsWorker(ctx, docChan, successChan, failureChan, errorChan)
		}()
	}

	resultsDone := make(chan struct{})
	var resultErrors []error

	go as.collectResults(ctx, response, successChan, failureChan, errorChan, resultsDone, &resultErrors)

	return docChan, successChan, failureChan, errorChan, resultsDone, &wg, &resultErrors, cancel
}

func (as *AuditRepublishService) collectResults(
	ctx context.Context,
	response *AuditRepublishResponse,
	successChan chan []string,
	failureChan chan []string,
	errorChan chan error,
	resultsDone chan struct{},
	resultErrors *[]error,
) {
	defer close(resultsDone)

	closedCount := 0
	const totalChannels = 3

	for closedCount < totalChannels {
		select {
		case successIDs, ok := <-successChan:
			if !ok {
				successChan = nil
				closedCount++
				continue
			}
			response.SuccessIDs = append(response.SuccessIDs, successIDs...)

		case failedIDs, ok := <-failureChan:
			if !ok {
				failureChan = nil
				closedCount++
				continue
			}
			response.FailedIDs = append(response.FailedIDs, failedIDs...)

		case err, ok := <-errorChan:
			if !ok {
				errorChan = nil
				closedCount++
				continue
			}
			as.handleErrorResult(ctx, response, resultErrors, err)

		case <-ctx.Done():
			return
		}
	}
}

func (as *AuditRepublishService) handleErrorResult(
	ctx context.Context,
	response *AuditRepublishResponse,
	resultErrors *[]error,
	err error,
) {
	*resultErrors = append(*resultErrors, err)
	if response.ErrorMsg == "" {
		response.SetError(err)
	}
	logger.CtxError(ctx, log_messages.ErrorProcessingDocumentBatch, err)
}

func (as *AuditRepublishService) RepublishAuditMessages(ctx context.Context) *AuditRepublishResponse {
	response := &AuditRepublishResponse{
		SuccessIDs: []string{},
		FailedIDs:  []string{},
	}
	if as.workerConfig.WorkerCount <= 0 {
		logger.CtxError(ctx, log_messages.NoWorkerConfigured, errors.New(log_messages.NoWorkerConfigured))
		response.SetError(errors.New(log_messages.NoWorkerConfigured))
		return response
	}

	cursor, err := as.RecordsRepo.GetUnpublishedEntriesCursor(ctx, as.workerConfig.RetryStartDate,
		as.workerConfig.MongoBatchSize)
	if err != nil {
		response.SetError(err)
		return response
	}
	if cursor == nil {
		logger.CtxInfo(ctx, log_messages.CursorIsNilNoDocumentsToProcess)
		return response
	}

	defer func() {
		if cursor != nil {
			if err := cursor.Close(ctx); err != nil {
				logger.CtxError(ctx, log_messages.ErrorClosingCursor, err)
			}
		}
	}()

	docChan, successChan, failureChan, errorChan, resultsDone, wg, resultErrors, cancel :=
		as.setupChannelsAndWorkers(ctx, response)
	defer cancel()

	streamWg := &sync.WaitGroup{}
	streamWg.Add(1)
	go func() {
		defer streamWg.Done()
		as.cursorHandler.StreamDocuments(ctx, cursor, docChan, errorChan)
	}()
	streamWg.Wait()
	wg.Wait()
	close(successChan)
	close(failureChan)
	close(errorChan)
	<-resultsDone
	logger.CtxInfo(ctx, log_messages.AuditRepublishProcessingCompleted,
		slog.Int("successCount", len(response.SuccessIDs)),
		slog.Int("failureCount", len(response.FailedIDs)),
		slog.Int("errorCount", len(*resultErrors)))

	if len(*resultErrors) > 0 {
		logger.CtxWarn(ctx, log_messages.MultipleErrorsOccurredDuringProcessing,
			slog.Int("errorCount", len(*resultErrors)))
		for i, err := range *resultErrors {
			logger.CtxError(ctx, fmt.Sprintf("Error %d", i+1), err)
		}
	}

	return response
}

func (as *AuditRepublishService) processAndPublishBatch(
	ctx context.Context,
	batch []models.AllocationRecords,
	successChan chan<- []string,
	failureChan chan<- []string,
	errorChan chan<- error,
) {
	if len(batch) == 0 {
		return
	}

	successIDs := make([]string, 0, len(batch))
	failedIDs := make([]string, 0, len(batch))

	for i := range batch {
		doc := &batch[i]
		messageValue, err := as.prepareAuditMessage(ctx, doc)
		if err != nil {
			failedIDs = append(failedIDs, doc.ID.Hex())
			continue
		}

		err = as.kafkaProducer.Publish(ctx, messageValue)
		if err != nil {
			failedIDs = append(failedIDs, doc.ID.Hex())
			select {
			case errorChan <- err:
			case <-ctx.Done():
				return
			default:
				logger.CtxError(ctx, log_messages.ErrorChannelFullLoggingErrorInstead, err)
			}
			continue
		}

		successIDs = append(successIDs, doc.ID.Hex())
	}

	as.handleSuccessIDs(ctx, successIDs, failedIDs, successChan, failureChan, errorChan)
}

func (as *AuditRepublishService) handleSuccessIDs(
	ctx context.Context,
	successIDs []string,
	failedIDs []string,
	successChan chan<- []string,
	failureChan chan<- []string,
	errorChan chan<- error,
) {

	if len(successIDs) > 0 {

		logger.CtxInfo(ctx, log_messages.IDsWhichPublishedToKafkaSuccessfully, slog.Any("successIDs", successIDs))

		select {
		case successChan <- successIDs:
		case <-ctx.Done():
			return
		}
		failedUpdateIDs, err := as.RecordsRepo.UpdatePublishedToKafkaInBulk(ctx, successIDs)

		if err != nil {
			logger.CtxError(ctx,
				log_messages.ErrorUpdatingKafkaFlag,
				err,
				slog.Any("successIDs", successIDs),
			)
			select {
			case errorChan <- fmt.Errorf("%s: %w", log_messages.ErrorUpdatingKafkaFlag, err):
			case <-ctx.Done():
				return
			}
		} else if len(failedUpdateIDs) > 0 {
			logger.CtxWarn(ctx, log_messages.SomeRecordsFailedToUpdateKafkaFlag,
				slog.Any("failedUpdateIDs", failedUpdateIDs),
				slog.Int("totalFailed", len(failedUpdateIDs)),
				slog.Int("totalSuccess", len(successIDs)-len(failedUpdateIDs)),
			)
		}

	}

	if len(failedIDs) > 0 {
		logger.CtxWarn(ctx, log_messages.IDsWhichFailedToPublishToKafka, slog.Any("failedIDs", failedIDs))

		select {
		case failureChan <- failedIDs:
		case <-ctx.Done():
			return
		}
	}

}

func (as *AuditRepublishService) processDocumentsWorker(
	ctx context.Context,
	docChan <-chan models.AllocationRecords,
	successChan chan<- []string,
	failureChan chan<- []string,
	errorChan chan<- error,
) {
	maxBatchSize := as.workerConfig.MaxBatchSize
	batch := make([]models.AllocationRecords, 0, maxBatchSize)

	ticker := time.NewTicker(as.workerConfig.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case doc, ok := <-docChan:
			if !ok {
				as.processAndPublishBatch(ctx, batch, successChan, failureChan, errorChan)
				return
			}

			batch = append(batch, doc)

			if len(batch) >= maxBatchSize {
				as.processAndPublishBatch(ctx, batch, successChan, failureChan, errorChan)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				as.processAndPublishBatch(ctx, batch, successChan, failureChan, errorChan)
				batch = batch[:0]
			}

		case <-ctx.Done():
			if len(batch) > 0 {
				as.processAndPublishBatch(ctx, batch, successChan, failureChan, errorChan)
			}
			return
		}
	}
}

// prepareAuditMessage serializes one record the same way the commit-time
// publish does, so downstream consumers cannot tell a replay apart.
func (as *AuditRepublishService) prepareAuditMessage(ctx context.Context,
	record *models.AllocationRecords) ([]byte, error) {
	payload := common.SerializeAuditMessage(record, time.Now())
	data, err := json.Marshal(payload)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err,
			slog.String("allocationRecordId", record.ID.Hex()))
		return nil, err
	}
	return data, nil
}
