package log_messages

const (
	FailedLoadingConfiguration      = "Failed to load configuration"
	FailureInPubsubConsumerCreation = "Failure in PubSub consumer creation"
	ServerStartFailure              = "Failed to start HTTP server"
	ServerExiting                   = "Server exiting"
	CleanupStarted                  = "Cleanup of resources started"
	CleanupCompleted                = "Cleanup of resources completed"
	KafkaProducerCreated            = "Kafka producer created"
	PubsubPublisherCreated          = "PubSub publisher created"
	GCSClientClosedSuccessfully     = "GCS client closed successfully"

	ErrorFetchingLoanDocument              = "Error fetching loan document from MongoDB"
	ErrorFetchingInstallmentDocuments      = "Error fetching installment documents from MongoDB"
	ErrorFetchingRepaymentOrderDocument    = "Error fetching repayment order document from MongoDB"
	ErrorFetchingSystemRulesDocument       = "Error fetching system level rules document from MongoDB"
	ErrorUpdatingLoanDocument              = "Error updating loan document in MongoDB"
	ErrorUpdatingInstallmentDocument       = "Error updating installment document in MongoDB"
	ErrorCreatingAllocationRecords         = "Error creating allocation record documents in MongoDB"
	SuccessAllocationRecordsCreation       = "Successfully created allocation record documents"
	SuccessLoanDocumentUpdate              = "Successfully updated loan document"
	ErrorInNotificationPublishing          = "Error publishing notification message to PubSub"
	ErrorInAuditPublishing                 = "Error publishing allocation audit message to Kafka"
	SuccessNotificationPublished           = "Successfully published repayment notification"
	SuccessAuditPublished                  = "Successfully published allocation audit message"
	ErrorMarshallingJSON                   = "Error marshalling payload to JSON"
	ErrorUploadingToGCSBucket              = "Error uploading object to GCS bucket"
	ErrorClosingGCSWriter                  = "Error closing GCS object writer"
	ErrorClosingGCSClient                  = "Error closing GCS client"
	UploadedToGCSBucket                    = "Uploaded object to GCS bucket"
	ErrorAcquiringLoanLock                 = "Error acquiring loan lock"
	LoanLockNotAcquired                    = "Loan lock held by another allocation, message will be redelivered"
	ErrorReleasingLoanLock                 = "Error releasing loan lock"
	DuplicatePaymentIgnored                = "Payment already processed, acking duplicate delivery"
	ErrorCheckingPaymentIdempotency        = "Error checking payment idempotency marker"
	MongoTransactionFailed                 = "MongoDB transaction failed"
	UnconsumedRemainderReported            = "Allocation reported an unconsumed remainder"
	ErrorDecodingDocument                  = "error decoding document: %v"
	CursorError                            = "cursor error: %w"
	ErrorClosingCursor                     = "Error closing cursor"
	CursorIsNilNoDocumentsToProcess        = "Cursor is nil, no documents to process"
	NoUnpublishedRecordsInDuration         = "No unpublished allocation records in the requested duration"
	NoWorkerConfigured                     = "no workers configured for audit republish"
	ErrorChannelFullLoggingCursorError     = "Error channel full, logging cursor error instead"
	ErrorChannelFullLoggingErrorInstead    = "Error channel full, logging error instead"
	ErrorProcessingDocumentBatch           = "Error processing document batch"
	AuditRepublishProcessingCompleted      = "Audit republish processing completed"
	MultipleErrorsOccurredDuringProcessing = "Multiple errors occurred during processing"
	ErrorUpdatingKafkaFlag                 = "Error updating publishedToKafka flag"
	SomeRecordsFailedToUpdateKafkaFlag     = "Some records failed to update publishedToKafka flag"
	IDsWhichPublishedToKafkaSuccessfully   = "IDs which published to Kafka successfully"
	IDsWhichFailedToPublishToKafka         = "IDs which failed to publish to Kafka"
)
