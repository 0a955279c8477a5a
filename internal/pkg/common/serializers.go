package common

import (
	"time"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/models"
	dbModels "repayment-worker/internal/pkg/store/models"
	"repayment-worker/internal/service/allocation"
)

// SerializeAuditMessage flattens one persisted allocation record into the
// accounting topic payload.
func SerializeAuditMessage(record *dbModels.AllocationRecords, processedAt time.Time) *models.KafkaMessageForPublishing {
	return &models.KafkaMessageForPublishing{
		AllocationRecordID:  record.ID.Hex(),
		PaymentID:           record.PaymentID,
		LoanID:              record.LoanID.Hex(),
		InstallmentID:       record.InstallmentID.Hex(),
		InstallmentSequence: record.Sequence,
		PaymentChannel:      record.Channel,
		InterestApplied:     record.InterestApplied.Float64(),
		PrincipalApplied:    record.PrincipalApplied.Float64(),
		TaxApplied:          record.TaxApplied.Float64(),
		PenaltyApplied:      record.PenaltyApplied.Float64(),
		TotalApplied:        record.TotalApplied.Float64(),
		LoanBalanceAfter:    record.LoanBalanceAfter.Float64(),
		Result:              "Success",
		EffectiveDate:       record.EffectiveDate,
		ProcessedDateTime:   processedAt,
	}
}

// SerializeRejectedAuditMessage reports a payment that never reached the
// engine (or was rejected by it) to the accounting topic.
func SerializeRejectedAuditMessage(msg *models.PaymentReceivedMessage, reason string,
	processedAt time.Time) *models.KafkaMessageForPublishing {
	return &models.KafkaMessageForPublishing{
		PaymentID:         msg.PaymentID,
		LoanID:            msg.LoanID,
		PaymentChannel:    msg.Channel,
		TotalApplied:      0,
		Result:            reason,
		ProcessedDateTime: processedAt,
	}
}

// SerializeNotification builds the customer-facing event for one committed
// payment.
func SerializeNotification(msg *models.PaymentReceivedMessage, result *allocation.Result,
	processedAt time.Time) *models.RepaymentNotification {

	event := consts.EventRepaymentPartial
	if result.Loan.LoanStatus == consts.LoanStatusClosed {
		event = consts.EventRepaymentFullSettlement
	}

	nextPaymentDate := ""
	if !result.Payment.NextPaymentDate.IsZero() {
		nextPaymentDate = result.Payment.NextPaymentDate.Format(consts.DateFormat)
	}

	return &models.RepaymentNotification{
		PaymentID:       msg.PaymentID,
		LoanID:          msg.LoanID,
		Event:           event,
		AmountReceived:  msg.Amount,
		AmountApplied:   result.TotalApplied.Float64(),
		Remainder:       result.Remainder.Float64(),
		LoanStatus:      string(result.Loan.LoanStatus),
		RemainingDue:    result.Loan.DueAmount.Float64(),
		EffectiveDate:   msg.EffectiveDate,
		ProcessedAt:     processedAt,
		PaymentChannel:  msg.Channel,
		DelinquentDays:  result.Payment.DelinquentDays,
		AdvancedDays:    result.Payment.AdvancedPaymentDays,
		NextPaymentDate: nextPaymentDate,
	}
}
