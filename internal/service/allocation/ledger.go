package allocation

import (
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"
)

// buildRecord captures one touched installment as a write-once audit row.
// IDs and creation timestamps are stamped at persist time by the embedding
// service; everything the engine writes here is a pure function of its
// inputs, so identical inputs replay to identical records.
func buildRecord(req PaymentRequest, inst models.Installments, pre, applied ComponentAmounts) models.AllocationRecords {
	return models.AllocationRecords{
		PaymentID:     req.PaymentID,
		LoanID:        req.LoanID,
		InstallmentID: inst.ID,
		Sequence:      inst.Sequence,
		Channel:       req.Channel,

		InterestApplied:  applied.Interest,
		PrincipalApplied: applied.Principal,
		TaxApplied:       applied.Tax,
		PenaltyApplied:   applied.Penalty,
		TotalApplied:     applied.Total(),

		InterestDueBefore:  pre.Interest,
		InterestDueAfter:   inst.Interest,
		PrincipalDueBefore: pre.Principal,
		PrincipalDueAfter:  inst.Principal,
		TaxDueBefore:       pre.Tax,
		TaxDueAfter:        inst.Tax,
		PenaltyDueBefore:   pre.Penalty,
		PenaltyDueAfter:    inst.Penalty,

		EffectiveDate: req.EffectiveDate,
	}
}

// finalizeRecords stamps the loan-level balance remaining after the whole
// allocation onto every record of the call.
func finalizeRecords(records []models.AllocationRecords, loanDueAfter money.Money) {
	for i := range records {
		records[i].LoanBalanceAfter = loanDueAfter
	}
}
