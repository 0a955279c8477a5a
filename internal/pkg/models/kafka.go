package models

import "time"

// KafkaMessageForPublishing mirrors one allocation audit record as consumed
// by the downstream accounting pipeline. One message per installment touched
// by a payment.
type KafkaMessageForPublishing struct {
	AllocationRecordID  string    `json:"allocationRecordId"`
	PaymentID           string    `json:"paymentId"`
	LoanID              string    `json:"loanId"`
	InstallmentID       string    `json:"installmentId"`
	InstallmentSequence int32     `json:"installmentSequence"`
	PaymentChannel      string    `json:"paymentChannel"`
	InterestApplied     float64   `json:"interestApplied"`
	PrincipalApplied    float64   `json:"principalApplied"`
	TaxApplied          float64   `json:"taxApplied"`
	PenaltyApplied      float64   `json:"penaltyApplied"`
	TotalApplied        float64   `json:"totalApplied"`
	LoanBalanceAfter    float64   `json:"loanBalanceAfter"`
	Result              string    `json:"result"`
	EffectiveDate       time.Time `json:"effectiveDate"`
	ProcessedDateTime   time.Time `json:"processedDateTime"`
}
