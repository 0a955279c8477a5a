package models

// ManualRepaymentRequest is the body of POST /loans/:loanId/repayments,
// used by back-office tooling to post a payment outside the Pub/Sub flow.
// Split is optional; when present it overrides the channel's repayment
// order and must sum to Amount.
type ManualRepaymentRequest struct {
	PaymentID     string        `json:"paymentId" binding:"required"`
	Amount        float64       `json:"amount" binding:"required,gt=0"`
	Channel       string        `json:"channel"`
	EffectiveDate string        `json:"effectiveDate" binding:"required"` // format 2006-01-02
	Reference     string        `json:"reference"`
	Split         *PaymentSplit `json:"split,omitempty"`
}

// ManualRepaymentResponse echoes the allocation outcome back to the caller.
type ManualRepaymentResponse struct {
	PaymentID      string  `json:"paymentId"`
	LoanID         string  `json:"loanId"`
	AmountReceived float64 `json:"amountReceived"`
	AmountApplied  float64 `json:"amountApplied"`
	Remainder      float64 `json:"remainder"`
	LoanStatus     string  `json:"loanStatus"`
	RemainingDue   float64 `json:"remainingDue"`
	RecordCount    int     `json:"recordCount"`
}
