package models

import (
	"fmt"
	"time"
)

// Context key for publish time
type publishTimeKey struct{}

var PublishTimeKey = publishTimeKey{}

// PaymentSplit carries caller-determined per-component amounts, used by
// channels (refunds, back-office corrections) that decide the distribution
// themselves. The components must sum to the payment amount; only a split
// can direct cash at the tax bucket, since channel orders never do.
type PaymentSplit struct {
	Interest  float64 `json:"interest" validate:"gte=0" binding:"gte=0"`
	Principal float64 `json:"principal" validate:"gte=0" binding:"gte=0"`
	Tax       float64 `json:"tax" validate:"gte=0" binding:"gte=0"`
	Penalty   float64 `json:"penalty" validate:"gte=0" binding:"gte=0"`
}

// PaymentReceivedMessage is the payload published by upstream payment
// gateways on the payment-received subscription. Amount is the aggregate
// cash received; when Split is absent the distribution is resolved on our
// side from the channel's repayment order.
type PaymentReceivedMessage struct {
	PaymentID     string        `json:"paymentId" validate:"required"`
	LoanID        string        `json:"loanId" validate:"required"`
	Amount        float64       `json:"amount" validate:"required,gt=0"`
	Currency      string        `json:"currency"`
	Channel       string        `json:"channel" validate:"required"`
	EffectiveDate string        `json:"effectiveDate" validate:"required"` // format 2006-01-02
	Reference     string        `json:"reference"`
	Split         *PaymentSplit `json:"split,omitempty"`
	PublishTime   time.Time
}

func (p PaymentReceivedMessage) String() string {
	return fmt.Sprintf(
		"PaymentID: %s, LoanID: %s, Amount: %.2f, Channel: %s, EffectiveDate: %s",
		p.PaymentID,
		p.LoanID,
		p.Amount,
		p.Channel,
		p.EffectiveDate,
	)
}

// RepaymentNotification is published on the notification topic after a
// payment has been committed, one message per payment.
type RepaymentNotification struct {
	PaymentID       string    `json:"paymentId"`
	LoanID          string    `json:"loanId"`
	Event           string    `json:"event"`
	AmountReceived  float64   `json:"amountReceived"`
	AmountApplied   float64   `json:"amountApplied"`
	Remainder       float64   `json:"remainder"`
	LoanStatus      string    `json:"loanStatus"`
	RemainingDue    float64   `json:"remainingDue"`
	EffectiveDate   string    `json:"effectiveDate"`
	ProcessedAt     time.Time `json:"processedAt"`
	PaymentChannel  string    `json:"paymentChannel"`
	DelinquentDays  int32     `json:"delinquentDays"`
	AdvancedDays    int32     `json:"advancedDays"`
	NextPaymentDate string    `json:"nextPaymentDate"`
}
