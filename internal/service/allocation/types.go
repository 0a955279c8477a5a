package allocation

import (
	"time"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComponentAmounts is one amount per waterfall bucket.
type ComponentAmounts struct {
	Interest  money.Money
	Principal money.Money
	Tax       money.Money
	Penalty   money.Money
}

func (c ComponentAmounts) Total() money.Money {
	return c.Interest.Add(c.Principal).Add(c.Tax).Add(c.Penalty)
}

func (c ComponentAmounts) IsZero() bool {
	return c.Interest.IsZero() && c.Principal.IsZero() && c.Tax.IsZero() && c.Penalty.IsZero()
}

func (c ComponentAmounts) Get(component consts.Component) money.Money {
	switch component {
	case consts.ComponentInterest:
		return c.Interest
	case consts.ComponentPrincipal:
		return c.Principal
	case consts.ComponentTax:
		return c.Tax
	case consts.ComponentPenalty:
		return c.Penalty
	}
	return money.Zero()
}

// PaymentRequest is one payment to allocate against one loan. Split is
// optional; when nil the aggregate Total is divided via Order (the
// channel's resolved repayment order), falling back to the default split.
type PaymentRequest struct {
	PaymentID     string
	LoanID        primitive.ObjectID
	Total         money.Money
	Split         *ComponentAmounts
	Order         *Order
	Channel       string
	EffectiveDate time.Time
}

// LoanSnapshot is the persisted state the engine allocates against. The
// engine works on private copies; the snapshot is never mutated.
type LoanSnapshot struct {
	Loan         models.Loans
	Installments []models.Installments
	VATRateBps   int64
}

// PaymentStatus summarizes advance/delinquency across the installments one
// payment touched.
type PaymentStatus struct {
	AdvancedPaymentDays   int32
	AdvancedPaymentAmount money.Money
	DelinquentDays        int32
	DelinquentAmount      money.Money
	NextPaymentDate       time.Time
}

// Result is everything one allocation produced. The caller owns committing
// it; nothing here has been persisted.
type Result struct {
	Loan         models.Loans
	Installments []models.Installments
	Records      []models.AllocationRecords
	Payment      PaymentStatus
	Applied      ComponentAmounts
	TotalApplied money.Money
	Remainder    money.Money
}
