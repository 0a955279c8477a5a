package models

import (
	"time"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loans is the aggregate root for one outstanding credit facility. Balances
// are mutated only by the allocation engine; the document is never deleted,
// closure is a soft status change.
type Loans struct {
	LoanID     primitive.ObjectID `bson:"_id"`
	CustomerID primitive.ObjectID `bson:"customerId"`
	BranchID   primitive.ObjectID `bson:"branchId"`
	BankID     primitive.ObjectID `bson:"bankId"`
	GUID       string             `bson:"GUID"`

	// Outstanding balances. Invariant after every allocation:
	// DueAmount == Balance + AccrualInterest + Tax + Penalty.
	Balance         money.Money `bson:"balance"`
	AccrualInterest money.Money `bson:"accrualInterest"`
	Tax             money.Money `bson:"tax"`
	Penalty         money.Money `bson:"penalty"`
	Principal       money.Money `bson:"principal"`
	DueAmount       money.Money `bson:"dueAmount"`

	// Cumulative trackers
	Paid                money.Money `bson:"paid"`
	TotalPrincipalPaid  money.Money `bson:"totalPrincipalPaid"`
	AccrualInterestPaid money.Money `bson:"accrualInterestPaid"`
	TaxPaid             money.Money `bson:"taxPaid"`
	PenaltyPaid         money.Money `bson:"penaltyPaid"`
	LastPayment         money.Money `bson:"lastPayment"`
	LastPaymentDate     time.Time   `bson:"lastPaymentDate"`

	LoanStatus    consts.LoanStatus `bson:"loanStatus"`
	IsCurrentLoan bool              `bson:"isCurrentLoan"`
	IsCompleted   bool              `bson:"isCompleted"`

	// Delinquency / advance summary copied from the latest PaymentStatus
	AdvancedPaymentDays   int32       `bson:"advancedPaymentDays"`
	AdvancedPaymentAmount money.Money `bson:"advancedPaymentAmount"`
	DelinquentDays        int32       `bson:"delinquentDays"`
	DelinquentAmount      money.Money `bson:"delinquentAmount"`
	NextPaymentDate       time.Time   `bson:"nextPaymentDate"`

	Version   int32     `bson:"version"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Installments is one row of a loan's amortization schedule. Component
// fields hold the REMAINING due per component, decremented as paid; the
// original schedule amounts are not kept here.
type Installments struct {
	ID              primitive.ObjectID `bson:"_id"`
	LoanID          primitive.ObjectID `bson:"loanId"`
	Sequence        int32              `bson:"sequence"`
	NextPaymentDate time.Time          `bson:"nextPaymentDate"`

	Principal money.Money `bson:"principal"`
	Interest  money.Money `bson:"interest"`
	Tax       money.Money `bson:"tax"`
	Penalty   money.Money `bson:"penalty"`

	PrincipalPaid money.Money `bson:"principalPaid"`
	InterestPaid  money.Money `bson:"interestPaid"`
	TaxPaid       money.Money `bson:"taxPaid"`
	PenaltyPaid   money.Money `bson:"penaltyPaid"`

	// Derived. TotalDue == Principal + Interest + Tax + Penalty;
	// Status == Completed iff TotalDue <= 0.
	TotalDue    money.Money              `bson:"totalDue"`
	Paid        money.Money              `bson:"paid"`
	Status      consts.InstallmentStatus `bson:"status"`
	IsCompleted bool                     `bson:"isCompleted"`

	UpdatedAt time.Time `bson:"updatedAt"`
}

// AllocationRecords is the write-once audit artifact: one document per
// installment touched by one payment. Never mutated after creation except
// for the PublishedToKafka delivery flag.
type AllocationRecords struct {
	ID            primitive.ObjectID `bson:"_id"`
	PaymentID     string             `bson:"paymentId"`
	LoanID        primitive.ObjectID `bson:"loanId"`
	InstallmentID primitive.ObjectID `bson:"installmentId"`
	Sequence      int32              `bson:"sequence"`
	Channel       string             `bson:"paymentChannel"`

	InterestApplied  money.Money `bson:"interestApplied"`
	PrincipalApplied money.Money `bson:"principalApplied"`
	TaxApplied       money.Money `bson:"taxApplied"`
	PenaltyApplied   money.Money `bson:"penaltyApplied"`
	TotalApplied     money.Money `bson:"totalApplied"`

	InterestDueBefore  money.Money `bson:"interestDueBefore"`
	InterestDueAfter   money.Money `bson:"interestDueAfter"`
	PrincipalDueBefore money.Money `bson:"principalDueBefore"`
	PrincipalDueAfter  money.Money `bson:"principalDueAfter"`
	TaxDueBefore       money.Money `bson:"taxDueBefore"`
	TaxDueAfter        money.Money `bson:"taxDueAfter"`
	PenaltyDueBefore   money.Money `bson:"penaltyDueBefore"`
	PenaltyDueAfter    money.Money `bson:"penaltyDueAfter"`

	// Loan-level running balance once the full allocation completed.
	LoanBalanceAfter money.Money `bson:"loanBalanceAfter"`

	EffectiveDate    time.Time `bson:"effectiveDate"`
	CreatedAt        time.Time `bson:"createdAt"`
	PublishedToKafka bool      `bson:"publishedToKafka"`
}

// RepaymentOrders configures the pro-rata split of an aggregate payment
// into component buckets for one repayment channel. Ranks order the
// components for display; rates drive the split.
type RepaymentOrders struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Channel string             `bson:"channel"`

	InterestRank  int32 `bson:"interestRank"`
	PrincipalRank int32 `bson:"principalRank"`
	PenaltyRank   int32 `bson:"penaltyRank"`

	InterestPct  int64 `bson:"interestPct"`
	PrincipalPct int64 `bson:"principalPct"`
	PenaltyPct   int64 `bson:"penaltyPct"`

	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// SystemLevelRules holds bank-wide policy knobs, the VAT-on-interest rate
// among them.
type SystemLevelRules struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	VATRateBps         int64              `bson:"vatRateBps"`
	LoanLockTTLSeconds int32              `bson:"loanLockTtlSeconds"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}
