package consts

// LoanStatus is the lifecycle state of a loan aggregate.
type LoanStatus string

const (
	LoanStatusOpen        LoanStatus = "Open"
	LoanStatusRefinancing LoanStatus = "Refinancing"
	LoanStatusClosed      LoanStatus = "Closed"
)

// InstallmentStatus is the fill state of one amortization schedule row.
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "Pending"
	InstallmentStatusPartial   InstallmentStatus = "Partial"
	InstallmentStatusCompleted InstallmentStatus = "Completed"
)

// Component identifies one bucket of a repayment waterfall.
type Component string

const (
	ComponentInterest  Component = "interest"
	ComponentPrincipal Component = "principal"
	ComponentTax       Component = "tax"
	ComponentPenalty   Component = "penalty"
)

// ComponentOrder is the fixed intra-installment application sequence.
// RepaymentOrder configuration only governs the upstream split of an
// aggregate amount, never this sequence.
var ComponentOrder = []Component{
	ComponentInterest,
	ComponentPrincipal,
	ComponentTax,
	ComponentPenalty,
}

// Mongo collection names
const (
	LoansCollection             = "Loans"
	InstallmentsCollection      = "Installments"
	AllocationRecordsCollection = "AllocationRecords"
	RepaymentOrdersCollection   = "RepaymentOrders"
	SystemLevelRulesCollection  = "SystemLevelRules"
)

// Repayment channels / contexts for RepaymentOrder lookup
const (
	ChannelSalaryOrder = "SalaryOrder"
	ChannelRefund      = "Refund"
	ChannelManual      = "Manual"
)

// Consumer actions mapped onto Pub/Sub ack semantics
const (
	ActionAck    = "ack"
	ActionNack   = "nack"
	ActionIgnore = "ignore"
)

// Notification events published after commit
const (
	EventRepaymentFullSettlement = "RepaymentFullSettlement"
	EventRepaymentPartial        = "RepaymentPartialPayment"
)

const (
	// DefaultVATRateBps is used when no system level rules document exists.
	DefaultVATRateBps = 1500

	// Default pro-rata split when no RepaymentOrder matches the channel.
	DefaultInterestSharePct  = 25
	DefaultPrincipalSharePct = 75
	DefaultPenaltySharePct   = 0

	// Redis key prefixes
	LoanLockKeyPrefix    = "loanlock:"
	PaymentSeenKeyPrefix = "paymentseen:"
)

const (
	DateFormat            = "2006-01-02"
	DateTimeFormat        = "2006-01-02 15:04:05"
	FloatTwoDecimalFormat = "%.2f"
	GCSFolderName         = "unapplied-payments"
)
