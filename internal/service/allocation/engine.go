package allocation

import (
	"fmt"
	"sort"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"
)

// Engine performs the waterfall allocation of one payment against one loan
// snapshot. It is stateless and side-effect free: it reads private copies,
// never touches storage, and the same inputs always yield the same Result.
// Serializing concurrent payments per loan is the caller's job.
type Engine struct{}

func NewEngine() Engine {
	return Engine{}
}

// Allocate distributes a payment across the loan's open installments in
// ascending due-date order. Within each installment components fill in the
// fixed sequence interest -> principal -> tax -> penalty; VAT on interest is
// recomputed per step and added to the tax due before the tax bucket is
// consumed. Any unconsumed remainder is reported, never dropped.
func (e Engine) Allocate(req PaymentRequest, snap LoanSnapshot) (Result, error) {
	if err := validateRequest(req, snap); err != nil {
		return Result{}, err
	}

	remaining := resolveSplit(req)
	loan := snap.Loan

	installments := openInstallments(snap.Installments)
	sortByDueDate(installments)

	var (
		records []models.AllocationRecords
		touched []models.Installments
		applied ComponentAmounts
	)

	for i := range installments {
		if remaining.IsZero() {
			break
		}
		inst := &installments[i]

		pre := componentDues(inst)

		// interest
		interestApplied := remaining.Interest.Min(inst.Interest)
		inst.Interest = inst.Interest.Sub(interestApplied)
		inst.InterestPaid = inst.InterestPaid.Add(interestApplied)
		remaining.Interest = remaining.Interest.Sub(interestApplied)

		// VAT on the interest just applied becomes additional tax due on
		// this installment before the tax bucket is consumed.
		vat := interestApplied.MulBps(snap.VATRateBps)
		inst.Tax = inst.Tax.Add(vat)
		loan.Tax = loan.Tax.Add(vat)

		// principal
		principalApplied := remaining.Principal.Min(inst.Principal)
		inst.Principal = inst.Principal.Sub(principalApplied)
		inst.PrincipalPaid = inst.PrincipalPaid.Add(principalApplied)
		remaining.Principal = remaining.Principal.Sub(principalApplied)

		// tax
		taxApplied := remaining.Tax.Min(inst.Tax)
		inst.Tax = inst.Tax.Sub(taxApplied)
		inst.TaxPaid = inst.TaxPaid.Add(taxApplied)
		remaining.Tax = remaining.Tax.Sub(taxApplied)

		// penalty
		penaltyApplied := remaining.Penalty.Min(inst.Penalty)
		inst.Penalty = inst.Penalty.Sub(penaltyApplied)
		inst.PenaltyPaid = inst.PenaltyPaid.Add(penaltyApplied)
		remaining.Penalty = remaining.Penalty.Sub(penaltyApplied)

		instApplied := ComponentAmounts{
			Interest:  interestApplied,
			Principal: principalApplied,
			Tax:       taxApplied,
			Penalty:   penaltyApplied,
		}

		refreshInstallment(inst)
		if err := checkInstallment(inst); err != nil {
			return Result{}, err
		}

		// loan aggregates move by the same amounts
		loan.AccrualInterest = loan.AccrualInterest.Sub(interestApplied)
		loan.Balance = loan.Balance.Sub(principalApplied)
		loan.Tax = loan.Tax.Sub(taxApplied)
		loan.Penalty = loan.Penalty.Sub(penaltyApplied)
		loan.AccrualInterestPaid = loan.AccrualInterestPaid.Add(interestApplied)
		loan.TotalPrincipalPaid = loan.TotalPrincipalPaid.Add(principalApplied)
		loan.TaxPaid = loan.TaxPaid.Add(taxApplied)
		loan.PenaltyPaid = loan.PenaltyPaid.Add(penaltyApplied)

		applied.Interest = applied.Interest.Add(instApplied.Interest)
		applied.Principal = applied.Principal.Add(instApplied.Principal)
		applied.Tax = applied.Tax.Add(instApplied.Tax)
		applied.Penalty = applied.Penalty.Add(instApplied.Penalty)

		if !instApplied.IsZero() {
			records = append(records, buildRecord(req, *inst, pre, instApplied))
			touched = append(touched, *inst)
		}
	}

	loan.DueAmount = loan.Balance.Add(loan.AccrualInterest).Add(loan.Tax).Add(loan.Penalty)
	if err := checkLoan(&loan); err != nil {
		return Result{}, err
	}

	totalApplied := applied.Total()
	loan.Paid = loan.Paid.Add(totalApplied)
	loan.LastPayment = totalApplied
	loan.LastPaymentDate = req.EffectiveDate

	status := EvaluatePaymentStatus(touched, installments, req.EffectiveDate)
	applyPaymentStatus(&loan, status)

	ResolveLoanStatus(&loan)

	finalizeRecords(records, loan.DueAmount)

	return Result{
		Loan:         loan,
		Installments: touched,
		Records:      records,
		Payment:      status,
		Applied:      applied,
		TotalApplied: totalApplied,
		Remainder:    remaining.Total(),
	}, nil
}

func validateRequest(req PaymentRequest, snap LoanSnapshot) error {
	if !req.Total.IsPositive() {
		return ErrNonPositivePayment
	}
	if snap.Loan.LoanStatus == consts.LoanStatusClosed {
		return ErrLoanClosed
	}

	if req.Split == nil {
		return nil
	}

	split := *req.Split
	for _, c := range consts.ComponentOrder {
		if split.Get(c).IsNegative() {
			return ErrNegativeComponent
		}
	}
	if !split.Total().Equal(req.Total) {
		return &SplitMismatchError{SplitTotal: split.Total(), Total: req.Total}
	}

	loan := snap.Loan
	if split.Interest.GreaterThan(loan.AccrualInterest) {
		return &ComponentExceedsBalanceError{
			Component: consts.ComponentInterest,
			Requested: split.Interest,
			Available: loan.AccrualInterest,
		}
	}
	if split.Principal.GreaterThan(loan.Balance) {
		return &ComponentExceedsBalanceError{
			Component: consts.ComponentPrincipal,
			Requested: split.Principal,
			Available: loan.Balance,
		}
	}
	if split.Penalty.GreaterThan(loan.Penalty) {
		return &ComponentExceedsBalanceError{
			Component: consts.ComponentPenalty,
			Requested: split.Penalty,
			Available: loan.Penalty,
		}
	}
	// Tax due grows by VAT as interest is paid, so the ceiling is the
	// current balance plus the VAT the requested interest can generate.
	maxTax := loan.Tax.Add(split.Interest.MulBps(snap.VATRateBps))
	if split.Tax.GreaterThan(maxTax) {
		return &ComponentExceedsBalanceError{
			Component: consts.ComponentTax,
			Requested: split.Tax,
			Available: maxTax,
		}
	}

	return nil
}

// resolveSplit returns the component buckets for the walk: the caller's
// pre-split when present, otherwise the request's channel order (resolved by
// the embedding service), otherwise the default split. An invalid order
// falls back to the default rather than failing the payment.
func resolveSplit(req PaymentRequest) ComponentAmounts {
	if req.Split != nil {
		return *req.Split
	}
	if req.Order != nil && req.Order.Valid() {
		return req.Order.Split(req.Total)
	}
	return DefaultOrder().Split(req.Total)
}

func openInstallments(installments []models.Installments) []models.Installments {
	open := make([]models.Installments, 0, len(installments))
	for i := range installments {
		if installments[i].TotalDue.IsPositive() {
			open = append(open, installments[i])
		}
	}
	return open
}

func sortByDueDate(installments []models.Installments) {
	sort.SliceStable(installments, func(i, j int) bool {
		if installments[i].NextPaymentDate.Equal(installments[j].NextPaymentDate) {
			return installments[i].Sequence < installments[j].Sequence
		}
		return installments[i].NextPaymentDate.Before(installments[j].NextPaymentDate)
	})
}

func componentDues(inst *models.Installments) ComponentAmounts {
	return ComponentAmounts{
		Interest:  inst.Interest,
		Principal: inst.Principal,
		Tax:       inst.Tax,
		Penalty:   inst.Penalty,
	}
}

func refreshInstallment(inst *models.Installments) {
	inst.TotalDue = inst.Principal.Add(inst.Interest).Add(inst.Tax).Add(inst.Penalty)
	inst.Paid = inst.PrincipalPaid.Add(inst.InterestPaid).Add(inst.TaxPaid).Add(inst.PenaltyPaid)

	switch {
	case !inst.TotalDue.IsPositive():
		inst.Status = consts.InstallmentStatusCompleted
		inst.IsCompleted = true
	case inst.Paid.IsPositive():
		inst.Status = consts.InstallmentStatusPartial
	default:
		inst.Status = consts.InstallmentStatusPending
	}
}

func checkInstallment(inst *models.Installments) error {
	for _, c := range consts.ComponentOrder {
		due := componentDues(inst).Get(c)
		if due.IsNegative() {
			return &ConsistencyError{
				Detail: fmt.Sprintf("installment %d %s due went negative (%s)", inst.Sequence, c, due),
			}
		}
	}
	if inst.TotalDue.IsNegative() {
		return &ConsistencyError{
			Detail: fmt.Sprintf("installment %d totalDue went negative (%s)", inst.Sequence, inst.TotalDue),
		}
	}
	return nil
}

func checkLoan(loan *models.Loans) error {
	components := map[consts.Component]money.Money{
		consts.ComponentInterest:  loan.AccrualInterest,
		consts.ComponentPrincipal: loan.Balance,
		consts.ComponentTax:       loan.Tax,
		consts.ComponentPenalty:   loan.Penalty,
	}
	for c, balance := range components {
		if balance.IsNegative() {
			return &ConsistencyError{
				Detail: fmt.Sprintf("loan %s balance went negative (%s)", c, balance),
			}
		}
	}
	return nil
}

func applyPaymentStatus(loan *models.Loans, status PaymentStatus) {
	loan.AdvancedPaymentDays = status.AdvancedPaymentDays
	loan.AdvancedPaymentAmount = status.AdvancedPaymentAmount
	loan.DelinquentDays = status.DelinquentDays
	loan.DelinquentAmount = status.DelinquentAmount
	loan.NextPaymentDate = status.NextPaymentDate
}
