package allocation

import (
	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/store/models"
)

// ResolveLoanStatus applies the post-allocation state machine: an Open or
// Refinancing loan closes once nothing remains due. There is no other
// transition; a Closed loan is never resurrected (allocation against one is
// rejected up front by validateRequest).
func ResolveLoanStatus(loan *models.Loans) {
	switch loan.LoanStatus {
	case consts.LoanStatusOpen, consts.LoanStatusRefinancing:
		if !loan.DueAmount.IsPositive() {
			loan.LoanStatus = consts.LoanStatusClosed
			loan.IsCompleted = true
			loan.IsCurrentLoan = false
		}
	}
}
