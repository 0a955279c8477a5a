package allocation

import (
	"time"

	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"
)

// EvaluatePaymentStatus derives the advance/delinquency summary of one
// payment. Touched rows are compared against the effective payment date;
// a row due exactly on the payment date counts as neither advanced nor
// delinquent. NextPaymentDate is the earliest due date still carrying an
// outstanding amount across the whole schedule.
func EvaluatePaymentStatus(touched, all []models.Installments, effectiveDate time.Time) PaymentStatus {
	status := PaymentStatus{
		AdvancedPaymentAmount: money.Zero(),
		DelinquentAmount:      money.Zero(),
	}

	paymentDay := truncateToDay(effectiveDate)

	for i := range touched {
		inst := &touched[i]
		dueDay := truncateToDay(inst.NextPaymentDate)

		switch {
		case paymentDay.Before(dueDay):
			days := daysBetween(paymentDay, dueDay)
			status.AdvancedPaymentDays += days
			// Advance amount is what was paid beyond the remaining due.
			status.AdvancedPaymentAmount = status.AdvancedPaymentAmount.Add(
				inst.Paid.SubFloor(inst.TotalDue),
			)
		case dueDay.Before(paymentDay):
			days := daysBetween(dueDay, paymentDay)
			status.DelinquentDays += days
			// Delinquent amount is what remains outstanding and overdue.
			status.DelinquentAmount = status.DelinquentAmount.Add(inst.TotalDue)
		}
	}

	for i := range all {
		inst := &all[i]
		if !inst.TotalDue.IsPositive() {
			continue
		}
		if status.NextPaymentDate.IsZero() || inst.NextPaymentDate.Before(status.NextPaymentDate) {
			status.NextPaymentDate = inst.NextPaymentDate
		}
	}

	return status
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int32 {
	return int32(to.Sub(from).Hours() / 24)
}
