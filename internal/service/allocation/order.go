package allocation

import (
	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"
)

// Order is the pro-rata split configuration for one repayment channel.
// Rates are whole percentages and must sum to 100. The split only governs
// how an aggregate amount is divided into component buckets; the
// intra-installment application sequence is fixed (consts.ComponentOrder).
type Order struct {
	InterestPct  int64
	PrincipalPct int64
	PenaltyPct   int64
}

// DefaultOrder is the fallback split when no configuration exists for a
// channel: interest 25%, principal 75%, no penalty share.
func DefaultOrder() Order {
	return Order{
		InterestPct:  consts.DefaultInterestSharePct,
		PrincipalPct: consts.DefaultPrincipalSharePct,
		PenaltyPct:   consts.DefaultPenaltySharePct,
	}
}

// OrderFromModel converts a persisted RepaymentOrders document.
func OrderFromModel(m *models.RepaymentOrders) Order {
	return Order{
		InterestPct:  m.InterestPct,
		PrincipalPct: m.PrincipalPct,
		PenaltyPct:   m.PenaltyPct,
	}
}

// Valid reports whether the rates are non-negative and sum to 100. Callers
// fall back to DefaultOrder for invalid persisted configurations.
func (o Order) Valid() bool {
	if o.InterestPct < 0 || o.PrincipalPct < 0 || o.PenaltyPct < 0 {
		return false
	}
	return o.InterestPct+o.PrincipalPct+o.PenaltyPct == 100
}

// Split divides an aggregate payment into component buckets. Interest and
// penalty are rounded per rate; principal absorbs the residue so the buckets
// always sum exactly to total. Tax is never funded by the split, it only
// arises from the VAT recomputation during the walk (or from an explicit
// pre-split).
func (o Order) Split(total money.Money) ComponentAmounts {
	interest := total.MulPct(o.InterestPct)
	penalty := total.MulPct(o.PenaltyPct)
	principal := total.Sub(interest).Sub(penalty)

	return ComponentAmounts{
		Interest:  interest,
		Principal: principal,
		Tax:       money.Zero(),
		Penalty:   penalty,
	}
}
