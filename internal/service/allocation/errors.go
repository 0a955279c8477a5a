package allocation

import (
	"errors"
	"fmt"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"
)

// Validation errors are caller-correctable: allocation is not attempted and
// no partial state is produced.
var (
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrLoanClosed         = errors.New("loan is closed, no further allocations accepted")
	ErrNegativeComponent  = errors.New("payment component must not be negative")
)

// SplitMismatchError reports a pre-split whose component sum does not equal
// the authorized payment total.
type SplitMismatchError struct {
	SplitTotal money.Money
	Total      money.Money
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("payment split sums to %s, expected total %s", e.SplitTotal, e.Total)
}

// ComponentExceedsBalanceError reports a requested component amount larger
// than the loan's remaining balance for that component.
type ComponentExceedsBalanceError struct {
	Component consts.Component
	Requested money.Money
	Available money.Money
}

func (e *ComponentExceedsBalanceError) Error() string {
	return fmt.Sprintf("requested %s %s exceeds loan balance %s", e.Component, e.Requested, e.Available)
}

// ConsistencyError means an invariant broke mid-walk. These are defects, not
// inputs to tolerate; the engine fails closed so the surrounding transaction
// rolls back instead of persisting a clamped state.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return "allocation consistency violation: " + e.Detail
}

// IsValidationError reports whether the error is caller-correctable.
func IsValidationError(err error) bool {
	var split *SplitMismatchError
	var exceeds *ComponentExceedsBalanceError
	return errors.Is(err, ErrNonPositivePayment) ||
		errors.Is(err, ErrLoanClosed) ||
		errors.Is(err, ErrNegativeComponent) ||
		errors.As(err, &split) ||
		errors.As(err, &exceeds)
}
