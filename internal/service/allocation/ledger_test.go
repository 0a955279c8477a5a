package allocation

import (
	"testing"
	"time"

	"repayment-worker/internal/pkg/consts"
	"repayment-worker/internal/pkg/money"
	"repayment-worker/internal/pkg/store/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildRecord(t *testing.T) {
	loanID := primitive.NewObjectID()
	instID := primitive.NewObjectID()
	effective := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	req := PaymentRequest{
		PaymentID:     "PAY-77",
		LoanID:        loanID,
		Channel:       consts.ChannelSalaryOrder,
		EffectiveDate: effective,
	}
	inst := models.Installments{
		ID:        instID,
		Sequence:  3,
		Interest:  money.Zero(),
		Principal: money.FromInt(120),
		Tax:       money.Zero(),
		Penalty:   money.FromInt(50),
	}
	pre := ComponentAmounts{
		Interest:  money.FromInt(275),
		Principal: money.FromInt(945),
		Tax:       money.FromFloat(41.25),
		Penalty:   money.FromInt(50),
	}
	applied := ComponentAmounts{
		Interest:  money.FromInt(275),
		Principal: money.FromInt(825),
		Tax:       money.FromFloat(41.25),
	}

	record := buildRecord(req, inst, pre, applied)

	assert.Equal(t, "PAY-77", record.PaymentID)
	assert.Equal(t, loanID, record.LoanID)
	assert.Equal(t, instID, record.InstallmentID)
	assert.Equal(t, int32(3), record.Sequence)
	assert.Equal(t, consts.ChannelSalaryOrder, record.Channel)
	assert.Equal(t, effective, record.EffectiveDate)

	assert.True(t, record.InterestApplied.Equal(money.FromInt(275)))
	assert.True(t, record.PrincipalApplied.Equal(money.FromInt(825)))
	assert.True(t, record.TaxApplied.Equal(money.FromFloat(41.25)))
	assert.True(t, record.PenaltyApplied.IsZero())
	assert.True(t, record.TotalApplied.Equal(money.FromFloat(1141.25)))

	// Before comes from the pre-allocation copy, after from the mutated row.
	assert.True(t, record.InterestDueBefore.Equal(money.FromInt(275)))
	assert.True(t, record.InterestDueAfter.IsZero())
	assert.True(t, record.PrincipalDueBefore.Equal(money.FromInt(945)))
	assert.True(t, record.PrincipalDueAfter.Equal(money.FromInt(120)))
	assert.True(t, record.TaxDueBefore.Equal(money.FromFloat(41.25)))
	assert.True(t, record.TaxDueAfter.IsZero())
	assert.True(t, record.PenaltyDueBefore.Equal(money.FromInt(50)))
	assert.True(t, record.PenaltyDueAfter.Equal(money.FromInt(50)))
}

func TestBuildRecordIsDeterministic(t *testing.T) {
	req := PaymentRequest{
		PaymentID:     "PAY-88",
		LoanID:        testLoanID,
		Channel:       consts.ChannelRefund,
		EffectiveDate: testEffectiveDate(),
	}
	inst := models.Installments{ID: testInstID1, Sequence: 1, Interest: money.Zero(), Principal: money.Zero()}
	pre := ComponentAmounts{Interest: money.FromInt(100), Principal: money.FromInt(400)}
	applied := ComponentAmounts{Interest: money.FromInt(100), Principal: money.FromInt(400)}

	first := buildRecord(req, inst, pre, applied)
	second := buildRecord(req, inst, pre, applied)

	assert.Equal(t, first, second)
}

func TestFinalizeRecords(t *testing.T) {
	records := []models.AllocationRecords{
		{PaymentID: "PAY-1", Sequence: 1},
		{PaymentID: "PAY-1", Sequence: 2},
		{PaymentID: "PAY-1", Sequence: 3},
	}

	finalizeRecords(records, money.FromFloat(8858.75))

	for _, record := range records {
		assert.True(t, record.LoanBalanceAfter.Equal(money.FromFloat(8858.75)), "sequence %d", record.Sequence)
	}
}

func TestFinalizeRecordsEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		finalizeRecords(nil, money.Zero())
	})
}
