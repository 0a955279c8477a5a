package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubFloorSaturatesAtZero(t *testing.T) {
	a := FromFloat(10)
	b := FromFloat(25.50)

	assert.True(t, a.SubFloor(b).IsZero())
	assert.Equal(t, "15.50", b.SubFloor(a).String())
}

func TestMinPicksSmaller(t *testing.T) {
	a := FromFloat(100)
	b := FromFloat(99.99)

	assert.Equal(t, b, a.Min(b))
	assert.Equal(t, b, b.Min(a))
}

func TestMulPctRounds(t *testing.T) {
	m := FromFloat(33.33)

	// 25% of 33.33 = 8.3325 -> 8.33
	assert.Equal(t, "8.33", m.MulPct(25).String())
	assert.Equal(t, "0.00", m.MulPct(0).String())
}

func TestMulBpsVATRate(t *testing.T) {
	interest := FromFloat(5000)

	// 1500 bps = 15%
	assert.Equal(t, "750.00", interest.MulBps(1500).String())
}

func TestFromStringRejectsGarbage(t *testing.T) {
	_, err := FromString("not-a-number")
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	m := FromFloat(1234.56)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"1234.56"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))
}

func TestComparisons(t *testing.T) {
	a := FromFloat(1)
	b := FromFloat(2)

	assert.True(t, a.LessThan(b))
	assert.True(t, a.LessThanOrEqual(a))
	assert.True(t, b.GreaterThan(a))
	assert.False(t, a.IsNegative())
	assert.True(t, a.Sub(b).IsNegative())
}
