package money

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// scale is the number of decimal digits every Money value carries.
const scale = 2

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// Money is a fixed-precision monetary amount. All arithmetic stays in
// decimal space; float64 only appears at construction and display edges.
type Money struct {
	d decimal.Decimal
}

func Zero() Money {
	return Money{d: decimal.Zero}
}

func FromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f).Round(scale)}
}

func FromInt(i int64) Money {
	return Money{d: decimal.NewFromInt(i)}
}

func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d: d.Round(scale)}, nil
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(scale)}
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub subtracts without clamping; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// SubFloor subtracts saturating at zero.
func (m Money) SubFloor(o Money) Money {
	r := m.d.Sub(o.d)
	if r.IsNegative() {
		return Zero()
	}
	return Money{d: r}
}

// Min returns the smaller of the two amounts.
func (m Money) Min(o Money) Money {
	if m.d.LessThan(o.d) {
		return m
	}
	return o
}

// MulPct multiplies by a whole percentage, rounded to scale.
func (m Money) MulPct(pct int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(pct)).Div(hundred).Round(scale)}
}

// MulBps multiplies by a basis-point rate, rounded to scale.
func (m Money) MulBps(bps int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(bps)).Div(tenThousand).Round(scale)}
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

func (m Money) LessThanOrEqual(o Money) bool {
	return m.d.LessThanOrEqual(o.d)
}

func (m Money) GreaterThan(o Money) bool {
	return m.d.GreaterThan(o.d)
}

func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Float64() float64 {
	return m.d.InexactFloat64()
}

func (m Money) String() string {
	return m.d.StringFixed(scale)
}

// JSON as a fixed-scale numeric string, matching the persisted form.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// BSON as a string to keep amounts exact in MongoDB.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(m.String())
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
