package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	VND Currency = "VND"
	USD Currency = "USD"
)

// DefaultCurrency applies wherever an amount arrives without a
// currency, such as database scans.
const DefaultCurrency = VND

// VND has no minor unit. COD and fee amounts are whole dong.
const vndPlaces = 0

// Money pairs a decimal amount with a currency. It is immutable;
// every operation returns a new value.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney builds a Money in an explicit currency.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewVND builds a VND amount rounded to whole dong.
func NewVND(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(vndPlaces), currency: VND}
}

// NewVNDFromInt builds a VND amount from whole dong.
func NewVNDFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: VND}
}

// NewVNDFromFloat builds a VND amount from a float, rounded to whole
// dong.
func NewVNDFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount).Round(vndPlaces), currency: VND}
}

// Zero is the zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroVND is the zero amount in VND.
func ZeroVND() Money {
	return Zero(VND)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// sameCurrency guards arithmetic and comparison against mixing
// currencies.
func (m Money) sameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

// Add returns the sum. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for callers that have already checked currencies.
// Panics on a mismatch.
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MustSubtract is Subtract for callers that have already checked
// currencies. Panics on a mismatch.
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Negate flips the sign.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs drops the sign.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Round rounds to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) compare(other Money) (int, error) {
	if err := m.sameCurrency("compare", other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// LessThan reports m < other. Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp < 0, err
}

// GreaterThan reports m > other. Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp > 0, err
}

// CalculatePercentage takes percent of the amount, rounded to whole
// dong. Used for percentage based fees and promotion discounts.
func (m Money) CalculatePercentage(percent decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(vndPlaces),
		currency: m.currency,
	}
}

// Clamp bounds the amount to [min, max]. A nil bound leaves that side
// open. Bounds in another currency are ignored.
func (m Money) Clamp(min, max *Money) Money {
	result := m
	if min != nil && min.currency == m.currency && result.amount.LessThan(min.amount) {
		result = *min
	}
	if max != nil && max.currency == m.currency && result.amount.GreaterThan(max.amount) {
		result = *max
	}
	return result
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(vndPlaces), m.currency)
}

// Float64 converts the amount, possibly losing precision. Only for
// display and export.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// IntPart returns the whole dong part of the amount.
func (m Money) IntPart() int64 {
	return m.amount.IntPart()
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Value stores only the amount; columns are single-currency.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads the amount from a numeric column. The currency falls back
// to DefaultCurrency unless already set on the receiver.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	amount, err := decimalFromScan(value)
	if err != nil {
		return err
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

func decimalFromScan(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal value: %w", err)
		}
		return d, nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal value: %w", err)
		}
		return d, nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("cannot scan %T into Money", value)
	}
}
