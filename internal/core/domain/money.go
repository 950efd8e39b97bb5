package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "PHP"

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrAmountOverflow   = errors.New("amount out of range")
)

var (
	minAmount = decimal.NewFromInt(math.MinInt64)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// Money is an amount in minor units (centavos for PHP) tagged with its
// currency. The zero value is a zero amount in DefaultCurrency.
type Money struct {
	amount   int64
	currency string
}

func New(minor int64, currency string) Money {
	return Money{amount: minor, currency: normalizeCurrency(currency)}
}

func Zero(currency string) Money {
	return New(0, currency)
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func (m Money) Amount() int64 { return m.amount }

func (m Money) Currency() string { return normalizeCurrency(m.currency) }

func (m Money) IsZero() bool { return m.amount == 0 }

func (m Money) IsNegative() bool { return m.amount < 0 }

func (m Money) sameCurrency(o Money) error {
	if m.Currency() != o.Currency() {
		return &ValidationError{
			Field:  "currency",
			Reason: fmt.Sprintf("%s and %s cannot be combined", m.Currency(), o.Currency()),
			Err:    ErrCurrencyMismatch,
		}
	}
	return nil
}

func overflow(op string) error {
	return &ValidationError{Field: "amount", Reason: op + " is out of range", Err: ErrAmountOverflow}
}

func fromDecimal(d decimal.Decimal, currency, op string) (Money, error) {
	if d.LessThan(minAmount) || d.GreaterThan(maxAmount) {
		return Money{}, overflow(op)
	}
	return New(d.IntPart(), currency), nil
}

func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	sum := m.amount + o.amount
	if (o.amount > 0 && sum < m.amount) || (o.amount < 0 && sum > m.amount) {
		return Money{}, overflow("sum")
	}
	return New(sum, m.Currency()), nil
}

// Subtract fails with NegativeResultError when o is larger than m.
func (m Money) Subtract(o Money) (Money, error) {
	diff, err := m.SubtractSigned(o)
	if err != nil {
		return Money{}, err
	}
	if diff.IsNegative() {
		return Money{}, &NegativeResultError{Operation: "subtract", Minuend: m, Subtrahend: o}
	}
	return diff, nil
}

// SubtractSigned is Subtract for deltas that are allowed to go below zero.
func (m Money) SubtractSigned(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	diff := m.amount - o.amount
	if (o.amount > 0 && diff > m.amount) || (o.amount < 0 && diff < m.amount) {
		return Money{}, overflow("difference")
	}
	return New(diff, m.Currency()), nil
}

func (m Money) MultiplyByQuantity(q int) (Money, error) {
	p := decimal.NewFromInt(m.amount).Mul(decimal.NewFromInt(int64(q)))
	return fromDecimal(p, m.Currency(), "product")
}

// Percentage returns m * num / den rounded half away from zero.
func (m Money) Percentage(num, den int64) (Money, error) {
	if den <= 0 {
		return Money{}, &ValidationError{Field: "rate", Reason: "denominator must be positive"}
	}
	p := decimal.NewFromInt(m.amount).Mul(decimal.NewFromInt(num)).
		DivRound(decimal.NewFromInt(den), 0)
	return fromDecimal(p, m.Currency(), "percentage")
}

func (m Money) Equal(o Money) bool {
	return m.amount == o.amount && m.Currency() == o.Currency()
}

func (m Money) Compare(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	switch {
	case m.amount < o.amount:
		return -1, nil
	case m.amount > o.amount:
		return 1, nil
	}
	return 0, nil
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.Currency()})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	*m = New(v.Amount, v.Currency)
	return nil
}
