package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money is an immutable amount+currency pair. Every money-bearing field in
// the domain is a Money; arithmetic across currencies always fails rather
// than converting. Construct via NewMoney so the currency code is validated.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a Money after normalizing the currency code to uppercase
// and validating it is a three-letter code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if !currencyCodePattern.MatchString(code) {
		return Money{}, fmt.Errorf("%w: invalid currency code %q", apperrors.ErrValidation, currency)
	}
	return Money{amount: amount, currency: code}, nil
}

// MustMoney is a convenience constructor for statically known currency codes.
// It panics on an invalid code and is intended for tests and fixtures only.
func MustMoney(amount decimal.Decimal, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the normalized three-letter currency code.
func (m Money) Currency() string { return m.currency }

// SameCurrency reports whether both amounts share one currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

// Add returns m+other, failing on a currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", apperrors.ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m-other, failing on a currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", apperrors.ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul returns m scaled by factor, keeping the currency.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Equal reports amount and currency equality.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// GreaterThan compares amounts; currencies must match for the result to be
// meaningful, so mismatches report false.
func (m Money) GreaterThan(other Money) bool {
	return m.SameCurrency(other) && m.amount.GreaterThan(other.amount)
}

// LessThan compares amounts; mismatched currencies report false.
func (m Money) LessThan(other Money) bool {
	return m.SameCurrency(other) && m.amount.LessThan(other.amount)
}

// String renders as "123.45 USD".
func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON renders the amount/currency pair.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON parses and re-validates through NewMoney.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// sameCurrencyAll reports whether every given Money shares the given currency.
func sameCurrencyAll(currency string, amounts ...Money) bool {
	for _, a := range amounts {
		if a.currency != currency {
			return false
		}
	}
	return true
}
