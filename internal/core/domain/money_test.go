package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

func usd(f float64) domain.Money {
	return domain.MustMoney(decimal.NewFromFloat(f), "USD")
}

func eur(f float64) domain.Money {
	return domain.MustMoney(decimal.NewFromFloat(f), "EUR")
}

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  bool
		wantCode string
	}{
		{name: "valid uppercase", currency: "USD", wantCode: "USD"},
		{name: "lowercase is normalized", currency: "usd", wantCode: "USD"},
		{name: "surrounding whitespace trimmed", currency: " eur ", wantCode: "EUR"},
		{name: "too short", currency: "US", wantErr: true},
		{name: "too long", currency: "USDT", wantErr: true},
		{name: "empty", currency: "", wantErr: true},
		{name: "digits rejected", currency: "U5D", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.NewMoney(decimal.NewFromInt(10), tt.currency)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, m.Currency())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	sum, err := usd(100).Add(usd(25.5))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd(125.5)))

	diff, err := usd(100).Sub(usd(30))
	require.NoError(t, err)
	assert.True(t, diff.Equal(usd(70)))

	_, err = usd(100).Add(eur(1))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = usd(100).Sub(eur(1))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestMoney_Comparisons(t *testing.T) {
	assert.True(t, usd(10).GreaterThan(usd(5)))
	assert.False(t, usd(10).GreaterThan(eur(5)), "cross-currency comparison must not report true")
	assert.True(t, usd(-1).IsNegative())
	assert.True(t, usd(0).IsZero())
	assert.True(t, usd(3).LessThan(usd(4)))
	assert.False(t, usd(3).LessThan(eur(4)))
}
