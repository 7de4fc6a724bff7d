package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// MoneyInput is the wire representation of an amount+currency pair.
type MoneyInput struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,currency"`
}

// ToDomain converts through the fallible Money constructor.
func (m MoneyInput) ToDomain() (domain.Money, error) {
	return domain.NewMoney(m.Amount, m.Currency)
}

// MoneyResponse mirrors MoneyInput for responses.
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ToMoneyResponse converts a domain Money into its response shape.
func ToMoneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}

// ToMoneyResponsePtr converts an optional Money.
func ToMoneyResponsePtr(m *domain.Money) *MoneyResponse {
	if m == nil {
		return nil
	}
	r := ToMoneyResponse(*m)
	return &r
}
