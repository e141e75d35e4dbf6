package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Money struct {
	Amount   string `json:"amount" db:"amount"`
	Currency string `json:"currency" db:"currency"`
}

// Subunits converts the amount to the provider's integer subunit
// (kobo for NGN, cents otherwise).
func (m Money) Subunits() (int64, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q: %w", m.Amount, err)
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// MoneyFromSubunits is the inverse of Subunits.
func MoneyFromSubunits(subunits int64, currency string) Money {
	return Money{
		Amount:   decimal.NewFromInt(subunits).Div(decimal.NewFromInt(100)).StringFixed(2),
		Currency: currency,
	}
}
