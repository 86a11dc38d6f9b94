package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func decimalFromDB(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
	}
	return d, nil
}
