package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SellerID string          `json:"seller_id"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Views    int             `json:"views"`
}
