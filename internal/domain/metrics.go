package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStat is one row of a seller's top-product ranking.
type ProductStat struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Sales       int             `json:"sales"`
}

// SaleRecord is a single sold line item, flattened out of its order.
type SaleRecord struct {
	OrderID     string          `json:"order_id"`
	OrderDate   time.Time       `json:"order_date"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	OrderStatus OrderStatus     `json:"order_status"`
}

// SellerMetrics is recomputed from orders + products on every aggregation
// run and never persisted as a source of truth.
type SellerMetrics struct {
	SellerID       string          `json:"seller_id"`
	TotalSales     int             `json:"total_sales"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	MonthlyViews   int             `json:"monthly_views"`
	ConversionRate float64         `json:"conversion_rate"`
	TopProducts    []ProductStat   `json:"top_products"`
	RecentSales    []SaleRecord    `json:"recent_sales"`
}
