// Package analytics derives seller metrics by joining orders against the
// seller's product set. Aggregation happens at line-item granularity: a
// mixed-seller order contributes only its matching lines to each seller.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

const (
	topProductsLimit = 5
	recentSalesLimit = 10
)

// Aggregate recomputes SellerMetrics from scratch. No incremental state is
// kept because the order and product lists refresh independently upstream.
func Aggregate(sellerID string, products []domain.Product, orders []domain.Order) domain.SellerMetrics {
	monthlyViews := 0
	for _, p := range products {
		if p.SellerID == sellerID {
			monthlyViews += p.Views
		}
	}

	totalSales := 0
	totalRevenue := decimal.Zero
	statByProduct := make(map[string]*domain.ProductStat)
	var statOrder []string
	var sales []domain.SaleRecord

	for _, order := range orders {
		for _, item := range order.Items {
			// match on the seller id snapshotted into the line item, never on
			// current product ownership: a product sold and later transferred
			// must not count toward both sellers
			if item.SellerID != sellerID {
				continue
			}

			amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			totalSales += item.Quantity
			totalRevenue = totalRevenue.Add(amount)

			stat, ok := statByProduct[item.ProductID]
			if !ok {
				stat = &domain.ProductStat{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					Revenue:     decimal.Zero,
				}
				statByProduct[item.ProductID] = stat
				statOrder = append(statOrder, item.ProductID)
			}
			stat.Revenue = stat.Revenue.Add(amount)
			stat.Sales += item.Quantity

			sales = append(sales, domain.SaleRecord{
				OrderID:     order.ID,
				OrderDate:   order.CreatedAt,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Amount:      amount.Round(2),
				OrderStatus: order.Status,
			})
		}
	}

	// rank by revenue desc, ties by sales desc, then stable input order
	top := make([]domain.ProductStat, 0, len(statOrder))
	for _, id := range statOrder {
		stat := statByProduct[id]
		stat.Revenue = stat.Revenue.Round(2)
		top = append(top, *stat)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if !top[i].Revenue.Equal(top[j].Revenue) {
			return top[i].Revenue.GreaterThan(top[j].Revenue)
		}
		return top[i].Sales > top[j].Sales
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].OrderDate.After(sales[j].OrderDate)
	})
	if len(sales) > recentSalesLimit {
		sales = sales[:recentSalesLimit]
	}

	// The max(views, 1) floor replicates the upstream behavior: a seller
	// with zero views and one sale reads as a 100% conversion rate instead
	// of dividing by zero.
	views := monthlyViews
	if views < 1 {
		views = 1
	}
	conversionRate := float64(totalSales) / float64(views) * 100

	return domain.SellerMetrics{
		SellerID:       sellerID,
		TotalSales:     totalSales,
		TotalRevenue:   totalRevenue.Round(2),
		MonthlyViews:   monthlyViews,
		ConversionRate: conversionRate,
		TopProducts:    top,
		RecentSales:    sales,
	}
}
