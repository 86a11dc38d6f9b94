package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

func product(id, sellerID string, views int) domain.Product {
	return domain.Product{ID: id, Name: "product " + id, SellerID: sellerID, Views: views}
}

func lineItem(productID, sellerID, price string, qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: "product " + productID,
		SellerID:    sellerID,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func TestAggregate_MixedSellerOrderSplitsAtLineItems(t *testing.T) {
	order := domain.Order{
		ID:        "ord-1",
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
		Items: []domain.OrderItem{
			lineItem("p1", "alice", "100.00", 2), // 200.00 for alice
			lineItem("p2", "bob", "50.00", 1),    // 50.00 for bob
		},
		TotalAmount: decimal.RequireFromString("250.00"),
	}
	products := []domain.Product{product("p1", "alice", 10), product("p2", "bob", 5)}

	alice := Aggregate("alice", products, []domain.Order{order})
	bob := Aggregate("bob", products, []domain.Order{order})

	assert.Equal(t, 2, alice.TotalSales)
	assert.Equal(t, "200.00", alice.TotalRevenue.StringFixed(2))
	assert.Equal(t, 1, bob.TotalSales)
	assert.Equal(t, "50.00", bob.TotalRevenue.StringFixed(2))

	// per-seller revenue sums back to the order's grand total
	combined := alice.TotalRevenue.Add(bob.TotalRevenue)
	assert.True(t, combined.Equal(order.TotalAmount))
}

func TestAggregate_AllStatusesCount(t *testing.T) {
	orders := []domain.Order{
		{ID: "o1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{lineItem("p1", "alice", "10.00", 1)}},
		{ID: "o2", Status: domain.OrderStatusCancelled, Items: []domain.OrderItem{lineItem("p1", "alice", "10.00", 2)}},
		{ID: "o3", Status: domain.OrderStatusCompleted, Items: []domain.OrderItem{lineItem("p1", "alice", "10.00", 3)}},
	}

	metrics := Aggregate("alice", []domain.Product{product("p1", "alice", 0)}, orders)

	assert.Equal(t, 6, metrics.TotalSales)
	assert.Equal(t, "60.00", metrics.TotalRevenue.StringFixed(2))
}

func TestAggregate_ConversionRateFloorsViewsAtOne(t *testing.T) {
	// 0 views and 1 sale reads as 100%, not a division error
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{lineItem("p1", "alice", "10.00", 1)}},
	}

	metrics := Aggregate("alice", []domain.Product{product("p1", "alice", 0)}, orders)

	assert.Equal(t, 0, metrics.MonthlyViews)
	assert.Equal(t, float64(100), metrics.ConversionRate)
}

func TestAggregate_ConversionRateWithViews(t *testing.T) {
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{lineItem("p1", "alice", "10.00", 5)}},
	}

	metrics := Aggregate("alice", []domain.Product{product("p1", "alice", 200)}, orders)

	assert.Equal(t, 200, metrics.MonthlyViews)
	assert.InDelta(t, 2.5, metrics.ConversionRate, 1e-9)
}

func TestAggregate_TopProductsRankedByRevenueThenSales(t *testing.T) {
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{
			lineItem("p1", "alice", "10.00", 10), // revenue 100, sales 10
			lineItem("p2", "alice", "100.00", 1), // revenue 100, sales 1
			lineItem("p3", "alice", "300.00", 1), // revenue 300, sales 1
		}},
	}

	metrics := Aggregate("alice", nil, orders)

	require.Len(t, metrics.TopProducts, 3)
	assert.Equal(t, "p3", metrics.TopProducts[0].ProductID)
	// equal revenue: higher sales count first
	assert.Equal(t, "p1", metrics.TopProducts[1].ProductID)
	assert.Equal(t, "p2", metrics.TopProducts[2].ProductID)
}

func TestAggregate_TopProductsTieBreaksByInputOrder(t *testing.T) {
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{
			lineItem("p1", "alice", "10.00", 2),
			lineItem("p2", "alice", "10.00", 2),
		}},
	}

	metrics := Aggregate("alice", nil, orders)

	require.Len(t, metrics.TopProducts, 2)
	assert.Equal(t, "p1", metrics.TopProducts[0].ProductID)
	assert.Equal(t, "p2", metrics.TopProducts[1].ProductID)
}

func TestAggregate_TopProductsCappedAtFive(t *testing.T) {
	var items []domain.OrderItem
	for i := 0; i < 8; i++ {
		items = append(items, lineItem(fmt.Sprintf("p%d", i), "alice", fmt.Sprintf("%d.00", 10+i), 1))
	}
	orders := []domain.Order{{ID: "o1", Items: items}}

	metrics := Aggregate("alice", nil, orders)

	assert.Len(t, metrics.TopProducts, 5)
	assert.Equal(t, "p7", metrics.TopProducts[0].ProductID)
}

func TestAggregate_RecentSalesSortedAndCapped(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var orders []domain.Order
	for i := 0; i < 12; i++ {
		orders = append(orders, domain.Order{
			ID:        fmt.Sprintf("o%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Items:     []domain.OrderItem{lineItem("p1", "alice", "10.00", 1)},
		})
	}

	metrics := Aggregate("alice", nil, orders)

	require.Len(t, metrics.RecentSales, 10)
	assert.Equal(t, "o11", metrics.RecentSales[0].OrderID)
	assert.Equal(t, "o2", metrics.RecentSales[9].OrderID)
}

func TestAggregate_OwnershipChangeDoesNotDoubleCount(t *testing.T) {
	// p1 was bob's when the order was placed; alice owns it now. The sale
	// stays attributed to the line item's snapshotted seller only.
	orders := []domain.Order{{
		ID:          "o1",
		Items:       []domain.OrderItem{lineItem("p1", "bob", "10.00", 1)},
		TotalAmount: decimal.RequireFromString("10.00"),
	}}
	products := []domain.Product{product("p1", "alice", 40)}

	alice := Aggregate("alice", products, orders)
	bob := Aggregate("bob", nil, orders)

	assert.Equal(t, 0, alice.TotalSales)
	assert.True(t, alice.TotalRevenue.IsZero())
	// current ownership still drives the views counter
	assert.Equal(t, 40, alice.MonthlyViews)
	assert.Equal(t, 1, bob.TotalSales)
	// revenue across sellers still sums to the order's grand total
	combined := alice.TotalRevenue.Add(bob.TotalRevenue)
	assert.True(t, combined.Equal(orders[0].TotalAmount))
}

func TestAggregate_NoMatchesYieldsEmptyMetrics(t *testing.T) {
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{lineItem("p1", "bob", "10.00", 1)}},
	}

	metrics := Aggregate("alice", []domain.Product{product("p9", "alice", 40)}, orders)

	assert.Equal(t, 0, metrics.TotalSales)
	assert.True(t, metrics.TotalRevenue.IsZero())
	assert.Equal(t, 40, metrics.MonthlyViews)
	assert.Equal(t, float64(0), metrics.ConversionRate)
	assert.Empty(t, metrics.TopProducts)
	assert.Empty(t, metrics.RecentSales)
}
