package cache

import (
	"context"
	"errors"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

// SnapshotCache holds backend order/product snapshots so repeated analytics
// runs do not hammer the backend between refreshes.
type SnapshotCache interface {
	GetOrders(ctx context.Context) ([]domain.Order, error)
	SetOrders(ctx context.Context, orders []domain.Order) error
	GetProducts(ctx context.Context, sellerID string) ([]domain.Product, error)
	SetProducts(ctx context.Context, sellerID string, products []domain.Product) error
	Invalidate(ctx context.Context, sellerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
