package analytics

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/cache"
	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

type Gateway interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListSellerProducts(ctx context.Context, sellerID string) ([]domain.Product, error)
}

// Service fetches the order and product snapshots a metrics run needs and
// delegates the math to Aggregate. Snapshots are cached; the aggregation
// itself is recomputed on every call.
type Service struct {
	gw    Gateway
	cache cache.SnapshotCache
	sfg   singleflight.Group // prevents refresh stampede per seller
}

func NewService(gw Gateway, snapshotCache cache.SnapshotCache) *Service {
	return &Service{
		gw:    gw,
		cache: snapshotCache,
	}
}

// SellerMetrics computes the metrics for one seller. refresh forces a
// backend fetch (pull-to-refresh semantics) and repopulates the snapshots.
func (s *Service) SellerMetrics(ctx context.Context, sellerID string, refresh bool) (domain.SellerMetrics, error) {
	v, err, _ := s.sfg.Do(sellerID, func() (interface{}, error) {
		products, orders, err := s.snapshots(ctx, sellerID, refresh)
		if err != nil {
			return nil, err
		}
		return Aggregate(sellerID, products, orders), nil
	})
	if err != nil {
		return domain.SellerMetrics{}, err
	}
	return v.(domain.SellerMetrics), nil
}

func (s *Service) snapshots(ctx context.Context, sellerID string, refresh bool) ([]domain.Product, []domain.Order, error) {
	if !refresh {
		products, errP := s.cache.GetProducts(ctx, sellerID)
		orders, errO := s.cache.GetOrders(ctx)
		if errP == nil && errO == nil {
			return products, orders, nil
		}
		if (errP != nil && !errors.Is(errP, cache.ErrCacheMiss)) ||
			(errO != nil && !errors.Is(errO, cache.ErrCacheMiss)) {
			// log cache errors but continue to the backend
			log.Printf("snapshot cache error: products=%v orders=%v", errP, errO)
		}
	}

	products, err := s.gw.ListSellerProducts(ctx, sellerID)
	if err != nil {
		return nil, nil, err
	}
	orders, err := s.gw.ListOrders(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := s.cache.SetProducts(ctx, sellerID, products); err != nil {
		log.Printf("cache set products error: %v", err)
	}
	if err := s.cache.SetOrders(ctx, orders); err != nil {
		log.Printf("cache set orders error: %v", err)
	}

	return products, orders, nil
}
