package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.get(ctx, ordersKey(), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r RedisCache) SetOrders(ctx context.Context, orders []domain.Order) error {
	return r.set(ctx, ordersKey(), orders)
}

func (r RedisCache) GetProducts(ctx context.Context, sellerID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.get(ctx, productsKey(sellerID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, sellerID string, products []domain.Product) error {
	return r.set(ctx, productsKey(sellerID), products)
}

func (r RedisCache) Invalidate(ctx context.Context, sellerID string) error {
	if err := r.client.Del(ctx, ordersKey(), productsKey(sellerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) get(ctx context.Context, key string, out interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err2 := json.Unmarshal(data, out); err2 != nil {
		return fmt.Errorf("unmarshal snapshot failed: %w", err2)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}

	// jitter spreads expirations so refreshes do not align
	jitter := time.Duration(rand.Intn(60)) * time.Second
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func ordersKey() string {
	return "analytics:orders"
}

func productsKey(sellerID string) string {
	return fmt.Sprintf("analytics:products:%s", sellerID)
}
