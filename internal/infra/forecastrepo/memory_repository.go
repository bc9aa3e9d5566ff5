package forecastrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
)

// MemoryRepository keeps the latest batch per product in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	batches map[string]forecast.Batch
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{batches: make(map[string]forecast.Batch)}
}

// ReplaceForecast overwrites the product's previous batch.
func (r *MemoryRepository) ReplaceForecast(_ context.Context, shopID string, batch forecast.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	points := make([]forecast.StoredPoint, len(batch.Points))
	copy(points, batch.Points)
	batch.Points = points
	r.batches[key(shopID, batch.ProductID)] = batch
	return nil
}

// LatestForecast returns the stored batch for the product.
func (r *MemoryRepository) LatestForecast(_ context.Context, shopID, productID string) (forecast.Batch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[key(shopID, productID)]
	if !ok {
		return forecast.Batch{}, false, nil
	}
	points := make([]forecast.StoredPoint, len(batch.Points))
	copy(points, batch.Points)
	batch.Points = points
	return batch, true, nil
}

// PurgeShop drops every batch owned by the shop.
func (r *MemoryRepository) PurgeShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := shopID + "\x00"
	for k := range r.batches {
		if strings.HasPrefix(k, prefix) {
			delete(r.batches, k)
		}
	}
	return nil
}

func key(shopID, productID string) string {
	return shopID + "\x00" + productID
}

var (
	_ forecast.Repository = (*MemoryRepository)(nil)
	_ auth.ShopDataPurger = (*MemoryRepository)(nil)
)
