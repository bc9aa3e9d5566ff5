package shoprepo

import (
	"context"
	"sync"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

// MemoryRepository provides an in-memory shop store for tests/dev.
type MemoryRepository struct {
	mu          sync.RWMutex
	shops       map[string]auth.Shop
	domainIndex map[string]string
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		shops:       make(map[string]auth.Shop),
		domainIndex: make(map[string]string),
	}
}

// UpsertShop stores the shop, keeping the first install time and id for a known domain.
func (r *MemoryRepository) UpsertShop(_ context.Context, shop auth.Shop) (auth.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.domainIndex[shop.Domain]; ok {
		existing := r.shops[id]
		existing.AccessToken = shop.AccessToken
		existing.Scope = shop.Scope
		existing.UpdatedAt = shop.UpdatedAt
		r.shops[id] = existing
		return existing, nil
	}
	r.shops[shop.ID] = shop
	r.domainIndex[shop.Domain] = shop.ID
	return shop, nil
}

// GetShopByDomain returns a shop by domain.
func (r *MemoryRepository) GetShopByDomain(_ context.Context, domain string) (auth.Shop, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.domainIndex[domain]; ok {
		return r.shops[id], true, nil
	}
	return auth.Shop{}, false, nil
}

// DeleteShop removes the shop.
func (r *MemoryRepository) DeleteShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop, ok := r.shops[shopID]; ok {
		delete(r.domainIndex, shop.Domain)
		delete(r.shops, shopID)
	}
	return nil
}

var _ auth.ShopRepository = (*MemoryRepository)(nil)
