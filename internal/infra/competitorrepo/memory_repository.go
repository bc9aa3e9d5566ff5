package competitorrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

type record struct {
	shopID     string
	competitor insight.Competitor
}

// MemoryRepository provides an in-memory competitor store for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]record
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]record)}
}

// ListCompetitors returns the product's competitors, most recently checked first.
func (r *MemoryRepository) ListCompetitors(_ context.Context, shopID, productID string) ([]insight.Competitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]insight.Competitor, 0)
	for _, rec := range r.items {
		if rec.shopID == shopID && rec.competitor.ProductID == productID {
			out = append(out, rec.competitor)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastChecked.Equal(out[j].LastChecked) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastChecked.After(out[j].LastChecked)
	})
	return out, nil
}

// CreateCompetitor stores the listing.
func (r *MemoryRepository) CreateCompetitor(_ context.Context, shopID string, c insight.Competitor) (insight.Competitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = record{shopID: shopID, competitor: c}
	return c, nil
}

// DeleteCompetitor removes a listing owned by the shop.
func (r *MemoryRepository) DeleteCompetitor(_ context.Context, shopID, competitorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[competitorID]
	if !ok || rec.shopID != shopID {
		return false, nil
	}
	delete(r.items, competitorID)
	return true, nil
}

// PurgeShop drops every listing owned by the shop.
func (r *MemoryRepository) PurgeShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.items {
		if rec.shopID == shopID {
			delete(r.items, id)
		}
	}
	return nil
}

var (
	_ insight.CompetitorRepository = (*MemoryRepository)(nil)
	_ auth.ShopDataPurger          = (*MemoryRepository)(nil)
)
