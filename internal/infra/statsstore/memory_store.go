package statsstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

type statsKey struct {
	shopID    string
	productID string
	period    insight.Period
}

type statsRecord struct {
	payload   insight.ProductStats
	expiresAt time.Time
}

// MemoryStore is an in-memory stats cache for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[statsKey]statsRecord
	now   func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[statsKey]statsRecord),
		now:   time.Now,
	}
}

// GetStats implements insight.StatsStore.
func (s *MemoryStore) GetStats(_ context.Context, shopID, productID string, period insight.Period) (insight.ProductStats, bool, error) {
	key := statsKey{shopID, productID, period}
	s.mu.RLock()
	record, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return insight.ProductStats{}, false, nil
	}
	if s.hasExpired(record.expiresAt) {
		s.evictExpired(key)
		return insight.ProductStats{}, false, nil
	}
	stats := record.payload
	stats.DailyBreakdown = append([]insight.DailyStat(nil), record.payload.DailyBreakdown...)
	return stats, true, nil
}

// SaveStats caches the snapshot with optional TTL.
func (s *MemoryStore) SaveStats(_ context.Context, shopID string, stats insight.ProductStats, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	stats.DailyBreakdown = append([]insight.DailyStat(nil), stats.DailyBreakdown...)
	s.items[statsKey{shopID, stats.ProductID, stats.Period}] = statsRecord{payload: stats, expiresAt: exp}
	return nil
}

// PurgeShop drops every snapshot owned by the shop.
func (s *MemoryStore) PurgeShop(_ context.Context, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.items {
		if k.shopID == shopID {
			delete(s.items, k)
		}
	}
	return nil
}

// evictExpired deletes the entry only if it is still expired under the write lock,
// so a snapshot saved after the read is kept.
func (s *MemoryStore) evictExpired(key statsKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.items[key]; ok && s.hasExpired(current.expiresAt) {
		delete(s.items, key)
	}
}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var (
	_ insight.StatsStore  = (*MemoryStore)(nil)
	_ auth.ShopDataPurger = (*MemoryStore)(nil)
)
