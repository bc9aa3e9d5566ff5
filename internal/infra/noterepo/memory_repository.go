package noterepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/notes"
)

type record struct {
	shopID string
	note   notes.Note
}

// MemoryRepository keeps product notes in process memory for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]record
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]record)}
}

// ListNotes returns the product's notes, newest first.
func (r *MemoryRepository) ListNotes(_ context.Context, shopID, productID string) ([]notes.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]notes.Note, 0)
	for _, rec := range r.items {
		if rec.shopID == shopID && rec.note.ProductID == productID {
			out = append(out, copyNote(rec.note))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateNote stores the note.
func (r *MemoryRepository) CreateNote(_ context.Context, shopID string, n notes.Note) (notes.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := copyNote(n)
	r.items[n.ID] = record{shopID: shopID, note: stored}
	return copyNote(stored), nil
}

// PurgeShop drops every note owned by the shop.
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

func copyNote(n notes.Note) notes.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

var (
	_ notes.Repository    = (*MemoryRepository)(nil)
	_ auth.ShopDataPurger = (*MemoryRepository)(nil)
)
