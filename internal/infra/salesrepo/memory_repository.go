package salesrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

type productKey struct {
	shopID    string
	productID string
}

type queryKey struct {
	shopID string
	query  string
}

// MemoryRepository keeps series in process memory for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	sales    map[productKey]map[string]insight.DailyStat
	trends   map[queryKey]map[string]float64
	mappings map[productKey]map[string]struct{}
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sales:    make(map[productKey]map[string]insight.DailyStat),
		trends:   make(map[queryKey]map[string]float64),
		mappings: make(map[productKey]map[string]struct{}),
	}
}

// UpsertDailySales stores rows keyed by date.
func (r *MemoryRepository) UpsertDailySales(_ context.Context, shopID, productID string, days []insight.DailyStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := productKey{shopID, productID}
	if r.sales[key] == nil {
		r.sales[key] = make(map[string]insight.DailyStat)
	}
	for _, d := range days {
		r.sales[key][d.Date] = d
	}
	return nil
}

// DailySales returns stored days oldest first.
func (r *MemoryRepository) DailySales(_ context.Context, shopID, productID string) ([]insight.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.sales[productKey{shopID, productID}]
	out := make([]insight.DailyStat, 0, len(stored))
	for _, d := range stored {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// SalesHistory adapts DailySales for the forecaster.
func (r *MemoryRepository) SalesHistory(ctx context.Context, shopID, productID string) ([]forecast.SalesRow, error) {
	days, err := r.DailySales(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}
	return toSalesRows(days), nil
}

// TrendsHistory averages interest per date across the product's mapped queries.
func (r *MemoryRepository) TrendsHistory(_ context.Context, shopID, productID string) ([]forecast.SeriesPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	type acc struct {
		sum   float64
		count int
	}
	byDate := make(map[string]*acc)
	for query := range r.mappings[productKey{shopID, productID}] {
		for date, v := range r.trends[queryKey{shopID, query}] {
			a, ok := byDate[date]
			if !ok {
				a = &acc{}
				byDate[date] = a
			}
			a.sum += v
			a.count++
		}
	}
	out := make([]forecast.SeriesPoint, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, forecast.SeriesPoint{Date: date, Value: a.sum / float64(a.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// UpsertTrends maps the query to the product and stores its points.
func (r *MemoryRepository) UpsertTrends(_ context.Context, shopID, productID, query string, points []forecast.SeriesPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pk := productKey{shopID, productID}
	if r.mappings[pk] == nil {
		r.mappings[pk] = make(map[string]struct{})
	}
	r.mappings[pk][query] = struct{}{}
	qk := queryKey{shopID, query}
	if r.trends[qk] == nil {
		r.trends[qk] = make(map[string]float64)
	}
	for _, p := range points {
		r.trends[qk][p.Date] = p.Value
	}
	return nil
}

// PurgeShop drops every series owned by the shop.
func (r *MemoryRepository) PurgeShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.sales {
		if k.shopID == shopID {
			delete(r.sales, k)
		}
	}
	for k := range r.mappings {
		if k.shopID == shopID {
			delete(r.mappings, k)
		}
	}
	for k := range r.trends {
		if k.shopID == shopID {
			delete(r.trends, k)
		}
	}
	return nil
}

var (
	_ forecast.SeriesRepository = (*MemoryRepository)(nil)
	_ insight.SalesRepository   = (*MemoryRepository)(nil)
	_ auth.ShopDataPurger       = (*MemoryRepository)(nil)
)
