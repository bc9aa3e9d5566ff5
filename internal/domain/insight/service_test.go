package insight

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
)

const testProduct = "gid://shopify/Product/42"

func TestServiceRecordSalesRefreshesSnapshots(t *testing.T) {
	store := newStubStats()
	sales := newStubSales()
	svc := newTestService(store, sales, newStubCompetitors())

	resp, err := svc.RecordSales(context.Background(), SalesRequest{
		ShopID:    "demo",
		ProductID: testProduct,
		Days: []DailyStat{
			{Date: "2024-06-10", Units: 4, Revenue: 80},
			{Date: "2024-04-01T08:00:00Z", Units: 6, Revenue: 120},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.DaysStored)
	require.Equal(t, 4, resp.Stats30d.UnitsSold)
	require.Equal(t, 10, resp.Stats90d.UnitsSold)
	require.Equal(t, 200.0, resp.Stats90d.Revenue)
	require.Equal(t, 2*time.Hour, store.ttl)

	cached, err := svc.Stats(context.Background(), "demo", testProduct, Period90d)
	require.NoError(t, err)
	require.Equal(t, "2024-04-01", cached.DailyBreakdown[0].Date)

	_, err = svc.RecordSales(context.Background(), SalesRequest{
		ShopID:    "demo",
		ProductID: testProduct,
		Days:      []DailyStat{{Date: "2024-06-12", Units: 2, Revenue: 40}},
	})
	require.NoError(t, err)
	cached, err = svc.Stats(context.Background(), "demo", testProduct, Period30d)
	require.NoError(t, err)
	require.Equal(t, 6, cached.UnitsSold)
}

func TestServiceRecordSalesValidation(t *testing.T) {
	svc := newTestService(newStubStats(), newStubSales(), newStubCompetitors())

	tests := []SalesRequest{
		{ProductID: "42", Days: []DailyStat{{Date: "2024-06-10"}}},
		{ProductID: testProduct},
		{ProductID: testProduct, Days: []DailyStat{{Date: "yesterday"}}},
		{ProductID: testProduct, Days: []DailyStat{{Date: "2024-06-10", Units: -1}}},
	}
	for _, req := range tests {
		_, err := svc.RecordSales(context.Background(), req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "request %+v", req)
	}
}

func TestServiceStatsNotFound(t *testing.T) {
	svc := newTestService(newStubStats(), newStubSales(), newStubCompetitors())

	_, err := svc.Stats(context.Background(), "demo", testProduct, Period30d)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Stats(context.Background(), "demo", testProduct, Period("7d"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceInsights(t *testing.T) {
	store := newStubStats()
	competitors := newStubCompetitors()
	svc := newTestService(store, newStubSales(), competitors)

	resp, err := svc.Insights(context.Background(), InsightsRequest{ShopID: "demo", ProductID: testProduct, Period: Period30d})
	require.NoError(t, err)
	require.NotNil(t, resp.Insights)
	require.Empty(t, resp.Insights)

	store.items["demo|"+testProduct+"|30d"] = ProductStats{
		ProductID:      testProduct,
		Period:         Period30d,
		UnitsSold:      300,
		DailyBreakdown: []DailyStat{{Date: "2024-06-01", Units: 300, Revenue: 10}},
	}
	_, err = svc.AddCompetitor(context.Background(), CompetitorRequest{
		ShopID:    "demo",
		ProductID: testProduct,
		Name:      "Acme",
		URL:       "https://acme.example/shirt",
		Price:     json.Number("45"),
	})
	require.NoError(t, err)

	resp, err = svc.Insights(context.Background(), InsightsRequest{
		ShopID:       "demo",
		ProductID:    testProduct,
		Period:       Period30d,
		Inventory:    20,
		ProductPrice: "50.00",
	})
	require.NoError(t, err)
	require.Len(t, resp.Insights, 2)
	require.Equal(t, "low-stock", resp.Insights[0].Key)
	require.Equal(t, "competitor-undercut", resp.Insights[1].Key)
	require.Contains(t, resp.Insights[1].Text, "$45.00")

	_, err = svc.Insights(context.Background(), InsightsRequest{ProductID: testProduct, Period: Period30d, Inventory: -1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceAddCompetitorValidation(t *testing.T) {
	svc := newTestService(newStubStats(), newStubSales(), newStubCompetitors())
	valid := CompetitorRequest{ProductID: testProduct, Name: "Acme", URL: "https://acme.example", Price: "12.5"}

	created, err := svc.AddCompetitor(context.Background(), valid)
	require.NoError(t, err)
	require.Equal(t, "12.50", created.Price)
	require.NotEmpty(t, created.ID)

	cases := map[string]func(r *CompetitorRequest){
		"empty name":     func(r *CompetitorRequest) { r.Name = "  " },
		"relative url":   func(r *CompetitorRequest) { r.URL = "/shirt" },
		"ftp url":        func(r *CompetitorRequest) { r.URL = "ftp://acme.example" },
		"negative price": func(r *CompetitorRequest) { r.Price = "-1" },
		"text price":     func(r *CompetitorRequest) { r.Price = "cheap" },
		"bad product":    func(r *CompetitorRequest) { r.ProductID = "acme" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := svc.AddCompetitor(context.Background(), req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestServiceDeleteCompetitor(t *testing.T) {
	competitors := newStubCompetitors()
	svc := newTestService(newStubStats(), newStubSales(), competitors)

	created, err := svc.AddCompetitor(context.Background(), CompetitorRequest{
		ShopID: "demo", ProductID: testProduct, Name: "Acme", URL: "https://acme.example", Price: "9",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompetitor(context.Background(), "demo", created.ID))
	err = svc.DeleteCompetitor(context.Background(), "demo", created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	err = svc.DeleteCompetitor(context.Background(), "demo", "not-a-uuid")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	list, err := svc.Competitors(context.Background(), "demo", testProduct)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func newTestService(stats StatsStore, sales SalesRepository, competitors CompetitorRepository) *service {
	return &service{
		cfg:         Config{StatsTTL: 2 * time.Hour},
		stats:       stats,
		sales:       sales,
		competitors: competitors,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

type stubStats struct {
	items map[string]ProductStats
	ttl   time.Duration
}

func newStubStats() *stubStats {
	return &stubStats{items: map[string]ProductStats{}}
}

func (s *stubStats) GetStats(_ context.Context, shopID, productID string, period Period) (ProductStats, bool, error) {
	stats, ok := s.items[shopID+"|"+productID+"|"+string(period)]
	return stats, ok, nil
}

func (s *stubStats) SaveStats(_ context.Context, shopID string, stats ProductStats, ttl time.Duration) error {
	s.items[shopID+"|"+stats.ProductID+"|"+string(stats.Period)] = stats
	s.ttl = ttl
	return nil
}

type stubSales struct {
	rows map[string]map[string]DailyStat
}

func newStubSales() *stubSales {
	return &stubSales{rows: map[string]map[string]DailyStat{}}
}

func (s *stubSales) UpsertDailySales(_ context.Context, shopID, productID string, days []DailyStat) error {
	key := shopID + "|" + productID
	if s.rows[key] == nil {
		s.rows[key] = map[string]DailyStat{}
	}
	for _, d := range days {
		s.rows[key][d.Date] = d
	}
	return nil
}

func (s *stubSales) DailySales(_ context.Context, shopID, productID string) ([]DailyStat, error) {
	out := make([]DailyStat, 0)
	for _, d := range s.rows[shopID+"|"+productID] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type stubCompetitors struct {
	items []Competitor
	shops map[string]string
}

func newStubCompetitors() *stubCompetitors {
	return &stubCompetitors{shops: map[string]string{}}
}

func (s *stubCompetitors) ListCompetitors(_ context.Context, shopID, productID string) ([]Competitor, error) {
	var out []Competitor
	for _, c := range s.items {
		if c.ProductID == productID && s.shops[c.ID] == shopID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCompetitors) CreateCompetitor(_ context.Context, shopID string, c Competitor) (Competitor, error) {
	s.items = append(s.items, c)
	s.shops[c.ID] = shopID
	return c, nil
}

func (s *stubCompetitors) DeleteCompetitor(_ context.Context, shopID, id string) (bool, error) {
	for i, c := range s.items {
		if c.ID == id && s.shops[id] == shopID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
