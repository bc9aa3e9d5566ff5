package insight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/merchant-insights/pkg/util"
)

func TestGenerateWithoutStats(t *testing.T) {
	require.Empty(t, Generate(Input{Stats: nil, Inventory: 5, Period: Period30d}))
	require.Empty(t, Generate(Input{Stats: &ProductStats{UnitsSold: 300}, Inventory: 5, Period: Period30d}))
}

func TestGenerateLowStock(t *testing.T) {
	stats := &ProductStats{
		UnitsSold:      300,
		DailyBreakdown: []DailyStat{{Date: "2024-03-01", Units: 300, Revenue: 0}},
	}

	got := Generate(Input{Stats: stats, Inventory: 20, Period: Period30d})
	require.Len(t, got, 1)
	require.Equal(t, "low-stock", got[0].Key)
	require.Equal(t, SeverityCritical, got[0].Severity)
	require.Equal(t, []string{"inventory", "alert"}, got[0].Tags)
	require.Contains(t, got[0].Text, "~10.0 units/day")
	require.Contains(t, got[0].Text, "run out in ~2 days")
}

func TestGenerateStockWarning(t *testing.T) {
	stats := &ProductStats{
		UnitsSold:      900,
		DailyBreakdown: []DailyStat{{Date: "2024-03-01", Units: 900}},
	}

	got := Generate(Input{Stats: stats, Inventory: 150, Period: Period90d})
	require.Len(t, got, 1)
	require.Equal(t, "stock-warning", got[0].Key)
	require.Equal(t, SeverityWarning, got[0].Severity)
	require.Contains(t, got[0].Text, "~15 days of inventory")

	require.Empty(t, Generate(Input{Stats: stats, Inventory: 300, Period: Period90d}))
}

func TestGenerateInventoryThresholdsAreExclusive(t *testing.T) {
	stats := &ProductStats{
		UnitsSold:      300,
		DailyBreakdown: []DailyStat{{Date: "2024-03-01", Units: 300}},
	}

	atSeven := Generate(Input{Stats: stats, Inventory: 70, Period: Period30d})
	require.Len(t, atSeven, 1)
	require.Equal(t, "stock-warning", atSeven[0].Key)
	require.Contains(t, atSeven[0].Text, "~7 days of inventory")

	require.Empty(t, Generate(Input{Stats: stats, Inventory: 210, Period: Period30d}))
}

func TestGenerateRevenueTrend(t *testing.T) {
	up := Generate(Input{Stats: twoWeeks(100, 120), Period: Period30d})
	require.Len(t, up, 1)
	require.Equal(t, "revenue-up", up[0].Key)
	require.Equal(t, SeverityInfo, up[0].Severity)
	require.Contains(t, up[0].Text, "($120/day) is 20% higher")

	down := Generate(Input{Stats: twoWeeks(100, 80), Period: Period30d})
	require.Len(t, down, 1)
	require.Equal(t, "revenue-down", down[0].Key)
	require.Equal(t, SeverityWarning, down[0].Severity)
	require.Contains(t, down[0].Text, "($80/day) is 20% lower")

	require.Empty(t, Generate(Input{Stats: twoWeeks(100, 110), Period: Period30d}))
	require.Empty(t, Generate(Input{Stats: twoWeeks(0, 50), Period: Period30d}))
}

func TestGenerateRevenueTrendFiresAtFifteenPercent(t *testing.T) {
	up := Generate(Input{Stats: twoWeeks(100, 115), Period: Period30d})
	require.Len(t, up, 1)
	require.Equal(t, "revenue-up", up[0].Key)
	require.Contains(t, up[0].Text, "is 15% higher")

	down := Generate(Input{Stats: twoWeeks(100, 85), Period: Period30d})
	require.Len(t, down, 1)
	require.Equal(t, "revenue-down", down[0].Key)
	require.Contains(t, down[0].Text, "is 15% lower")
}

func TestGenerateSalesSpike(t *testing.T) {
	revenues := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100}
	got := Generate(Input{Stats: breakdown("2024-03-01", revenues...), Period: Period30d})
	require.Len(t, got, 1)
	require.Equal(t, "sales-spike", got[0].Key)
	require.Equal(t, "Sales spike detected: 3/10/2024 had $100 in revenue, more than 2x your daily average of $19.", got[0].Text)
}

func TestGenerateSalesSpikeReportsEarliestQualifyingDay(t *testing.T) {
	got := Generate(Input{Stats: breakdown("2024-03-01", 10, 10, 10, 10, 10, 80, 90), Period: Period30d})
	require.Len(t, got, 1)
	require.Contains(t, got[0].Text, "3/6/2024 had $80")
}

func TestGenerateCompetitorUndercut(t *testing.T) {
	stats := breakdown("2024-03-01", 10)

	got := Generate(Input{
		Stats:        stats,
		Period:       Period30d,
		ProductPrice: "50.00",
		Competitors: []Competitor{
			{Name: "Acme", Price: "45.00"},
			{Name: "Globex", Price: "60.00"},
		},
	})
	require.Len(t, got, 1)
	require.Equal(t, "competitor-undercut", got[0].Key)
	require.Equal(t, SeverityWarning, got[0].Severity)
	require.Equal(t, "Competitor undercut: Acme is listing at $45.00, which is below your price of $50.00. Review your pricing strategy.", got[0].Text)
}

func TestGenerateCompetitorUndercutSkipsUnparsablePrices(t *testing.T) {
	stats := breakdown("2024-03-01", 10)

	got := Generate(Input{
		Stats:        stats,
		Period:       Period30d,
		ProductPrice: "50",
		Competitors: []Competitor{
			{Name: "Unknown", Price: "N/A"},
			{Name: "Initech", Price: "49.5"},
			{Name: "Hooli", Price: "49.50"},
		},
	})
	require.Len(t, got, 1)
	require.Contains(t, got[0].Text, "Initech is listing at $49.50")

	require.Empty(t, Generate(Input{Stats: stats, Period: Period30d, ProductPrice: "N/A", Competitors: []Competitor{{Name: "A", Price: "1"}}}))
	require.Empty(t, Generate(Input{Stats: stats, Period: Period30d, ProductPrice: "0", Competitors: []Competitor{{Name: "A", Price: "-1"}}}))
	require.Empty(t, Generate(Input{Stats: stats, Period: Period30d, ProductPrice: "10"}))
}

func TestGenerateEvaluatesEveryRule(t *testing.T) {
	stats := twoWeeks(100, 130)
	stats.DailyBreakdown[13].Revenue = 1000
	stats.UnitsSold = 300

	got := Generate(Input{
		Stats:        stats,
		Inventory:    10,
		Period:       Period30d,
		ProductPrice: "20",
		Competitors:  []Competitor{{Name: "Acme", Price: "19.99"}},
	})
	keys := make([]string, 0, len(got))
	for _, ins := range got {
		keys = append(keys, ins.Key)
	}
	require.Equal(t, []string{"low-stock", "revenue-up", "sales-spike", "competitor-undercut"}, keys)
}

func TestParsePrice(t *testing.T) {
	d, ok := ParsePrice(" 12.50 ")
	require.True(t, ok)
	require.Equal(t, "12.50", d.StringFixed(2))

	_, ok = ParsePrice("")
	require.False(t, ok)
	_, ok = ParsePrice("12,50")
	require.False(t, ok)
}

func twoWeeks(prev, last float64) *ProductStats {
	revenues := make([]float64, 0, 14)
	for i := 0; i < 7; i++ {
		revenues = append(revenues, prev)
	}
	for i := 0; i < 7; i++ {
		revenues = append(revenues, last)
	}
	return breakdown("2024-03-01", revenues...)
}

func breakdown(start string, revenues ...float64) *ProductStats {
	stats := &ProductStats{ProductID: "gid://shopify/Product/1", Period: Period30d}
	for i, r := range revenues {
		stats.DailyBreakdown = append(stats.DailyBreakdown, DailyStat{Date: util.ShiftDate(start, i), Revenue: r})
		stats.Revenue += r
	}
	return stats
}
