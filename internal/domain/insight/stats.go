package insight

import (
	"sort"
	"time"

	"github.com/yanqian/merchant-insights/pkg/util"
)

// BuildStats aggregates daily rows that fall inside the trailing period window ending at now.
// The breakdown is sorted by date and the totals are its sums.
func BuildStats(productID string, period Period, days []DailyStat, now time.Time) ProductStats {
	cutoff := util.StartOfDayUTC(now).AddDate(0, 0, -period.Days())
	breakdown := make([]DailyStat, 0, len(days))
	for _, d := range days {
		ts, ok := util.ParseDate(d.Date)
		if !ok || ts.Before(cutoff) {
			continue
		}
		breakdown = append(breakdown, DailyStat{Date: util.FormatDate(ts), Units: d.Units, Revenue: d.Revenue})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Date < breakdown[j].Date
	})

	stats := ProductStats{
		ProductID:      productID,
		Period:         period,
		DailyBreakdown: breakdown,
		CachedAt:       now.UTC(),
	}
	for _, d := range breakdown {
		stats.UnitsSold += d.Units
		stats.Revenue += d.Revenue
	}
	return stats
}
