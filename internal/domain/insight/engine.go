package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yanqian/merchant-insights/pkg/util"
)

const (
	lowStockDays       = 7
	stockWarningDays   = 21
	revenueWindow      = 7
	revenueChangeLimit = 15.0
	spikeWindow        = 3
	spikeMultiplier    = 2.0
	spikeDateLayout    = "1/2/2006"
)

// Generate evaluates the inventory, revenue trend, sales spike and competitor rules in that
// order. Each rule checks its own preconditions; nil stats or an empty breakdown yields none.
func Generate(in Input) []Insight {
	insights := make([]Insight, 0, 4)
	if in.Stats == nil || len(in.Stats.DailyBreakdown) == 0 {
		return insights
	}

	if ins, ok := inventoryRisk(in.Stats.UnitsSold, in.Inventory, in.Period); ok {
		insights = append(insights, ins)
	}
	if ins, ok := revenueTrend(in.Stats.DailyBreakdown); ok {
		insights = append(insights, ins)
	}
	if ins, ok := salesSpike(in.Stats.DailyBreakdown); ok {
		insights = append(insights, ins)
	}
	if ins, ok := competitorUndercut(in.ProductPrice, in.Competitors); ok {
		insights = append(insights, ins)
	}
	return insights
}

func inventoryRisk(unitsSold, inventory int, period Period) (Insight, bool) {
	velocity := float64(unitsSold) / float64(period.Days())
	if velocity <= 0 {
		return Insight{}, false
	}
	daysRemaining := float64(inventory) / velocity
	switch {
	case daysRemaining < lowStockDays:
		return Insight{
			Key: "low-stock",
			Text: fmt.Sprintf("Low stock alert: At current sales velocity (~%.1f units/day), inventory will run out in ~%d days. Consider reordering immediately.",
				velocity, roundHalfUp(daysRemaining)),
			Tags:     []string{"inventory", "alert"},
			Severity: SeverityCritical,
		}, true
	case daysRemaining < stockWarningDays:
		return Insight{
			Key: "stock-warning",
			Text: fmt.Sprintf("Stock warning: ~%d days of inventory remaining at current sales rate. Plan a reorder soon.",
				roundHalfUp(daysRemaining)),
			Tags:     []string{"inventory", "warning"},
			Severity: SeverityWarning,
		}, true
	}
	return Insight{}, false
}

func revenueTrend(breakdown []DailyStat) (Insight, bool) {
	n := len(breakdown)
	if n < 2*revenueWindow {
		return Insight{}, false
	}
	lastAvg := averageRevenue(breakdown[n-revenueWindow:])
	prevAvg := averageRevenue(breakdown[n-2*revenueWindow : n-revenueWindow])
	if prevAvg <= 0 {
		return Insight{}, false
	}

	change := (lastAvg - prevAvg) / prevAvg * 100
	switch {
	case change >= revenueChangeLimit:
		return Insight{
			Key: "revenue-up",
			Text: fmt.Sprintf("Revenue trending up: Last 7-day average ($%.0f/day) is %.0f%% higher than the previous week. Momentum looks strong!",
				lastAvg, change),
			Tags:     []string{"revenue", "trend"},
			Severity: SeverityInfo,
		}, true
	case change <= -revenueChangeLimit:
		return Insight{
			Key: "revenue-down",
			Text: fmt.Sprintf("Revenue trending down: Last 7-day average ($%.0f/day) is %.0f%% lower than the previous week. Consider running a promotion.",
				lastAvg, math.Abs(change)),
			Tags:     []string{"revenue", "trend"},
			Severity: SeverityWarning,
		}, true
	}
	return Insight{}, false
}

func salesSpike(breakdown []DailyStat) (Insight, bool) {
	n := len(breakdown)
	if n < spikeWindow {
		return Insight{}, false
	}
	periodAvg := averageRevenue(breakdown)
	if periodAvg <= 0 {
		return Insight{}, false
	}
	for _, day := range breakdown[n-spikeWindow:] {
		if day.Revenue > spikeMultiplier*periodAvg {
			return Insight{
				Key: "sales-spike",
				Text: fmt.Sprintf("Sales spike detected: %s had $%.0f in revenue, more than 2x your daily average of $%.0f.",
					displayDate(day.Date), day.Revenue, periodAvg),
				Tags:     []string{"sales", "spike"},
				Severity: SeverityInfo,
			}, true
		}
	}
	return Insight{}, false
}

func competitorUndercut(productPrice string, competitors []Competitor) (Insight, bool) {
	if len(competitors) == 0 {
		return Insight{}, false
	}
	myPrice, ok := ParsePrice(productPrice)
	if !ok || !myPrice.IsPositive() {
		return Insight{}, false
	}

	var (
		cheapest      Competitor
		cheapestPrice decimal.Decimal
		found         bool
	)
	for _, c := range competitors {
		price, ok := ParsePrice(c.Price)
		if !ok || !price.LessThan(myPrice) {
			continue
		}
		if !found || price.LessThan(cheapestPrice) {
			cheapest, cheapestPrice, found = c, price, true
		}
	}
	if !found {
		return Insight{}, false
	}
	return Insight{
		Key: "competitor-undercut",
		Text: fmt.Sprintf("Competitor undercut: %s is listing at $%s, which is below your price of $%s. Review your pricing strategy.",
			cheapest.Name, cheapestPrice.StringFixed(2), myPrice.StringFixed(2)),
		Tags:     []string{"competitor", "pricing"},
		Severity: SeverityWarning,
	}, true
}

// ParsePrice reads a decimal price string. Blank or malformed input reports false.
func ParsePrice(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func averageRevenue(days []DailyStat) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += d.Revenue
	}
	return sum / float64(len(days))
}

func displayDate(value string) string {
	ts, ok := util.ParseDate(value)
	if !ok {
		return value
	}
	return ts.Format(spikeDateLayout)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
