package forecast

import (
	"math"
	"time"

	"github.com/yanqian/merchant-insights/pkg/util"
)

const (
	smoothingAlpha   = 0.4
	trendBoostFactor = 0.1
	lowerBoundFactor = 0.8
	upperBoundFactor = 1.2
)

// GenerateForecast projects horizonDays of unit sales starting the day after now (UTC).
//
// The level recurrence smooths toward the last observed value on every step rather than
// toward the previous projection, so the projection is flat: lastValue plus a nudge
// proportional to the mean search interest (read as a 0-100 index).
func GenerateForecast(sales, trends []SeriesPoint, horizonDays int, now time.Time) []ForecastPoint {
	if horizonDays <= 0 {
		return []ForecastPoint{}
	}

	lastValue := 0.0
	if n := len(sales); n > 0 {
		lastValue = sales[n-1].Value
	}
	trendValues := make([]float64, len(trends))
	for i, p := range trends {
		trendValues[i] = p.Value
	}
	trendMean := mean(trendValues)

	level := lastValue
	today := util.StartOfDayUTC(now)
	points := make([]ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		trendBoost := 0.0
		if trendMean != 0 && !math.IsNaN(trendMean) {
			trendBoost = (trendMean / 100) * trendBoostFactor * lastValue
		}
		level = smoothingAlpha*level + (1-smoothingAlpha)*lastValue
		expected := math.Max(0, level+trendBoost)
		points = append(points, ForecastPoint{
			Date:          util.FormatDate(today.AddDate(0, 0, i)),
			ExpectedUnits: round2(expected),
			LowerBound:    round2(expected * lowerBoundFactor),
			UpperBound:    round2(expected * upperBoundFactor),
		})
	}
	return points
}

// round2 rounds half up to two decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
