package forecast

import (
	"math"
	"sort"

	"github.com/yanqian/merchant-insights/pkg/util"
)

const (
	// DefaultMaxLag is the widest trends shift, in weeks, considered by FindOptimalLag.
	DefaultMaxLag = 8

	daysPerLag            = 7
	minSeasonalityPoints  = 12
	seasonalityThreshold  = 10.0
	seasonalityPeakMonths = 2
)

// alignSeries joins a and b on date, keeping a's order. Dates missing from b are dropped.
func alignSeries(a, b []SeriesPoint) [][2]float64 {
	lookup := make(map[string]float64, len(b))
	for _, p := range b {
		lookup[p.Date] = p.Value
	}
	pairs := make([][2]float64, 0, len(a))
	for _, p := range a {
		if v, ok := lookup[p.Date]; ok {
			pairs = append(pairs, [2]float64{p.Value, v})
		}
	}
	return pairs
}

// ComputeCorrelation returns the Pearson coefficient over the date-aligned subset of a
// and b. Fewer than two aligned points or a zero-variance side yields 0.
func ComputeCorrelation(a, b []SeriesPoint) float64 {
	pairs := alignSeries(a, b)
	if len(pairs) < 2 {
		return 0
	}

	var sumX, sumY float64
	for _, p := range pairs {
		sumX += p[0]
		sumY += p[1]
	}
	n := float64(len(pairs))
	meanX, meanY := sumX/n, sumY/n

	var num, denX, denY float64
	for _, p := range pairs {
		dx := p[0] - meanX
		dy := p[1] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}

	den := math.Sqrt(denX * denY)
	if den == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, num/den))
}

// FindOptimalLag shifts trends forward by 0..maxLag weeks and returns the lag with the
// highest correlation against sales. Ties keep the smallest lag.
func FindOptimalLag(sales, trends []SeriesPoint, maxLag int) LagResult {
	if maxLag < 0 {
		maxLag = 0
	}
	best := LagResult{Lag: 0, Correlation: math.Inf(-1)}
	shifted := make([]SeriesPoint, len(trends))
	for lag := 0; lag <= maxLag; lag++ {
		for i, p := range trends {
			shifted[i] = SeriesPoint{Date: util.ShiftDate(p.Date, lag*daysPerLag), Value: p.Value}
		}
		corr := ComputeCorrelation(sales, shifted)
		if corr > best.Correlation {
			best = LagResult{Lag: lag, Correlation: corr}
		}
	}
	return best
}

type monthAverage struct {
	month   int
	sum     float64
	count   int
	average float64
}

// DetectSeasonality buckets interest by calendar month across years and reports the two
// strongest months. A spread above 10 between the best and worst month counts as annual
// seasonality.
func DetectSeasonality(trends []SeriesPoint) Seasonality {
	if len(trends) < minSeasonalityPoints {
		return noSeasonality()
	}

	buckets := make(map[int]*monthAverage, 12)
	order := make([]*monthAverage, 0, 12)
	for _, p := range trends {
		ts, ok := util.ParseDate(p.Date)
		if !ok {
			continue
		}
		month := int(ts.Month()) - 1
		b, exists := buckets[month]
		if !exists {
			b = &monthAverage{month: month}
			buckets[month] = b
			order = append(order, b)
		}
		b.sum += p.Value
		b.count++
	}
	if len(order) == 0 {
		return noSeasonality()
	}

	for _, b := range order {
		b.average = b.sum / float64(b.count)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].average > order[j].average
	})

	peaks := make([]int, 0, seasonalityPeakMonths)
	for i := 0; i < len(order) && i < seasonalityPeakMonths; i++ {
		peaks = append(peaks, order[i].month)
	}

	spread := order[0].average - order[len(order)-1].average
	hasSeasonality := spread > seasonalityThreshold
	pattern := PatternNone
	if hasSeasonality {
		pattern = PatternAnnual
	}
	return Seasonality{HasSeasonality: hasSeasonality, Peaks: peaks, Pattern: pattern}
}

func noSeasonality() Seasonality {
	return Seasonality{HasSeasonality: false, Peaks: []int{}, Pattern: PatternNone}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
