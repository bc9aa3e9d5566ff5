package insight

import (
	"encoding/json"
	"time"
)

// Period is the trailing window a stats snapshot covers.
type Period string

const (
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// Valid reports whether p is one of the supported windows.
func (p Period) Valid() bool {
	return p == Period30d || p == Period90d
}

// Days returns the window length. Anything but 30d counts as 90 days.
func (p Period) Days() int {
	if p == Period30d {
		return 30
	}
	return 90
}

// Severity ranks an insight for display.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// DailyStat is one day of sales for a product.
type DailyStat struct {
	Date    string  `json:"date"`
	Units   int     `json:"units"`
	Revenue float64 `json:"revenue"`
}

// ProductStats is a cached aggregate over a period.
type ProductStats struct {
	ProductID      string      `json:"productId"`
	Period         Period      `json:"period"`
	UnitsSold      int         `json:"unitsSold"`
	Revenue        float64     `json:"revenue"`
	DailyBreakdown []DailyStat `json:"dailyBreakdown"`
	CachedAt       time.Time   `json:"cachedAt"`
}

// Competitor is a tracked rival listing. Price is a decimal string.
type Competitor struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Price       string    `json:"price"`
	LastChecked time.Time `json:"lastChecked"`
}

// Insight is a human-readable observation derived from stats.
type Insight struct {
	Key      string   `json:"key"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Severity Severity `json:"severity"`
}

// Input carries everything the rules engine looks at. Stats may be nil.
type Input struct {
	Stats        *ProductStats
	Inventory    int
	Competitors  []Competitor
	Period       Period
	ProductPrice string
}

// InsightsRequest asks for insights on one product.
type InsightsRequest struct {
	ShopID       string
	ProductID    string
	Period       Period
	Inventory    int
	ProductPrice string
}

// InsightsResponse lists insights in rule order.
type InsightsResponse struct {
	ProductID string    `json:"productId"`
	Period    Period    `json:"period"`
	Insights  []Insight `json:"insights"`
}

// SalesRequest records daily sales rows for a product.
type SalesRequest struct {
	ShopID    string      `json:"-"`
	ProductID string      `json:"productId"`
	Days      []DailyStat `json:"days"`
}

// SalesResponse returns the refreshed snapshots.
type SalesResponse struct {
	ProductID  string       `json:"productId"`
	DaysStored int          `json:"daysStored"`
	Stats30d   ProductStats `json:"stats30d"`
	Stats90d   ProductStats `json:"stats90d"`
}

// CompetitorRequest registers a competitor listing. Price accepts a JSON number or string.
type CompetitorRequest struct {
	ShopID    string      `json:"-"`
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	Price     json.Number `json:"price"`
}
