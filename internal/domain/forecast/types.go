package forecast

import "time"

// SeriesPoint is one daily observation of a metric.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ForecastPoint is one projected day. LowerBound <= ExpectedUnits <= UpperBound.
type ForecastPoint struct {
	Date          string  `json:"date"`
	ExpectedUnits float64 `json:"expectedUnits"`
	LowerBound    float64 `json:"lowerBound"`
	UpperBound    float64 `json:"upperBound"`
}

// LagResult is the best-correlated trends shift, in weeks.
type LagResult struct {
	Lag         int     `json:"lag"`
	Correlation float64 `json:"correlation"`
}

// Pattern classifies detected seasonality.
type Pattern string

const (
	PatternMonthly   Pattern = "monthly"
	PatternQuarterly Pattern = "quarterly"
	PatternAnnual    Pattern = "annual"
	PatternNone      Pattern = "none"
)

// Seasonality summarizes month-of-year interest peaks.
type Seasonality struct {
	HasSeasonality bool    `json:"hasSeasonality"`
	Peaks          []int   `json:"peaks"`
	Pattern        Pattern `json:"pattern"`
}

// SalesRow is a persisted daily sales aggregate.
type SalesRow struct {
	Date    string
	Units   float64
	Revenue float64
}

// StoredPoint is a persisted forecast row.
type StoredPoint struct {
	Date             string  `json:"date"`
	PredictedUnits   float64 `json:"predictedUnits"`
	PredictedRevenue float64 `json:"predictedRevenue"`
	ConfidenceLower  float64 `json:"confidenceLower"`
	ConfidenceUpper  float64 `json:"confidenceUpper"`
}

// Batch groups the forecast rows produced by one generation run.
type Batch struct {
	ID        string
	ProductID string
	CreatedAt time.Time
	Points    []StoredPoint
}

// GenerateRequest asks for a fresh forecast of one product.
type GenerateRequest struct {
	ShopID      string `json:"-"`
	ProductID   string `json:"productId"`
	HorizonDays int    `json:"horizonDays"`
}

// DateRange spans the first and last forecast dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary aggregates a forecast batch.
type Summary struct {
	TotalPredictedUnits   float64  `json:"totalPredictedUnits"`
	TotalPredictedRevenue *float64 `json:"totalPredictedRevenue,omitempty"`
	AverageDailyUnits     float64  `json:"averageDailyUnits"`
}

// GenerateResponse reports a stored forecast.
type GenerateResponse struct {
	Success        bool            `json:"success"`
	BatchID        string          `json:"batchId"`
	ProductID      string          `json:"productId"`
	HorizonDays    int             `json:"horizonDays"`
	ForecastPoints int             `json:"forecastPoints"`
	DateRange      DateRange       `json:"dateRange"`
	Summary        Summary         `json:"summary"`
	Forecast       []ForecastPoint `json:"forecast"`
}

// LatestResponse returns the most recent stored batch.
type LatestResponse struct {
	BatchID     string        `json:"batchId"`
	ProductID   string        `json:"productId"`
	CreatedAt   time.Time     `json:"createdAt"`
	HorizonDays int           `json:"horizonDays"`
	DateRange   DateRange     `json:"dateRange"`
	Summary     Summary       `json:"summary"`
	Forecast    []StoredPoint `json:"forecast"`
}

// AnalyzeRequest asks for sales/trends statistics of one product.
type AnalyzeRequest struct {
	ShopID    string
	ProductID string
	MaxLag    *int
}

// AnalyzeResponse bundles the series analyzer outputs.
type AnalyzeResponse struct {
	ProductID    string      `json:"productId"`
	SalesPoints  int         `json:"salesPoints"`
	TrendsPoints int         `json:"trendsPoints"`
	Correlation  float64     `json:"correlation"`
	OptimalLag   LagResult   `json:"optimalLag"`
	Seasonality  Seasonality `json:"seasonality"`
}

// TrendsRequest records search-interest points for a query mapped to a product.
type TrendsRequest struct {
	ShopID    string        `json:"-"`
	ProductID string        `json:"productId"`
	Query     string        `json:"query"`
	Points    []SeriesPoint `json:"points"`
}

// TrendsResponse acknowledges stored trends points.
type TrendsResponse struct {
	ProductID string `json:"productId"`
	Query     string `json:"query"`
	Stored    int    `json:"stored"`
}
