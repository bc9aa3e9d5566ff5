package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/merchant-insights/pkg/util"
)

func TestGenerateForecastEmptyHistory(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	points := GenerateForecast(nil, nil, 5, now)
	require.Len(t, points, 5)
	for i, p := range points {
		require.Equal(t, util.FormatDate(now.AddDate(0, 0, i+1)), p.Date)
		require.Zero(t, p.ExpectedUnits)
		require.Zero(t, p.LowerBound)
		require.Zero(t, p.UpperBound)
	}
}

func TestGenerateForecastNonPositiveHorizon(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Empty(t, GenerateForecast(series("2024-03-01", 4), nil, 0, now))
	require.Empty(t, GenerateForecast(series("2024-03-01", 4), nil, -2, now))
}

func TestGenerateForecastAppliesTrendBoost(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	sales := series("2024-01-01", 3, 7, 10)
	trends := series("2024-01-01", 40, 60)

	points := GenerateForecast(sales, trends, 3, now)
	require.Len(t, points, 3)
	for _, p := range points {
		require.Equal(t, 10.5, p.ExpectedUnits)
		require.Equal(t, 8.4, p.LowerBound)
		require.Equal(t, 12.6, p.UpperBound)
	}
	require.Equal(t, "2024-03-11", points[0].Date)
	require.Equal(t, "2024-03-13", points[2].Date)
}

func TestGenerateForecastBoundsAndDates(t *testing.T) {
	now := time.Date(2024, 12, 30, 23, 59, 0, 0, time.FixedZone("UTC+5", 5*3600))
	sales := series("2024-10-01", 2.37, 5.13, 3.33)
	trends := series("2024-10-01", 12, 77, 31)

	points := GenerateForecast(sales, trends, 30, now)
	require.Len(t, points, 30)

	prev, ok := util.ParseDate(points[0].Date)
	require.True(t, ok)
	require.Equal(t, "2024-12-31", points[0].Date)
	for i, p := range points {
		require.GreaterOrEqual(t, p.ExpectedUnits, 0.0)
		require.LessOrEqual(t, p.LowerBound, p.ExpectedUnits)
		require.LessOrEqual(t, p.ExpectedUnits, p.UpperBound)
		if i == 0 {
			continue
		}
		cur, ok := util.ParseDate(p.Date)
		require.True(t, ok)
		require.Equal(t, prev.AddDate(0, 0, 1), cur)
		prev = cur
	}
}

func TestGenerateForecastIgnoresStaleHistory(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := GenerateForecast(series("2020-01-01", 1, 2), nil, 1, now)
	require.Equal(t, "2025-06-02", points[0].Date)
	require.Equal(t, 2.0, points[0].ExpectedUnits)
}

func TestRound2HalfUp(t *testing.T) {
	require.Equal(t, 0.13, round2(0.125))
	require.Equal(t, 1.5, round2(1.5))
	require.Equal(t, 0.0, round2(0.004))
}
