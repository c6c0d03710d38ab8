package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"trafficlens/internal/timeframe"
	"trafficlens/internal/traffic"
)

// ComparisonMetrics represents changes between two periods of a series
type ComparisonMetrics struct {
	VisitorsChange   *float64 `json:"visitors_change,omitempty"`
	BounceRateChange *float64 `json:"bounce_rate_change,omitempty"`
}

// ComparisonData holds current and previous period metrics for comparison
type ComparisonData struct {
	CurrentVisitors    int64   `json:"current_visitors"`
	PreviousVisitors   int64   `json:"previous_visitors"`
	CurrentBounceRate  float64 `json:"current_bounce_rate"`
	PreviousBounceRate float64 `json:"previous_bounce_rate"`
}

// PercentChange returns the change from previous to current in percent, or
// nil when previous is not positive.
func PercentChange(current, previous float64) *float64 {
	if previous > 0 {
		change := ((current - previous) / previous) * 100
		return &change
	}
	return nil
}

// CalculateComparisonMetrics computes period-over-period percentage changes
func CalculateComparisonMetrics(data ComparisonData) *ComparisonMetrics {
	return &ComparisonMetrics{
		VisitorsChange:   PercentChange(float64(data.CurrentVisitors), float64(data.PreviousVisitors)),
		BounceRateChange: PercentChange(data.CurrentBounceRate, data.PreviousBounceRate),
	}
}

// YearComparison compares the latest year in the data with the year before it.
type YearComparison struct {
	CurrentYear  string `json:"current_year"`
	PreviousYear string `json:"previous_year"`
	ComparisonData
	ComparisonMetrics
}

// LatestYearComparison compares visitors and mean bounce rate of the two most
// recent years present in visits. ok is false with fewer than two years.
func LatestYearComparison(visits []traffic.VisitRecord) (cmp YearComparison, ok bool, err error) {
	df := Frame(visits)
	totals, err := groupSum(df, colYear, colVisitors)
	if err != nil {
		return YearComparison{}, false, fmt.Errorf("year comparison: %w", err)
	}
	if len(totals) < 2 {
		return YearComparison{}, false, nil
	}
	bounce, err := groupMean(df, colYear, colBounceRate)
	if err != nil {
		return YearComparison{}, false, fmt.Errorf("year comparison: %w", err)
	}

	sort.Slice(totals, func(i, j int) bool {
		a, _ := strconv.Atoi(totals[i].Name)
		b, _ := strconv.Atoi(totals[j].Name)
		return a < b
	})
	current, previous := totals[len(totals)-1], totals[len(totals)-2]

	rates := make(map[string]float64, len(bounce))
	for _, b := range bounce {
		rates[b.Name] = b.Average
	}

	data := ComparisonData{
		CurrentVisitors:    current.Count,
		PreviousVisitors:   previous.Count,
		CurrentBounceRate:  rates[current.Name],
		PreviousBounceRate: rates[previous.Name],
	}
	return YearComparison{
		CurrentYear:       current.Name,
		PreviousYear:      previous.Name,
		ComparisonData:    data,
		ComparisonMetrics: *CalculateComparisonMetrics(data),
	}, true, nil
}

// Peak returns the point with the largest count. Ties keep the earliest.
func Peak(points []timeframe.DateStat) (timeframe.DateStat, bool) {
	if len(points) == 0 {
		return timeframe.DateStat{}, false
	}
	peak := points[0]
	for _, p := range points[1:] {
		if p.Count > peak.Count {
			peak = p
		}
	}
	return peak, true
}
