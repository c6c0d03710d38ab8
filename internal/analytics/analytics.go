// Package analytics computes the grouped summaries behind the report charts
// and tables.
//
// The package is organized into focused modules:
//   - analytics.go: result models and the dataframe helpers
//   - visitors.go: visitor totals by device, date, weekday and hour
//   - bounce.go: bounce-rate histogram, box statistics, scatter points and
//     browser averages
//   - comparison.go: peaks and year-over-year changes
package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"trafficlens/internal/timeframe"
	"trafficlens/internal/traffic"
)

// Frame column names.
const (
	colDevice     = "device"
	colBrowser    = "browser"
	colWeekday    = "weekday"
	colDay        = "day"
	colMonth      = "month"
	colYear       = "year"
	colHour       = "hour"
	colVisitors   = "visitors"
	colSessions   = "sessions"
	colBounceRate = "bounce_rate"
)

// MetricCountResult represents a generic key-count pair for query results
type MetricCountResult struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// MetricAverageResult represents a key with a mean value
type MetricAverageResult struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

// Frame loads visits into a dataframe with one string column per grouping
// key and integer columns for the measures.
func Frame(visits []traffic.VisitRecord) dataframe.DataFrame {
	n := len(visits)
	var (
		devices  = make([]string, n)
		browsers = make([]string, n)
		weekdays = make([]string, n)
		days     = make([]string, n)
		months   = make([]string, n)
		years    = make([]string, n)
		hours    = make([]string, n)
		visitors = make([]int, n)
		sessions = make([]int, n)
		bounce   = make([]int, n)
	)
	for i, v := range visits {
		devices[i] = v.DeviceCategory
		browsers[i] = v.Browser
		weekdays[i] = v.Weekday
		days[i] = timeframe.BucketKey(v.Timestamp, timeframe.TimeFrameBucketSizeDay)
		months[i] = timeframe.BucketKey(v.Timestamp, timeframe.TimeFrameBucketSizeMonth)
		years[i] = strconv.Itoa(v.Year)
		hours[i] = strconv.Itoa(v.Hour)
		visitors[i] = v.Visitors
		sessions[i] = v.Sessions
		bounce[i] = v.BounceRate
	}

	return dataframe.New(
		series.New(devices, series.String, colDevice),
		series.New(browsers, series.String, colBrowser),
		series.New(weekdays, series.String, colWeekday),
		series.New(days, series.String, colDay),
		series.New(months, series.String, colMonth),
		series.New(years, series.String, colYear),
		series.New(hours, series.String, colHour),
		series.New(visitors, series.Int, colVisitors),
		series.New(sessions, series.Int, colSessions),
		series.New(bounce, series.Int, colBounceRate),
	)
}

// aggregate groups df by key and applies agg to value. It returns the group
// labels and the aggregated values in the same order. Group order is not
// defined; callers sort.
func aggregate(df dataframe.DataFrame, key, value string, agg dataframe.AggregationType) ([]string, []float64, error) {
	if df.Err != nil {
		return nil, nil, fmt.Errorf("build frame: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, nil, nil
	}
	grouped := df.GroupBy(key).Aggregation([]dataframe.AggregationType{agg}, []string{value})
	if grouped.Err != nil {
		return nil, nil, fmt.Errorf("group %s by %s: %w", value, key, grouped.Err)
	}
	return grouped.Col(key).Records(), grouped.Col(value + "_" + agg.String()).Float(), nil
}

func groupSum(df dataframe.DataFrame, key, value string) ([]MetricCountResult, error) {
	names, sums, err := aggregate(df, key, value, dataframe.Aggregation_SUM)
	if err != nil {
		return nil, err
	}
	results := make([]MetricCountResult, len(names))
	for i, name := range names {
		results[i] = MetricCountResult{Name: name, Count: int64(sums[i])}
	}
	return results, nil
}

func groupMean(df dataframe.DataFrame, key, value string) ([]MetricAverageResult, error) {
	names, means, err := aggregate(df, key, value, dataframe.Aggregation_MEAN)
	if err != nil {
		return nil, err
	}
	results := make([]MetricAverageResult, len(names))
	for i, name := range names {
		results[i] = MetricAverageResult{Name: name, Average: means[i]}
	}
	return results, nil
}

// column returns the measure column of visits as floats.
func column(visits []traffic.VisitRecord, value func(traffic.VisitRecord) int) []float64 {
	values := make([]float64, len(visits))
	for i, v := range visits {
		values[i] = float64(value(v))
	}
	return values
}

func visitorsOf(v traffic.VisitRecord) int   { return v.Visitors }
func sessionsOf(v traffic.VisitRecord) int   { return v.Sessions }
func bounceRateOf(v traffic.VisitRecord) int { return v.BounceRate }

// sortCountsDesc orders by count descending, then name.
func sortCountsDesc(results []MetricCountResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})
}

func limitCounts(results []MetricCountResult, limit int) []MetricCountResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
