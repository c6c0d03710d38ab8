package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"

	"trafficlens/internal/timeframe"
	"trafficlens/internal/traffic"
)

// TimePoint is the visitor total at one timestamp.
type TimePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Visitors  int64     `json:"visitors"`
}

// TopDeviceCategories sums visitors per device category, largest first. A
// non-positive limit keeps every category.
func TopDeviceCategories(visits []traffic.VisitRecord, limit int) ([]MetricCountResult, error) {
	results, err := groupSum(Frame(visits), colDevice, colVisitors)
	if err != nil {
		return nil, fmt.Errorf("top device categories: %w", err)
	}
	sortCountsDesc(results)
	return limitCounts(results, limit), nil
}

// DailyVisitors sums visitors per calendar day between the first and last
// visit. Days without visits are reported as zero.
func DailyVisitors(visits []traffic.VisitRecord) ([]timeframe.DateStat, error) {
	return VisitorsSeries(visits, timeframe.TimeFrameBucketSizeDay)
}

// MonthlyVisitors is DailyVisitors bucketed by month.
func MonthlyVisitors(visits []traffic.VisitRecord) ([]timeframe.DateStat, error) {
	return VisitorsSeries(visits, timeframe.TimeFrameBucketSizeMonth)
}

// YearlyVisitors is DailyVisitors bucketed by year.
func YearlyVisitors(visits []traffic.VisitRecord) ([]timeframe.DateStat, error) {
	return VisitorsSeries(visits, timeframe.TimeFrameBucketSizeYear)
}

// VisitorsSeries sums visitors per bucket over the span of the visits.
func VisitorsSeries(visits []traffic.VisitRecord, bucketSize timeframe.TimeFrameBucketSize) ([]timeframe.DateStat, error) {
	if len(visits) == 0 {
		return []timeframe.DateStat{}, nil
	}

	times := make([]time.Time, len(visits))
	for i, v := range visits {
		times[i] = v.Timestamp
	}
	tf, err := timeframe.Span(times, bucketSize)
	if err != nil {
		return nil, fmt.Errorf("visitors series: %w", err)
	}

	key := colDay
	switch bucketSize {
	case timeframe.TimeFrameBucketSizeMonth:
		key = colMonth
	case timeframe.TimeFrameBucketSizeYear:
		key = colYear
	case timeframe.TimeFrameBucketSizeDay:
	default:
		return nil, fmt.Errorf("visitors series: unsupported bucket size %s", bucketSize)
	}

	sums, err := groupSum(Frame(visits), key, colVisitors)
	if err != nil {
		return nil, fmt.Errorf("visitors series: %w", err)
	}
	grouped := make([]timeframe.DateStat, len(sums))
	for i, s := range sums {
		grouped[i] = timeframe.DateStat{Date: s.Name, Count: int(s.Count)}
	}

	return tf.BuildTimeSeriesPoints(grouped), nil
}

// VisitorsOverTime sums visitors per distinct timestamp, oldest first.
func VisitorsOverTime(visits []traffic.VisitRecord) []TimePoint {
	byTime := make(map[time.Time]int64, len(visits))
	for _, v := range visits {
		byTime[v.Timestamp] += int64(v.Visitors)
	}

	points := make([]TimePoint, 0, len(byTime))
	for ts, n := range byTime {
		points = append(points, TimePoint{Timestamp: ts, Visitors: n})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// WeekdayAverages returns the mean visitor count per record for each weekday
// present in the data, Monday first.
func WeekdayAverages(visits []traffic.VisitRecord) ([]MetricAverageResult, error) {
	results, err := groupMean(Frame(visits), colWeekday, colVisitors)
	if err != nil {
		return nil, fmt.Errorf("weekday averages: %w", err)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return timeframe.WeekdayIndex(results[i].Name) < timeframe.WeekdayIndex(results[j].Name)
	})
	return results, nil
}

// HourlyVisitors sums visitors per hour of day for all 24 hours.
func HourlyVisitors(visits []traffic.VisitRecord) ([]MetricCountResult, error) {
	sums, err := groupSum(Frame(visits), colHour, colVisitors)
	if err != nil {
		return nil, fmt.Errorf("hourly visitors: %w", err)
	}
	byHour := make(map[string]int64, 24)
	for _, r := range sums {
		byHour[r.Name] = r.Count
	}

	results := make([]MetricCountResult, 24)
	for h := range results {
		name := strconv.Itoa(h)
		results[h] = MetricCountResult{Name: name, Count: byHour[name]}
	}
	return results, nil
}

// TotalVisitors sums visitors and sessions over all visits.
func TotalVisitors(visits []traffic.VisitRecord) (visitors, sessions int64) {
	if len(visits) == 0 {
		return 0, 0
	}
	return int64(floats.Sum(column(visits, visitorsOf))), int64(floats.Sum(column(visits, sessionsOf)))
}
