package timeframe

import (
	"fmt"
	"time"
)

// DateStat is a single point of a bucketed series.
type DateStat struct {
	Date  string
	Count int
}

// TimeFrameBucketSize is the granularity of a time series.
type TimeFrameBucketSize string

const (
	TimeFrameBucketSizeYear  TimeFrameBucketSize = "year"
	TimeFrameBucketSizeMonth TimeFrameBucketSize = "month"
	TimeFrameBucketSizeWeek  TimeFrameBucketSize = "week"
	TimeFrameBucketSizeDay   TimeFrameBucketSize = "day"
	TimeFrameBucketSizeHour  TimeFrameBucketSize = "hour"
)

// maxPoints bounds series generation; ten years of hourly buckets fit.
const maxPoints = 24 * 366 * 10

// TimeFrame represents a period between two points in time
type TimeFrame struct {
	From       time.Time
	To         time.Time
	BucketSize TimeFrameBucketSize
}

func NewTimeFrame(from, to time.Time, bucketSize TimeFrameBucketSize) (*TimeFrame, error) {
	if from.After(to) {
		return nil, fmt.Errorf("fromTime must be before toTime")
	}
	if _, err := bucketLayout(bucketSize); err != nil {
		return nil, err
	}
	return &TimeFrame{
		From:       from.UTC(),
		To:         to.UTC(),
		BucketSize: bucketSize,
	}, nil
}

// Span returns the smallest time frame covering all of times.
func Span(times []time.Time, bucketSize TimeFrameBucketSize) (*TimeFrame, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("cannot build a time frame from no timestamps")
	}
	from, to := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(from) {
			from = t
		}
		if t.After(to) {
			to = t
		}
	}
	return NewTimeFrame(from, to, bucketSize)
}

// BucketKey formats t as the label of the bucket containing it.
func (tf *TimeFrame) BucketKey(t time.Time) string {
	return BucketKey(t, tf.BucketSize)
}

// BucketKey formats t as the label of the bucket of the given size containing it.
func BucketKey(t time.Time, bucketSize TimeFrameBucketSize) string {
	layout, err := bucketLayout(bucketSize)
	if err != nil {
		layout = "2006-01-02"
	}
	return TruncateToBucket(t, bucketSize).Format(layout)
}

func bucketLayout(bucketSize TimeFrameBucketSize) (string, error) {
	switch bucketSize {
	case TimeFrameBucketSizeHour:
		return "2006-01-02 15", nil
	case TimeFrameBucketSizeDay, TimeFrameBucketSizeWeek:
		return "2006-01-02", nil
	case TimeFrameBucketSizeMonth:
		return "2006-01", nil
	case TimeFrameBucketSizeYear:
		return "2006", nil
	default:
		return "", fmt.Errorf("unknown bucket size: %s", bucketSize)
	}
}

// GenerateBucketKeys lists every bucket label between From and To inclusive.
func (tf *TimeFrame) GenerateBucketKeys() []string {
	keys := []string{}
	current := TruncateToBucket(tf.From, tf.BucketSize)
	end := TruncateToBucket(tf.To, tf.BucketSize)

	for i := 0; i < maxPoints && !current.After(end); i++ {
		keys = append(keys, tf.BucketKey(current))

		switch tf.BucketSize {
		case TimeFrameBucketSizeYear:
			current = current.AddDate(1, 0, 0)
		case TimeFrameBucketSizeMonth:
			current = current.AddDate(0, 1, 0)
		case TimeFrameBucketSizeWeek:
			current = current.AddDate(0, 0, 7)
		case TimeFrameBucketSizeDay:
			current = current.AddDate(0, 0, 1)
		default:
			current = current.Add(time.Hour)
		}
	}

	return keys
}

// BuildTimeSeriesPoints returns one point per bucket of the frame, taking
// counts from groupedResults and filling missing buckets with zero.
func (tf *TimeFrame) BuildTimeSeriesPoints(groupedResults []DateStat) []DateStat {
	keys := tf.GenerateBucketKeys()
	results := make([]DateStat, len(keys))

	resultsMap := make(map[string]int, len(groupedResults))
	for _, result := range groupedResults {
		resultsMap[result.Date] += result.Count
	}

	for i, key := range keys {
		results[i] = DateStat{Date: key, Count: resultsMap[key]}
	}

	return results
}

// CalculateTrend returns the least-squares slope of the counts over their index.
func CalculateTrend(points []DateStat) float64 {
	if len(points) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	n := float64(len(points))

	for i, point := range points {
		x := float64(i)
		y := float64(point.Count)

		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	return (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
}

// TruncateToBucket truncates t (in UTC) to the start of its bucket.
func TruncateToBucket(t time.Time, bucketSize TimeFrameBucketSize) time.Time {
	utc := t.UTC()
	year, month, day := utc.Year(), utc.Month(), utc.Day()

	switch bucketSize {
	case TimeFrameBucketSizeYear:
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	case TimeFrameBucketSizeMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	case TimeFrameBucketSizeWeek:
		weekday := int(utc.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		return time.Date(year, month, day-(weekday-1), 0, 0, 0, 0, time.UTC)
	case TimeFrameBucketSizeDay:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	case TimeFrameBucketSizeHour:
		return time.Date(year, month, day, utc.Hour(), 0, 0, 0, time.UTC)
	default:
		return utc
	}
}
