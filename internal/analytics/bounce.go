package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"trafficlens/internal/traffic"
)

// HistogramBin counts values in [Lower, Upper). The last bin also holds Upper.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// ScatterPoint pairs a record's visitor count with its bounce rate.
type ScatterPoint struct {
	Visitors   int `json:"visitors"`
	BounceRate int `json:"bounce_rate"`
}

// BoxStats is the five-number summary of one group. Quartiles are the lowest
// observed values covering each fraction of the group.
type BoxStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// BounceRateHistogram splits the observed bounce-rate range into bins of
// equal width. When every value is equal a single bin of width one is used.
func BounceRateHistogram(visits []traffic.VisitRecord, bins int) []HistogramBin {
	if len(visits) == 0 || bins < 1 {
		return []HistogramBin{}
	}

	values := column(visits, bounceRateOf)
	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		return []HistogramBin{{Lower: lo, Upper: lo + 1, Count: len(values)}}
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the top divider is exclusive; nudge it so hi lands in the last bin
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	result := make([]HistogramBin, bins)
	for i := range result {
		result[i] = HistogramBin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	result[bins-1].Upper = hi
	return result
}

// BounceRateByDevice returns the bounce-rate box statistics of each device
// category, ordered by name.
func BounceRateByDevice(visits []traffic.VisitRecord) []BoxStats {
	groups := make(map[string][]float64)
	for _, v := range visits {
		groups[v.DeviceCategory] = append(groups[v.DeviceCategory], float64(v.BounceRate))
	}

	boxes := make([]BoxStats, 0, len(groups))
	for name, values := range groups {
		sort.Float64s(values)
		boxes = append(boxes, BoxStats{
			Name:   name,
			Count:  len(values),
			Min:    values[0],
			Q1:     stat.Quantile(0.25, stat.Empirical, values, nil),
			Median: stat.Quantile(0.5, stat.Empirical, values, nil),
			Q3:     stat.Quantile(0.75, stat.Empirical, values, nil),
			Max:    values[len(values)-1],
		})
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Name < boxes[j].Name })
	return boxes
}

// VisitorsVsBounce returns one scatter point per record in input order.
func VisitorsVsBounce(visits []traffic.VisitRecord) []ScatterPoint {
	points := make([]ScatterPoint, len(visits))
	for i, v := range visits {
		points[i] = ScatterPoint{Visitors: v.Visitors, BounceRate: v.BounceRate}
	}
	return points
}

// TopBrowsersByBounceRate ranks browsers by mean bounce rate, highest first.
func TopBrowsersByBounceRate(visits []traffic.VisitRecord, limit int) ([]MetricAverageResult, error) {
	results, err := groupMean(Frame(visits), colBrowser, colBounceRate)
	if err != nil {
		return nil, fmt.Errorf("top browsers: %w", err)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Average != results[j].Average {
			return results[i].Average > results[j].Average
		}
		return results[i].Name < results[j].Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// AverageBounceRate returns the mean bounce rate across visits, or 0.
func AverageBounceRate(visits []traffic.VisitRecord) float64 {
	if len(visits) == 0 {
		return 0
	}
	return stat.Mean(column(visits, bounceRateOf), nil)
}
