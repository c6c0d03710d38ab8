package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"trafficlens/internal/analytics"
	"trafficlens/internal/timeframe"
)

const (
	dayLayout       = "2006-01-02"
	monthLayout     = "2006-01"
	timestampLayout = "2006-01-02 15:04"
)

func timeLine(title string, points []timeframe.DateStat, layout string, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		t, err := time.Parse(layout, p.Date)
		if err != nil {
			return nil, fmt.Errorf("parse point %q: %w", p.Date, err)
		}
		xs[i] = t
		ys[i] = float64(p.Count)
	}
	return drawTimeSeries(title, "Date", layout, xs, ys, opts)
}

// timestampLine plots visitors at each distinct timestamp.
func timestampLine(title string, points []analytics.TimePoint, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp
		ys[i] = float64(p.Visitors)
	}
	return drawTimeSeries(title, "Timestamp", timestampLayout, xs, ys, opts)
}

func drawTimeSeries(title, xName, layout string, xs []time.Time, ys []float64, opts Options) ([]byte, error) {
	maxValue := 0.0
	for _, y := range ys {
		maxValue = max(maxValue, y)
	}
	// a single point has no x range; stretch it into a flat segment
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           xName,
			ValueFormatter: chart.TimeValueFormatterWithFormat(layout),
		},
		YAxis: chart.YAxis{
			Name:  "Visitors",
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(maxValue)},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Visitors",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	return encode(func(buf *bytes.Buffer) error {
		return ch.Render(chart.PNG, buf)
	})
}

func scatter(title string, points []analytics.ScatterPoint, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Visitors)
		ys[i] = float64(p.BounceRate)
	}

	ch := chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:  "Visitors",
			Range: paddedRange(xs),
		},
		YAxis: chart.YAxis{
			Name:  "Bounce Rate",
			Range: paddedRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Records",
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(chart.ColorBlue),
			},
		},
	}

	return encode(func(buf *bytes.Buffer) error {
		return ch.Render(chart.PNG, buf)
	})
}

// paddedRange covers values with a small margin and never has zero width.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
