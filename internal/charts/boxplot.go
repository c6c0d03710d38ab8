package charts

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"

	"trafficlens/internal/analytics"
)

// boxHalfWidth is half the box width in x-axis units; groups sit one unit apart.
const boxHalfWidth = 0.3

// boxPlot draws one box per group at x = 1..n with whiskers to min and max.
func boxPlot(title string, boxes []analytics.BoxStats, opts Options) ([]byte, error) {
	if len(boxes) == 0 {
		return nil, ErrNoData
	}

	stroke := chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2}
	median := chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2}

	var series []chart.Series
	ticks := make([]chart.Tick, len(boxes))
	extent := make([]float64, 0, 2*len(boxes))
	for i, b := range boxes {
		x := float64(i + 1)
		left, right := x-boxHalfWidth, x+boxHalfWidth
		ticks[i] = chart.Tick{Value: x, Label: titleCaser.String(b.Name)}
		extent = append(extent, b.Min, b.Max)

		series = append(series,
			chart.ContinuousSeries{
				XValues: []float64{left, right, right, left, left},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
				Style:   stroke,
			},
			chart.ContinuousSeries{
				XValues: []float64{left, right},
				YValues: []float64{b.Median, b.Median},
				Style:   median,
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{b.Min, b.Q1},
				Style:   stroke,
			},
			chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{b.Q3, b.Max},
				Style:   stroke,
			},
		)
	}

	ch := chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:  "Device Category",
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(boxes)) + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Bounce Rate",
			Range: paddedRange(extent),
		},
		Series: series,
	}

	return encode(func(buf *bytes.Buffer) error {
		return ch.Render(chart.PNG, buf)
	})
}
