package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"trafficlens/internal/analytics"
)

func countBars(title string, results []analytics.MetricCountResult, titled bool, opts Options) ([]byte, error) {
	values := make([]chart.Value, len(results))
	for i, r := range results {
		label := r.Name
		if titled {
			label = titleCaser.String(label)
		}
		values[i] = chart.Value{Label: label, Value: float64(r.Count)}
	}
	return bars(title, "Visitors", values, opts)
}

func averageBars(title string, results []analytics.MetricAverageResult, opts Options) ([]byte, error) {
	values := make([]chart.Value, len(results))
	for i, r := range results {
		values[i] = chart.Value{Label: r.Name, Value: r.Average}
	}
	return bars(title, "Average", values, opts)
}

func histogram(title string, bins []analytics.HistogramBin, opts Options) ([]byte, error) {
	values := make([]chart.Value, len(bins))
	for i, b := range bins {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper),
			Value: float64(b.Count),
		}
	}
	return bars(title, "Records", values, opts)
}

func bars(title, yName string, values []chart.Value, opts Options) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	maxValue := 0.0
	for _, v := range values {
		maxValue = max(maxValue, v.Value)
	}

	barWidth, spacing := barLayout(opts.Width, len(values))
	bc := chart.BarChart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(maxValue)},
		},
		Bars: values,
	}

	return encode(func(buf *bytes.Buffer) error {
		return bc.Render(chart.PNG, buf)
	})
}

// barLayout spreads n bars across the plot width, two thirds bar and one
// third gap per slot.
func barLayout(width, n int) (barWidth, spacing int) {
	slot := (width - 120) / n
	barWidth = max(slot*2/3, 2)
	spacing = max(slot-barWidth, 1)
	return barWidth, spacing
}
