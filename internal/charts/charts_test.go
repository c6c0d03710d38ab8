package charts_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/analytics"
	"trafficlens/internal/charts"
	"trafficlens/internal/testsupport"
)

var pngMagic = []byte("\x89PNG")

func summaryFor(t *testing.T, csv string) *analytics.Summary {
	t.Helper()
	summary, err := analytics.Summarize(testsupport.ParseVisits(t, csv), analytics.Options{})
	require.NoError(t, err)
	return summary
}

func TestRenderStandardCharts(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := summaryFor(t, testsupport.GenerateCSV(start, 30, "desktop", "mobile", "tablet"))

	rendered, err := charts.Render(context.Background(), summary, charts.Options{Width: 800, Height: 400})
	require.NoError(t, err)

	names := make([]string, len(rendered))
	for i, c := range rendered {
		names[i] = c.Name
		assert.True(t, bytes.HasPrefix(c.PNG, pngMagic), c.Name)
		assert.NotEmpty(t, c.Title)
	}
	assert.Equal(t, []string{
		charts.TopDevices,
		charts.DailyVisitors,
		charts.WeekdayAverages,
		charts.BounceRateHistogram,
		charts.VisitorsVsBounce,
	}, names)
}

func TestRenderExtendedCharts(t *testing.T) {
	summary := summaryFor(t, testsupport.ScenarioCSV)

	rendered, err := charts.Render(context.Background(), summary, charts.Options{Width: 800, Height: 400, Extended: true})
	require.NoError(t, err)
	assert.Len(t, rendered, 10)

	for _, name := range []string{charts.TopBrowsers, charts.BounceRateByDevice, charts.VisitorsOverTime} {
		c, ok := charts.Find(rendered, name)
		require.True(t, ok, name)
		assert.True(t, bytes.HasPrefix(c.PNG, pngMagic), name)
	}

	_, ok := charts.Find(rendered, "missing")
	assert.False(t, ok)
}

func TestRenderSingleDay(t *testing.T) {
	csv := "Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate\n" +
		"2019-01-01T00:00:00.000,desktop,Chrome,5,5,40\n"

	rendered, err := charts.Render(context.Background(), summaryFor(t, csv), charts.Options{Width: 640, Height: 320})
	require.NoError(t, err)
	assert.Len(t, rendered, 5)
}

func TestRenderSingleRecordExtended(t *testing.T) {
	csv := "Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate\n" +
		"2019-01-01T00:00:00.000,desktop,Chrome,5,5,40\n"

	rendered, err := charts.Render(context.Background(), summaryFor(t, csv), charts.Options{Width: 640, Height: 320, Extended: true})
	require.NoError(t, err)

	box, ok := charts.Find(rendered, charts.BounceRateByDevice)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(box.PNG, pngMagic))
	_, ok = charts.Find(rendered, charts.VisitorsOverTime)
	assert.True(t, ok)
}

func TestRenderEmptySummary(t *testing.T) {
	summary, err := analytics.Summarize(nil, analytics.Options{})
	require.NoError(t, err)

	rendered, err := charts.Render(context.Background(), summary, charts.Options{Width: 640, Height: 320})
	require.NoError(t, err)
	assert.Empty(t, rendered)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	rendered := []charts.Chart{{Name: charts.TopDevices, PNG: []byte("png")}}

	require.NoError(t, charts.WriteFiles(dir, rendered, testsupport.GetLogger()))

	data, err := os.ReadFile(filepath.Join(dir, "top-devices.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestRenderConcurrentMatchesSequential(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := summaryFor(t, testsupport.GenerateCSV(start, 20, "desktop", "mobile"))

	sequential, err := charts.Render(context.Background(), summary, charts.Options{Width: 640, Height: 320, Extended: true})
	require.NoError(t, err)
	concurrent, err := charts.Render(context.Background(), summary, charts.Options{Width: 640, Height: 320, Extended: true, Workers: 4})
	require.NoError(t, err)

	require.Len(t, concurrent, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].Name, concurrent[i].Name)
	}
}

func TestRenderCancelled(t *testing.T) {
	summary := summaryFor(t, testsupport.ScenarioCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := charts.Render(ctx, summary, charts.Options{Width: 640, Height: 320})
	assert.ErrorIs(t, err, context.Canceled)
}
