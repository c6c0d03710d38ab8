// Package timeframe_test contains tests for the timeframe package
package timeframe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/timeframe"
)

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"ISO with millis", "2019-03-10T14:00:00.000", time.Date(2019, 3, 10, 14, 0, 0, 0, time.UTC)},
		{"ISO with zone", "2019-03-10T14:00:00-07:00", time.Date(2019, 3, 10, 21, 0, 0, 0, time.UTC)},
		{"space separated", "2018-12-31 23:15:00", time.Date(2018, 12, 31, 23, 15, 0, 0, time.UTC)},
		{"US with meridiem", "01/01/2014 12:00:00 AM", time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"US afternoon", "07/04/2016 01:30:00 PM", time.Date(2016, 7, 4, 13, 30, 0, 0, time.UTC)},
		{"plain date", "2017-06-05", time.Date(2017, 6, 5, 0, 0, 0, 0, time.UTC)},
		{"padded", "  2017-06-05  ", time.Date(2017, 6, 5, 0, 0, 0, 0, time.UTC)},
		{"nanoseconds truncated", "2019-03-10T14:00:00.123456789", time.Date(2019, 3, 10, 14, 0, 0, 123456000, time.UTC)},
		{"distant past", "1600-01-01", time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"distant future", "2300-01-01T00:00:00", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := timeframe.ParseTimestamp(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2019-13-45"} {
		_, err := timeframe.ParseTimestamp(input)
		assert.ErrorIs(t, err, timeframe.ErrInvalidTimestamp, input)
	}
}

func TestDerive(t *testing.T) {
	// Friday, March 15, 2024 at 17:42 UTC
	cal := timeframe.Derive(time.Date(2024, 3, 15, 17, 42, 9, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), cal.Date)
	assert.Equal(t, 15, cal.Day)
	assert.Equal(t, 3, cal.Month)
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 17, cal.Hour)
	assert.Equal(t, "Fri", cal.Weekday)
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, timeframe.WeekdayIndex("Mon"))
	assert.Equal(t, 6, timeframe.WeekdayIndex("Sun"))
	assert.Equal(t, -1, timeframe.WeekdayIndex("Funday"))
}

func TestTruncateToBucket(t *testing.T) {
	ts := time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC) // Wednesday

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), timeframe.TruncateToBucket(ts, timeframe.TimeFrameBucketSizeYear))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), timeframe.TruncateToBucket(ts, timeframe.TimeFrameBucketSizeMonth))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), timeframe.TruncateToBucket(ts, timeframe.TimeFrameBucketSizeWeek))
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), timeframe.TruncateToBucket(ts, timeframe.TimeFrameBucketSizeDay))
	assert.Equal(t, time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC), timeframe.TruncateToBucket(ts, timeframe.TimeFrameBucketSizeHour))
}

func TestBuildTimeSeriesPointsFillsGaps(t *testing.T) {
	tf, err := timeframe.NewTimeFrame(
		time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 4, 2, 0, 0, 0, time.UTC),
		timeframe.TimeFrameBucketSizeDay,
	)
	require.NoError(t, err)

	points := tf.BuildTimeSeriesPoints([]timeframe.DateStat{
		{Date: "2024-07-01", Count: 4},
		{Date: "2024-07-03", Count: 3},
		{Date: "2024-07-03", Count: 1},
	})

	assert.Equal(t, []timeframe.DateStat{
		{Date: "2024-07-01", Count: 4},
		{Date: "2024-07-02", Count: 0},
		{Date: "2024-07-03", Count: 4},
		{Date: "2024-07-04", Count: 0},
	}, points)
}

func TestGenerateBucketKeysMonthly(t *testing.T) {
	tf, err := timeframe.NewTimeFrame(
		time.Date(2017, 11, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 2, 3, 0, 0, 0, 0, time.UTC),
		timeframe.TimeFrameBucketSizeMonth,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"2017-11", "2017-12", "2018-01", "2018-02"}, tf.GenerateBucketKeys())
}

func TestSpan(t *testing.T) {
	a := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	b := time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)
	c := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	tf, err := timeframe.Span([]time.Time{a, b, c}, timeframe.TimeFrameBucketSizeYear)
	require.NoError(t, err)
	assert.Equal(t, b, tf.From)
	assert.Equal(t, c, tf.To)
	assert.Equal(t, []string{"2018", "2019"}, tf.GenerateBucketKeys())

	_, err = timeframe.Span(nil, timeframe.TimeFrameBucketSizeDay)
	assert.Error(t, err)
}

func TestNewTimeFrameValidation(t *testing.T) {
	now := time.Now()
	_, err := timeframe.NewTimeFrame(now, now.Add(-time.Hour), timeframe.TimeFrameBucketSizeDay)
	assert.Error(t, err)

	_, err = timeframe.NewTimeFrame(now, now, timeframe.TimeFrameBucketSize("decade"))
	assert.Error(t, err)
}

func TestCalculateTrend(t *testing.T) {
	rising := []timeframe.DateStat{{Count: 1}, {Count: 2}, {Count: 3}}
	assert.InDelta(t, 1.0, timeframe.CalculateTrend(rising), 1e-9)

	falling := []timeframe.DateStat{{Count: 30}, {Count: 20}, {Count: 10}}
	assert.InDelta(t, -10.0, timeframe.CalculateTrend(falling), 1e-9)

	assert.Equal(t, 0.0, timeframe.CalculateTrend([]timeframe.DateStat{{Count: 5}}))
}
