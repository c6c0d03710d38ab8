package analytics

import (
	"trafficlens/internal/timeframe"
	"trafficlens/internal/traffic"
)

// Default option values.
const (
	DefaultHistogramBins = 20
	DefaultBrowserLimit  = 10
)

// Options tunes Summarize.
type Options struct {
	DeviceLimit   int // 0 keeps every device category
	BrowserLimit  int
	HistogramBins int
}

// Summary bundles every aggregate the report shows.
type Summary struct {
	Records           int     `json:"records"`
	TotalVisitors     int64   `json:"total_visitors"`
	TotalSessions     int64   `json:"total_sessions"`
	AverageBounceRate float64 `json:"average_bounce_rate"`

	TopDevices      []MetricCountResult   `json:"top_devices"`
	Daily           []timeframe.DateStat  `json:"daily"`
	WeekdayAverages []MetricAverageResult `json:"weekday_averages"`
	BounceRates     []HistogramBin        `json:"bounce_rates"`
	Scatter         []ScatterPoint        `json:"-"`

	Monthly        []timeframe.DateStat  `json:"monthly"`
	Yearly         []timeframe.DateStat  `json:"yearly"`
	Hourly         []MetricCountResult   `json:"hourly"`
	TopBrowsers    []MetricAverageResult `json:"top_browsers_by_bounce_rate"`
	BounceByDevice []BoxStats            `json:"bounce_rate_by_device"`
	Timeline       []TimePoint           `json:"-"`

	YearOverYear *YearComparison `json:"year_over_year,omitempty"`
}

// Summarize computes every aggregate over visits.
func Summarize(visits []traffic.VisitRecord, opts Options) (*Summary, error) {
	if opts.HistogramBins < 1 {
		opts.HistogramBins = DefaultHistogramBins
	}
	if opts.BrowserLimit < 1 {
		opts.BrowserLimit = DefaultBrowserLimit
	}

	s := &Summary{
		Records:           len(visits),
		AverageBounceRate: AverageBounceRate(visits),
		BounceRates:       BounceRateHistogram(visits, opts.HistogramBins),
		Scatter:           VisitorsVsBounce(visits),
		BounceByDevice:    BounceRateByDevice(visits),
		Timeline:          VisitorsOverTime(visits),
	}
	s.TotalVisitors, s.TotalSessions = TotalVisitors(visits)

	var err error
	if s.TopDevices, err = TopDeviceCategories(visits, opts.DeviceLimit); err != nil {
		return nil, err
	}
	if s.Daily, err = DailyVisitors(visits); err != nil {
		return nil, err
	}
	if s.Monthly, err = MonthlyVisitors(visits); err != nil {
		return nil, err
	}
	if s.Yearly, err = YearlyVisitors(visits); err != nil {
		return nil, err
	}
	if s.WeekdayAverages, err = WeekdayAverages(visits); err != nil {
		return nil, err
	}
	if s.Hourly, err = HourlyVisitors(visits); err != nil {
		return nil, err
	}
	if s.TopBrowsers, err = TopBrowsersByBounceRate(visits, opts.BrowserLimit); err != nil {
		return nil, err
	}

	cmp, ok, err := LatestYearComparison(visits)
	if err != nil {
		return nil, err
	}
	if ok {
		s.YearOverYear = &cmp
	}
	return s, nil
}
