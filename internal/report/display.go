package report

import (
	"fmt"
	"strconv"

	"github.com/guregu/null/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trafficlens/internal/analytics"
	"trafficlens/internal/output"
	"trafficlens/internal/window"
)

var titleCaser = cases.Title(language.English)

// WindowHeaders are the column titles of the annotated window table.
var WindowHeaders = []string{
	"date", "weekday", "day", "month", "year", "hour",
	"device", "browser", "visitors", "sessions", "bounce",
	"row", "rank", "dense", "count", "first", "last",
	"min", "max", "nth", "lag", "lead", "pct_rank", "ntile",
}

// WindowRecord formats one annotated row in WindowHeaders order.
func WindowRecord(r window.Row) []string {
	return []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Weekday,
		strconv.Itoa(r.Day),
		strconv.Itoa(r.Month),
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Hour),
		r.DeviceCategory,
		r.Browser,
		strconv.Itoa(r.Visitors),
		strconv.Itoa(r.Sessions),
		strconv.Itoa(r.BounceRate),
		strconv.Itoa(r.RowNum),
		strconv.Itoa(r.Rank),
		strconv.Itoa(r.DenseRank),
		strconv.Itoa(r.Count),
		strconv.Itoa(r.First),
		strconv.Itoa(r.Last),
		strconv.Itoa(r.Min),
		strconv.Itoa(r.Max),
		nullable(r.Nth),
		nullable(r.Lag),
		nullable(r.Lead),
		strconv.FormatFloat(r.PercentRank, 'f', 4, 64),
		strconv.Itoa(r.Ntile),
	}
}

func nullable(v null.Int) string {
	if !v.Valid {
		return "null"
	}
	return strconv.FormatInt(v.Int64, 10)
}

// WindowTable prints at most limit annotated rows.
func WindowTable(p *output.Printer, rows []window.Row, limit int) error {
	shown := window.Head(rows, limit)
	p.Header(fmt.Sprintf("Window statistics by device category (%d of %d rows)", len(shown), len(rows)))

	table := output.NewTable(p.Writer(), WindowHeaders)
	for _, r := range shown {
		table.AddRow(WindowRecord(r))
	}
	return table.Render()
}

// SummaryTables prints the grouped aggregates behind the charts.
func SummaryTables(p *output.Printer, s *analytics.Summary) error {
	p.Header("Overview")
	p.Print("records: %d  visitors: %d  sessions: %d  average bounce rate: %.1f%%",
		s.Records, s.TotalVisitors, s.TotalSessions, s.AverageBounceRate)

	p.Header("Top device categories")
	devices := output.NewTable(p.Writer(), []string{"device category", "visitors"})
	for _, d := range s.TopDevices {
		devices.AddRow([]string{titleCaser.String(d.Name), strconv.FormatInt(d.Count, 10)})
	}
	if err := devices.Render(); err != nil {
		return err
	}

	p.Header("Average visitors by weekday")
	weekdays := output.NewTable(p.Writer(), []string{"weekday", "average visitors"})
	for _, w := range s.WeekdayAverages {
		weekdays.AddRow([]string{w.Name, strconv.FormatFloat(w.Average, 'f', 1, 64)})
	}
	if err := weekdays.Render(); err != nil {
		return err
	}

	p.Header("Yearly visitors")
	years := output.NewTable(p.Writer(), []string{"year", "visitors"})
	for _, y := range s.Yearly {
		years.AddRow([]string{y.Date, strconv.Itoa(y.Count)})
	}
	if err := years.Render(); err != nil {
		return err
	}

	p.Header("Top browsers by bounce rate")
	browsers := output.NewTable(p.Writer(), []string{"browser", "average bounce rate"})
	for _, b := range s.TopBrowsers {
		browsers.AddRow([]string{b.Name, strconv.FormatFloat(b.Average, 'f', 1, 64)})
	}
	return browsers.Render()
}

// TrendSection prints the data-driven trend line for a yearly series and the
// comparison of the two latest years.
func TrendSection(p *output.Printer, s *analytics.Summary) {
	p.Header("Trend")
	trend, ok := Trends(s.Yearly)
	if !ok {
		p.Warning("no visits to summarize")
		return
	}

	p.Print("Peak year %s with %d visitors.", p.Bold(trend.PeakPeriod), trend.PeakVisitors)
	if !trend.Declining() {
		p.Print("The latest year is at its peak.")
	} else if trend.ChangeFromPeak != nil {
		p.Print("Latest year %s: %d visitors (%s from peak).",
			trend.LatestPeriod, trend.LatestVisitors, p.Trend(*trend.ChangeFromPeak))
	}
	p.Print("%s", p.Dim(fmt.Sprintf("slope: %.1f visitors per year", trend.Slope)))

	if cmp := s.YearOverYear; cmp != nil {
		p.Print("%s vs %s: %d vs %d visitors%s, bounce rate %.1f%% vs %.1f%%%s.",
			cmp.CurrentYear, cmp.PreviousYear,
			cmp.CurrentVisitors, cmp.PreviousVisitors, changeSuffix(p, cmp.VisitorsChange),
			cmp.CurrentBounceRate, cmp.PreviousBounceRate, changeSuffix(p, cmp.BounceRateChange))
	}
}

func changeSuffix(p *output.Printer, change *float64) string {
	if change == nil {
		return ""
	}
	return " (" + p.Trend(*change) + ")"
}

// ConclusionSection prints the fixed conclusion.
func ConclusionSection(p *output.Printer) {
	p.Header("Conclusion")
	p.Print("%s", Conclusion())
}

// Display prints the whole report: window table, aggregates, trend and conclusion.
func Display(p *output.Printer, rows []window.Row, s *analytics.Summary, limit int) error {
	if err := WindowTable(p, rows, limit); err != nil {
		return fmt.Errorf("window table: %w", err)
	}
	if err := SummaryTables(p, s); err != nil {
		return fmt.Errorf("summary tables: %w", err)
	}
	TrendSection(p, s)
	ConclusionSection(p)
	return nil
}
