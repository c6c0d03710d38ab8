// Package report turns computed statistics into terminal tables and the
// written summary of traffic trends.
package report

import (
	"strings"

	"trafficlens/internal/analytics"
	"trafficlens/internal/timeframe"
)

const conclusion = `After the peak in 2018, the traffic to lacity.org experienced a notable decrease. Several factors may have contributed to this decline, including:
- Decreased public engagement with news related to wildfires after the significant fires in 2018.
- Potential alterations to the website's structure, making it more challenging for users to locate desired information.
- A broader overarching trend of declining website traffic, likely influenced by the growing use of social media and alternative platforms for information retrieval.
- Despite the declining traffic, lacity.org remains a popular destination. It is imperative for the city to persist in enhancing the website's user experience to meet the evolving needs of its audience.`

// Conclusion returns the fixed written summary. It does not depend on the data.
func Conclusion() string {
	return conclusion
}

// ConclusionFactors returns the bulleted factors of the conclusion.
func ConclusionFactors() []string {
	var factors []string
	for _, line := range strings.Split(conclusion, "\n") {
		if item, ok := strings.CutPrefix(line, "- "); ok {
			factors = append(factors, item)
		}
	}
	return factors
}

// Trend describes a visitor series relative to its peak.
type Trend struct {
	PeakPeriod     string   `json:"peak_period"`
	PeakVisitors   int      `json:"peak_visitors"`
	LatestPeriod   string   `json:"latest_period"`
	LatestVisitors int      `json:"latest_visitors"`
	ChangeFromPeak *float64 `json:"change_from_peak,omitempty"`
	Slope          float64  `json:"slope"`
}

// Declining reports whether the latest period is below the peak.
func (t Trend) Declining() bool {
	return t.LatestVisitors < t.PeakVisitors
}

// Trends summarizes a series, typically yearly visitors. ok is false for an
// empty series.
func Trends(points []timeframe.DateStat) (trend Trend, ok bool) {
	peak, ok := analytics.Peak(points)
	if !ok {
		return Trend{}, false
	}
	latest := points[len(points)-1]

	return Trend{
		PeakPeriod:     peak.Date,
		PeakVisitors:   peak.Count,
		LatestPeriod:   latest.Date,
		LatestVisitors: latest.Count,
		ChangeFromPeak: analytics.PercentChange(float64(latest.Count), float64(peak.Count)),
		Slope:          timeframe.CalculateTrend(points),
	}, true
}
