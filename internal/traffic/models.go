// Package traffic loads website-traffic exports and turns them into typed
// visit records.
package traffic

import (
	"time"

	"trafficlens/internal/timeframe"
)

// Column names expected in the input header.
const (
	ColumnDate           = "Date"
	ColumnDeviceCategory = "Device Category"
	ColumnBrowser        = "Browser"
	ColumnVisitors       = "# of Visitors"
	ColumnSessions       = "Sessions"
	ColumnBounceRate     = "Bounce Rate"
)

// RequiredColumns lists the header columns Load insists on.
var RequiredColumns = []string{
	ColumnDate,
	ColumnDeviceCategory,
	ColumnBrowser,
	ColumnVisitors,
	ColumnSessions,
	ColumnBounceRate,
}

// RawRecord is one input row as text, before any parsing.
type RawRecord struct {
	Seq            int // zero-based data row position in the file
	Date           string
	DeviceCategory string
	Browser        string
	Visitors       string
	Sessions       string
	BounceRate     string
}

// EnrichedRecord is a raw row with its timestamp parsed and calendar fields derived.
type EnrichedRecord struct {
	RawRecord
	Timestamp time.Time
	timeframe.Calendar
}

// VisitRecord is a fully typed row.
type VisitRecord struct {
	Seq            int
	Timestamp      time.Time
	Date           time.Time
	Day            int
	Month          int
	Year           int
	Hour           int
	Weekday        string
	DeviceCategory string
	Browser        string
	Visitors       int
	Sessions       int
	BounceRate     int
}

// Line returns the 1-based line number of the record in its source file,
// counting the header.
func (r RawRecord) Line() int {
	return r.Seq + 2
}
