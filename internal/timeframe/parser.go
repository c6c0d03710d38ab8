package timeframe

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp matches none of the known layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts are tried in order. Fractional seconds after the seconds
// field are accepted by time.Parse even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"01/02/2006",
}

// ParseTimestamp parses a visit timestamp. Values without a zone are UTC.
// Precision is truncated to microseconds.
func ParseTimestamp(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// Calendar holds the fields derived from a timestamp.
type Calendar struct {
	Date    time.Time
	Day     int
	Month   int
	Year    int
	Hour    int
	Weekday string
}

// Derive splits ts into calendar fields. Weekday is the three-letter English
// abbreviation (Mon, Tue, ...).
func Derive(ts time.Time) Calendar {
	utc := ts.UTC()
	return Calendar{
		Date:    TruncateToBucket(utc, TimeFrameBucketSizeDay),
		Day:     utc.Day(),
		Month:   int(utc.Month()),
		Year:    utc.Year(),
		Hour:    utc.Hour(),
		Weekday: WeekdayAbbrev(utc.Weekday()),
	}
}

// WeekdayOrder lists weekday abbreviations Monday first.
var WeekdayOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayAbbrev returns the three-letter abbreviation of d.
func WeekdayAbbrev(d time.Weekday) string {
	return d.String()[:3]
}

// WeekdayIndex returns the Monday-first position of an abbreviation, or -1.
func WeekdayIndex(abbrev string) int {
	for i, w := range WeekdayOrder {
		if w == abbrev {
			return i
		}
	}
	return -1
}
