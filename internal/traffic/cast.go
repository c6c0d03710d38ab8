package traffic

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"trafficlens/internal/normalize"
)

// ErrInvalidNumber is returned when a numeric column cannot be cast to an integer.
var ErrInvalidNumber = errors.New("invalid number")

// Cast converts the visitor, session and bounce-rate columns to integers.
func Cast(rows []EnrichedRecord) ([]VisitRecord, error) {
	visits := make([]VisitRecord, len(rows))
	for i, r := range rows {
		visitors, err := CastInt(r.Visitors)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", r.Line(), ColumnVisitors, err)
		}
		sessions, err := CastInt(r.Sessions)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", r.Line(), ColumnSessions, err)
		}
		bounce, err := CastInt(r.BounceRate)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", r.Line(), ColumnBounceRate, err)
		}

		visits[i] = VisitRecord{
			Seq:            r.Seq,
			Timestamp:      r.Timestamp,
			Date:           r.Calendar.Date,
			Day:            r.Day,
			Month:          r.Month,
			Year:           r.Year,
			Hour:           r.Hour,
			Weekday:        r.Weekday,
			DeviceCategory: r.DeviceCategory,
			Browser:        r.Browser,
			Visitors:       visitors,
			Sessions:       sessions,
			BounceRate:     bounce,
		}
	}
	return visits, nil
}

// CastInt converts a text cell to a 32-bit integer the way a SQL int cast
// does: decimals are truncated toward zero and values outside the int32 range
// are rejected. Thousands separators and a trailing percent sign are accepted.
func CastInt(value string) (int, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidNumber)
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, value)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, value)
	}
	return int(f), nil
}

// Parse runs Enrich and Cast.
func Parse(raw []RawRecord, n *normalize.Normalizer) ([]VisitRecord, error) {
	enriched, err := Enrich(raw, n)
	if err != nil {
		return nil, err
	}
	return Cast(enriched)
}
