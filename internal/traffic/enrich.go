package traffic

import (
	"fmt"

	"trafficlens/internal/normalize"
	"trafficlens/internal/timeframe"
)

// Enrich parses every timestamp and derives the calendar fields. When n is
// not nil, browser and device category labels are normalized too.
func Enrich(raw []RawRecord, n *normalize.Normalizer) ([]EnrichedRecord, error) {
	enriched := make([]EnrichedRecord, len(raw))
	for i, r := range raw {
		ts, err := timeframe.ParseTimestamp(r.Date)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", r.Line(), ColumnDate, err)
		}

		if n != nil {
			r.Browser = n.Browser(r.Browser)
			r.DeviceCategory = n.DeviceCategory(r.DeviceCategory)
		}

		enriched[i] = EnrichedRecord{
			RawRecord: r,
			Timestamp: ts,
			Calendar:  timeframe.Derive(ts),
		}
	}
	return enriched, nil
}
