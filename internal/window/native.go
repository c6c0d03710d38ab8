package window

import (
	"context"

	"github.com/guregu/null/v5"

	"trafficlens/internal/traffic"
)

// NativeEngine computes the statistics in memory with a sort and one pass
// per partition.
type NativeEngine struct{}

func (NativeEngine) Name() string { return EngineNative }

func (NativeEngine) Compute(ctx context.Context, visits []traffic.VisitRecord) ([]Row, error) {
	sorted := make([]traffic.VisitRecord, len(visits))
	copy(sorted, visits)
	SortVisits(sorted)

	rows := make([]Row, 0, len(sorted))
	for start := 0; start < len(sorted); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + 1
		for end < len(sorted) && sorted[end].DeviceCategory == sorted[start].DeviceCategory {
			end++
		}
		rows = append(rows, computePartition(sorted[start:end])...)
		start = end
	}
	return rows, nil
}

// computePartition annotates one device category's visits, already in order.
func computePartition(part []traffic.VisitRecord) []Row {
	n := len(part)
	rows := make([]Row, n)

	minV, maxV := part[0].Visitors, part[0].Visitors
	for _, v := range part[1:] {
		minV = min(minV, v.Visitors)
		maxV = max(maxV, v.Visitors)
	}

	var nth null.Int
	if n >= NthPosition {
		nth = null.IntFrom(int64(part[NthPosition-1].Visitors))
	}

	// first ceil(n/2) rows land in bucket 1; generalised for NtileBuckets
	base, extra := n/NtileBuckets, n%NtileBuckets

	rank, dense := 0, 0
	for i, v := range part {
		if i == 0 || !v.Timestamp.Equal(part[i-1].Timestamp) {
			rank = i + 1
			dense++
		}

		peersEnd := i + 1
		for peersEnd < n && part[peersEnd].Timestamp.Equal(v.Timestamp) {
			peersEnd++
		}

		r := Row{
			VisitRecord: v,
			RowNum:      i + 1,
			Rank:        rank,
			DenseRank:   dense,
			Count:       peersEnd,
			First:       part[0].Visitors,
			Last:        part[n-1].Visitors,
			Min:         minV,
			Max:         maxV,
			Nth:         nth,
			Ntile:       ntile(i, base, extra),
		}
		if i > 0 {
			r.Lag = null.IntFrom(int64(part[i-1].Visitors))
		}
		if i < n-1 {
			r.Lead = null.IntFrom(int64(part[i+1].Visitors))
		}
		if n > 1 {
			r.PercentRank = float64(rank-1) / float64(n-1)
		}
		rows[i] = r
	}
	return rows
}

// ntile returns the 1-based bucket of position i when n rows are split into
// buckets of size base, with the first extra buckets holding one more row.
func ntile(i, base, extra int) int {
	large := extra * (base + 1)
	if i < large {
		return i/(base+1) + 1
	}
	return extra + (i-large)/base + 1
}
