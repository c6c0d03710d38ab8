// Package window computes per-device-category window statistics over the
// visitor counts of a traffic dataset.
//
// Rows are partitioned by device category and ordered by timestamp, with the
// input position breaking ties. Rank, DenseRank, Count and PercentRank treat
// rows with equal timestamps as peers; every other statistic follows the
// strict row order.
package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/guregu/null/v5"

	"trafficlens/internal/traffic"
)

// ErrUnknownEngine is returned by New for an engine name it does not know.
var ErrUnknownEngine = errors.New("unknown window engine")

// Engine names accepted by New.
const (
	EngineNative = "native"
	EngineSQLite = "sqlite"
	EngineDuckDB = "duckdb"
)

// NtileBuckets is the bucket count of the Ntile statistic.
const NtileBuckets = 2

// NthPosition is the partition position read by the Nth statistic.
const NthPosition = 2

// Row is a visit record annotated with its window statistics.
type Row struct {
	traffic.VisitRecord

	RowNum      int
	Rank        int
	DenseRank   int
	Count       int
	First       int
	Last        int
	Min         int
	Max         int
	Nth         null.Int
	Lag         null.Int
	Lead        null.Int
	PercentRank float64
	Ntile       int
}

// Engine computes window statistics for a set of visits.
type Engine interface {
	Name() string
	Compute(ctx context.Context, visits []traffic.VisitRecord) ([]Row, error)
}

// New returns the engine registered under name.
func New(name string, logger *slog.Logger) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineNative:
		return NativeEngine{}, nil
	case EngineSQLite:
		return &SQLiteEngine{logger: logger}, nil
	case EngineDuckDB:
		return &DuckDBEngine{logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Engines lists every engine name in a stable order.
func Engines() []string {
	return []string{EngineNative, EngineSQLite, EngineDuckDB}
}

// SortVisits orders visits by device category, timestamp and input position.
func SortVisits(visits []traffic.VisitRecord) {
	sort.SliceStable(visits, func(i, j int) bool {
		return less(visits[i], visits[j])
	})
}

func less(a, b traffic.VisitRecord) bool {
	if a.DeviceCategory != b.DeviceCategory {
		return a.DeviceCategory < b.DeviceCategory
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Seq < b.Seq
}

// Filter returns the rows of one device category. An empty device keeps all rows.
func Filter(rows []Row, device string) []Row {
	if device == "" {
		return rows
	}
	var out []Row
	for _, r := range rows {
		if strings.EqualFold(r.DeviceCategory, device) {
			out = append(out, r)
		}
	}
	return out
}

// Partitions returns the distinct device categories of rows in output order.
func Partitions(rows []Row) []string {
	var names []string
	for i, r := range rows {
		if i == 0 || rows[i-1].DeviceCategory != r.DeviceCategory {
			names = append(names, r.DeviceCategory)
		}
	}
	return names
}

// Head returns at most n rows. A non-positive n keeps all rows.
func Head(rows []Row, n int) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
