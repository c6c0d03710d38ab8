package window

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/guregu/null/v5"

	"trafficlens/internal/database"
	"trafficlens/internal/traffic"
)

// windowQuery runs unchanged on SQLite and DuckDB. ts holds Unix microseconds.
const windowQuery = `
SELECT
    seq,
    ROW_NUMBER() OVER ordered AS row_num,
    RANK() OVER peers AS rnk,
    DENSE_RANK() OVER peers AS dense_rnk,
    COUNT(*) OVER peers AS running_count,
    FIRST_VALUE(visitors) OVER whole AS first_visitors,
    LAST_VALUE(visitors) OVER whole AS last_visitors,
    MIN(visitors) OVER whole AS min_visitors,
    MAX(visitors) OVER whole AS max_visitors,
    NTH_VALUE(visitors, 2) OVER whole AS nth_visitors,
    LAG(visitors) OVER ordered AS lag_visitors,
    LEAD(visitors) OVER ordered AS lead_visitors,
    PERCENT_RANK() OVER peers AS pct_rank,
    NTILE(2) OVER ordered AS bucket
FROM visits
WINDOW
    ordered AS (PARTITION BY device_category ORDER BY ts, seq),
    peers AS (PARTITION BY device_category ORDER BY ts),
    whole AS (PARTITION BY device_category ORDER BY ts, seq
              ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING)
ORDER BY device_category, ts, seq
`

// SQLiteEngine stages visits into an in-memory SQLite database and lets
// SQLite evaluate the window functions.
type SQLiteEngine struct {
	logger *slog.Logger
}

func (e *SQLiteEngine) Name() string { return EngineSQLite }

func (e *SQLiteEngine) Compute(ctx context.Context, visits []traffic.VisitRecord) ([]Row, error) {
	db, err := database.OpenSQLite(e.logger)
	if err != nil {
		return nil, err
	}
	defer database.CloseSQLite(db)

	if err := database.StageSQLite(ctx, db, visits); err != nil {
		return nil, err
	}

	rows, err := db.WithContext(ctx).Raw(windowQuery).Rows()
	if err != nil {
		return nil, fmt.Errorf("sqlite window query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows, visits)
}

// DuckDBEngine does the same against an in-memory DuckDB database.
type DuckDBEngine struct {
	logger *slog.Logger
}

func (e *DuckDBEngine) Name() string { return EngineDuckDB }

func (e *DuckDBEngine) Compute(ctx context.Context, visits []traffic.VisitRecord) ([]Row, error) {
	db, err := database.OpenDuckDB(ctx, e.logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := database.StageDuckDB(ctx, db, visits); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, windowQuery)
	if err != nil {
		return nil, fmt.Errorf("duckdb window query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows, visits)
}

// scanRows joins query results back onto the visits they were computed for.
func scanRows(rows *sql.Rows, visits []traffic.VisitRecord) ([]Row, error) {
	bySeq := make(map[int]traffic.VisitRecord, len(visits))
	for _, v := range visits {
		bySeq[v.Seq] = v
	}

	out := make([]Row, 0, len(visits))
	for rows.Next() {
		var (
			seq, rowNum, rnk, denseRnk, count int64
			first, last, minV, maxV           int64
			nth, lag, lead                    sql.NullInt64
			pctRank                           float64
			bucket                            int64
		)
		err := rows.Scan(&seq, &rowNum, &rnk, &denseRnk, &count,
			&first, &last, &minV, &maxV,
			&nth, &lag, &lead, &pctRank, &bucket)
		if err != nil {
			return nil, fmt.Errorf("scan window row: %w", err)
		}

		visit, ok := bySeq[int(seq)]
		if !ok {
			return nil, fmt.Errorf("window row references unknown seq %d", seq)
		}

		out = append(out, Row{
			VisitRecord: visit,
			RowNum:      int(rowNum),
			Rank:        int(rnk),
			DenseRank:   int(denseRnk),
			Count:       int(count),
			First:       int(first),
			Last:        int(last),
			Min:         int(minV),
			Max:         int(maxV),
			Nth:         null.NewInt(nth.Int64, nth.Valid),
			Lag:         null.NewInt(lag.Int64, lag.Valid),
			Lead:        null.NewInt(lead.Int64, lead.Valid),
			PercentRank: pctRank,
			Ntile:       int(bucket),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read window rows: %w", err)
	}
	return out, nil
}
