package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trafficlens/internal/traffic"
)

// ScenarioCSV holds two device categories with three rows each whose visitor
// counts rise 10/20/30. Rows are deliberately interleaved and out of order.
const ScenarioCSV = `Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate
2019-01-03T00:00:00.000,desktop,Chrome,30,35,40
2019-01-01T00:00:00.000,mobile,Safari,10,12,55
2019-01-01T00:00:00.000,desktop,Chrome,10,11,42
2019-01-02T00:00:00.000,mobile,Safari,20,22,60
2019-01-02T00:00:00.000,desktop,Firefox,20,21,38
2019-01-03T00:00:00.000,mobile,Chrome,30,31,58
`

// TiesCSV has two desktop rows sharing a timestamp.
const TiesCSV = `Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate
2019-01-01T00:00:00.000,desktop,Chrome,5,5,50
2019-01-02T00:00:00.000,desktop,Chrome,7,7,50
2019-01-02T00:00:00.000,desktop,Safari,9,9,50
2019-01-03T00:00:00.000,desktop,Chrome,4,4,50
2019-01-01T00:00:00.000,tablet,Chrome,1,1,20
`

// WriteCSV writes content to a file in a test temp dir and returns its path.
func WriteCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traffic.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ParseVisits loads, enriches and casts CSV content without normalization.
func ParseVisits(t *testing.T, content string) []traffic.VisitRecord {
	t.Helper()
	raw, err := traffic.LoadReader(strings.NewReader(content), traffic.LoadOptions{})
	require.NoError(t, err)
	visits, err := traffic.Parse(raw, nil)
	require.NoError(t, err)
	return visits
}

// GenerateCSV builds a deterministic export spanning days days for the given
// device categories. Visitor counts and bounce rates vary with the day index.
func GenerateCSV(start time.Time, days int, devices ...string) string {
	browsers := []string{"Chrome", "Safari", "Firefox", "Edge"}
	var b strings.Builder
	b.WriteString("Date,Device Category,Browser,# of Visitors,Sessions,Bounce Rate\n")
	for d := 0; d < days; d++ {
		ts := start.AddDate(0, 0, d)
		for i, device := range devices {
			visitors := 100 + (d*37+i*11)%250
			fmt.Fprintf(&b, "%s,%s,%s,%d,%d,%d\n",
				ts.Format("2006-01-02T15:04:05.000"),
				device,
				browsers[(d+i)%len(browsers)],
				visitors,
				visitors+visitors/10,
				30+(d*7+i*3)%50,
			)
		}
	}
	return b.String()
}

// SetupTestDB opens a private in-memory SQLite database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sanitizedName := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
