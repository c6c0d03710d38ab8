package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/database"
	"trafficlens/internal/testsupport"
)

func TestStageSQLite(t *testing.T) {
	db, err := database.OpenSQLite(testsupport.GetLogger())
	require.NoError(t, err)
	defer database.CloseSQLite(db)

	visits := testsupport.ParseVisits(t, testsupport.ScenarioCSV)
	require.NoError(t, database.StageSQLite(context.Background(), db, visits))

	var count int64
	require.NoError(t, db.Model(&database.Visit{}).Count(&count).Error)
	assert.Equal(t, int64(len(visits)), count)

	var mobile []database.Visit
	require.NoError(t, db.Where("device_category = ?", "mobile").Order("ts").Find(&mobile).Error)
	require.Len(t, mobile, 3)
	assert.Equal(t, 10, mobile[0].Visitors)
	assert.Equal(t, 1, mobile[0].Seq)
}

func TestOpenSQLiteIsolated(t *testing.T) {
	a, err := database.OpenSQLite(testsupport.GetLogger())
	require.NoError(t, err)
	defer database.CloseSQLite(a)

	b, err := database.OpenSQLite(testsupport.GetLogger())
	require.NoError(t, err)
	defer database.CloseSQLite(b)

	require.NoError(t, database.StageSQLite(context.Background(), a, testsupport.ParseVisits(t, testsupport.ScenarioCSV)))

	var count int64
	require.NoError(t, b.Model(&database.Visit{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStageDuckDB(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenDuckDB(ctx, testsupport.GetLogger())
	require.NoError(t, err)
	defer db.Close()

	visits := testsupport.ParseVisits(t, testsupport.TiesCSV)
	require.NoError(t, database.StageDuckDB(ctx, db, visits))

	var count, total int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*), SUM(visitors) FROM visits").Scan(&count, &total))
	assert.Equal(t, int64(5), count)
	assert.Equal(t, int64(26), total)
}

func TestNewVisit(t *testing.T) {
	visits := testsupport.ParseVisits(t, testsupport.ScenarioCSV)
	v := database.NewVisit(visits[0])

	assert.Equal(t, 0, v.Seq)
	assert.Equal(t, "desktop", v.DeviceCategory)
	assert.Equal(t, 30, v.Visitors)
	assert.Equal(t, visits[0].Timestamp.UnixMicro(), v.Ts)
}

func TestStageSQLiteIntoExistingDB(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	require.NoError(t, db.AutoMigrate(&database.Visit{}))

	require.NoError(t, database.StageSQLite(context.Background(), db, testsupport.ParseVisits(t, testsupport.TiesCSV)))
	require.NoError(t, database.StageSQLite(context.Background(), db, nil))

	var total int64
	require.NoError(t, db.Model(&database.Visit{}).Select("SUM(visitors)").Where("device_category = ?", "desktop").Scan(&total).Error)
	assert.Equal(t, int64(25), total)
}
