package iostore

import (
	"testing"
	"time"

	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_NoneBackend(t *testing.T) {
	store, err := NewAuditStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// RecordRun should return 0 for NoneBackend
	runID, err := store.RecordRun(schema.ReportRun{Report: "activity", UserID: "u"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, string(schema.NoneBackend), status.Backend)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestAuditStore_SQLite(t *testing.T) {
	store, err := NewAuditStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	first, err := store.RecordRun(schema.ReportRun{
		Report:    "activity",
		UserID:    "u-owner",
		Range:     string(schema.Range3Months),
		StartTime: start,
		EndTime:   start.Add(250 * time.Millisecond),
		Outcome:   schema.OutcomeOK,
		Rows:      3,
	})
	require.NoError(t, err)
	assert.Greater(t, first, int64(0))

	second, err := store.RecordRun(schema.ReportRun{
		Report:    "budget-curve",
		UserID:    "u-pm",
		ProjectID: "p-bridge",
		StartTime: start.Add(time.Hour),
		EndTime:   start.Add(time.Hour + 10*time.Millisecond),
		Outcome:   schema.OutcomeError,
		Err:       "not found",
	})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 1, status.FailedRuns)
	assert.Equal(t, second, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(start.Add(time.Hour)))
	assert.True(t, status.OldestRunTime.Equal(start))
	assert.Equal(t, int64(2), status.TableSizes[reportRunsTable])

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "activity", runs[0].Report)
	assert.Equal(t, int64(250), runs[0].DurationMs)
	assert.Equal(t, int32(3), runs[0].Rows)
	require.NotNil(t, runs[0].Range)
	assert.Equal(t, "3 months", *runs[0].Range)
	assert.Nil(t, runs[0].ProjectID)
	assert.Nil(t, runs[0].Err)

	assert.Equal(t, string(schema.OutcomeError), runs[1].Outcome)
	assert.Nil(t, runs[1].Range)
	require.NotNil(t, runs[1].ProjectID)
	assert.Equal(t, "p-bridge", *runs[1].ProjectID)
	require.NotNil(t, runs[1].Err)
	assert.Equal(t, "not found", *runs[1].Err)
}

func TestGetCreateReportRunsQuery(t *testing.T) {
	assert.Contains(t, getCreateReportRunsQuery(schema.SQLiteBackend), "AUTOINCREMENT")
	assert.Contains(t, getCreateReportRunsQuery(schema.MySQLBackend), "AUTO_INCREMENT")
	assert.Contains(t, getCreateReportRunsQuery(schema.PostgreSQLBackend), "BIGSERIAL")
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		assert.Contains(t, getCreateReportRunsQuery(backend), "range_selector")
	}
}
