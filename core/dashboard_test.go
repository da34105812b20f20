package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardMatchesStandaloneReports(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	dash, err := e.Dashboard(ctx, testutil.OwnerID, schema.Range6Months)
	require.NoError(t, err)

	phases, err := e.PhaseStatus(ctx, testutil.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, phases, dash.PhaseStatus)

	projects, err := e.ProjectStatus(ctx, testutil.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, projects, dash.ProjectStatus)

	activity, err := e.Activity(ctx, testutil.OwnerID, schema.Range6Months)
	require.NoError(t, err)
	assert.Equal(t, activity, dash.Activity)

	completion, err := e.CompletionTrend(ctx, testutil.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, completion, dash.Completion)

	workload, err := e.StaffWorkload(ctx, testutil.OwnerID, 0)
	require.NoError(t, err)
	assert.Equal(t, workload, dash.Workload)

	spend, err := e.ProjectSpend(ctx, testutil.OwnerID, 0)
	require.NoError(t, err)
	require.NotNil(t, dash.Spend)
	assert.Equal(t, spend, *dash.Spend)
}

func TestDashboardSpendGating(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		user      string
		wantSpend bool
	}{
		{testutil.OwnerID, true},
		{testutil.ManagerID, true},
		{testutil.MemberID, false},
		{testutil.OutsiderID, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			dash, err := e.Dashboard(ctx, tt.user, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSpend, dash.Spend != nil)

			raw, err := json.Marshal(dash)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSpend, containsKey(t, raw, "spend"))
		})
	}
}

func containsKey(t *testing.T, raw []byte, key string) bool {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	_, ok := fields[key]
	return ok
}

func TestDashboardWithoutProjects(t *testing.T) {
	e, _ := newTestEngine(t)

	dash, err := e.Dashboard(context.Background(), testutil.OutsiderID, schema.Range3Months)
	require.NoError(t, err)

	assert.Zero(t, dash.PhaseStatus.Total)
	assert.Len(t, dash.PhaseStatus.Counts, len(schema.AllPhaseStatuses))
	assert.Len(t, dash.ProjectStatus.Counts, len(schema.AllProjectStatuses))
	assert.Len(t, dash.Activity.Points, 3)
	assert.Len(t, dash.Completion.Points, contract.CompletionWeeks)
	assert.NotNil(t, dash.Workload.Entries)
	assert.Empty(t, dash.Workload.Entries)
	assert.Nil(t, dash.Spend)
}

func TestDashboardTable(t *testing.T) {
	e, _ := newTestEngine(t)

	dash, err := e.Dashboard(context.Background(), testutil.ManagerID, schema.Range3Months)
	require.NoError(t, err)

	table := dash.Table()
	assert.Equal(t, []string{"section", "key", "value"}, table.Header)

	sections := make(map[string]int)
	for _, row := range table.Rows {
		sections[row[0]]++
	}
	assert.Equal(t, len(schema.AllPhaseStatuses), sections["phase_status"])
	assert.Equal(t, len(schema.AllProjectStatuses), sections["project_status"])
	assert.Equal(t, 3, sections["activity_phases"])
	assert.Equal(t, 3, sections["activity_documents"])
	assert.Equal(t, contract.CompletionWeeks, sections["completion"])
	assert.Equal(t, 2, sections["workload"])
	assert.Equal(t, 1, sections["spend"])
}
