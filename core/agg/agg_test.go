package agg

import (
	"fmt"
	"strings"
	"testing"

	"github.com/huangsam/pmpulse/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phaseStatus(p schema.Phase) schema.PhaseStatus { return p.Status }

func TestCountByPreSeedsKnownCategories(t *testing.T) {
	phases := []schema.Phase{
		{ID: "1", Status: schema.PhaseComplete},
		{ID: "2", Status: schema.PhaseComplete},
		{ID: "3", Status: schema.PhasePending},
	}

	got := CountBy(phases, phaseStatus, schema.AllPhaseStatuses)

	require.Len(t, got, len(schema.AllPhaseStatuses))
	for i, status := range schema.AllPhaseStatuses {
		assert.Equal(t, string(status), got[i].Category)
	}
	assert.Equal(t, schema.CategoryCount{Category: "PENDING", Count: 1}, got[0])
	assert.Equal(t, schema.CategoryCount{Category: "COMPLETE", Count: 2}, got[len(got)-1])
}

func TestCountByEmptyInput(t *testing.T) {
	got := CountBy(nil, phaseStatus, schema.AllPhaseStatuses)
	require.Len(t, got, 5)
	for _, c := range got {
		assert.Zero(t, c.Count)
	}
}

func TestCountByUnknownValuesSortedAfterKnown(t *testing.T) {
	phases := []schema.Phase{
		{Status: "ZZZ"},
		{Status: "BLOCKED"},
		{Status: schema.PhaseInProgress},
		{Status: "BLOCKED"},
	}

	got := CountBy(phases, phaseStatus, schema.AllPhaseStatuses)

	require.Len(t, got, 7)
	assert.Equal(t, schema.CategoryCount{Category: "BLOCKED", Count: 2}, got[5])
	assert.Equal(t, schema.CategoryCount{Category: "ZZZ", Count: 1}, got[6])
}

func TestCountBySumsToInputLength(t *testing.T) {
	statuses := append([]schema.PhaseStatus{"OTHER"}, schema.AllPhaseStatuses...)
	var phases []schema.Phase
	for i := range 37 {
		phases = append(phases, schema.Phase{Status: statuses[i%len(statuses)]})
	}

	total := 0
	for _, c := range CountBy(phases, phaseStatus, schema.AllPhaseStatuses) {
		total += c.Count
	}
	assert.Equal(t, len(phases), total)
}

func staffAssignments(counts []int) ([]schema.Assignment, map[string]string) {
	var out []schema.Assignment
	names := make(map[string]string)
	for i, n := range counts {
		id := fmt.Sprintf("s-%d", i)
		names[id] = fmt.Sprintf("Staff %d", i)
		for j := range n {
			out = append(out, schema.Assignment{StaffID: id, PhaseID: fmt.Sprintf("ph-%d", j)})
		}
	}
	return out, names
}

func TestTopCountStaffWorkload(t *testing.T) {
	assignments, names := staffAssignments([]int{10, 9, 8, 7, 6, 5, 4, 3, 2})
	group := func(a schema.Assignment) (string, string) { return a.StaffID, names[a.StaffID] }

	got := TopCount(assignments, group, 8)

	require.Len(t, got, 8)
	for i, e := range got {
		assert.Equal(t, float64(10-i), e.Value)
		assert.Equal(t, i+1, e.Rank)
		assert.NotEqual(t, "s-8", e.Key, "the count-2 staff member is excluded")
	}
}

func TestTopNSumsAndOrders(t *testing.T) {
	phases := []schema.Phase{
		{ProjectID: "p1", Name: "a"},
		{ProjectID: "p2", Name: "b"},
		{ProjectID: "p1", Name: "c"},
	}
	cost := map[string]int64{"a": 100, "b": 150, "c": 75}
	group := func(p schema.Phase) (string, string) { return p.ProjectID, "Project " + p.ProjectID }

	got := TopN(phases, group, func(p schema.Phase) decimal.Decimal { return decimal.NewFromInt(cost[p.Name]) }, 5)

	require.Len(t, got, 2)
	assert.Equal(t, schema.RankedEntry{Rank: 1, Key: "p1", Label: "Project p1", Value: 175}, got[0])
	assert.Equal(t, schema.RankedEntry{Rank: 2, Key: "p2", Label: "Project p2", Value: 150}, got[1])
}

func TestTopAmountSumsExactly(t *testing.T) {
	phases := []schema.Phase{
		{ProjectID: "p1", ActualCost: decimal.RequireFromString("0.10")},
		{ProjectID: "p1", ActualCost: decimal.RequireFromString("0.20")},
		{ProjectID: "p2", ActualCost: decimal.RequireFromString("0.30")},
		{ProjectID: "p3", ActualCost: decimal.RequireFromString("0.29")},
	}
	group := func(p schema.Phase) (string, string) { return p.ProjectID, "Project " + p.ProjectID }

	got := TopAmount(phases, group, func(p schema.Phase) decimal.Decimal { return p.ActualCost }, 5)

	require.Len(t, got, 3)
	for _, e := range got[:2] {
		require.NotNil(t, e.Amount)
		assert.True(t, e.Amount.Equal(decimal.RequireFromString("0.3")), e.Key)
		assert.Equal(t, 0.3, e.Value)
		assert.Equal(t, "0.30", e.Display())
	}
	// Equal amounts fall back to the label order
	assert.Equal(t, "p1", got[0].Key)
	assert.Equal(t, "p2", got[1].Key)
	assert.Equal(t, "p3", got[2].Key)
	assert.Equal(t, "0.29", got[2].Display())
}

func TestTopNProperties(t *testing.T) {
	assignments, names := staffAssignments([]int{3, 3, 1, 7, 7, 2, 5, 0, 4, 4, 4})
	group := func(a schema.Assignment) (string, string) { return a.StaffID, names[a.StaffID] }

	for _, n := range []int{0, 1, 3, 8, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			got := TopCount(assignments, group, n)
			assert.LessOrEqual(t, len(got), n)
			seen := map[string]bool{}
			for i, e := range got {
				assert.False(t, seen[e.Key])
				seen[e.Key] = true
				if i > 0 {
					assert.GreaterOrEqual(t, got[i-1].Value, e.Value)
				}
			}
		})
	}
}

func TestTopNTiesAreDeterministic(t *testing.T) {
	records := []schema.Staff{{ID: "3", Name: "Carol"}, {ID: "1", Name: "Bob"}, {ID: "2", Name: "Alice"}}
	group := func(s schema.Staff) (string, string) { return s.ID, s.Name }

	first := TopCount(records, group, 3)
	reversed := []schema.Staff{records[2], records[1], records[0]}
	second := TopCount(reversed, group, 3)

	assert.Equal(t, first, second)
	assert.Equal(t, "Alice", first[0].Label)
	assert.Equal(t, "Carol", first[2].Label)
}

func TestTopNTruncatesLongLabels(t *testing.T) {
	name := strings.Repeat("x", 25)
	got := TopCount([]schema.Staff{{ID: "1", Name: name}}, func(s schema.Staff) (string, string) { return s.ID, s.Name }, 8)
	require.Len(t, got, 1)
	assert.Equal(t, strings.Repeat("x", 20)+"...", got[0].Label)
}
