package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
	mcp_internal "github.com/huangsam/pmpulse/internal/mcp"
	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortfolioManager() *iostore.MockStoreManager {
	mem := iostore.NewMemoryStore(testutil.Portfolio())
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSnapshotStore").Return(mem)
	mgr.On("GetIdentityProvider").Return(mem)
	mgr.On("GetRecorder").Return(nil)
	return mgr
}

func callTool(t *testing.T, mgr contract.StoreManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(&contract.Config{}, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	// Validation fails before the manager is touched
	var mgr contract.StoreManager

	t.Run("missing user_id", func(t *testing.T) {
		res := callTool(t, mgr, "get_phase_status", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "user_id is required")
	})

	t.Run("invalid range", func(t *testing.T) {
		res := callTool(t, mgr, "get_activity", map[string]any{
			"user_id": testutil.OwnerID,
			"range":   "forever",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid range")
	})

	t.Run("limit out of bounds", func(t *testing.T) {
		res := callTool(t, mgr, "get_staff_workload", map[string]any{
			"user_id": testutil.OwnerID,
			"limit":   5000.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "limit must be between 1 and 1000")
	})

	t.Run("store not initialized", func(t *testing.T) {
		res := callTool(t, mgr, "get_phase_status", map[string]any{"user_id": testutil.OwnerID})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "snapshot store is not initialized")
	})
}

func TestMCPServerTools_Registered(t *testing.T) {
	s := mcp_internal.NewMCPServer(&contract.Config{}, newPortfolioManager())
	for _, name := range []string{
		"get_phase_status", "get_project_status", "get_activity", "get_completion_trend",
		"get_staff_workload", "get_project_spend", "get_budget_curve", "get_profit_loss", "get_dashboard",
	} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestMCPServerHandlers_Reports(t *testing.T) {
	mgr := newPortfolioManager()

	t.Run("profit and loss for the owner", func(t *testing.T) {
		res := callTool(t, mgr, "get_profit_loss", map[string]any{"user_id": testutil.OwnerID})
		require.False(t, res.IsError, text(res))

		var report schema.ProfitLossReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		assert.Len(t, report.Rows, 2)
		assert.True(t, report.Totals.Budget.Equal(decimal.NewFromInt(150000)), report.Totals.Budget.String())
	})

	t.Run("financials denied for a member", func(t *testing.T) {
		res := callTool(t, mgr, "get_profit_loss", map[string]any{"user_id": testutil.MemberID})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "access denied")
	})

	t.Run("workload honours the limit", func(t *testing.T) {
		res := callTool(t, mgr, "get_staff_workload", map[string]any{
			"user_id": testutil.OwnerID,
			"limit":   1.0,
		})
		require.False(t, res.IsError, text(res))

		var report schema.RankingReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		require.Len(t, report.Entries, 1)
		assert.Equal(t, "Ada Lovelace", report.Entries[0].Label)
		assert.InDelta(t, 3, report.Entries[0].Value, 0)
	})

	t.Run("project_id narrows the report", func(t *testing.T) {
		res := callTool(t, mgr, "get_phase_status", map[string]any{
			"user_id":    testutil.OwnerID,
			"project_id": testutil.BridgeID,
		})
		require.False(t, res.IsError, text(res))

		var report schema.StatusReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		assert.Equal(t, 2, report.Total)
	})

	t.Run("project_id outside the membership is denied", func(t *testing.T) {
		for _, projectID := range []string{testutil.TowerID, "no-such-project"} {
			res := callTool(t, mgr, "get_staff_workload", map[string]any{
				"user_id":    testutil.ManagerID,
				"project_id": projectID,
			})
			assert.True(t, res.IsError, projectID)
			assert.Contains(t, text(res), "access denied", projectID)
		}
	})

	t.Run("spend amounts are exact", func(t *testing.T) {
		res := callTool(t, mgr, "get_project_spend", map[string]any{"user_id": testutil.OwnerID})
		require.False(t, res.IsError, text(res))

		var report schema.RankingReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		require.NotEmpty(t, report.Entries)
		require.NotNil(t, report.Entries[0].Amount)
		assert.True(t, report.Entries[0].Amount.Equal(decimal.NewFromInt(40000)))
	})

	t.Run("dashboard hides spend from members", func(t *testing.T) {
		res := callTool(t, mgr, "get_dashboard", map[string]any{
			"user_id": testutil.MemberID,
			"range":   "all",
		})
		require.False(t, res.IsError, text(res))

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(text(res)), &raw))
		assert.Contains(t, raw, "phase_status")
		assert.NotContains(t, raw, "spend")
	})
}
