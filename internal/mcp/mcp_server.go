// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/pmpulse/core"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// rangeOption documents the optional range argument shared by windowed reports.
func rangeOption() mcp.ToolOption {
	return mcp.WithString("range",
		mcp.Description("Trailing window: '3 months', '6 months', '12 months' or 'all'. Defaults to '6 months'."),
		mcp.Enum("3 months", "6 months", "12 months", "all"),
	)
}

// limitOption documents the optional limit argument shared by rankings.
func limitOption() mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description("Number of ranked entries to return (1-1000). Defaults to 8."))
}

// projectOption documents the optional project scope shared by every report.
func projectOption() mcp.ToolOption {
	return mcp.WithString("project_id", mcp.Description("Narrow the report to one project the user is a member of. Omit for every project the user can see."))
}

// userOption documents the caller identity every tool requires.
func userOption() mcp.ToolOption {
	return mcp.WithString("user_id", mcp.Description("ID of the user the report is computed for."), mcp.Required())
}

// NewMCPServer initializes and configures the pmpulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"pmpulse Reporting Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_phase_status",
		mcp.WithDescription("Count phases by workflow status across the user's projects."),
		userOption(),
		projectOption(),
	), h.handle(core.ReportPhaseStatus))

	s.AddTool(mcp.NewTool("get_project_status",
		mcp.WithDescription("Count projects by lifecycle status across the user's projects."),
		userOption(),
		projectOption(),
	), h.handle(core.ReportProjectStatus))

	s.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Count phases and documents created per month."),
		userOption(),
		projectOption(),
		rangeOption(),
	), h.handle(core.ReportActivity))

	s.AddTool(mcp.NewTool("get_completion_trend",
		mcp.WithDescription("Count phases completed per week over the last eight weeks."),
		userOption(),
		projectOption(),
	), h.handle(core.ReportCompletionTrend))

	s.AddTool(mcp.NewTool("get_staff_workload",
		mcp.WithDescription("Rank staff members by their number of phase assignments."),
		userOption(),
		projectOption(),
		limitOption(),
	), h.handle(core.ReportStaffWorkload))

	s.AddTool(mcp.NewTool("get_project_spend",
		mcp.WithDescription("Rank projects by the actual cost of their phases. Requires financial access."),
		userOption(),
		projectOption(),
		limitOption(),
	), h.handle(core.ReportProjectSpend))

	s.AddTool(mcp.NewTool("get_budget_curve",
		mcp.WithDescription("Cumulative planned versus actual spend per month for one project or the whole portfolio. Requires financial access."),
		userOption(),
		mcp.WithString("project_id", mcp.Description("Project to chart. Omit for the portfolio of every project that is not archived.")),
		rangeOption(),
	), h.handle(core.ReportBudgetCurve))

	s.AddTool(mcp.NewTool("get_profit_loss",
		mcp.WithDescription("Profit and loss per project with portfolio totals. Requires financial access."),
		userOption(),
		projectOption(),
	), h.handle(core.ReportProfitLoss))

	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Every dashboard section computed from one snapshot. Spend is included only for users with financial access."),
		userOption(),
		projectOption(),
		rangeOption(),
	), h.handle(core.ReportDashboard))

	return s
}

// StartMCPServer starts the pmpulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
