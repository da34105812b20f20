package cmd

import (
	"fmt"

	"github.com/huangsam/pmpulse/core"
	"github.com/spf13/cobra"
)

// reportCommand builds the command that runs one report for --user.
func reportCommand(report, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:     report,
		Short:   short,
		Long:    long,
		Args:    cobra.NoArgs,
		PreRunE: reportSetupWrapper,
		// Errors are returned so main can flush the audit recorder before exiting
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := core.ExecuteReport(report)(rootCtx, cfg, storeManager); err != nil {
				return fmt.Errorf("cannot run %s report: %w", report, err)
			}
			return nil
		},
	}
}

var phaseStatusCmd = reportCommand(core.ReportPhaseStatus,
	"Count phases by workflow status.",
	`Count the phases of every project you can see by workflow status.

Statuses are always listed in workflow order (PENDING, IN_PROGRESS,
REVIEW_REQUESTED, UNDER_REVIEW, COMPLETE), including those with no phases.
A failed snapshot read renders an all-zero table instead of an error.

Examples:
  # Phase status for a user
  pmpulse phase-status --user u-42

  # Narrow to one project you are a member of
  pmpulse phase-status --user u-42 --project p-7`)

var projectStatusCmd = reportCommand(core.ReportProjectStatus,
	"Count projects by lifecycle status.",
	`Count the projects you can see by lifecycle status.

Examples:
  pmpulse project-status --user u-42 --output json`)

var activityCmd = reportCommand(core.ReportActivity,
	"Count phases and documents created per month.",
	`Count phases and documents created per calendar month over a trailing range.

Every month in the range is listed, oldest first, even months with no activity.

Examples:
  # The last quarter
  pmpulse activity --user u-42 --range "3 months"

  # Everything, as the last 120 months
  pmpulse activity --user u-42 --range all`)

var completionCmd = reportCommand(core.ReportCompletionTrend,
	"Count phases completed per week over the last eight weeks.",
	`Count phases that reached COMPLETE in each of the last eight weeks.

Weeks start on Sunday. Labels are month/day by default; use --week-labels iso
for ISO week numbers.

Examples:
  pmpulse completion --user u-42
  pmpulse completion --user u-42 --week-labels iso`)

var workloadCmd = reportCommand(core.ReportStaffWorkload,
	"Rank staff members by phase assignments.",
	`Rank the staff assigned to your projects by how many phases they are assigned to.

Examples:
  pmpulse workload --user u-42 --limit 5`)

var spendCmd = reportCommand(core.ReportProjectSpend,
	"Rank projects by actual cost.",
	`Rank projects by the summed actual cost of their phases.

Requires financial access (OWNER, ADMIN or PROJECT_MANAGER role).

Examples:
  pmpulse spend --user u-1 --output csv --output-file spend.csv`)

var curveCmd = reportCommand(core.ReportBudgetCurve,
	"Cumulative planned versus actual spend per month.",
	`Build an S-curve of cumulative planned and actual spend.

Without --project the curve covers every project that is not archived and the
planned line spreads the summed budget evenly over the months shown.

Requires financial access.

Examples:
  pmpulse curve --user u-1 --range "12 months"
  pmpulse curve --user u-1 --project p-7`)

var pnlCmd = reportCommand(core.ReportProfitLoss,
	"Profit and loss per project with portfolio totals.",
	`Compute budget, costs, approved change orders, gross profit and margin per project.

Requires financial access. This is the only report that can be written as Parquet.

Examples:
  pmpulse pnl --user u-1
  pmpulse pnl --user u-1 --output parquet --output-file pnl.parquet`)

var dashboardCmd = reportCommand(core.ReportDashboard,
	"Every dashboard section from one snapshot.",
	`Render phase status, project status, activity, completion trend, staff
workload and (for users with financial access) project spend, all computed
from a single snapshot.

Examples:
  pmpulse dashboard --user u-42
  pmpulse dashboard --user u-42 --output json`)
