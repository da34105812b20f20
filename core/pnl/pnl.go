// Package pnl rolls phase costs and approved change orders up into per-project P&L rows.
package pnl

import (
	"slices"
	"sort"

	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultExcluded lists the project statuses left out of a roll-up when none are given.
var DefaultExcluded = []schema.ProjectStatus{schema.ProjectArchived}

var hundred = decimal.NewFromInt(100)

// Rollup builds one row per project whose status is not excluded. When no
// statuses are passed, DefaultExcluded applies. Only APPROVED change orders
// count toward the adjusted budget. Rows are ordered by project name, then ID.
func Rollup(projects []schema.Project, phases []schema.Phase, orders []schema.ChangeOrder, excluded ...schema.ProjectStatus) []schema.PLRow {
	if len(excluded) == 0 {
		excluded = DefaultExcluded
	}
	phasesByProject := lo.GroupBy(phases, func(p schema.Phase) string { return p.ProjectID })
	approvedByPhase := lo.GroupBy(
		lo.Filter(orders, func(o schema.ChangeOrder, _ int) bool { return o.Status == schema.ChangeOrderApproved }),
		func(o schema.ChangeOrder) string { return o.PhaseID },
	)

	rows := make([]schema.PLRow, 0, len(projects))
	for _, project := range projects {
		if slices.Contains(excluded, project.Status) {
			continue
		}
		row := schema.PLRow{
			ProjectID:            project.ID,
			ProjectName:          project.Name,
			Status:               project.Status,
			Budget:               project.Budget,
			EstimatedCost:        decimal.Zero,
			ActualCost:           decimal.Zero,
			ApprovedChangeOrders: decimal.Zero,
		}
		for _, phase := range phasesByProject[project.ID] {
			row.PhaseCount++
			if phase.Status == schema.PhaseComplete {
				row.CompletedPhases++
			}
			row.EstimatedCost = row.EstimatedCost.Add(phase.EstimatedCost)
			row.ActualCost = row.ActualCost.Add(phase.ActualCost)
			for _, order := range approvedByPhase[phase.ID] {
				row.ApprovedChangeOrders = row.ApprovedChangeOrders.Add(order.Amount)
			}
		}
		row.AdjustedBudget = row.Budget.Add(row.ApprovedChangeOrders)
		row.GrossProfit = row.AdjustedBudget.Sub(row.ActualCost)
		row.ProfitMargin = Margin(row.GrossProfit, row.AdjustedBudget)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProjectName != rows[j].ProjectName {
			return rows[i].ProjectName < rows[j].ProjectName
		}
		return rows[i].ProjectID < rows[j].ProjectID
	})
	return rows
}

// Margin returns gross as a percentage of adjusted, rounded to two places.
// It is exactly 0 when adjusted is zero or negative.
func Margin(gross, adjusted decimal.Decimal) float64 {
	if !adjusted.IsPositive() {
		return 0
	}
	return gross.Div(adjusted).Mul(hundred).Round(2).InexactFloat64()
}

// Summarize totals a set of rows. The portfolio margin follows the same rule as a row.
func Summarize(rows []schema.PLRow) schema.PLTotals {
	totals := schema.PLTotals{
		Projects:             len(rows),
		Budget:               decimal.Zero,
		EstimatedCost:        decimal.Zero,
		ActualCost:           decimal.Zero,
		ApprovedChangeOrders: decimal.Zero,
		AdjustedBudget:       decimal.Zero,
		GrossProfit:          decimal.Zero,
	}
	for _, row := range rows {
		totals.Budget = totals.Budget.Add(row.Budget)
		totals.EstimatedCost = totals.EstimatedCost.Add(row.EstimatedCost)
		totals.ActualCost = totals.ActualCost.Add(row.ActualCost)
		totals.ApprovedChangeOrders = totals.ApprovedChangeOrders.Add(row.ApprovedChangeOrders)
		totals.AdjustedBudget = totals.AdjustedBudget.Add(row.AdjustedBudget)
		totals.GrossProfit = totals.GrossProfit.Add(row.GrossProfit)
	}
	totals.ProfitMargin = Margin(totals.GrossProfit, totals.AdjustedBudget)
	return totals
}

// PortfolioBudget sums the budgets of projects whose status is not excluded.
func PortfolioBudget(projects []schema.Project, excluded ...schema.ProjectStatus) decimal.Decimal {
	if len(excluded) == 0 {
		excluded = DefaultExcluded
	}
	return lo.Reduce(projects, func(sum decimal.Decimal, p schema.Project, _ int) decimal.Decimal {
		if slices.Contains(excluded, p.Status) {
			return sum
		}
		return sum.Add(p.Budget)
	}, decimal.Zero)
}
