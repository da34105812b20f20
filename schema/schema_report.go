package schema

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Table is the CSV-serializable projection of a report: a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Tabular is implemented by every report payload.
type Tabular interface {
	Table() Table
}

// CategoryCount is the number of records holding one discrete value.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ActivityPoint is one month of creation activity.
type ActivityPoint struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Phases    int    `json:"phases"`
	Documents int    `json:"documents"`
}

// CompletionPoint is one week of completed phases.
type CompletionPoint struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Completed int    `json:"completed"`
}

// RankedEntry is one group of a top-N ranking. Money rankings also carry the
// exact Amount; Value is then its float approximation.
type RankedEntry struct {
	Rank   int              `json:"rank"`
	Key    string           `json:"key"`
	Label  string           `json:"label"`
	Value  float64          `json:"value"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Display renders the entry's value: money to two places, counts without trailing zeros.
func (e RankedEntry) Display() string {
	if e.Amount != nil {
		return e.Amount.StringFixed(2)
	}
	return strconv.FormatFloat(e.Value, 'f', -1, 64)
}

// CumulativePoint is one bucket of a planned-versus-actual S-curve, in whole currency units.
type CumulativePoint struct {
	Key               string `json:"key"`
	Label             string `json:"label"`
	CumulativePlanned int64  `json:"cumulative_planned"`
	CumulativeActual  int64  `json:"cumulative_actual"`
}

// PLRow is the financial summary of one project.
type PLRow struct {
	ProjectID            string          `json:"project_id"`
	ProjectName          string          `json:"project_name"`
	Status               ProjectStatus   `json:"status"`
	Budget               decimal.Decimal `json:"budget"`
	EstimatedCost        decimal.Decimal `json:"estimated_cost"`
	ActualCost           decimal.Decimal `json:"actual_cost"`
	ApprovedChangeOrders decimal.Decimal `json:"approved_change_orders"`
	AdjustedBudget       decimal.Decimal `json:"adjusted_budget"`
	GrossProfit          decimal.Decimal `json:"gross_profit"`
	ProfitMargin         float64         `json:"profit_margin"`
	PhaseCount           int             `json:"phase_count"`
	CompletedPhases      int             `json:"completed_phases"`
}

// PLTotals sums the P&L rows of a portfolio.
type PLTotals struct {
	Projects             int             `json:"projects"`
	Budget               decimal.Decimal `json:"budget"`
	EstimatedCost        decimal.Decimal `json:"estimated_cost"`
	ActualCost           decimal.Decimal `json:"actual_cost"`
	ApprovedChangeOrders decimal.Decimal `json:"approved_change_orders"`
	AdjustedBudget       decimal.Decimal `json:"adjusted_budget"`
	GrossProfit          decimal.Decimal `json:"gross_profit"`
	ProfitMargin         float64         `json:"profit_margin"`
}

// StatusReport is a status distribution over phases or projects.
type StatusReport struct {
	Subject string          `json:"subject"`
	Total   int             `json:"total"`
	Counts  []CategoryCount `json:"counts"`
}

// ActivityReport counts phases and documents created per month.
type ActivityReport struct {
	Range  RangeSelector   `json:"range"`
	Months int             `json:"months"`
	Points []ActivityPoint `json:"points"`
}

// CompletionTrendReport counts phases completed per week.
type CompletionTrendReport struct {
	Weeks  int               `json:"weeks"`
	Points []CompletionPoint `json:"points"`
}

// RankingReport is a top-N ranking of one metric.
type RankingReport struct {
	Metric  string        `json:"metric"`
	Limit   int           `json:"limit"`
	Entries []RankedEntry `json:"entries"`
}

// BudgetCurveReport is a cumulative planned-versus-actual spend curve.
type BudgetCurveReport struct {
	ProjectID    string            `json:"project_id,omitempty"`
	Range        RangeSelector     `json:"range"`
	Buckets      int               `json:"buckets"`
	TotalPlanned decimal.Decimal   `json:"total_planned"`
	Points       []CumulativePoint `json:"points"`
}

// ProfitLossReport lists per-project P&L rows with portfolio totals.
type ProfitLossReport struct {
	Rows   []PLRow  `json:"rows"`
	Totals PLTotals `json:"totals"`
}

// DashboardReport composes the dashboard sections from a single snapshot.
// Spend is only present for callers allowed to see financials.
type DashboardReport struct {
	PhaseStatus   StatusReport          `json:"phase_status"`
	ProjectStatus StatusReport          `json:"project_status"`
	Activity      ActivityReport        `json:"activity"`
	Completion    CompletionTrendReport `json:"completion"`
	Workload      RankingReport         `json:"workload"`
	Spend         *RankingReport        `json:"spend,omitempty"`
}


// Table implements Tabular.
func (r StatusReport) Table() Table {
	t := Table{Header: []string{"status", "count"}}
	for _, c := range r.Counts {
		t.Rows = append(t.Rows, []string{c.Category, strconv.Itoa(c.Count)})
	}
	return t
}

// Table implements Tabular.
func (r ActivityReport) Table() Table {
	t := Table{Header: []string{"month", "phases", "documents"}}
	for _, p := range r.Points {
		t.Rows = append(t.Rows, []string{p.Label, strconv.Itoa(p.Phases), strconv.Itoa(p.Documents)})
	}
	return t
}

// Table implements Tabular.
func (r CompletionTrendReport) Table() Table {
	t := Table{Header: []string{"week", "completed"}}
	for _, p := range r.Points {
		t.Rows = append(t.Rows, []string{p.Label, strconv.Itoa(p.Completed)})
	}
	return t
}

// Table implements Tabular.
func (r RankingReport) Table() Table {
	t := Table{Header: []string{"rank", "label", r.Metric}}
	for _, e := range r.Entries {
		t.Rows = append(t.Rows, []string{strconv.Itoa(e.Rank), e.Label, e.Display()})
	}
	return t
}

// Table implements Tabular.
func (r BudgetCurveReport) Table() Table {
	t := Table{Header: []string{"month", "cumulative_planned", "cumulative_actual"}}
	for _, p := range r.Points {
		t.Rows = append(t.Rows, []string{
			p.Label,
			strconv.FormatInt(p.CumulativePlanned, 10),
			strconv.FormatInt(p.CumulativeActual, 10),
		})
	}
	return t
}

// Table implements Tabular.
func (r ProfitLossReport) Table() Table {
	t := Table{Header: []string{
		"project",
		"status",
		"budget",
		"approved_change_orders",
		"adjusted_budget",
		"estimated_cost",
		"actual_cost",
		"gross_profit",
		"profit_margin",
		"phases",
		"completed_phases",
	}}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.ProjectName,
			string(row.Status),
			row.Budget.StringFixed(2),
			row.ApprovedChangeOrders.StringFixed(2),
			row.AdjustedBudget.StringFixed(2),
			row.EstimatedCost.StringFixed(2),
			row.ActualCost.StringFixed(2),
			row.GrossProfit.StringFixed(2),
			strconv.FormatFloat(row.ProfitMargin, 'f', 2, 64),
			strconv.Itoa(row.PhaseCount),
			strconv.Itoa(row.CompletedPhases),
		})
	}
	return t
}

// Table implements Tabular. Sections are flattened into one long table.
func (r DashboardReport) Table() Table {
	t := Table{Header: []string{"section", "key", "value"}}
	add := func(section, key, value string) {
		t.Rows = append(t.Rows, []string{section, key, value})
	}
	for _, c := range r.PhaseStatus.Counts {
		add("phase_status", c.Category, strconv.Itoa(c.Count))
	}
	for _, c := range r.ProjectStatus.Counts {
		add("project_status", c.Category, strconv.Itoa(c.Count))
	}
	for _, p := range r.Activity.Points {
		add("activity_phases", p.Label, strconv.Itoa(p.Phases))
		add("activity_documents", p.Label, strconv.Itoa(p.Documents))
	}
	for _, p := range r.Completion.Points {
		add("completion", p.Label, strconv.Itoa(p.Completed))
	}
	for _, e := range r.Workload.Entries {
		add("workload", e.Label, e.Display())
	}
	if r.Spend != nil {
		for _, e := range r.Spend.Entries {
			add("spend", e.Label, e.Display())
		}
	}
	return t
}
