package core

import (
	"cmp"
	"context"

	"github.com/huangsam/pmpulse/core/agg"
	"github.com/huangsam/pmpulse/core/bucket"
	"github.com/huangsam/pmpulse/core/collect"
	"github.com/huangsam/pmpulse/core/curve"
	"github.com/huangsam/pmpulse/core/pnl"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PhaseStatus returns the phase status distribution across the caller's projects.
// Denied callers and failed fetches get a zero-filled distribution instead of an error.
func (e *Engine) PhaseStatus(ctx context.Context, userID string) (schema.StatusReport, error) {
	r := e.begin(ReportPhaseStatus, Params{UserID: userID})
	snap, err := e.collector.Collect(ctx, e.request(userID, schema.ActionViewReports, collect.NeedPhases))
	if err != nil {
		return renderSafe(ctx, r, schema.StatusReport{}, phaseStatus(nil), err)
	}
	return renderSafe(ctx, r, phaseStatus(snap.Phases), phaseStatus(nil), nil)
}

// ProjectStatus returns the project status distribution across the caller's projects.
func (e *Engine) ProjectStatus(ctx context.Context, userID string) (schema.StatusReport, error) {
	r := e.begin(ReportProjectStatus, Params{UserID: userID})
	snap, err := e.collector.Collect(ctx, e.request(userID, schema.ActionViewReports, collect.NeedProjects))
	if err != nil {
		return loud(r, schema.StatusReport{}, err)
	}
	return loud(r, projectStatus(snap.Projects), nil)
}

// Activity counts phases and documents created in each month of the range.
func (e *Engine) Activity(ctx context.Context, userID string, rng schema.RangeSelector) (schema.ActivityReport, error) {
	r := e.begin(ReportActivity, Params{UserID: userID, Range: rng})
	rng, n, err := months(rng)
	if err != nil {
		return loud(r, schema.ActivityReport{}, err)
	}
	r.entry.Range = string(rng)

	slots := bucket.Months(e.now(), n)
	since := bucket.Window(slots)
	req := e.request(userID, schema.ActionViewReports, collect.NeedPhases|collect.NeedDocuments)
	req.Phases = contract.PhaseWindow{Since: since}
	req.Since = since
	snap, err := e.collector.Collect(ctx, req)
	if err != nil {
		return loud(r, schema.ActivityReport{}, err)
	}
	return loud(r, activity(rng, slots, snap.Phases, snap.Documents), nil)
}

// CompletionTrend counts phases completed in each of the last eight weeks.
// Denied callers and failed fetches get eight zero weeks instead of an error.
func (e *Engine) CompletionTrend(ctx context.Context, userID string) (schema.CompletionTrendReport, error) {
	r := e.begin(ReportCompletionTrend, Params{UserID: userID})
	slots := bucket.Weeks(e.now(), contract.CompletionWeeks, e.weekLabels)
	zero := completionTrend(slots, nil)

	req := e.request(userID, schema.ActionViewReports, collect.NeedPhases)
	req.Phases = contract.PhaseWindow{Since: bucket.Window(slots), ByUpdate: true}
	snap, err := e.collector.Collect(ctx, req)
	if err != nil {
		return renderSafe(ctx, r, schema.CompletionTrendReport{}, zero, err)
	}
	return renderSafe(ctx, r, completionTrend(slots, snap.Phases), zero, nil)
}

// StaffWorkload ranks staff by the number of phase assignments they hold.
// A zero limit selects the default.
func (e *Engine) StaffWorkload(ctx context.Context, userID string, limit int) (schema.RankingReport, error) {
	limit = limitOrDefault(limit)
	r := e.begin(ReportStaffWorkload, Params{UserID: userID, Limit: limit})
	snap, err := e.collector.Collect(ctx, e.request(userID, schema.ActionViewReports, collect.NeedAssignments|collect.NeedStaff))
	if err != nil {
		return loud(r, schema.RankingReport{}, err)
	}
	return loud(r, staffWorkload(snap.Staff, snap.Assignments, limit), nil)
}

// ProjectSpend ranks projects by the summed actual cost of their phases.
// A zero limit selects the default.
func (e *Engine) ProjectSpend(ctx context.Context, userID string, limit int) (schema.RankingReport, error) {
	limit = limitOrDefault(limit)
	r := e.begin(ReportProjectSpend, Params{UserID: userID, Limit: limit})
	snap, err := e.collector.Collect(ctx, e.request(userID, schema.ActionViewFinancials, collect.NeedProjects|collect.NeedPhases))
	if err != nil {
		return loud(r, schema.RankingReport{}, err)
	}
	return loud(r, projectSpend(snap.Projects, snap.Phases, limit), nil)
}

// BudgetCurve builds a cumulative planned-versus-actual curve. An empty
// projectID falls back to the engine's project; without either the curve covers
// the portfolio, whose total is the budget of every project that is not archived.
func (e *Engine) BudgetCurve(ctx context.Context, userID, projectID string, rng schema.RangeSelector) (schema.BudgetCurveReport, error) {
	projectID = cmp.Or(projectID, e.projectID)
	r := e.begin(ReportBudgetCurve, Params{UserID: userID, ProjectID: projectID, Range: rng})
	rng, n, err := months(rng)
	if err != nil {
		return loud(r, schema.BudgetCurveReport{}, err)
	}
	r.entry.Range = string(rng)

	slots := curve.Cap(bucket.Months(e.now(), n), e.curveCap)
	req := e.ForProject(projectID).request(userID, schema.ActionViewFinancials, collect.NeedProjects|collect.NeedPhases)
	req.Phases = contract.PhaseWindow{Since: bucket.Window(slots)}
	snap, err := e.collector.Collect(ctx, req)
	if err != nil {
		return loud(r, schema.BudgetCurveReport{}, err)
	}

	total := pnl.PortfolioBudget(snap.Projects)
	if projectID != "" {
		total = lo.Reduce(snap.Projects, func(sum decimal.Decimal, p schema.Project, _ int) decimal.Decimal {
			return sum.Add(p.Budget)
		}, decimal.Zero)
	}
	return loud(r, budgetCurve(projectID, rng, slots, total, snap.Phases), nil)
}

// ProfitLoss returns one P&L row per project that is not archived, with portfolio totals.
func (e *Engine) ProfitLoss(ctx context.Context, userID string) (schema.ProfitLossReport, error) {
	r := e.begin(ReportProfitLoss, Params{UserID: userID})
	snap, err := e.collector.Collect(ctx, e.request(userID, schema.ActionViewFinancials, collect.NeedProjects|collect.NeedPhases|collect.NeedChangeOrders))
	if err != nil {
		return loud(r, schema.ProfitLossReport{}, err)
	}
	rows := pnl.Rollup(snap.Projects, snap.Phases, snap.ChangeOrders)
	return loud(r, schema.ProfitLossReport{Rows: rows, Totals: pnl.Summarize(rows)}, nil)
}

func phaseStatus(phases []schema.Phase) schema.StatusReport {
	return schema.StatusReport{
		Subject: "phases",
		Total:   len(phases),
		Counts:  agg.CountBy(phases, func(p schema.Phase) schema.PhaseStatus { return p.Status }, schema.AllPhaseStatuses),
	}
}

func projectStatus(projects []schema.Project) schema.StatusReport {
	return schema.StatusReport{
		Subject: "projects",
		Total:   len(projects),
		Counts:  agg.CountBy(projects, func(p schema.Project) schema.ProjectStatus { return p.Status }, schema.AllProjectStatuses),
	}
}

type activityCounts struct {
	phases    int
	documents int
}

func activity(rng schema.RangeSelector, slots []bucket.Slot, phases []schema.Phase, docs []schema.Document) schema.ActivityReport {
	series := bucket.NewSeries[activityCounts](slots)
	for _, p := range phases {
		series.Add(p.CreatedAt, func(c *activityCounts) { c.phases++ })
	}
	for _, d := range docs {
		series.Add(d.CreatedAt, func(c *activityCounts) { c.documents++ })
	}
	return schema.ActivityReport{
		Range:  rng,
		Months: len(slots),
		Points: bucket.Map(series, func(s bucket.Slot, c activityCounts) schema.ActivityPoint {
			return schema.ActivityPoint{Key: s.Key, Label: s.Label, Phases: c.phases, Documents: c.documents}
		}),
	}
}

// completionTrend routes COMPLETE phases by the time they were last updated.
func completionTrend(slots []bucket.Slot, phases []schema.Phase) schema.CompletionTrendReport {
	series := bucket.NewSeries[int](slots)
	for _, p := range phases {
		if p.Status == schema.PhaseComplete {
			series.Add(p.UpdatedAt, func(n *int) { *n++ })
		}
	}
	return schema.CompletionTrendReport{
		Weeks: len(slots),
		Points: bucket.Map(series, func(s bucket.Slot, n int) schema.CompletionPoint {
			return schema.CompletionPoint{Key: s.Key, Label: s.Label, Completed: n}
		}),
	}
}

func staffWorkload(staff []schema.Staff, assignments []schema.Assignment, limit int) schema.RankingReport {
	names := lo.SliceToMap(staff, func(s schema.Staff) (string, string) { return s.ID, s.Name })
	entries := agg.TopCount(assignments, func(a schema.Assignment) (string, string) {
		return a.StaffID, lo.ValueOr(names, a.StaffID, a.StaffID)
	}, limit)
	return schema.RankingReport{Metric: "assignments", Limit: limit, Entries: entries}
}

func projectSpend(projects []schema.Project, phases []schema.Phase, limit int) schema.RankingReport {
	names := lo.SliceToMap(projects, func(p schema.Project) (string, string) { return p.ID, p.Name })
	entries := agg.TopAmount(phases,
		func(p schema.Phase) (string, string) { return p.ProjectID, lo.ValueOr(names, p.ProjectID, p.ProjectID) },
		func(p schema.Phase) decimal.Decimal { return p.ActualCost },
		limit,
	)
	return schema.RankingReport{Metric: "actual_cost", Limit: limit, Entries: entries}
}

// budgetCurve keys actual spend by the month each phase was created.
func budgetCurve(projectID string, rng schema.RangeSelector, slots []bucket.Slot, total decimal.Decimal, phases []schema.Phase) schema.BudgetCurveReport {
	actuals := make(map[string]decimal.Decimal)
	for _, p := range phases {
		key := bucket.MonthKey(p.CreatedAt)
		actuals[key] = actuals[key].Add(p.ActualCost)
	}
	return schema.BudgetCurveReport{
		ProjectID:    projectID,
		Range:        rng,
		Buckets:      len(slots),
		TotalPlanned: total,
		Points:       curve.Build(total, slots, actuals),
	}
}

