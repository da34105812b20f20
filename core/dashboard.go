package core

import (
	"context"
	"sync"

	"github.com/huangsam/pmpulse/core/bucket"
	"github.com/huangsam/pmpulse/core/collect"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// Dashboard composes every dashboard section from a single snapshot. The spend
// section is present only when the caller may view financials.
func (e *Engine) Dashboard(ctx context.Context, userID string, rng schema.RangeSelector) (schema.DashboardReport, error) {
	r := e.begin(ReportDashboard, Params{UserID: userID, Range: rng})
	rng, n, err := months(rng)
	if err != nil {
		return loud(r, schema.DashboardReport{}, err)
	}
	r.entry.Range = string(rng)

	req := e.request(userID, schema.ActionViewReports, collect.NeedProjects|collect.NeedPhases|collect.NeedAssignments|collect.NeedStaff|collect.NeedDocuments)
	identity, err := e.collector.Identity(ctx, userID, req.Action, req.Kind)
	if err != nil {
		return loud(r, schema.DashboardReport{}, err)
	}
	financials := e.auth.Check(identity, schema.ActionViewFinancials, req.Kind) == nil

	now := e.now()
	monthSlots := bucket.Months(now, n)
	weekSlots := bucket.Weeks(now, contract.CompletionWeeks, e.weekLabels)

	// Status counts need every phase, so only documents are windowed.
	req.Since = bucket.Window(monthSlots)
	snap, err := e.collector.Fetch(ctx, identity, req)
	if err != nil {
		return loud(r, schema.DashboardReport{}, err)
	}

	var (
		report schema.DashboardReport
		wg     sync.WaitGroup
	)
	wg.Go(func() { report.PhaseStatus = phaseStatus(snap.Phases) })
	wg.Go(func() { report.ProjectStatus = projectStatus(snap.Projects) })
	wg.Go(func() { report.Activity = activity(rng, monthSlots, snap.Phases, snap.Documents) })
	wg.Go(func() { report.Completion = completionTrend(weekSlots, snap.Phases) })
	wg.Go(func() { report.Workload = staffWorkload(snap.Staff, snap.Assignments, contract.DefaultResultLimit) })
	if financials {
		wg.Go(func() {
			spend := projectSpend(snap.Projects, snap.Phases, contract.DefaultResultLimit)
			report.Spend = &spend
		})
	}
	wg.Wait()

	return loud(r, report, nil)
}
