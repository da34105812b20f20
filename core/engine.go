package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/pmpulse/core/collect"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// Report names shared by the CLI, the MCP tools and the audit trail.
const (
	ReportPhaseStatus     = "phase-status"
	ReportProjectStatus   = "project-status"
	ReportActivity        = "activity"
	ReportCompletionTrend = "completion"
	ReportStaffWorkload   = "workload"
	ReportProjectSpend    = "spend"
	ReportBudgetCurve     = "curve"
	ReportProfitLoss      = "pnl"
	ReportDashboard       = "dashboard"
)

// AllReports lists every report in display order.
var AllReports = []string{
	ReportPhaseStatus,
	ReportProjectStatus,
	ReportActivity,
	ReportCompletionTrend,
	ReportStaffWorkload,
	ReportProjectSpend,
	ReportBudgetCurve,
	ReportProfitLoss,
	ReportDashboard,
}

// Engine assembles report payloads from freshly collected snapshots.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	collector  *collect.Collector
	auth       contract.Authorizer
	recorder   contract.RunRecorder
	now        func() time.Time
	weekLabels schema.WeekLabelStyle
	curveCap   int
	projectID  string
	warn       func(msg string, err error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the time source used for every calendar window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWeekLabelStyle selects how weekly buckets are labelled.
func WithWeekLabelStyle(style schema.WeekLabelStyle) Option {
	return func(e *Engine) {
		if _, ok := schema.ValidWeekLabelStyles[style]; ok {
			e.weekLabels = style
		}
	}
}

// WithRecorder sends one audit entry per report run to r.
func WithRecorder(r contract.RunRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithCurveCap bounds the number of months on a budget curve.
// Non-positive values keep the default.
func WithCurveCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.curveCap = n
		}
	}
}

// NewEngine creates a report engine reading from store, resolving callers
// through identities and checking capabilities with auth.
func NewEngine(store contract.SnapshotStore, identities contract.IdentityProvider, auth contract.Authorizer, opts ...Option) *Engine {
	e := &Engine{
		collector:  collect.New(store, identities, auth),
		auth:       auth,
		now:        time.Now,
		weekLabels: contract.DefaultWeekLabels,
		curveCap:   contract.CurveBucketCap,
		warn:       contract.LogWarn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ForProject returns a copy of the engine whose reports cover only projectID.
// The caller must be a member of the project. An empty projectID returns e.
func (e *Engine) ForProject(projectID string) *Engine {
	if projectID == "" {
		return e
	}
	scoped := *e
	scoped.projectID = projectID
	return &scoped
}

// request scopes a collector request to the engine's project, if any.
func (e *Engine) request(userID string, action schema.Action, needs collect.Need) collect.Request {
	req := collect.Request{UserID: userID, Action: action, Kind: schema.PortfolioResource, Needs: needs}
	if e.projectID != "" {
		req.Kind = schema.ProjectResource
		req.ProjectID = e.projectID
	}
	return req
}

// Params carries the optional arguments of a report request.
type Params struct {
	UserID    string
	ProjectID string
	Range     schema.RangeSelector
	Limit     int
}

// Generate runs the named report and returns its payload.
// A non-empty ProjectID narrows every report to that project.
func (e *Engine) Generate(ctx context.Context, report string, p Params) (schema.Tabular, error) {
	e = e.ForProject(p.ProjectID)
	switch report {
	case ReportPhaseStatus:
		return e.PhaseStatus(ctx, p.UserID)
	case ReportProjectStatus:
		return e.ProjectStatus(ctx, p.UserID)
	case ReportActivity:
		return e.Activity(ctx, p.UserID, p.Range)
	case ReportCompletionTrend:
		return e.CompletionTrend(ctx, p.UserID)
	case ReportStaffWorkload:
		return e.StaffWorkload(ctx, p.UserID, p.Limit)
	case ReportProjectSpend:
		return e.ProjectSpend(ctx, p.UserID, p.Limit)
	case ReportBudgetCurve:
		return e.BudgetCurve(ctx, p.UserID, p.ProjectID, p.Range)
	case ReportProfitLoss:
		return e.ProfitLoss(ctx, p.UserID)
	case ReportDashboard:
		return e.Dashboard(ctx, p.UserID, p.Range)
	default:
		return nil, fmt.Errorf("unknown report %q", report)
	}
}

// run tracks one report invocation for the audit trail.
type run struct {
	e     *Engine
	entry schema.ReportRun
}

func (e *Engine) begin(report string, p Params) *run {
	return &run{e: e, entry: schema.ReportRun{
		Report:    report,
		UserID:    p.UserID,
		Range:     string(p.Range),
		ProjectID: cmp.Or(p.ProjectID, e.projectID),
		StartTime: e.now(),
	}}
}

// finish records the run with an outcome derived from err.
func (r *run) finish(payload schema.Tabular, err error) {
	switch {
	case err != nil:
		r.entry.Outcome = schema.OutcomeError
		r.entry.Err = err.Error()
	default:
		r.entry.Outcome = schema.OutcomeOK
		r.entry.Rows = len(payload.Table().Rows)
	}
	r.record()
}

// fallback records a run whose error was swallowed into a zero-filled payload.
func (r *run) fallback(payload schema.Tabular, err error) {
	r.entry.Outcome = schema.OutcomeFallback
	r.entry.Err = err.Error()
	r.entry.Rows = len(payload.Table().Rows)
	r.record()
}

func (r *run) record() {
	if r.e.recorder == nil {
		return
	}
	r.entry.EndTime = r.e.now()
	r.e.recorder.Record(r.entry)
}

// swallowable reports whether a render-safe entry point may replace err with
// zero-filled output. Missing projects and caller cancellation always surface.
func swallowable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, contract.ErrNotFound) {
		return false
	}
	return errors.Is(err, contract.ErrAccessDenied) || errors.Is(err, contract.ErrAggregationFailure)
}

// renderSafe finishes a render-safe run. A swallowable error is logged and
// replaced by the zero payload; anything else fails loudly, as does every
// error of a run scoped to one project.
func renderSafe[T schema.Tabular](ctx context.Context, r *run, payload, zero T, err error) (T, error) {
	if err == nil {
		r.finish(payload, nil)
		return payload, nil
	}
	if r.entry.ProjectID == "" && swallowable(ctx, err) {
		r.e.warn(fmt.Sprintf("Rendering empty %s report", r.entry.Report), err)
		r.fallback(zero, err)
		return zero, nil
	}
	r.finish(zero, err)
	var none T
	return none, err
}

// loud finishes a fail-loud run.
func loud[T schema.Tabular](r *run, payload T, err error) (T, error) {
	r.finish(payload, err)
	if err != nil {
		var none T
		return none, err
	}
	return payload, nil
}

// months resolves a range selector, applying the default for an empty one.
func months(rng schema.RangeSelector) (schema.RangeSelector, int, error) {
	if rng == "" {
		rng = contract.DefaultRange
	}
	n, ok := schema.RangeMonths[rng]
	if !ok {
		return "", 0, fmt.Errorf("%w %q: expected 3 months, 6 months, 12 months or all", contract.ErrInvalidRange, rng)
	}
	return rng, n, nil
}

// limitOrDefault maps an unset limit to the default result limit.
func limitOrDefault(limit int) int {
	if limit == 0 {
		return contract.DefaultResultLimit
	}
	return limit
}
