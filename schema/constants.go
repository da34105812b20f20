package schema

// Custom string types for type safety.
type (
	// ProjectStatus represents the lifecycle state of a project.
	ProjectStatus string

	// PhaseStatus represents the workflow state of a phase.
	PhaseStatus string

	// ChangeOrderStatus represents the approval state of a change order.
	ChangeOrderStatus string

	// Role represents the organization role held by a user.
	Role string

	// Action represents a capability that a report requires.
	Action string

	// ResourceKind represents the scope a report is computed over.
	ResourceKind string

	// RangeSelector represents a trailing reporting window.
	RangeSelector string

	// WeekLabelStyle represents how weekly buckets are labelled for display.
	WeekLabelStyle string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend for snapshots or audit runs.
	DatabaseBackend string

	// RunOutcome represents how a report invocation ended.
	RunOutcome string
)

// All project statuses supported.
const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

// All phase statuses supported.
const (
	PhasePending         PhaseStatus = "PENDING"
	PhaseInProgress      PhaseStatus = "IN_PROGRESS"
	PhaseReviewRequested PhaseStatus = "REVIEW_REQUESTED"
	PhaseUnderReview     PhaseStatus = "UNDER_REVIEW"
	PhaseComplete        PhaseStatus = "COMPLETE"
)

// All change order statuses supported.
const (
	ChangeOrderPending  ChangeOrderStatus = "PENDING"
	ChangeOrderApproved ChangeOrderStatus = "APPROVED"
	ChangeOrderRejected ChangeOrderStatus = "REJECTED"
)

// All roles supported.
const (
	RoleOwner          Role = "OWNER"
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleMember         Role = "MEMBER"
	RoleViewer         Role = "VIEWER"
)

// All actions supported.
const (
	ActionViewReports    Action = "reports:view"
	ActionViewFinancials Action = "financials:view"
)

// All resource kinds supported.
const (
	PortfolioResource ResourceKind = "portfolio"
	ProjectResource   ResourceKind = "project"
)

// All range selectors supported.
const (
	Range3Months  RangeSelector = "3 months"
	Range6Months  RangeSelector = "6 months" // default
	Range12Months RangeSelector = "12 months"
	RangeAll      RangeSelector = "all"
)

// All week label styles supported.
const (
	LegacyWeekLabels WeekLabelStyle = "legacy" // default
	ISOWeekLabels    WeekLabelStyle = "iso"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	YAMLBackend       DatabaseBackend = "yaml" // snapshot store only
	NoneBackend       DatabaseBackend = "none" // audit store only
)

// All run outcomes recorded by the audit trail.
const (
	OutcomeOK       RunOutcome = "ok"
	OutcomeError    RunOutcome = "error"
	OutcomeFallback RunOutcome = "fallback"
)

// AllProjectStatuses lists project statuses in display order.
var AllProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived}

// AllPhaseStatuses lists phase statuses in workflow order.
var AllPhaseStatuses = []PhaseStatus{PhasePending, PhaseInProgress, PhaseReviewRequested, PhaseUnderReview, PhaseComplete}

// AllRangeSelectors lists the accepted range selectors.
var AllRangeSelectors = []RangeSelector{Range3Months, Range6Months, Range12Months, RangeAll}

// RangeMonths maps each selector to its trailing month count.
// The all-time selector is approximated with ten years.
var RangeMonths = map[RangeSelector]int{
	Range3Months:  3,
	Range6Months:  6,
	Range12Months: 12,
	RangeAll:      120,
}

// ValidRoles lists all valid roles.
var ValidRoles = map[Role]struct{}{
	RoleOwner:          {},
	RoleAdmin:          {},
	RoleProjectManager: {},
	RoleMember:         {},
	RoleViewer:         {},
}

// ValidWeekLabelStyles lists all valid week label styles.
var ValidWeekLabelStyles = map[WeekLabelStyle]struct{}{
	LegacyWeekLabels: {},
	ISOWeekLabels:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid snapshot store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	YAMLBackend:       {},
}

// ValidAuditBackends lists all valid audit store backends.
var ValidAuditBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
