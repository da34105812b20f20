// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/pmpulse/schema"
)

// PhaseWindow restricts a phase fetch to records touched since a point in time.
// The zero value fetches every phase.
type PhaseWindow struct {
	Since    time.Time
	ByUpdate bool // filter on updated_at instead of created_at
}

// SnapshotStore defines the read-only queries the report engine issues.
// Every method is scoped to a set of project IDs; an empty set yields no rows.
// This allows the storage layer to be mocked for testing.
type SnapshotStore interface {
	// ProjectExists reports whether a project with the given ID exists at all.
	ProjectExists(ctx context.Context, projectID string) (bool, error)

	// Projects returns the projects with the given IDs.
	Projects(ctx context.Context, projectIDs []string) ([]schema.Project, error)

	// Phases returns the phases of the given projects, optionally windowed.
	Phases(ctx context.Context, projectIDs []string, window PhaseWindow) ([]schema.Phase, error)

	// Assignments returns staff assignments on phases of the given projects.
	Assignments(ctx context.Context, projectIDs []string) ([]schema.Assignment, error)

	// Staff returns the staff assigned to at least one phase of the given projects.
	Staff(ctx context.Context, projectIDs []string) ([]schema.Staff, error)

	// Documents returns documents on phases of the given projects created at or after since.
	// A zero since returns every document.
	Documents(ctx context.Context, projectIDs []string, since time.Time) ([]schema.Document, error)

	// ChangeOrders returns change orders of every status on phases of the given projects.
	ChangeOrders(ctx context.Context, projectIDs []string) ([]schema.ChangeOrder, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	Close() error
}

// IdentityProvider resolves a caller into a role and the set of projects it may read.
type IdentityProvider interface {
	Resolve(ctx context.Context, userID string) (schema.Identity, error)
}

// Authorizer performs the capability check that precedes every fetch.
type Authorizer interface {
	Check(identity schema.Identity, action schema.Action, kind schema.ResourceKind) error
}

// RunRecorder receives finished report runs. Implementations must not block the caller.
type RunRecorder interface {
	Record(run schema.ReportRun)
}

// AuditStore defines the interface for persisting report runs.
type AuditStore interface {
	// RecordRun stores a finished run and returns its unique ID
	RecordRun(run schema.ReportRun) (int64, error)

	// GetStatus returns status information about the audit store
	GetStatus() (schema.AuditStatus, error)

	// GetAllRuns retrieves all stored runs ordered by ID
	GetAllRuns() ([]schema.ReportRunRecord, error)

	Close() error
}

// StoreManager defines the interface for reaching the configured stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetIdentityProvider() IdentityProvider
	GetAuditStore() AuditStore
	GetRecorder() RunRecorder
}
