package iostore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
)

// MemoryStore serves snapshots and identities from an in-memory dataset.
// It backs the yaml store backend and unit tests.
type MemoryStore struct {
	data        schema.Dataset
	users       map[string]schema.User
	projects    map[string]schema.Project
	phaseOwner  map[string]string // phase ID to project ID
	memberships map[string][]string
	source      string
}

var (
	_ contract.SnapshotStore    = &MemoryStore{} // Compile-time check
	_ contract.IdentityProvider = &MemoryStore{} // Compile-time check
)

// NewMemoryStore indexes a dataset. The dataset must not be modified afterwards.
func NewMemoryStore(data schema.Dataset) *MemoryStore {
	memberships := make(map[string][]string)
	for _, m := range data.Members {
		memberships[m.UserID] = append(memberships[m.UserID], m.ProjectID)
	}
	for user, ids := range memberships {
		slices.Sort(ids)
		memberships[user] = slices.Compact(ids)
	}
	return &MemoryStore{
		data:        data,
		users:       lo.KeyBy(data.Users, func(u schema.User) string { return u.ID }),
		projects:    lo.KeyBy(data.Projects, func(p schema.Project) string { return p.ID }),
		phaseOwner:  lo.SliceToMap(data.Phases, func(p schema.Phase) (string, string) { return p.ID, p.ProjectID }),
		memberships: memberships,
		source:      "memory",
	}
}

// inScope returns a membership test for a set of project IDs.
func inScope(projectIDs []string) func(string) bool {
	set := lo.SliceToMap(projectIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

// phaseInScope returns a test of whether a phase belongs to one of the projects.
func (m *MemoryStore) phaseInScope(projectIDs []string) func(string) bool {
	scoped := inScope(projectIDs)
	return func(phaseID string) bool {
		projectID, ok := m.phaseOwner[phaseID]
		return ok && scoped(projectID)
	}
}

// ProjectExists implements contract.SnapshotStore.
func (m *MemoryStore) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := m.projects[projectID]
	return ok, nil
}

// Projects implements contract.SnapshotStore.
func (m *MemoryStore) Projects(ctx context.Context, projectIDs []string) ([]schema.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scoped := inScope(projectIDs)
	out := lo.Filter(m.data.Projects, func(p schema.Project, _ int) bool { return scoped(p.ID) })
	slices.SortStableFunc(out, func(a, b schema.Project) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Phases implements contract.SnapshotStore.
func (m *MemoryStore) Phases(ctx context.Context, projectIDs []string, window contract.PhaseWindow) ([]schema.Phase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scoped := inScope(projectIDs)
	out := lo.Filter(m.data.Phases, func(p schema.Phase, _ int) bool {
		if !scoped(p.ProjectID) {
			return false
		}
		if window.Since.IsZero() {
			return true
		}
		stamp := p.CreatedAt
		if window.ByUpdate {
			stamp = p.UpdatedAt
		}
		return !stamp.Before(window.Since)
	})
	slices.SortStableFunc(out, func(a, b schema.Phase) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Assignments implements contract.SnapshotStore.
func (m *MemoryStore) Assignments(ctx context.Context, projectIDs []string) ([]schema.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scoped := m.phaseInScope(projectIDs)
	out := lo.Filter(m.data.Assignments, func(a schema.Assignment, _ int) bool { return scoped(a.PhaseID) })
	slices.SortStableFunc(out, func(a, b schema.Assignment) int {
		if c := cmp.Compare(a.StaffID, b.StaffID); c != 0 {
			return c
		}
		return cmp.Compare(a.PhaseID, b.PhaseID)
	})
	return out, nil
}

// Staff implements contract.SnapshotStore.
func (m *MemoryStore) Staff(ctx context.Context, projectIDs []string) ([]schema.Staff, error) {
	assignments, err := m.Assignments(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	assigned := lo.SliceToMap(assignments, func(a schema.Assignment) (string, struct{}) { return a.StaffID, struct{}{} })
	out := lo.Filter(m.data.Staff, func(s schema.Staff, _ int) bool {
		_, ok := assigned[s.ID]
		return ok
	})
	out = lo.UniqBy(out, func(s schema.Staff) string { return s.ID })
	slices.SortStableFunc(out, func(a, b schema.Staff) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Documents implements contract.SnapshotStore.
func (m *MemoryStore) Documents(ctx context.Context, projectIDs []string, since time.Time) ([]schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scoped := m.phaseInScope(projectIDs)
	out := lo.Filter(m.data.Documents, func(d schema.Document, _ int) bool {
		return scoped(d.PhaseID) && (since.IsZero() || !d.CreatedAt.Before(since))
	})
	slices.SortStableFunc(out, func(a, b schema.Document) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// ChangeOrders implements contract.SnapshotStore.
func (m *MemoryStore) ChangeOrders(ctx context.Context, projectIDs []string) ([]schema.ChangeOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scoped := m.phaseInScope(projectIDs)
	out := lo.Filter(m.data.ChangeOrders, func(c schema.ChangeOrder, _ int) bool { return scoped(c.PhaseID) })
	slices.SortStableFunc(out, func(a, b schema.ChangeOrder) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Resolve implements contract.IdentityProvider. Unknown users are denied.
func (m *MemoryStore) Resolve(ctx context.Context, userID string) (schema.Identity, error) {
	if err := ctx.Err(); err != nil {
		return schema.Identity{}, err
	}
	user, ok := m.users[userID]
	if !ok {
		return schema.Identity{}, fmt.Errorf("%w: unknown user %q", contract.ErrAccessDenied, userID)
	}
	return schema.Identity{
		UserID:     user.ID,
		Role:       user.Role,
		ProjectIDs: slices.Clone(m.memberships[userID]),
	}, nil
}

// GetStatus implements contract.SnapshotStore.
func (m *MemoryStore) GetStatus() (schema.StoreStatus, error) {
	return schema.StoreStatus{
		Backend:   m.source,
		Connected: true,
		TableRows: map[string]int64{
			usersTable:        int64(len(m.data.Users)),
			membersTable:      int64(len(m.data.Members)),
			projectsTable:     int64(len(m.data.Projects)),
			phasesTable:       int64(len(m.data.Phases)),
			staffTable:        int64(len(m.data.Staff)),
			assignmentsTable:  int64(len(m.data.Assignments)),
			documentsTable:    int64(len(m.data.Documents)),
			changeOrdersTable: int64(len(m.data.ChangeOrders)),
		},
	}, nil
}

// Close implements contract.SnapshotStore.
func (m *MemoryStore) Close() error {
	return nil
}
