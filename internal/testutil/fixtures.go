// Package testutil builds records and datasets for tests.
package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pmpulse/schema"
	"github.com/shopspring/decimal"
)

// Project options
type ProjectOption func(*schema.Project)

func WithProjectID(id string) ProjectOption {
	return func(p *schema.Project) {
		p.ID = id
	}
}

func WithProjectStatus(s schema.ProjectStatus) ProjectOption {
	return func(p *schema.Project) {
		p.Status = s
	}
}

func WithBudget(amount int64) ProjectOption {
	return func(p *schema.Project) {
		p.Budget = decimal.NewFromInt(amount)
	}
}

func NewTestProject(name string, opts ...ProjectOption) schema.Project {
	p := schema.Project{
		ID:     uuid.New().String(),
		Name:   name,
		Status: schema.ProjectActive,
		Budget: decimal.Zero,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Phase options
type PhaseOption func(*schema.Phase)

func WithPhaseID(id string) PhaseOption {
	return func(p *schema.Phase) {
		p.ID = id
	}
}

func WithPhaseStatus(s schema.PhaseStatus) PhaseOption {
	return func(p *schema.Phase) {
		p.Status = s
	}
}

func WithCosts(estimated, actual int64) PhaseOption {
	return func(p *schema.Phase) {
		p.EstimatedCost = decimal.NewFromInt(estimated)
		p.ActualCost = decimal.NewFromInt(actual)
	}
}

func WithCreatedAt(t time.Time) PhaseOption {
	return func(p *schema.Phase) {
		p.CreatedAt = t
	}
}

func WithUpdatedAt(t time.Time) PhaseOption {
	return func(p *schema.Phase) {
		p.UpdatedAt = t
	}
}

// NewTestPhase returns a pending phase. UpdatedAt never precedes CreatedAt.
func NewTestPhase(projectID, name string, opts ...PhaseOption) schema.Phase {
	p := schema.Phase{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Name:          name,
		Status:        schema.PhasePending,
		EstimatedCost: decimal.Zero,
		ActualCost:    decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// Change order options
type ChangeOrderOption func(*schema.ChangeOrder)

func WithChangeOrderID(id string) ChangeOrderOption {
	return func(c *schema.ChangeOrder) {
		c.ID = id
	}
}

func WithChangeOrderStatus(s schema.ChangeOrderStatus) ChangeOrderOption {
	return func(c *schema.ChangeOrder) {
		c.Status = s
	}
}

// NewTestChangeOrder returns an approved change order unless an option says otherwise.
func NewTestChangeOrder(phaseID string, amount int64, opts ...ChangeOrderOption) schema.ChangeOrder {
	c := schema.ChangeOrder{
		ID:      uuid.New().String(),
		PhaseID: phaseID,
		Status:  schema.ChangeOrderApproved,
		Amount:  decimal.NewFromInt(amount),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func NewTestStaff(id, name string) schema.Staff {
	if id == "" {
		id = uuid.New().String()
	}
	return schema.Staff{ID: id, Name: name}
}

func NewTestDocument(phaseID string, createdAt time.Time) schema.Document {
	return schema.Document{ID: uuid.New().String(), PhaseID: phaseID, CreatedAt: createdAt}
}

func NewTestUser(id string, role schema.Role) schema.User {
	return schema.User{ID: id, Name: id, Role: role}
}

// Memberships grants userID access to each project.
func Memberships(userID string, projectIDs ...string) []schema.Member {
	out := make([]schema.Member, len(projectIDs))
	for i, id := range projectIDs {
		out[i] = schema.Member{UserID: userID, ProjectID: id}
	}
	return out
}

// Known identifiers of the Portfolio dataset.
const (
	OwnerID    = "u-owner"    // member of every project
	ManagerID  = "u-pm"       // member of the bridge only
	MemberID   = "u-member"   // member of the bridge and the tower
	OutsiderID = "u-outsider" // no memberships

	BridgeID = "p-bridge"
	TowerID  = "p-tower"
	DepotID  = "p-depot" // archived
)

// Now is the reference clock of the Portfolio dataset.
var Now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 9, 0, 0, 0, time.UTC)
}

// Portfolio returns a small three-project dataset anchored at Now.
//
//	Harbor Bridge (ACTIVE, 100000): Foundations COMPLETE 30000/25000, Deck IN_PROGRESS 40000/15000
//	Civic Tower (PLANNING, 50000):  Design COMPLETE 10000/12000, Permits PENDING 5000/0
//	Old Depot (ARCHIVED, 20000):    Closeout COMPLETE 8000/9000, all in 2025
func Portfolio() schema.Dataset {
	bridge := NewTestProject("Harbor Bridge", WithProjectID(BridgeID), WithBudget(100000))
	tower := NewTestProject("Civic Tower", WithProjectID(TowerID), WithBudget(50000), WithProjectStatus(schema.ProjectPlanning))
	depot := NewTestProject("Old Depot", WithProjectID(DepotID), WithBudget(20000), WithProjectStatus(schema.ProjectArchived))

	phases := []schema.Phase{
		NewTestPhase(BridgeID, "Foundations", WithPhaseID("ph-b1"), WithPhaseStatus(schema.PhaseComplete),
			WithCosts(30000, 25000), WithCreatedAt(day(time.June, 10)), WithUpdatedAt(day(time.October, 13))),
		NewTestPhase(BridgeID, "Deck", WithPhaseID("ph-b2"), WithPhaseStatus(schema.PhaseInProgress),
			WithCosts(40000, 15000), WithCreatedAt(day(time.August, 5)), WithUpdatedAt(day(time.October, 1))),
		NewTestPhase(TowerID, "Design", WithPhaseID("ph-t1"), WithPhaseStatus(schema.PhaseComplete),
			WithCosts(10000, 12000), WithCreatedAt(day(time.October, 2)), WithUpdatedAt(day(time.October, 16))),
		NewTestPhase(TowerID, "Permits", WithPhaseID("ph-t2"),
			WithCosts(5000, 0), WithCreatedAt(day(time.October, 3))),
		NewTestPhase(DepotID, "Closeout", WithPhaseID("ph-d1"), WithPhaseStatus(schema.PhaseComplete),
			WithCosts(8000, 9000), WithCreatedAt(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
			WithUpdatedAt(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))),
	}

	var members []schema.Member
	members = append(members, Memberships(OwnerID, BridgeID, TowerID, DepotID)...)
	members = append(members, Memberships(ManagerID, BridgeID)...)
	members = append(members, Memberships(MemberID, BridgeID, TowerID)...)

	return schema.Dataset{
		Users: []schema.User{
			NewTestUser(OwnerID, schema.RoleOwner),
			NewTestUser(ManagerID, schema.RoleProjectManager),
			NewTestUser(MemberID, schema.RoleMember),
			NewTestUser(OutsiderID, schema.RoleViewer),
		},
		Members:  members,
		Projects: []schema.Project{bridge, tower, depot},
		Phases:   phases,
		Staff: []schema.Staff{
			NewTestStaff("s-ada", "Ada Lovelace"),
			NewTestStaff("s-grace", "Grace Hopper"),
			NewTestStaff("s-linus", "Linus"),
		},
		Assignments: []schema.Assignment{
			{StaffID: "s-ada", PhaseID: "ph-b1"},
			{StaffID: "s-ada", PhaseID: "ph-b2"},
			{StaffID: "s-ada", PhaseID: "ph-t1"},
			{StaffID: "s-grace", PhaseID: "ph-b2"},
			{StaffID: "s-grace", PhaseID: "ph-t2"},
			{StaffID: "s-linus", PhaseID: "ph-d1"},
		},
		Documents: []schema.Document{
			{ID: "d-1", PhaseID: "ph-b1", CreatedAt: day(time.June, 12)},
			{ID: "d-2", PhaseID: "ph-b2", CreatedAt: day(time.August, 20)},
			{ID: "d-3", PhaseID: "ph-t1", CreatedAt: day(time.October, 5)},
			{ID: "d-4", PhaseID: "ph-d1", CreatedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
		ChangeOrders: []schema.ChangeOrder{
			NewTestChangeOrder("ph-b1", 10000, WithChangeOrderID("co-1")),
			NewTestChangeOrder("ph-b2", 5000, WithChangeOrderID("co-2"), WithChangeOrderStatus(schema.ChangeOrderPending)),
			NewTestChangeOrder("ph-t1", 2000, WithChangeOrderID("co-3"), WithChangeOrderStatus(schema.ChangeOrderRejected)),
			NewTestChangeOrder("ph-t1", 2500, WithChangeOrderID("co-4")),
		},
	}
}
