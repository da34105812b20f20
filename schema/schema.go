// Package schema has the records, derived types and report payloads shared by all parts of pmpulse.
package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a read-only project record. Phases reference it through Phase.ProjectID.
type Project struct {
	ID     string          `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Status ProjectStatus   `json:"status" yaml:"status"`
	Budget decimal.Decimal `json:"budget" yaml:"budget"`
}

// Phase is a read-only unit of work inside a project.
type Phase struct {
	ID            string          `json:"id" yaml:"id"`
	ProjectID     string          `json:"project_id" yaml:"project_id"`
	Name          string          `json:"name" yaml:"name"`
	Status        PhaseStatus     `json:"status" yaml:"status"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" yaml:"estimated_cost"`
	ActualCost    decimal.Decimal `json:"actual_cost" yaml:"actual_cost"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Assignment links a staff member to a phase.
type Assignment struct {
	StaffID string `json:"staff_id" yaml:"staff_id"`
	PhaseID string `json:"phase_id" yaml:"phase_id"`
}

// Staff is a person who can be assigned to phases.
type Staff struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Document is a file attached to a phase. Only its creation time matters here.
type Document struct {
	ID        string    `json:"id" yaml:"id"`
	PhaseID   string    `json:"phase_id" yaml:"phase_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ChangeOrder is a scope or cost modification raised against a phase.
type ChangeOrder struct {
	ID      string            `json:"id" yaml:"id"`
	PhaseID string            `json:"phase_id" yaml:"phase_id"`
	Status  ChangeOrderStatus `json:"status" yaml:"status"`
	Amount  decimal.Decimal   `json:"amount" yaml:"amount"`
}

// User is an account that can request reports.
type User struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
}

// Member grants a user access to a project.
type Member struct {
	UserID    string `json:"user_id" yaml:"user_id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
}

// Dataset bundles every record kind. It is the unit of import and the
// backing data of the in-memory store.
type Dataset struct {
	Users        []User        `json:"users" yaml:"users"`
	Members      []Member      `json:"members" yaml:"members"`
	Projects     []Project     `json:"projects" yaml:"projects"`
	Phases       []Phase       `json:"phases" yaml:"phases"`
	Staff        []Staff       `json:"staff" yaml:"staff"`
	Assignments  []Assignment  `json:"assignments" yaml:"assignments"`
	Documents    []Document    `json:"documents" yaml:"documents"`
	ChangeOrders []ChangeOrder `json:"change_orders" yaml:"change_orders"`
}

// Identity is the resolved caller of a report.
type Identity struct {
	UserID     string
	Role       Role
	ProjectIDs []string // projects the user is a member of
}

// Snapshot is the read result of one report invocation.
// Only the slices a report asked for are populated.
type Snapshot struct {
	ProjectIDs   []string
	Projects     []Project
	Phases       []Phase
	Assignments  []Assignment
	Staff        []Staff
	Documents    []Document
	ChangeOrders []ChangeOrder
}
