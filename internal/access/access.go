// Package access centralizes the capability checks made before any report fetch.
package access

import (
	"fmt"
	"slices"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// Policy maps each role to the actions it may perform.
type Policy struct {
	grants map[schema.Role]map[schema.Action]struct{}
}

var _ contract.Authorizer = &Policy{} // Compile-time check

// DefaultPolicy returns the built-in role matrix. Every role may view reports;
// only owners, admins and project managers may view financials.
func DefaultPolicy() *Policy {
	p := NewPolicy()
	for role := range schema.ValidRoles {
		p.Grant(role, schema.ActionViewReports)
	}
	p.Grant(schema.RoleOwner, schema.ActionViewFinancials)
	p.Grant(schema.RoleAdmin, schema.ActionViewFinancials)
	p.Grant(schema.RoleProjectManager, schema.ActionViewFinancials)
	return p
}

// NewPolicy returns a policy that grants nothing.
func NewPolicy() *Policy {
	return &Policy{grants: make(map[schema.Role]map[schema.Action]struct{})}
}

// Grant allows role to perform action.
func (p *Policy) Grant(role schema.Role, action schema.Action) {
	if p.grants[role] == nil {
		p.grants[role] = make(map[schema.Action]struct{})
	}
	p.grants[role][action] = struct{}{}
}

// Allows reports whether role may perform action.
func (p *Policy) Allows(role schema.Role, action schema.Action) bool {
	_, ok := p.grants[role][action]
	return ok
}

// Check implements contract.Authorizer. Project-scoped checks additionally require
// the identity to be a member of at least one project; the collector verifies the
// specific project.
func (p *Policy) Check(identity schema.Identity, action schema.Action, kind schema.ResourceKind) error {
	if identity.UserID == "" {
		return fmt.Errorf("%w: no identity", contract.ErrAccessDenied)
	}
	if !p.Allows(identity.Role, action) {
		return fmt.Errorf("%w: role %q cannot %s", contract.ErrAccessDenied, identity.Role, action)
	}
	if kind == schema.ProjectResource && len(identity.ProjectIDs) == 0 {
		return fmt.Errorf("%w: user %q has no project memberships", contract.ErrAccessDenied, identity.UserID)
	}
	return nil
}

// IsMember reports whether the identity may read the given project.
func IsMember(identity schema.Identity, projectID string) bool {
	return slices.Contains(identity.ProjectIDs, projectID)
}
