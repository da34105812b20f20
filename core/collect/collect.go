// Package collect resolves the caller's scope and fetches the minimal snapshot a report needs.
package collect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/pmpulse/internal/access"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"golang.org/x/sync/errgroup"
)

// Need selects the entity kinds a report reads.
type Need uint8

// Entity kinds.
const (
	NeedProjects Need = 1 << iota
	NeedPhases
	NeedAssignments
	NeedStaff
	NeedDocuments
	NeedChangeOrders
)

// Has reports whether n includes every kind in other.
func (n Need) Has(other Need) bool {
	return n&other == other
}

// Request describes one report's read.
type Request struct {
	UserID    string
	Action    schema.Action
	Kind      schema.ResourceKind
	ProjectID string // optional; narrows the scope to one project
	Phases    contract.PhaseWindow
	Since     time.Time // lower bound for documents; zero means no bound
	Needs     Need
}

// Collector fetches snapshots on behalf of the report engine.
type Collector struct {
	store      contract.SnapshotStore
	identities contract.IdentityProvider
	auth       contract.Authorizer
}

// New creates a collector.
func New(store contract.SnapshotStore, identities contract.IdentityProvider, auth contract.Authorizer) *Collector {
	return &Collector{store: store, identities: identities, auth: auth}
}

// Identity resolves and authorizes the caller without fetching anything.
func (c *Collector) Identity(ctx context.Context, userID string, action schema.Action, kind schema.ResourceKind) (schema.Identity, error) {
	if userID == "" {
		return schema.Identity{}, fmt.Errorf("%w: no identity", contract.ErrAccessDenied)
	}
	identity, err := c.identities.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, contract.ErrAccessDenied) || ctx.Err() != nil {
			return schema.Identity{}, err
		}
		return schema.Identity{}, fmt.Errorf("%w: resolve user %q: %w", contract.ErrAggregationFailure, userID, err)
	}
	if err := c.auth.Check(identity, action, kind); err != nil {
		return schema.Identity{}, err
	}
	return identity, nil
}

// Collect resolves the identity, runs the capability check, narrows the scope and
// fetches every requested entity kind concurrently. An identity with no accessible
// projects yields an empty snapshot and no error.
func (c *Collector) Collect(ctx context.Context, req Request) (*schema.Snapshot, error) {
	identity, err := c.Identity(ctx, req.UserID, req.Action, req.Kind)
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, identity, req)
}

// Fetch narrows the scope of an already authorized identity and fetches the
// requested entity kinds. The request's user, action and kind are not rechecked.
func (c *Collector) Fetch(ctx context.Context, identity schema.Identity, req Request) (*schema.Snapshot, error) {
	scope, err := c.scope(ctx, identity, req.ProjectID)
	if err != nil {
		return nil, err
	}

	snapshot := &schema.Snapshot{ProjectIDs: scope}
	if len(scope) == 0 {
		return snapshot, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(need Need, name string, fn func(context.Context) error) {
		if !req.Needs.Has(need) {
			return
		}
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return fmt.Errorf("%w: fetch %s: %w", contract.ErrAggregationFailure, name, err)
			}
			return nil
		})
	}

	fetch(NeedProjects, "projects", func(ctx context.Context) (err error) {
		snapshot.Projects, err = c.store.Projects(ctx, scope)
		return err
	})
	fetch(NeedPhases, "phases", func(ctx context.Context) (err error) {
		snapshot.Phases, err = c.store.Phases(ctx, scope, req.Phases)
		return err
	})
	fetch(NeedAssignments, "assignments", func(ctx context.Context) (err error) {
		snapshot.Assignments, err = c.store.Assignments(ctx, scope)
		return err
	})
	fetch(NeedStaff, "staff", func(ctx context.Context) (err error) {
		snapshot.Staff, err = c.store.Staff(ctx, scope)
		return err
	})
	fetch(NeedDocuments, "documents", func(ctx context.Context) (err error) {
		snapshot.Documents, err = c.store.Documents(ctx, scope, req.Since)
		return err
	})
	fetch(NeedChangeOrders, "change orders", func(ctx context.Context) (err error) {
		snapshot.ChangeOrders, err = c.store.ChangeOrders(ctx, scope)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return snapshot, nil
}

// scope returns the project IDs the request may read, sorted.
func (c *Collector) scope(ctx context.Context, identity schema.Identity, projectID string) ([]string, error) {
	if projectID == "" {
		scope := slices.Clone(identity.ProjectIDs)
		slices.Sort(scope)
		return slices.Compact(scope), nil
	}
	// Non-members are denied before the project is looked up
	if !access.IsMember(identity, projectID) {
		return nil, fmt.Errorf("%w: user %q is not a member of project %q", contract.ErrAccessDenied, identity.UserID, projectID)
	}
	exists, err := c.store.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup project %q: %w", contract.ErrAggregationFailure, projectID, err)
	}
	if !exists {
		return nil, fmt.Errorf("project %q: %w", projectID, contract.ErrNotFound)
	}
	return []string{projectID}, nil
}
