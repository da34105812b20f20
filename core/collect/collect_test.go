package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/pmpulse/internal/access"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCollector() *Collector {
	store := iostore.NewMemoryStore(testutil.Portfolio())
	return New(store, store, access.DefaultPolicy())
}

func TestNeedHas(t *testing.T) {
	n := NeedPhases | NeedDocuments
	assert.True(t, n.Has(NeedPhases))
	assert.True(t, n.Has(NeedPhases|NeedDocuments))
	assert.False(t, n.Has(NeedProjects))
	assert.False(t, n.Has(NeedPhases|NeedStaff))
}

func TestCollectFetchesOnlyWhatIsNeeded(t *testing.T) {
	c := newCollector()
	snap, err := c.Collect(context.Background(), Request{
		UserID: testutil.MemberID,
		Action: schema.ActionViewReports,
		Kind:   schema.PortfolioResource,
		Needs:  NeedPhases | NeedAssignments,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testutil.BridgeID, testutil.TowerID}, snap.ProjectIDs)
	assert.Len(t, snap.Phases, 4)
	assert.Len(t, snap.Assignments, 5)
	assert.Nil(t, snap.Projects)
	assert.Nil(t, snap.Staff)
	assert.Nil(t, snap.Documents)
	assert.Nil(t, snap.ChangeOrders)
}

func TestCollectScopes(t *testing.T) {
	c := newCollector()
	ctx := context.Background()

	tests := []struct {
		name      string
		req       Request
		wantScope []string
		wantErr   error
	}{
		{
			name:      "owner sees every project",
			req:       Request{UserID: testutil.OwnerID, Action: schema.ActionViewReports, Kind: schema.PortfolioResource},
			wantScope: []string{testutil.BridgeID, testutil.DepotID, testutil.TowerID},
		},
		{
			name:      "project narrows the scope",
			req:       Request{UserID: testutil.OwnerID, Action: schema.ActionViewFinancials, Kind: schema.ProjectResource, ProjectID: testutil.TowerID},
			wantScope: []string{testutil.TowerID},
		},
		{
			name:      "outsider gets an empty portfolio",
			req:       Request{UserID: testutil.OutsiderID, Action: schema.ActionViewReports, Kind: schema.PortfolioResource},
			wantScope: []string{},
		},
		{
			name:    "empty user",
			req:     Request{Action: schema.ActionViewReports, Kind: schema.PortfolioResource},
			wantErr: contract.ErrAccessDenied,
		},
		{
			name:    "unknown user",
			req:     Request{UserID: "u-ghost", Action: schema.ActionViewReports, Kind: schema.PortfolioResource},
			wantErr: contract.ErrAccessDenied,
		},
		{
			name:    "member lacks financials",
			req:     Request{UserID: testutil.MemberID, Action: schema.ActionViewFinancials, Kind: schema.PortfolioResource},
			wantErr: contract.ErrAccessDenied,
		},
		{
			name:    "missing project is denied to non-members",
			req:     Request{UserID: testutil.OwnerID, Action: schema.ActionViewFinancials, Kind: schema.ProjectResource, ProjectID: "p-missing"},
			wantErr: contract.ErrAccessDenied,
		},
		{
			name:    "non-member project",
			req:     Request{UserID: testutil.ManagerID, Action: schema.ActionViewFinancials, Kind: schema.ProjectResource, ProjectID: testutil.TowerID},
			wantErr: contract.ErrAccessDenied,
		},
		{
			name:    "project scope without memberships",
			req:     Request{UserID: testutil.OutsiderID, Action: schema.ActionViewReports, Kind: schema.ProjectResource, ProjectID: testutil.TowerID},
			wantErr: contract.ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Needs = NeedProjects
			snap, err := c.Collect(ctx, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, snap)
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantScope, snap.ProjectIDs)
			assert.Len(t, snap.Projects, len(tt.wantScope))
		})
	}
}

func TestCollectProjectScopeChecksMembershipFirst(t *testing.T) {
	data := testutil.Portfolio()
	data.Members = append(data.Members, testutil.Memberships(testutil.ManagerID, "p-gone")...)
	store := iostore.NewMemoryStore(data)
	c := New(store, store, access.DefaultPolicy())
	ctx := context.Background()

	t.Run("existing and missing projects look the same to outsiders", func(t *testing.T) {
		for _, projectID := range []string{testutil.TowerID, "p-nowhere"} {
			_, err := c.Collect(ctx, Request{UserID: testutil.ManagerID, Action: schema.ActionViewReports, Kind: schema.ProjectResource, ProjectID: projectID, Needs: NeedProjects})
			assert.ErrorIs(t, err, contract.ErrAccessDenied, projectID)
			assert.NotErrorIs(t, err, contract.ErrNotFound, projectID)
		}
	})

	t.Run("member of a deleted project gets not found", func(t *testing.T) {
		_, err := c.Collect(ctx, Request{UserID: testutil.ManagerID, Action: schema.ActionViewReports, Kind: schema.ProjectResource, ProjectID: "p-gone", Needs: NeedProjects})
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})

	t.Run("outsiders never reach the store", func(t *testing.T) {
		store := &iostore.MockSnapshotStore{}
		identities := &iostore.MockIdentityProvider{}
		identities.On("Resolve", mock.Anything, "u-1").
			Return(schema.Identity{UserID: "u-1", Role: schema.RoleOwner}, nil)

		_, err := New(store, identities, access.DefaultPolicy()).Collect(ctx, Request{
			UserID: "u-1", Action: schema.ActionViewReports, Kind: schema.ProjectResource, ProjectID: "p-1", Needs: NeedProjects,
		})
		assert.ErrorIs(t, err, contract.ErrAccessDenied)
		store.AssertNotCalled(t, "ProjectExists", mock.Anything, mock.Anything)
	})
}

func TestCollectEmptyScopeSkipsFetches(t *testing.T) {
	store := &iostore.MockSnapshotStore{}
	identities := &iostore.MockIdentityProvider{}
	identities.On("Resolve", mock.Anything, "u-lonely").
		Return(schema.Identity{UserID: "u-lonely", Role: schema.RoleViewer}, nil)

	c := New(store, identities, access.DefaultPolicy())
	snap, err := c.Collect(context.Background(), Request{
		UserID: "u-lonely",
		Action: schema.ActionViewReports,
		Kind:   schema.PortfolioResource,
		Needs:  NeedProjects | NeedPhases | NeedDocuments,
	})
	require.NoError(t, err)
	assert.Empty(t, snap.ProjectIDs)
	store.AssertNotCalled(t, "Projects", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Phases", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectWrapsFetchFailures(t *testing.T) {
	boom := errors.New("connection reset")

	store := &iostore.MockSnapshotStore{}
	store.On("Projects", mock.Anything, []string{"p-1"}).Return([]schema.Project{{ID: "p-1"}}, nil)
	store.On("Phases", mock.Anything, []string{"p-1"}, mock.Anything).Return(nil, boom)

	identities := &iostore.MockIdentityProvider{}
	identities.On("Resolve", mock.Anything, "u-1").
		Return(schema.Identity{UserID: "u-1", Role: schema.RoleOwner, ProjectIDs: []string{"p-1"}}, nil)

	c := New(store, identities, access.DefaultPolicy())
	_, err := c.Collect(context.Background(), Request{
		UserID: "u-1",
		Action: schema.ActionViewReports,
		Kind:   schema.PortfolioResource,
		Needs:  NeedProjects | NeedPhases,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrAggregationFailure)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch phases")
}

func TestCollectWrapsResolveFailures(t *testing.T) {
	identities := &iostore.MockIdentityProvider{}
	identities.On("Resolve", mock.Anything, "u-1").Return(schema.Identity{}, errors.New("users table missing"))

	c := New(&iostore.MockSnapshotStore{}, identities, access.DefaultPolicy())
	_, err := c.Identity(context.Background(), "u-1", schema.ActionViewReports, schema.PortfolioResource)
	assert.ErrorIs(t, err, contract.ErrAggregationFailure)
}

func TestCollectWrapsProjectLookupFailures(t *testing.T) {
	store := &iostore.MockSnapshotStore{}
	store.On("ProjectExists", mock.Anything, "p-1").Return(false, errors.New("timeout"))

	identities := &iostore.MockIdentityProvider{}
	identities.On("Resolve", mock.Anything, "u-1").
		Return(schema.Identity{UserID: "u-1", Role: schema.RoleOwner, ProjectIDs: []string{"p-1"}}, nil)

	c := New(store, identities, access.DefaultPolicy())
	_, err := c.Collect(context.Background(), Request{
		UserID:    "u-1",
		Action:    schema.ActionViewFinancials,
		Kind:      schema.ProjectResource,
		ProjectID: "p-1",
		Needs:     NeedProjects,
	})
	assert.ErrorIs(t, err, contract.ErrAggregationFailure)
	assert.NotErrorIs(t, err, contract.ErrNotFound)
}

func TestCollectReturnsContextErrors(t *testing.T) {
	c := newCollector()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, Request{
		UserID: testutil.OwnerID,
		Action: schema.ActionViewReports,
		Kind:   schema.PortfolioResource,
		Needs:  NeedPhases,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, contract.ErrAggregationFailure)
}
