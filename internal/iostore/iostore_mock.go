package iostore

import (
	"context"
	"time"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetIdentityProvider implements the StoreManager interface.
func (m *MockStoreManager) GetIdentityProvider() contract.IdentityProvider {
	ret := m.Called()
	provider, _ := ret.Get(0).(contract.IdentityProvider)
	return provider
}

// GetAuditStore implements the StoreManager interface.
func (m *MockStoreManager) GetAuditStore() contract.AuditStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AuditStore)
	return store
}

// GetRecorder implements the StoreManager interface.
func (m *MockStoreManager) GetRecorder() contract.RunRecorder {
	ret := m.Called()
	recorder, _ := ret.Get(0).(contract.RunRecorder)
	return recorder
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// ProjectExists implements the SnapshotStore interface.
func (m *MockSnapshotStore) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	args := m.Called(ctx, projectID)
	return args.Bool(0), args.Error(1)
}

// Projects implements the SnapshotStore interface.
func (m *MockSnapshotStore) Projects(ctx context.Context, projectIDs []string) ([]schema.Project, error) {
	args := m.Called(ctx, projectIDs)
	out, _ := args.Get(0).([]schema.Project)
	return out, args.Error(1)
}

// Phases implements the SnapshotStore interface.
func (m *MockSnapshotStore) Phases(ctx context.Context, projectIDs []string, window contract.PhaseWindow) ([]schema.Phase, error) {
	args := m.Called(ctx, projectIDs, window)
	out, _ := args.Get(0).([]schema.Phase)
	return out, args.Error(1)
}

// Assignments implements the SnapshotStore interface.
func (m *MockSnapshotStore) Assignments(ctx context.Context, projectIDs []string) ([]schema.Assignment, error) {
	args := m.Called(ctx, projectIDs)
	out, _ := args.Get(0).([]schema.Assignment)
	return out, args.Error(1)
}

// Staff implements the SnapshotStore interface.
func (m *MockSnapshotStore) Staff(ctx context.Context, projectIDs []string) ([]schema.Staff, error) {
	args := m.Called(ctx, projectIDs)
	out, _ := args.Get(0).([]schema.Staff)
	return out, args.Error(1)
}

// Documents implements the SnapshotStore interface.
func (m *MockSnapshotStore) Documents(ctx context.Context, projectIDs []string, since time.Time) ([]schema.Document, error) {
	args := m.Called(ctx, projectIDs, since)
	out, _ := args.Get(0).([]schema.Document)
	return out, args.Error(1)
}

// ChangeOrders implements the SnapshotStore interface.
func (m *MockSnapshotStore) ChangeOrders(ctx context.Context, projectIDs []string) ([]schema.ChangeOrder, error) {
	args := m.Called(ctx, projectIDs)
	out, _ := args.Get(0).([]schema.ChangeOrder)
	return out, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockIdentityProvider is a mock implementation of IdentityProvider for testing.
type MockIdentityProvider struct {
	mock.Mock
}

var _ contract.IdentityProvider = &MockIdentityProvider{} // Compile-time check

// Resolve implements the IdentityProvider interface.
func (m *MockIdentityProvider) Resolve(ctx context.Context, userID string) (schema.Identity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(schema.Identity), args.Error(1)
}

// MockAuditStore is a mock implementation of AuditStore for testing.
type MockAuditStore struct {
	mock.Mock
}

var _ contract.AuditStore = &MockAuditStore{} // Compile-time check

// RecordRun implements the AuditStore interface.
func (m *MockAuditStore) RecordRun(run schema.ReportRun) (int64, error) {
	args := m.Called(run)
	return args.Get(0).(int64), args.Error(1)
}

// GetStatus implements the AuditStore interface.
func (m *MockAuditStore) GetStatus() (schema.AuditStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AuditStatus), args.Error(1)
}

// GetAllRuns implements the AuditStore interface.
func (m *MockAuditStore) GetAllRuns() ([]schema.ReportRunRecord, error) {
	args := m.Called()
	out, _ := args.Get(0).([]schema.ReportRunRecord)
	return out, args.Error(1)
}

// Close implements the AuditStore interface.
func (m *MockAuditStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
