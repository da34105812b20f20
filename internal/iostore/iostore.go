// Package iostore is for snapshot reads, audit writes and their database plumbing.
package iostore

import (
	"sync"

	"github.com/huangsam/pmpulse/internal/contract"
)

// SnapshotStore is the union served by every snapshot backend.
type SnapshotStore interface {
	contract.SnapshotStore
	contract.IdentityProvider
}

// StoreManager manages the snapshot store, the audit store and the audit recorder.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     SnapshotStore
	audit        contract.AuditStore
	recorder     *AsyncRecorder
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot store.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.snapshot == nil {
		return nil
	}
	return mgr.snapshot
}

// GetIdentityProvider returns the identity provider backing the snapshot store.
func (mgr *StoreManager) GetIdentityProvider() contract.IdentityProvider {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.snapshot == nil {
		return nil
	}
	return mgr.snapshot
}

// GetAuditStore returns the audit store.
func (mgr *StoreManager) GetAuditStore() contract.AuditStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.audit
}

// GetRecorder returns the asynchronous audit recorder, or nil when auditing is off.
func (mgr *StoreManager) GetRecorder() contract.RunRecorder {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.recorder == nil {
		return nil
	}
	return mgr.recorder
}
