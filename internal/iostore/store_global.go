package iostore

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreOptions selects the snapshot and audit backends.
type StoreOptions struct {
	StoreBackend schema.DatabaseBackend
	StoreConnStr string
	AuditBackend schema.DatabaseBackend // empty or none disables auditing
	AuditConnStr string
	AuditBuffer  int
	SkipSnapshot bool // audit subcommands do not need the snapshot store
}

// OpenSnapshotStore opens the snapshot store for a backend.
func OpenSnapshotStore(backend schema.DatabaseBackend, connStr string) (SnapshotStore, error) {
	switch backend {
	case schema.YAMLBackend:
		return NewYAMLStore(connStr)
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// InitStores initializes the global manager. It runs exactly once.
func InitStores(opts StoreOptions) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var snapshot SnapshotStore
		if !opts.SkipSnapshot {
			var err error
			snapshot, err = OpenSnapshotStore(opts.StoreBackend, opts.StoreConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
				return
			}
		}

		audit, err := NewAuditStore(opts.AuditBackend, opts.AuditConnStr)
		if err != nil {
			if snapshot != nil {
				_ = snapshot.Close()
			}
			initErr = fmt.Errorf("failed to initialize audit store: %w", err)
			return
		}

		var recorder *AsyncRecorder
		if opts.AuditBackend != "" && opts.AuditBackend != schema.NoneBackend {
			recorder = NewAsyncRecorder(audit, opts.AuditBuffer)
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.snapshot = snapshot
		Manager.audit = audit
		Manager.recorder = recorder
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown. Queued audit runs are
// flushed before the audit store closes.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.recorder != nil {
			Manager.recorder.Close()
		}
		if Manager.snapshot != nil {
			_ = Manager.snapshot.Close()
		}
		if Manager.audit != nil {
			_ = Manager.audit.Close()
		}
	})
}

// ClearStore clears the snapshot data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the snapshot tables.
// The yaml backend is a read-only file and is never cleared.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.GetStoreDBFilePath()
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		tables := slices.Clone(snapshotTables)
		slices.Reverse(tables)
		return clearSQLTables(backend, connStr, tables...)

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// ClearAudit clears the audit data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the audit table.
// For NoneBackend, it does nothing.
func ClearAudit(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.GetAuditDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, reportRunsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported audit backend for clearing: %s", backend)
	}
}
