package iostore

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteObjectExists reports whether a table or index exists in the SQLite file.
func sqliteObjectExists(t *testing.T, dbPath, kind, name string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestMigrateAudit_NoneBackend(t *testing.T) {
	err := MigrateAudit(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateStore_YAMLBackend(t *testing.T) {
	err := MigrateStore(schema.YAMLBackend, "data.yaml", -1)
	assert.Error(t, err)
}

func TestMigrateStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store_migration.db")

	// Run migration to latest version
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.True(t, sqliteObjectExists(t, dbPath, "table", phasesTable))
	assert.True(t, sqliteObjectExists(t, dbPath, "index", "idx_pm_phases_project"))

	// Run migration again (should be a no-op)
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))

	// Step down to version 1 drops the index only
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 1))
	assert.True(t, sqliteObjectExists(t, dbPath, "table", phasesTable))
	assert.False(t, sqliteObjectExists(t, dbPath, "index", "idx_pm_phases_project"))

	// Rollback to version 0
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 0))
	assert.False(t, sqliteObjectExists(t, dbPath, "table", phasesTable))

	// A migrated file is usable by the store
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	store, err := NewSQLStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestMigrateAudit_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit_migration.db")

	require.NoError(t, MigrateAudit(schema.SQLiteBackend, dbPath, -1))
	assert.True(t, sqliteObjectExists(t, dbPath, "table", reportRunsTable))

	require.NoError(t, MigrateAudit(schema.SQLiteBackend, dbPath, 0))
	assert.False(t, sqliteObjectExists(t, dbPath, "table", reportRunsTable))
}

func TestMigrationSetsCoverEveryBackend(t *testing.T) {
	for _, set := range []string{storeMigrations, auditMigrations} {
		for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
			entries, err := migrationsFS.ReadDir("migrations/" + set + "/" + string(backend))
			require.NoError(t, err, "%s/%s", set, backend)
			assert.NotEmpty(t, entries)
			assert.Zero(t, len(entries)%2, "every up migration needs a down migration")
		}
	}
}
