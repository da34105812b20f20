package cmd

import (
	"fmt"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
	"github.com/huangsam/pmpulse/internal/outwriter"
	"github.com/huangsam/pmpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadAuditBackend reads and validates the audit backend settings into cfg.
func loadAuditBackend() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseAuditBackend(viper.GetString("audit-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("audit-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.AuditBackend = backend
	cfg.AuditDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	return nil
}

// auditSetup loads minimal configuration needed for audit operations.
// The snapshot store is not opened.
func auditSetup() error {
	if err := loadAuditBackend(); err != nil {
		return err
	}
	if err := iostore.InitStores(iostore.StoreOptions{
		AuditBackend: cfg.AuditBackend,
		AuditConnStr: cfg.AuditDBConnect,
		SkipSnapshot: true,
	}); err != nil {
		return fmt.Errorf("failed to initialize audit store: %w", err)
	}
	return nil
}

// auditSetupWrapper wraps auditSetup to provide PreRunE for audit commands.
func auditSetupWrapper(_ *cobra.Command, _ []string) error {
	return auditSetup()
}

// auditConfigSetupWrapper validates the audit backend without opening it,
// for clear and for migrations on a fresh database.
func auditConfigSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadAuditBackend()
}

// auditCmd focused on report run history.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage the report run audit trail",
	Long: `Manage the audit trail of report runs.

When --audit-backend is set, every report run is recorded with its user,
scope, row count, outcome and duration. Recording happens in the background
and never fails a report.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show audit statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  pmpulse audit status --audit-backend sqlite
  pmpulse audit export --audit-backend sqlite --output-file runs`,
}

// auditStatusCmd shows audit status.
var auditStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display audit statistics and connection details",
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetAuditStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get audit status", err)
		}
		if err := outwriter.NewOutWriter().WriteAuditStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to print audit status", err)
		}
	},
}

// auditExportCmd exports report runs to a Parquet file.
var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export report runs to Parquet for BI tools",
	Long: `Export every recorded report run to <output-file>.report_runs.parquet.

Requires: --output-file parameter

Examples:
  pmpulse audit export --audit-backend sqlite --output-file runs
  duckdb -c "SELECT report, avg(duration_ms) FROM read_parquet('runs.report_runs.parquet') GROUP BY 1"`,
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteAuditExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export audit data", err)
		}
	},
}

// auditClearCmd clears the audit data.
var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded report runs",
	Long: `Delete all recorded report runs.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the audit table`,
	PreRunE: auditConfigSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := ""
		if cfg.AuditBackend == schema.SQLiteBackend {
			dbFile = cfg.AuditDBConnect
		}
		if err := iostore.ClearAudit(cfg.AuditBackend, dbFile, cfg.AuditDBConnect); err != nil {
			contract.LogFatal("Failed to clear audit data", err)
		}
		fmt.Println("Audit data cleared successfully.")
	},
}

// auditMigrateCmd runs database migrations for the audit store.
var auditMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run audit schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the audit store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  pmpulse audit migrate --audit-backend sqlite
  pmpulse audit migrate --audit-backend sqlite --target-version 0`,
	PreRunE: auditConfigSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion, _ := cmd.Flags().GetInt("target-version")
		if err := iostore.MigrateAudit(cfg.AuditBackend, cfg.AuditDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Audit migrations applied.")
	},
}
