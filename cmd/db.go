package cmd

import (
	"fmt"
	"slices"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
	"github.com/huangsam/pmpulse/internal/outwriter"
	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadStoreBackend reads and validates the snapshot backend settings into cfg.
func loadStoreBackend() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseStoreBackend(viper.GetString("store-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	return nil
}

// dbSetupWrapper opens the snapshot store without auditing.
func dbSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := loadStoreBackend(); err != nil {
		return err
	}
	if err := iostore.InitStores(iostore.StoreOptions{
		StoreBackend: cfg.StoreBackend,
		StoreConnStr: cfg.StoreDBConnect,
	}); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	return nil
}

// dbStoreSetupWrapper validates the snapshot backend without opening the global manager.
func dbStoreSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadStoreBackend()
}

// dbCmd focused on the snapshot database.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the snapshot database reports are read from",
	Long: `Manage the snapshot database that holds projects, phases, staff,
assignments, documents, change orders, users and memberships.

Supported backends: SQLite (default), MySQL, PostgreSQL, or a read-only YAML dataset

Subcommands:
  status  - Show row counts per table
  migrate - Run database schema migrations
  import  - Load a YAML dataset into the database
  clear   - Remove all snapshot data

Examples:
  pmpulse db import portfolio.yaml
  pmpulse db status`,
}

// dbStatusCmd shows snapshot store status.
var dbStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display snapshot row counts and connection details",
	PreRunE: dbSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetSnapshotStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to print store status", err)
		}
	},
}

// dbMigrateCmd runs database migrations for the snapshot store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run snapshot schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  pmpulse db migrate
  pmpulse db migrate --target-version 1`,
	PreRunE: dbStoreSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion, _ := cmd.Flags().GetInt("target-version")
		if err := iostore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Snapshot migrations applied.")
	},
}

// dbImportCmd loads a YAML dataset into the SQL snapshot store.
var dbImportCmd = &cobra.Command{
	Use:   "import <dataset.yaml>",
	Short: "Load a YAML dataset into the snapshot database",
	Long: `Upsert every record of a YAML dataset into the snapshot tables in one transaction.

Records without an id receive a fresh UUID. Existing rows with the same key are replaced.

Examples:
  pmpulse db import portfolio.yaml
  pmpulse db import portfolio.yaml --store-backend postgresql --store-db-connect "host=... dbname=pm"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: dbStoreSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if cfg.StoreBackend == schema.YAMLBackend {
			contract.LogFatal("Failed to import dataset", fmt.Errorf("the %s backend is read-only", cfg.StoreBackend))
		}

		data, err := iostore.LoadDataset(args[0])
		if err != nil {
			contract.LogFatal("Failed to read dataset", err)
		}

		store, err := iostore.NewSQLStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open snapshot store", err)
		}
		defer func() { _ = store.Close() }()

		summary, err := store.ImportDataset(rootCtx, data)
		if err != nil {
			contract.LogFatal("Failed to import dataset", err)
		}

		tables := lo.Keys(summary)
		slices.Sort(tables)
		for _, table := range tables {
			fmt.Printf("  %s: %d rows\n", table, summary[table])
		}
		fmt.Printf("Imported %s into %s store.\n", args[0], cfg.StoreBackend)
	},
}

// dbClearCmd clears the snapshot data.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all snapshot data",
	Long: `Delete all snapshot data.

WARNING: This action cannot be undone.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot tables`,
	PreRunE: dbStoreSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := ""
		if cfg.StoreBackend == schema.SQLiteBackend {
			dbFile = cfg.StoreDBConnect
		}
		if err := iostore.ClearStore(cfg.StoreBackend, dbFile, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot data", err)
		}
		fmt.Println("Snapshot data cleared successfully.")
	},
}
