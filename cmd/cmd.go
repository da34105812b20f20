// Package cmd defines the command-line interface for pmpulse.
package cmd

import (
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add report subcommands to the root command
	rootCmd.AddCommand(phaseStatusCmd)
	rootCmd.AddCommand(projectStatusCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(workloadCmd)
	rootCmd.AddCommand(spendCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(pnlCmd)
	rootCmd.AddCommand(dashboardCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(dbCmd)

	// Add the audit subcommands to the parent audit command
	auditCmd.AddCommand(auditStatusCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditClearCmd)
	auditCmd.AddCommand(auditMigrateCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("user", "u", "", "ID of the user reports are computed for")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Narrow reports to one project ID the user is a member of")
	rootCmd.PersistentFlags().String("range", string(contract.DefaultRange), "Trailing range: 3 months or 6 months or 12 months or all")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of ranked entries to display")
	rootCmd.PersistentFlags().String("week-labels", string(contract.DefaultWeekLabels), "Completion week labels: legacy (MM/DD) or iso (YYYY-Www)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or yaml")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Snapshot connection string, or dataset path for yaml")
	rootCmd.PersistentFlags().String("audit-backend", "", "Audit backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("audit-db-connect", "", "Database connection string for the audit trail (must differ from store-db-connect)")
	rootCmd.PersistentFlags().Int("audit-buffer", contract.DefaultAuditBuffer, "Queued audit runs before new ones are dropped")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Migrate flags are read straight from each command
	for _, c := range []*cobra.Command{auditMigrateCmd, dbMigrateCmd} {
		c.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	}
}
