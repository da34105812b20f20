//go:build basic

// Package integration contains integration tests for pmpulse.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestYAMLAndSQLiteAgree imports the sample portfolio into SQLite and checks
// that both backends produce the same clock-independent reports.
func TestYAMLAndSQLiteAgree(t *testing.T) {
	isolateHome(t)
	yamlPath := writePortfolio(t)
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")

	mustRunPmpulse(t, "db", "import", yamlPath, "--store-db-connect", dbPath)

	backends := map[string][]string{
		"yaml":   {"--store-backend", "yaml", "--store-db-connect", yamlPath},
		"sqlite": {"--store-db-connect", dbPath},
	}

	outputs := make(map[string]map[string]string)
	for name, flags := range backends {
		outputs[name] = make(map[string]string)
		for _, report := range []string{"phase-status", "project-status", "workload", "spend", "pnl"} {
			args := append([]string{report, "--user", testutil.OwnerID, "--output", "json"}, flags...)
			outputs[name][report] = mustRunPmpulse(t, args...)
		}
	}

	for report, out := range outputs["yaml"] {
		assert.JSONEq(t, out, outputs["sqlite"][report], report)
	}

	var pnl schema.ProfitLossReport
	require.NoError(t, json.Unmarshal([]byte(outputs["sqlite"]["pnl"]), &pnl))
	assert.Len(t, pnl.Rows, 2)
	assert.True(t, pnl.Totals.Budget.Equal(decimal.NewFromInt(150000)), pnl.Totals.Budget.String())
}

// TestReportCommandErrors checks the exit status of rejected report requests.
func TestReportCommandErrors(t *testing.T) {
	isolateHome(t)
	yamlPath := writePortfolio(t)
	flags := []string{"--store-backend", "yaml", "--store-db-connect", yamlPath}

	out, err := runPmpulse(t, append([]string{"pnl"}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, out, "--user is required")

	out, err = runPmpulse(t, append([]string{"pnl", "--user", testutil.MemberID}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, out, "access denied")

	out, err = runPmpulse(t, append([]string{"activity", "--user", testutil.OwnerID, "--range", "24 months"}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, out, "invalid range")
}

// TestAuditTrail runs reports with auditing on and exports the recorded runs.
func TestAuditTrail(t *testing.T) {
	isolateHome(t)
	yamlPath := writePortfolio(t)
	dir := t.TempDir()
	auditPath := filepath.Join(dir, "audit.db")
	flags := []string{"--store-backend", "yaml", "--store-db-connect", yamlPath, "--audit-backend", "sqlite", "--audit-db-connect", auditPath}

	mustRunPmpulse(t, append([]string{"phase-status", "--user", testutil.OwnerID}, flags...)...)
	mustRunPmpulse(t, append([]string{"dashboard", "--user", testutil.MemberID}, flags...)...)

	out := mustRunPmpulse(t, "audit", "status", "--audit-backend", "sqlite", "--audit-db-connect", auditPath, "--output", "json")
	var status schema.AuditStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 2, status.TotalRuns)
	assert.Zero(t, status.FailedRuns)

	exportBase := filepath.Join(dir, "runs")
	mustRunPmpulse(t, "audit", "export", "--audit-backend", "sqlite", "--audit-db-connect", auditPath, "--output-file", exportBase)
	_, err := os.Stat(exportBase + ".report_runs.parquet")
	assert.NoError(t, err)

	mustRunPmpulse(t, "audit", "clear", "--audit-backend", "sqlite", "--audit-db-connect", auditPath)
	_, err = os.Stat(auditPath)
	assert.True(t, os.IsNotExist(err))
}
