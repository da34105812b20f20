package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portfolioManager(recorder contract.RunRecorder) *iostore.MockStoreManager {
	mem := iostore.NewMemoryStore(testutil.Portfolio())
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSnapshotStore").Return(mem)
	mgr.On("GetIdentityProvider").Return(mem)
	mgr.On("GetRecorder").Return(recorder)
	return mgr
}

func TestExecuteReport(t *testing.T) {
	rec := &captureRecorder{}
	mgr := portfolioManager(rec)
	cfg := &contract.Config{
		UserID:       testutil.OwnerID,
		ResultLimit:  contract.DefaultResultLimit,
		Output:       schema.JSONOut,
		OutputFile:   filepath.Join(t.TempDir(), "phases.json"),
		StoreBackend: schema.YAMLBackend,
	}

	require.NoError(t, ExecuteReport(ReportPhaseStatus)(context.Background(), cfg, mgr))

	raw, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var report schema.StatusReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "phases", report.Subject)
	assert.Equal(t, 5, report.Total)

	run := rec.last(t)
	assert.Equal(t, ReportPhaseStatus, run.Report)
	assert.Equal(t, testutil.OwnerID, run.UserID)
	assert.Equal(t, schema.OutcomeOK, run.Outcome)
}

func TestExecuteReportErrors(t *testing.T) {
	t.Run("store not initialized", func(t *testing.T) {
		mgr := &iostore.MockStoreManager{}
		mgr.On("GetSnapshotStore").Return(nil)
		err := ExecuteReport(ReportPhaseStatus)(context.Background(), &contract.Config{UserID: testutil.OwnerID}, mgr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "snapshot store is not initialized")
	})

	t.Run("access denied is returned", func(t *testing.T) {
		cfg := &contract.Config{UserID: testutil.MemberID, Output: schema.JSONOut}
		err := ExecuteReport(ReportProfitLoss)(context.Background(), cfg, portfolioManager(nil))
		assert.ErrorIs(t, err, contract.ErrAccessDenied)
	})
}

func TestEngineFor(t *testing.T) {
	cfg := &contract.Config{WeekLabels: schema.ISOWeekLabels}

	e := EngineFor(cfg, portfolioManager(nil))
	assert.Nil(t, e.recorder)
	assert.Equal(t, schema.ISOWeekLabels, e.weekLabels)

	rec := &captureRecorder{}
	e = EngineFor(cfg, portfolioManager(rec))
	assert.Same(t, rec, e.recorder)
}
