// Package core assembles project-management reports from freshly collected snapshots.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/pmpulse/internal/access"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing one report from the CLI.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// EngineFor builds an engine over the configured stores, with the default
// access policy and the manager's audit recorder when auditing is enabled.
func EngineFor(cfg *contract.Config, mgr contract.StoreManager) *Engine {
	opts := []Option{WithWeekLabelStyle(cfg.WeekLabels)}
	if rec := mgr.GetRecorder(); rec != nil {
		opts = append(opts, WithRecorder(rec))
	}
	return NewEngine(mgr.GetSnapshotStore(), mgr.GetIdentityProvider(), access.DefaultPolicy(), opts...)
}

// ExecuteReport returns the executor that runs the named report and prints
// it using the configured output format.
func ExecuteReport(report string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		if mgr.GetSnapshotStore() == nil {
			return errors.New("snapshot store is not initialized")
		}
		start := time.Now()
		payload, err := EngineFor(cfg, mgr).Generate(ctx, report, Params{
			UserID:    cfg.UserID,
			ProjectID: cfg.ProjectID,
			Range:     cfg.Range,
			Limit:     cfg.ResultLimit,
		})
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteReport(report, payload, cfg, time.Since(start))
	}
}
