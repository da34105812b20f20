package iostore

import (
	"database/sql"
	"fmt"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// reportRunsTable is the name of the table holding finished report runs.
const reportRunsTable = "pmpulse_report_runs"

// AuditStoreImpl implements the AuditStore interface.
type AuditStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AuditStore = &AuditStoreImpl{} // Compile-time check

// NewAuditStore creates a new AuditStore with the specified backend.
func NewAuditStore(backend schema.DatabaseBackend, connStr string) (contract.AuditStore, error) {
	if backend == schema.NoneBackend || backend == "" {
		// Return a no-op store for disabled auditing
		return &AuditStoreImpl{backend: schema.NoneBackend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAuditDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateReportRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit tables: %w", err)
	}

	return &AuditStoreImpl{db: db, backend: backend}, nil
}

// getCreateReportRunsQuery returns the CREATE TABLE query for pmpulse_report_runs.
func getCreateReportRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(reportRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				report VARCHAR(64) NOT NULL,
				user_id VARCHAR(64) NOT NULL,
				range_selector VARCHAR(32),
				project_id VARCHAR(64),
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6) NOT NULL,
				duration_ms BIGINT NOT NULL,
				outcome VARCHAR(16) NOT NULL,
				row_count INT NOT NULL,
				error_text TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				report TEXT NOT NULL,
				user_id TEXT NOT NULL,
				range_selector TEXT,
				project_id TEXT,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ NOT NULL,
				duration_ms BIGINT NOT NULL,
				outcome TEXT NOT NULL,
				row_count INT NOT NULL,
				error_text TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				report TEXT NOT NULL,
				user_id TEXT NOT NULL,
				range_selector TEXT,
				project_id TEXT,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				outcome TEXT NOT NULL,
				row_count INTEGER NOT NULL,
				error_text TEXT
			);
		`, quotedTableName)
	}
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RecordRun stores a finished run and returns its unique ID.
func (as *AuditStoreImpl) RecordRun(run schema.ReportRun) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(reportRunsTable, as.backend)
	args := []any{
		run.Report,
		run.UserID,
		nullable(run.Range),
		nullable(run.ProjectID),
		formatTime(run.StartTime, as.backend),
		formatTime(run.EndTime, as.backend),
		run.EndTime.Sub(run.StartTime).Milliseconds(),
		string(run.Outcome),
		run.Rows,
		nullable(run.Err),
	}
	query := fmt.Sprintf(`INSERT INTO %s (report, user_id, range_selector, project_id, start_time, end_time,
		duration_ms, outcome, row_count, error_text) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName)

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		err := as.db.QueryRow(rebind(as.backend, query)+" RETURNING run_id", args...).Scan(&runID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert report run: %w", err)
		}
	default: // SQLite and MySQL
		result, err := as.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert report run: %w", err)
		}
		runID, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read report run ID: %w", err)
		}
	}

	return runID, nil
}

// Close closes the underlying connection.
func (as *AuditStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the audit store.
func (as *AuditStoreImpl) GetStatus() (schema.AuditStatus, error) {
	status := schema.AuditStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(reportRunsTable, as.backend)

	// Get total runs
	row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[reportRunsTable] = int64(status.TotalRuns)

	if status.TotalRuns == 0 {
		return status, nil
	}

	// Get last run info
	row = as.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName))
	if err := row.Scan(&status.LastRunID, dbTime{&status.LastRunTime}); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}

	// Get oldest run time
	row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedTableName))
	if err := row.Scan(dbTime{&status.OldestRunTime}); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}

	// Get failed runs
	row = as.db.QueryRow(rebind(as.backend, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE outcome = ?", quotedTableName)), string(schema.OutcomeError))
	if err := row.Scan(&status.FailedRuns); err != nil {
		return status, fmt.Errorf("failed to get failed runs: %w", err)
	}

	return status, nil
}

// GetAllRuns retrieves all report runs from the store.
func (as *AuditStoreImpl) GetAllRuns() ([]schema.ReportRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(reportRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT run_id, report, user_id, range_selector, project_id, start_time, end_time,
		duration_ms, outcome, row_count, error_text FROM %s ORDER BY run_id`, quotedTableName)

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRunRecord
	for rows.Next() {
		var record schema.ReportRunRecord
		if err := rows.Scan(&record.RunID, &record.Report, &record.UserID, &record.Range, &record.ProjectID,
			dbTime{&record.StartTime}, dbTime{&record.EndTime}, &record.DurationMs, &record.Outcome,
			&record.Rows, &record.Err); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}

	return results, nil
}
