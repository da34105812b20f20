package iostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// Table names for snapshot storage.
const (
	usersTable        = "pm_users"
	membersTable      = "pm_project_members"
	projectsTable     = "pm_projects"
	phasesTable       = "pm_phases"
	staffTable        = "pm_staff"
	assignmentsTable  = "pm_assignments"
	documentsTable    = "pm_documents"
	changeOrdersTable = "pm_change_orders"
)

// snapshotTables lists every snapshot table in dependency order.
var snapshotTables = []string{
	usersTable,
	membersTable,
	projectsTable,
	phasesTable,
	staffTable,
	assignmentsTable,
	documentsTable,
	changeOrdersTable,
}

// SQLStore serves snapshots and identities from a SQL database.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var (
	_ contract.SnapshotStore    = &SQLStore{} // Compile-time check
	_ contract.IdentityProvider = &SQLStore{} // Compile-time check
)

// NewSQLStore opens the snapshot database and creates its tables when missing.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createSnapshotTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
	}
	return &SQLStore{db: db, backend: backend}, nil
}

// createSnapshotTables creates the snapshot tables.
func createSnapshotTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range snapshotTables {
		if _, err := db.Exec(getCreateSnapshotTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes holds the per-backend column types used by the snapshot tables.
type columnTypes struct {
	id, text, money, instant string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{id: "VARCHAR(64)", text: "VARCHAR(255)", money: "DECIMAL(18,2)", instant: "DATETIME(6)"}
	case schema.PostgreSQLBackend:
		return columnTypes{id: "TEXT", text: "TEXT", money: "DECIMAL(18,2)", instant: "TIMESTAMPTZ"}
	default: // SQLite
		return columnTypes{id: "TEXT", text: "TEXT", money: "TEXT", instant: "TEXT"}
	}
}

// getCreateSnapshotTableQuery returns the CREATE TABLE query for a snapshot table.
func getCreateSnapshotTableQuery(table string, backend schema.DatabaseBackend) string {
	c := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case usersTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			name %s NOT NULL,
			role %s NOT NULL
		)`, quoted, c.id, c.text, c.text)
	case membersTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			user_id %s NOT NULL,
			project_id %s NOT NULL,
			PRIMARY KEY (user_id, project_id)
		)`, quoted, c.id, c.id)
	case projectsTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			name %s NOT NULL,
			status %s NOT NULL,
			budget %s NOT NULL
		)`, quoted, c.id, c.text, c.text, c.money)
	case phasesTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			project_id %s NOT NULL,
			name %s NOT NULL,
			status %s NOT NULL,
			estimated_cost %s NOT NULL,
			actual_cost %s NOT NULL,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, quoted, c.id, c.id, c.text, c.text, c.money, c.money, c.instant, c.instant)
	case staffTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			name %s NOT NULL
		)`, quoted, c.id, c.text)
	case assignmentsTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			staff_id %s NOT NULL,
			phase_id %s NOT NULL,
			PRIMARY KEY (staff_id, phase_id)
		)`, quoted, c.id, c.id)
	case documentsTable:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			phase_id %s NOT NULL,
			created_at %s NOT NULL
		)`, quoted, c.id, c.id, c.instant)
	default: // change orders
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id %s PRIMARY KEY,
			phase_id %s NOT NULL,
			status %s NOT NULL,
			amount %s NOT NULL
		)`, quoted, c.id, c.id, c.text, c.money)
	}
}

// table returns the quoted name of a snapshot table.
func (s *SQLStore) table(name string) string {
	return quoteTableName(name, s.backend)
}

// query runs a read query after rebinding placeholders and hands each row to scan.
func (s *SQLStore) query(ctx context.Context, what, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, rebind(s.backend, query), args...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s: %w", what, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s: %w", what, err)
	}
	return nil
}

// ProjectExists implements contract.SnapshotStore.
func (s *SQLStore) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", s.table(projectsTable))
	if err := s.db.QueryRowContext(ctx, rebind(s.backend, query), projectID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up project: %w", err)
	}
	return count > 0, nil
}

// Projects implements contract.SnapshotStore.
func (s *SQLStore) Projects(ctx context.Context, projectIDs []string) ([]schema.Project, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf("SELECT id, name, status, budget FROM %s WHERE id IN %s ORDER BY id", s.table(projectsTable), in)

	var out []schema.Project
	err := s.query(ctx, "projects", query, args, func(rows *sql.Rows) error {
		var p schema.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Budget); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// Phases implements contract.SnapshotStore.
func (s *SQLStore) Phases(ctx context.Context, projectIDs []string, window contract.PhaseWindow) ([]schema.Phase, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf(`SELECT id, project_id, name, status, estimated_cost, actual_cost, created_at, updated_at
		FROM %s WHERE project_id IN %s`, s.table(phasesTable), in)
	if !window.Since.IsZero() {
		column := "created_at"
		if window.ByUpdate {
			column = "updated_at"
		}
		query += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, formatTime(window.Since, s.backend))
	}
	query += " ORDER BY id"

	var out []schema.Phase
	err := s.query(ctx, "phases", query, args, func(rows *sql.Rows) error {
		var p schema.Phase
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Status, &p.EstimatedCost, &p.ActualCost,
			dbTime{&p.CreatedAt}, dbTime{&p.UpdatedAt}); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// Assignments implements contract.SnapshotStore.
func (s *SQLStore) Assignments(ctx context.Context, projectIDs []string) ([]schema.Assignment, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf(`SELECT a.staff_id, a.phase_id FROM %s a
		JOIN %s p ON p.id = a.phase_id
		WHERE p.project_id IN %s ORDER BY a.staff_id, a.phase_id`,
		s.table(assignmentsTable), s.table(phasesTable), in)

	var out []schema.Assignment
	err := s.query(ctx, "assignments", query, args, func(rows *sql.Rows) error {
		var a schema.Assignment
		if err := rows.Scan(&a.StaffID, &a.PhaseID); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

// Staff implements contract.SnapshotStore.
func (s *SQLStore) Staff(ctx context.Context, projectIDs []string) ([]schema.Staff, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf(`SELECT DISTINCT s.id, s.name FROM %s s
		JOIN %s a ON a.staff_id = s.id
		JOIN %s p ON p.id = a.phase_id
		WHERE p.project_id IN %s ORDER BY s.id`,
		s.table(staffTable), s.table(assignmentsTable), s.table(phasesTable), in)

	var out []schema.Staff
	err := s.query(ctx, "staff", query, args, func(rows *sql.Rows) error {
		var st schema.Staff
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

// Documents implements contract.SnapshotStore.
func (s *SQLStore) Documents(ctx context.Context, projectIDs []string, since time.Time) ([]schema.Document, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf(`SELECT d.id, d.phase_id, d.created_at FROM %s d
		JOIN %s p ON p.id = d.phase_id
		WHERE p.project_id IN %s`,
		s.table(documentsTable), s.table(phasesTable), in)
	if !since.IsZero() {
		query += " AND d.created_at >= ?"
		args = append(args, formatTime(since, s.backend))
	}
	query += " ORDER BY d.id"

	var out []schema.Document
	err := s.query(ctx, "documents", query, args, func(rows *sql.Rows) error {
		var d schema.Document
		if err := rows.Scan(&d.ID, &d.PhaseID, dbTime{&d.CreatedAt}); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

// ChangeOrders implements contract.SnapshotStore.
func (s *SQLStore) ChangeOrders(ctx context.Context, projectIDs []string) ([]schema.ChangeOrder, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(projectIDs)
	query := fmt.Sprintf(`SELECT c.id, c.phase_id, c.status, c.amount FROM %s c
		JOIN %s p ON p.id = c.phase_id
		WHERE p.project_id IN %s ORDER BY c.id`,
		s.table(changeOrdersTable), s.table(phasesTable), in)

	var out []schema.ChangeOrder
	err := s.query(ctx, "change orders", query, args, func(rows *sql.Rows) error {
		var c schema.ChangeOrder
		if err := rows.Scan(&c.ID, &c.PhaseID, &c.Status, &c.Amount); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// Resolve implements contract.IdentityProvider. Unknown users are denied.
func (s *SQLStore) Resolve(ctx context.Context, userID string) (schema.Identity, error) {
	identity := schema.Identity{UserID: userID}

	query := fmt.Sprintf("SELECT role FROM %s WHERE id = ?", s.table(usersTable))
	err := s.db.QueryRowContext(ctx, rebind(s.backend, query), userID).Scan(&identity.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Identity{}, fmt.Errorf("%w: unknown user %q", contract.ErrAccessDenied, userID)
	}
	if err != nil {
		return schema.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}

	query = fmt.Sprintf("SELECT project_id FROM %s WHERE user_id = ? ORDER BY project_id", s.table(membersTable))
	err = s.query(ctx, "memberships", query, []any{userID}, func(rows *sql.Rows) error {
		var projectID string
		if err := rows.Scan(&projectID); err != nil {
			return err
		}
		identity.ProjectIDs = append(identity.ProjectIDs, projectID)
		return nil
	})
	if err != nil {
		return schema.Identity{}, err
	}
	return identity, nil
}

// GetStatus implements contract.SnapshotStore.
func (s *SQLStore) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
		TableRows: make(map[string]int64, len(snapshotTables)),
	}
	if s.db == nil {
		return status, nil
	}
	for _, table := range snapshotTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(table))
		if err := s.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableRows[table] = count
	}
	return status, nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
