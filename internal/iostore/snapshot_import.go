package iostore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
)

// ImportSummary counts the rows written per table by an import.
type ImportSummary map[string]int

// ImportDataset writes a dataset into the snapshot tables in one transaction.
// Records without an ID receive a fresh UUID. Existing rows with the same key are replaced.
func (s *SQLStore) ImportDataset(ctx context.Context, data schema.Dataset) (ImportSummary, error) {
	fillMissingIDs(&data)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	summary := make(ImportSummary, len(snapshotTables))
	insert := func(table string, keys []string, columns []string, rows [][]any) error {
		if len(rows) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, s.upsertQuery(table, keys, columns))
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
		}
		defer func() { _ = stmt.Close() }()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
		summary[table] = len(rows)
		return nil
	}

	batches := []struct {
		table   string
		keys    []string
		columns []string
		rows    [][]any
	}{
		{usersTable, []string{"id"}, []string{"id", "name", "role"}, lo.Map(data.Users, func(u schema.User, _ int) []any {
			return []any{u.ID, u.Name, string(u.Role)}
		})},
		{membersTable, []string{"user_id", "project_id"}, []string{"user_id", "project_id"}, lo.Map(data.Members, func(m schema.Member, _ int) []any {
			return []any{m.UserID, m.ProjectID}
		})},
		{projectsTable, []string{"id"}, []string{"id", "name", "status", "budget"}, lo.Map(data.Projects, func(p schema.Project, _ int) []any {
			return []any{p.ID, p.Name, string(p.Status), p.Budget.String()}
		})},
		{phasesTable, []string{"id"}, []string{"id", "project_id", "name", "status", "estimated_cost", "actual_cost", "created_at", "updated_at"}, lo.Map(data.Phases, func(p schema.Phase, _ int) []any {
			return []any{p.ID, p.ProjectID, p.Name, string(p.Status), p.EstimatedCost.String(), p.ActualCost.String(),
				formatTime(p.CreatedAt, s.backend), formatTime(p.UpdatedAt, s.backend)}
		})},
		{staffTable, []string{"id"}, []string{"id", "name"}, lo.Map(data.Staff, func(st schema.Staff, _ int) []any {
			return []any{st.ID, st.Name}
		})},
		{assignmentsTable, []string{"staff_id", "phase_id"}, []string{"staff_id", "phase_id"}, lo.Map(data.Assignments, func(a schema.Assignment, _ int) []any {
			return []any{a.StaffID, a.PhaseID}
		})},
		{documentsTable, []string{"id"}, []string{"id", "phase_id", "created_at"}, lo.Map(data.Documents, func(d schema.Document, _ int) []any {
			return []any{d.ID, d.PhaseID, formatTime(d.CreatedAt, s.backend)}
		})},
		{changeOrdersTable, []string{"id"}, []string{"id", "phase_id", "status", "amount"}, lo.Map(data.ChangeOrders, func(c schema.ChangeOrder, _ int) []any {
			return []any{c.ID, c.PhaseID, string(c.Status), c.Amount.String()}
		})},
	}
	for _, b := range batches {
		if err := insert(b.table, b.keys, b.columns, b.rows); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return summary, nil
}

// upsertQuery returns the replace-on-conflict INSERT for the backend.
func (s *SQLStore) upsertQuery(table string, keys, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")
	quoted := s.table(table)

	var updates []string
	for _, c := range columns {
		if slices.Contains(keys, c) {
			continue
		}
		switch s.backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		default:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	switch s.backend {
	case schema.MySQLBackend:
		if len(updates) == 0 {
			return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", quoted, cols, marks)
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			quoted, cols, marks, strings.Join(updates, ", "))
	case schema.PostgreSQLBackend:
		conflict := "DO NOTHING"
		if len(updates) > 0 {
			conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
		}
		return rebind(s.backend, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
			quoted, cols, marks, strings.Join(keys, ", "), conflict))
	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", quoted, cols, marks)
	}
}

// fillMissingIDs assigns UUIDs to records that carry no ID.
// The record slices are copied first so the caller's dataset is left untouched.
func fillMissingIDs(data *schema.Dataset) {
	data.Users = slices.Clone(data.Users)
	data.Projects = slices.Clone(data.Projects)
	data.Phases = slices.Clone(data.Phases)
	data.Staff = slices.Clone(data.Staff)
	data.Documents = slices.Clone(data.Documents)
	data.ChangeOrders = slices.Clone(data.ChangeOrders)
	for i := range data.Users {
		if data.Users[i].ID == "" {
			data.Users[i].ID = uuid.NewString()
		}
	}
	for i := range data.Projects {
		if data.Projects[i].ID == "" {
			data.Projects[i].ID = uuid.NewString()
		}
	}
	for i := range data.Phases {
		if data.Phases[i].ID == "" {
			data.Phases[i].ID = uuid.NewString()
		}
	}
	for i := range data.Staff {
		if data.Staff[i].ID == "" {
			data.Staff[i].ID = uuid.NewString()
		}
	}
	for i := range data.Documents {
		if data.Documents[i].ID == "" {
			data.Documents[i].ID = uuid.NewString()
		}
	}
	for i := range data.ChangeOrders {
		if data.ChangeOrders[i].ID == "" {
			data.ChangeOrders[i].ID = uuid.NewString()
		}
	}
}
