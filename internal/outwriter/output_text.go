package outwriter

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeText renders a payload as a human-readable table followed by a summary line.
func writeText(w io.Writer, report string, payload schema.Tabular, cfg *contract.Config, duration time.Duration) error {
	if dash, ok := payload.(schema.DashboardReport); ok {
		if err := writeDashboard(w, dash, cfg); err != nil {
			return err
		}
	} else {
		t := textTable(payload, cfg)
		if err := renderTable(w, t); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Showing %d rows of %s\n", len(t.Rows), report); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Report completed in %v. Store backend: %s\n", duration, cfg.StoreBackend)
	return err
}

// textTable decorates the CSV projection of a payload for the terminal:
// labels are truncated to fit and statuses are colored.
func textTable(payload schema.Tabular, cfg *contract.Config) schema.Table {
	t := payload.Table()
	t.Rows = slices.Clone(t.Rows)

	switch p := payload.(type) {
	case schema.StatusReport:
		colorColumn(t.Rows, 0, cfg)
	case schema.ProfitLossReport:
		colorColumn(t.Rows, 1, cfg)
		t.Header = append(slices.Clone(t.Header), "health")
		for i, row := range p.Rows {
			label := contract.GetPlainMarginLabel(row.ProfitMargin)
			if cfg.UseColors {
				label = contract.GetColorMarginLabel(row.ProfitMargin)
			}
			t.Rows[i] = append(slices.Clone(t.Rows[i]), label)
		}
	}

	col := labelColumn(payload)
	width := GetMaxLabelWidth(cfg, len(t.Header))
	for i, row := range t.Rows {
		if col < len(row) {
			row = slices.Clone(row)
			row[col] = contract.TruncateLabel(row[col], width)
			t.Rows[i] = row
		}
	}
	return t
}

// labelColumn returns the index of the free-text column of a payload.
func labelColumn(payload schema.Tabular) int {
	if _, ok := payload.(schema.RankingReport); ok {
		return 1
	}
	return 0
}

func colorColumn(rows [][]string, col int, cfg *contract.Config) {
	if !cfg.UseColors {
		return
	}
	for i, row := range rows {
		if col < len(row) {
			row = slices.Clone(row)
			row[col] = contract.GetColorStatus(row[col])
			rows[i] = row
		}
	}
}

// renderTable writes a right-aligned table with upper-cased headers.
func renderTable(w io.Writer, t schema.Table) error {
	table := tablewriter.NewWriter(w)

	headers := make([]string, len(t.Header))
	for i, h := range t.Header {
		headers[i] = strings.ToUpper(strings.ReplaceAll(h, "_", " "))
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(t.Rows); err != nil {
		return err
	}
	return table.Render()
}

// writeStoreStatus prints the snapshot store status as a two-column table.
func writeStoreStatus(w io.Writer, status schema.StoreStatus) error {
	if _, err := fmt.Fprintf(w, "Store backend: %s (connected: %t)\n", status.Backend, status.Connected); err != nil {
		return err
	}
	return renderTable(w, tableSizes(status.TableRows))
}

// writeAuditStatus prints the audit store status.
func writeAuditStatus(w io.Writer, status schema.AuditStatus) error {
	lines := []string{
		fmt.Sprintf("Audit backend: %s (connected: %t)", status.Backend, status.Connected),
		fmt.Sprintf("Total runs: %d (failed: %d)", status.TotalRuns, status.FailedRuns),
	}
	if status.TotalRuns > 0 {
		lines = append(lines,
			fmt.Sprintf("Last run: #%d at %s", status.LastRunID, status.LastRunTime.Format(time.RFC3339)),
			fmt.Sprintf("Oldest run: %s", status.OldestRunTime.Format(time.RFC3339)),
		)
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return err
	}
	if len(status.TableSizes) == 0 {
		return nil
	}
	return renderTable(w, tableSizes(status.TableSizes))
}

// tableSizes lists row counts per table, sorted by table name.
func tableSizes(sizes map[string]int64) schema.Table {
	t := schema.Table{Header: []string{"table", "rows"}}
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		t.Rows = append(t.Rows, []string{name, strconv.FormatInt(sizes[name], 10)})
	}
	return t
}
