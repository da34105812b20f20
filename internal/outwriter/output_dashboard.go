package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#928374")).
			PaddingLeft(1).
			PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fe8019"))
)

// section is one titled dashboard panel.
type section struct {
	title   string
	payload schema.Tabular
}

// dashboardSections lists the panels of a dashboard in display order.
// The spend panel is omitted when the report has none.
func dashboardSections(d schema.DashboardReport) []section {
	sections := []section{
		{"Phase status", d.PhaseStatus},
		{"Project status", d.ProjectStatus},
		{fmt.Sprintf("Activity (%s)", d.Activity.Range), d.Activity},
		{fmt.Sprintf("Completed phases (%d weeks)", d.Completion.Weeks), d.Completion},
		{"Staff workload", d.Workload},
	}
	if d.Spend != nil {
		sections = append(sections, section{"Project spend", *d.Spend})
	}
	return sections
}

// renderBox wraps content in a rounded-border box with a title.
func renderBox(title, content string) string {
	inner := titleStyle.Render(strings.ToUpper(title)) + "\n" + strings.TrimRight(content, "\n")
	return boxStyle.Render(inner)
}

// writeDashboard renders every dashboard section as a table inside its own box.
func writeDashboard(w io.Writer, d schema.DashboardReport, cfg *contract.Config) error {
	boxes := make([]string, 0, 6)
	for _, s := range dashboardSections(d) {
		var sb strings.Builder
		if err := renderTable(&sb, textTable(s.payload, cfg)); err != nil {
			return fmt.Errorf("render %s: %w", s.title, err)
		}
		boxes = append(boxes, renderBox(s.title, sb.String()))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, boxes...))
	return err
}
