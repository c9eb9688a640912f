package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/debgems/pkg/deps"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// terminalColors maps record colors to ANSI 256 colors.
var terminalColors = map[deps.Color]lipgloss.Color{
	deps.Green:  lipgloss.Color("35"),
	deps.Yellow: lipgloss.Color("220"),
	deps.Blue:   lipgloss.Color("75"),
	deps.Cyan:   lipgloss.Color("36"),
	deps.Red:    lipgloss.Color("167"),
	deps.Violet: lipgloss.Color("141"),
}

// TerminalColor returns the terminal color for c.
func TerminalColor(c deps.Color) lipgloss.Color {
	if tc, ok := terminalColors[c]; ok {
		return tc
	}
	return lipgloss.Color("245")
}

var columns = []string{"Gem", "Requirement", "Debian", "Version", "Suite", "Parents"}

func row(r *deps.Record) []string {
	req := r.Requirement
	if req == "" {
		req = "-"
	}
	version := r.Version
	if r.State == deps.Skipped {
		version = "skipped"
	}
	return []string{r.Name, req, r.DebianName, version, r.Suite, strings.Join(r.Parents, ", ")}
}

// Table builds a styled terminal table of set.
func Table(set *deps.WorkingSet) *table.Table {
	records := set.Records()
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = row(r)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(r, col int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if r < 0 || r >= len(records) {
				return cellStyle
			}
			if col == 0 || col == 3 {
				return cellStyle.Foreground(TerminalColor(records[r].Color))
			}
			return cellStyle
		})
}

// WriteTable writes the styled table and a summary line to w.
func WriteTable(w io.Writer, set *deps.WorkingSet) error {
	s := Summarize(set)
	_, err := fmt.Fprintf(w, "%s\n%s\n", Table(set).Render(), SummaryLine(s))
	return err
}

// SummaryLine renders s as one line.
func SummaryLine(s Summary) string {
	line := fmt.Sprintf("%d packaged, %d ITP, %d unpackaged (%d%% complete)", s.Packaged, s.ITP, s.Unpackaged, s.Percent)
	if s.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", s.Skipped)
	}
	if s.Errors > 0 {
		line += fmt.Sprintf(", %d errors", s.Errors)
	}
	return line
}

// WriteText writes an unstyled, space-aligned table for pipes and files.
// Column widths are measured in terminal cells.
func WriteText(w io.Writer, set *deps.WorkingSet) error {
	rows := [][]string{columns}
	for _, r := range set.Records() {
		rows = append(rows, row(r))
	}

	widths := make([]int, len(columns))
	for _, cells := range rows {
		for i, c := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	for _, cells := range rows {
		for i, c := range cells {
			if i == len(cells)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
