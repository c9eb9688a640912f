package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/debgems/pkg/deps"
	"github.com/matzehuels/debgems/pkg/report"
	"github.com/matzehuels/debgems/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// RecordListModel - Interactive result browser
// =============================================================================

// recordFilter narrows the browsed records.
type recordFilter int

const (
	filterAll recordFilter = iota
	filterUnsatisfied
	filterUnpackaged
)

func (f recordFilter) String() string {
	switch f {
	case filterUnsatisfied:
		return "unsatisfied"
	case filterUnpackaged:
		return "unpackaged"
	}
	return "all"
}

func (f recordFilter) keep(r *deps.Record) bool {
	switch f {
	case filterUnsatisfied:
		return r.Satisfied == deps.No
	case filterUnpackaged:
		return r.Status == deps.Unpackaged || r.Status == deps.RFP
	}
	return true
}

// RecordListModel is the bubbletea model for browsing resolved gems.
type RecordListModel struct {
	App     string
	Records []*deps.Record
	Filter  recordFilter
	Cursor  int
	Offset  int
	Height  int
	Detail  bool

	visible []*deps.Record
}

// NewRecordListModel creates a record browser over records.
func NewRecordListModel(app string, records []*deps.Record) RecordListModel {
	m := RecordListModel{App: app, Records: records, Height: 15}
	m.visible = records
	return m
}

func (m RecordListModel) Init() tea.Cmd {
	return nil
}

func (m RecordListModel) applyFilter() RecordListModel {
	m.visible = m.visible[:0:0]
	for _, r := range m.Records {
		if m.Filter.keep(r) {
			m.visible = append(m.visible, r)
		}
	}
	m.Cursor, m.Offset = 0, 0
	return m
}

func (m RecordListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "enter", "backspace":
				m.Detail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "f", "tab":
			m.Filter = (m.Filter + 1) % 3
			m = m.applyFilter()
		case "enter":
			if len(m.visible) > 0 {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// Current returns the record under the cursor, or nil.
func (m RecordListModel) Current() *deps.Record {
	if m.Cursor < len(m.visible) {
		return m.visible[m.Cursor]
	}
	return nil
}

func (m RecordListModel) View() string {
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.App))
	b.WriteString(listDimStyle.Render("  filter: " + m.Filter.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  f filter  q quit"))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no gems match"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.Name, r.DebianName, r.Version, r.Suite, satisfiedMark(r)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Gem", "Debian", "Version", "Suite", "Req").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if col == 1 || col == 5 {
				style = style.Foreground(report.TerminalColor(m.visible[idx].Color))
			} else if col > 1 {
				style = style.Foreground(colorGray)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	return b.String()
}

func (m RecordListModel) detailView() string {
	r := m.Current()
	if r == nil {
		return ""
	}
	key := lipgloss.NewStyle().Foreground(colorGray).Width(13)
	line := func(k, v string) string {
		if v == "" {
			v = "-"
		}
		return key.Render(k) + " " + listNormalStyle.Render(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(report.TerminalColor(r.Color)).Render(iconDot + " " + r.Name))
	b.WriteString("\n\n")
	b.WriteString(line("Requirement", r.Requirement))
	b.WriteString(line("Group", r.Group))
	b.WriteString(line("Debian", r.DebianName))
	b.WriteString(line("Version", r.Version))
	b.WriteString(line("Suite", r.Suite))
	b.WriteString(line("Status", string(r.Status)))
	b.WriteString(line("Satisfied", satisfiedMark(r)))
	b.WriteString(line("Required by", strings.Join(r.Parents, ", ")))
	if r.Link != "" {
		b.WriteString(key.Render("Link") + " " + StyleLink.Render(r.Link) + "\n")
	}
	if r.Error != "" {
		b.WriteString(key.Render("Error") + " " + StyleError.Render(r.Error) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎ back  q quit"))
	return b.String()
}

func satisfiedMark(r *deps.Record) string {
	switch {
	case r.State == deps.Skipped:
		return "skipped"
	case r.Satisfied == deps.Yes:
		return iconSuccess
	case r.Satisfied == deps.No:
		return iconError
	}
	return "?"
}

// =============================================================================
// RunListModel - Interactive run selection
// =============================================================================

// RunListModel is the bubbletea model for picking a saved run.
type RunListModel struct {
	Runs     []*store.Run
	Cursor   int
	Selected *store.Run
}

// NewRunListModel creates a new run list model.
func NewRunListModel(runs []*store.Run) RunListModel {
	return RunListModel{Runs: runs}
}

func (m RunListModel) Init() tea.Cmd {
	return nil
}

func (m RunListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Runs)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Runs) > 0 {
				m.Selected = m.Runs[m.Cursor]
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m RunListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Run"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, r := range m.Runs {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-24s %3d%%  %s", cursor, r.App, r.Summary.Percent,
			listDimStyle.Render(formatRelativeTime(r.CreatedAt)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
