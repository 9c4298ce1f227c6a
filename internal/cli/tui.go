package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stratum/pkg/pipeline"
)

// List styles
var (
	listTabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorGray)
	listActiveTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorCyan).Underline(true)
	listDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ReportModel - Interactive report browser
// =============================================================================

// reportTab is one page of the report browser.
type reportTab int

const (
	tabLevels reportTab = iota
	tabScores
	tabRoutes
	tabCount
)

var tabNames = [tabCount]string{"Levels", "Scores", "Routes"}

// ReportModel is the bubbletea model that browses a report's tables.
type ReportModel struct {
	Report *pipeline.Report
	Tab    reportTab
	Cursor int
	Offset int
	Height int
}

// NewReportModel creates a report browser starting on the levels tab.
func NewReportModel(rep *pipeline.Report) ReportModel {
	return ReportModel{Report: rep, Height: 15}
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.Tab = (m.Tab + 1) % tabCount
			m.Cursor, m.Offset = 0, 0
		case "shift+tab", "left", "h":
			m.Tab = (m.Tab + tabCount - 1) % tabCount
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rowCount()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(m.rowCount()-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m ReportModel) rowCount() int {
	switch m.Tab {
	case tabLevels:
		return len(m.Report.Levels)
	case tabScores:
		return len(m.Report.Scores)
	default:
		return len(m.Report.Routes)
	}
}

// rows returns the header and every row of the current tab, plus the
// style of each row's label column.
func (m ReportModel) rows() ([]string, [][]string, []lipgloss.Style) {
	rep := m.Report
	switch m.Tab {
	case tabLevels:
		rows := make([][]string, len(rep.Levels))
		styles := make([]lipgloss.Style, len(rep.Levels))
		for i, r := range rep.Levels {
			rows[i] = []string{r.ID, strconv.Itoa(r.Level)}
			styles[i] = StyleValue
			if rep.Fallback && r.Level == rep.LevelCount {
				styles[i] = StyleWarning
			}
		}
		return []string{"Problem", "Level"}, rows, styles
	case tabScores:
		rows := make([][]string, len(rep.Scores))
		styles := make([]lipgloss.Style, len(rep.Scores))
		for i, s := range rep.Scores {
			rows[i] = []string{s.ID, formatScore(s.Influence), formatScore(s.Dependence), s.Class.String()}
			styles[i] = classStyles[s.Class]
		}
		return []string{"Problem", "Influence", "Dependence", "Class"}, rows, styles
	default:
		rows := make([][]string, len(rep.Routes))
		styles := make([]lipgloss.Style, len(rep.Routes))
		for i, r := range rep.Routes {
			rows[i] = []string{r.ID, strconv.Itoa(r.Impact), strconv.Itoa(r.Uncertainty), string(r.Route)}
			styles[i] = routeStyles[r.Route]
		}
		return []string{"Problem", "Impact", "Uncertainty", "Route"}, rows, styles
	}
}

func (m ReportModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Report " + short(m.Report.RunID)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %d edges · %d levels · %s",
		m.Report.Stats.NodeCount, m.Report.Stats.EdgeCount, m.Report.LevelCount, m.Report.Mode)))
	b.WriteString("\n")

	tabs := make([]string, tabCount)
	for i, name := range tabNames {
		if reportTab(i) == m.Tab {
			tabs[i] = listActiveTabStyle.Render(name)
		} else {
			tabs[i] = listTabStyle.Render(name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ switch table  ↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	headers, all, styles := m.rows()
	end := min(m.Offset+m.Height, len(all))
	visible := all[m.Offset:end]

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(visible...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(all) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Foreground(colorGray)
			if col == 0 || col == len(headers)-1 {
				base = styles[idx]
			}
			if idx == m.Cursor {
				return base.Bold(true).Reverse(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(all) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(all))))
	} else {
		b.WriteString(listDimStyle.Render("  (empty)"))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatScore drops a trailing ".0" so integer path counts read naturally.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
