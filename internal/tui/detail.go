package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/robby/adminctl/internal/domain"
)

// Layout constants
const (
	detailLabelWidth = 18
	borderSize       = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(detailLabelWidth)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))
)

// DetailModel is a read-only view of every field of one row.
type DetailModel struct {
	resource domain.Resource
	row      domain.Row
	viewport viewport.Model

	width  int
	height int
}

// NewDetailModel creates a detail view for row.
func NewDetailModel(resource domain.Resource, row domain.Row) DetailModel {
	vp := viewport.New(40, 10) // Resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		resource: resource,
		row:      row,
		viewport: vp,
	}
	m.viewport.SetContent(m.renderFields(40))
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - borderSize - 2
		m.viewport.Height = msg.Height - borderSize - 3
		m.viewport.SetContent(m.renderFields(m.viewport.Width))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "backspace":
			return m, func() tea.Msg { return closeDetailMsg{} }
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// fieldOrder lists the resource's columns first, then any other keys the
// server sent, alphabetically.
func (m DetailModel) fieldOrder() []string {
	seen := make(map[string]bool, len(m.row))
	keys := make([]string, 0, len(m.row))
	for _, c := range m.resource.Columns {
		if _, ok := m.row[c.Key]; ok {
			keys = append(keys, c.Key)
			seen[c.Key] = true
		}
	}
	var extra []string
	for k := range m.row {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func (m DetailModel) renderFields(width int) string {
	valueWidth := width - detailLabelWidth - 1
	if valueWidth < 10 {
		valueWidth = 10
	}

	var lines []string
	for _, k := range m.fieldOrder() {
		value := m.row.Text(k)
		if t, ok := m.row.Time(k); ok {
			value = fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04"), humanize.Time(t))
		}
		if value == "" {
			value = "-"
		}
		wrapped := wordwrap.String(value, valueWidth)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			detailLabelStyle.Render(domain.Title(k)),
			" ",
			detailValueStyle.Render(wrapped),
		))
	}
	return strings.Join(lines, "\n")
}

// View renders the detail panel.
func (m DetailModel) View() string {
	id := m.row.ID(m.resource.PrimaryField)
	title := detailTitleStyle.Render(fmt.Sprintf("%s #%s", domain.Title(m.resource.Name), id))
	body := panelBorderStyle.Render(m.viewport.View())
	footer := dimStyle.Render(fmt.Sprintf("↑/↓ scroll • esc back • %3.f%%", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
}
