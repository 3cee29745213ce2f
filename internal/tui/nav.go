package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/adminctl/internal/domain"
)

// menuItem is one navigation entry.
type menuItem struct {
	screen string
	label  string
	hint   string
}

func (i menuItem) FilterValue() string { return i.label }

// menuItemDelegate handles rendering of menu items.
type menuItemDelegate struct{}

func (d menuItemDelegate) Height() int                             { return 1 }
func (d menuItemDelegate) Spacing() int                            { return 0 }
func (d menuItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d menuItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	hint := ""
	if i.hint != "" {
		hint = " " + dimStyle.Render(i.hint)
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+i.label)+hint)
		return
	}
	fmt.Fprint(w, NormalItemStyle.Render("  "+i.label)+hint)
}

// MenuItems builds the navigation entries from the server flags: the
// dashboard, every enabled resource the console knows, then logout.
// Unknown or disabled names are left out.
func MenuItems(nav []domain.NavItem) []string {
	screens := []string{ScreenDashboard}
	for _, item := range nav {
		if !item.Enabled {
			continue
		}
		if _, ok := domain.LookupResource(item.Name); ok {
			screens = append(screens, item.Name)
		}
	}
	return append(screens, ScreenLogout)
}

// MenuModel lets the user pick a screen.
type MenuModel struct {
	list    list.Model
	screens []string
	err     error
}

// NewMenuModel creates the navigation menu for nav.
func NewMenuModel(nav []domain.NavItem) MenuModel {
	screens := MenuItems(nav)
	items := make([]list.Item, len(screens))
	for i, s := range screens {
		item := menuItem{screen: s, label: domain.Title(s)}
		switch s {
		case ScreenDashboard:
			item.hint = "row counts"
		case ScreenLogout:
			item.hint = "end session"
		}
		items[i] = item
	}

	// Start with a reasonable default - will be resized by WindowSizeMsg
	l := list.New(items, menuItemDelegate{}, 80, 20)
	l.Title = "Admin Console"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	l.Styles.HelpStyle = HelpStyle

	return MenuModel{
		list:    l,
		screens: screens,
	}
}

// Screens returns the screens offered by the menu, in order.
func (m MenuModel) Screens() []string {
	return m.screens
}

// Init initializes the model.
func (m MenuModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(menuItem); ok {
				return m, func() tea.Msg {
					return NavigateMsg{Screen: item.screen}
				}
			}
		case "q", "esc":
			if !m.list.SettingFilter() {
				return m, func() tea.Msg {
					return QuitMsg{}
				}
			}
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m MenuModel) View() string {
	view := m.list.View()
	if m.err != nil {
		view += "\n" + ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return view
}
