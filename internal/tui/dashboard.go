package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/store"
)

const (
	chartLabelWidth = 14
	chartMinBar     = 10
)

// DashboardModel charts the number of rows of each enabled resource.
type DashboardModel struct {
	store     *store.Store
	ctx       context.Context
	cancel    context.CancelFunc
	resources []string
	spinner   spinner.Model

	// mount identifies this dashboard; gen counts its loads. Counts carrying
	// another mount or an older gen are dropped.
	mount string
	gen   int

	counts  map[string]int
	loading bool
	err     error
	width   int
}

// NewDashboardModel creates a dashboard for resources. Its fetches run under
// a child of ctx that Unmount cancels.
func NewDashboardModel(ctx context.Context, s *store.Store, resources []string) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	ctx, cancel := context.WithCancel(ctx)
	return DashboardModel{
		store:     s,
		ctx:       ctx,
		cancel:    cancel,
		mount:     uuid.NewString(),
		resources: resources,
		spinner:   sp,
		counts:    make(map[string]int),
	}
}

// Init starts loading the counts.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.loadCounts())
}

// Counts returns the last loaded counts.
func (m DashboardModel) Counts() map[string]int {
	return m.counts
}

// loadCounts fetches every resource through the store. A resource whose
// fetch is already running elsewhere reports its cached rows, if any. The
// loop stops as soon as the dashboard is unmounted, and then yields no message.
func (m DashboardModel) loadCounts() tea.Cmd {
	s, ctx, resources := m.store, m.ctx, append([]string(nil), m.resources...)
	mount, gen := m.mount, m.gen
	return func() tea.Msg {
		counts := make(map[string]int, len(resources))
		var errs []error
		for _, r := range resources {
			if ctx.Err() != nil {
				return nil
			}
			rows, err := s.Fetch(ctx, r)
			if errors.Is(err, store.ErrFetchInFlight) {
				if cached, ok := s.Rows(r); ok {
					counts[r] = len(cached)
				}
				continue
			}
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue
			}
			if err != nil {
				errs = append(errs, err)
				continue
			}
			counts[r] = len(rows)
		}
		if ctx.Err() != nil {
			return nil
		}
		return countsLoadedMsg{mount: mount, gen: gen, counts: counts, err: errors.Join(errs...)}
	}
}

// Unmount stops the fetches the dashboard started. Counts that arrive
// afterwards are ignored.
func (m DashboardModel) Unmount() {
	m.cancel()
}

// reload starts a new load generation.
func (m *DashboardModel) reload() tea.Cmd {
	m.gen++
	m.loading = true
	return m.loadCounts()
}

func (m DashboardModel) watches(resource string) bool {
	for _, r := range m.resources {
		if r == resource {
			return true
		}
	}
	return false
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case countsLoadedMsg:
		if msg.mount != m.mount || msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		for k, v := range msg.counts {
			m.counts[k] = v
		}
		return m, nil

	case RefreshMsg:
		if !m.watches(msg.Resource) {
			return m, nil
		}
		return m, (&m).reload()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			return m, func() tea.Msg { return QuitMsg{} }
		case "esc":
			return m, func() tea.Msg { return NavigateMsg{Screen: ScreenMenu} }
		case "r":
			for _, r := range m.resources {
				m.store.Invalidate(r)
			}
			return m, (&m).reload()
		}
	}
	return m, nil
}

// renderChart draws one horizontal bar per resource, scaled to the largest count.
func (m DashboardModel) renderChart(width int) string {
	maxBar := width - chartLabelWidth - 12
	if maxBar < chartMinBar {
		maxBar = chartMinBar
	}
	largest := 0
	for _, r := range m.resources {
		if c := m.counts[r]; c > largest {
			largest = c
		}
	}

	labelStyle := lipgloss.NewStyle().Width(chartLabelWidth)
	var lines []string
	for _, r := range m.resources {
		count, ok := m.counts[r]
		bar := ""
		if ok && largest > 0 {
			n := count * maxBar / largest
			if n == 0 && count > 0 {
				n = 1
			}
			bar = chartBarStyle.Render(strings.Repeat("█", n))
		}
		value := "?"
		if ok {
			value = humanize.Comma(int64(count))
		}
		lines = append(lines, labelStyle.Render(domain.Title(r))+bar+" "+value)
	}
	return strings.Join(lines, "\n")
}

// View renders the dashboard
func (m DashboardModel) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	sections := []string{TitleStyle.Render("Dashboard")}
	if len(m.resources) == 0 {
		sections = append(sections, dimStyle.Render("No resources enabled."))
	} else {
		sections = append(sections, m.renderChart(width))
	}
	if m.loading {
		sections = append(sections, m.spinner.View()+" Loading...")
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(m.err))))
	}
	sections = append(sections, HelpStyle.Render("r refresh • esc menu • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
