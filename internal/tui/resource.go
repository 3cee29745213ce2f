package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/form"
	"github.com/robby/adminctl/internal/logging"
	"github.com/robby/adminctl/internal/store"
	"github.com/robby/adminctl/internal/table"
)

// fetchRetryDelay is how long to wait before asking the store again when
// another consumer's fetch of the same resource is still running.
const fetchRetryDelay = 150 * time.Millisecond

// ResourceDeps are the collaborators shared by every resource screen.
type ResourceDeps struct {
	Backend  Backend
	Store    *store.Store
	Bus      eventbus.Bus
	Log      *logrus.Logger
	PageSize int

	// RecordURL returns the web console address of a record for the edit action.
	RecordURL func(resource, id string) string
	// OpenURL opens a URL in the browser; defaults to browser.OpenURL.
	OpenURL func(url string) error
}

// ResourceModel is the generic CRUD screen: a selectable, sortable, paged
// table of one resource with create and delete dialogs.
type ResourceModel struct {
	// Dependencies
	deps     ResourceDeps
	resource domain.Resource
	ctx      context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model
	create      FormDialog
	remove      DeleteDialog

	// Table state
	rows      []domain.Row
	page      table.Page
	selection *table.Selection
	sort      table.Sort
	pager     table.Pager
	filter    string
	cursor    int

	// View state
	width      int
	height     int
	gen        int
	loading    bool
	stale      bool // A refresh arrived while a fetch was running
	showHelp   bool
	filterMode bool
	notice     domain.Notification
}

// NewResourceModel creates the screen for resource.
func NewResourceModel(ctx context.Context, resource domain.Resource, deps ResourceDeps) ResourceModel {
	if deps.OpenURL == nil {
		deps.OpenURL = browser.OpenURL
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	keymap := DefaultKeyMap()
	title := domain.Title(resource.Name)

	return ResourceModel{
		deps:        deps,
		resource:    resource,
		ctx:         ctx,
		keymap:      keymap,
		help:        NewHelpModel(keymap),
		spinner:     sp,
		filterInput: ti,
		create: NewFormDialog(ctx, DialogOptions{
			Title:   "New " + strings.ToLower(title),
			Fields:  resource.Fields,
			Submit:  createSubmitter(resource.Name, deps),
			Success: title + " created",
		}),
		remove:    NewDeleteDialog(ctx, resource, deps.Backend, deps.Store, deps.Bus),
		selection: table.NewSelection(),
		pager:     table.NewPager(deps.PageSize),
	}
}

// createSubmitter posts the dialog payload and broadcasts a refresh.
func createSubmitter(resource string, deps ResourceDeps) SubmitFunc {
	return func(ctx context.Context, _ form.Values, payload map[string]any) error {
		if err := deps.Backend.CreateResource(ctx, resource, payload); err != nil {
			signOutOnUnauthorized(deps.Bus, err)
			return err
		}
		deps.Store.Invalidate(resource)
		deps.Bus.Publish(eventbus.Refresh(resource))
		return nil
	}
}

// Resource returns the resource this screen shows.
func (m ResourceModel) Resource() domain.Resource {
	return m.resource
}

// Selection exposes the selection state.
func (m ResourceModel) Selection() *table.Selection {
	return m.selection
}

// Init mounts the screen and fetches the rows.
func (m ResourceModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.fetch())
}

// Mount prepares the screen for display; called each time it is shown.
func (m *ResourceModel) Mount() tea.Cmd {
	m.loading = true
	m.notice = domain.Notification{}
	return m.Init()
}

// Unmount cancels the in-flight fetch and clears the selection. Results of
// fetches started before Unmount are ignored.
func (m *ResourceModel) Unmount() {
	m.gen++
	m.loading = false
	m.stale = false
	m.deps.Store.Cancel(m.resource.Name)
	m.selection.Clear()
	m.create.Cancel()
	m.remove.Close()
	m.filterMode = false
	m.showHelp = false
}

// fetch loads rows through the store.
func (m ResourceModel) fetch() tea.Cmd {
	gen, name, st, ctx := m.gen, m.resource.Name, m.deps.Store, m.ctx
	return func() tea.Msg {
		rows, err := st.Fetch(ctx, name)
		return rowsLoadedMsg{resource: name, gen: gen, rows: rows, err: err}
	}
}

// refresh invalidates the cache and fetches again. While a fetch is running
// the refresh is deferred until it completes.
func (m *ResourceModel) refresh() tea.Cmd {
	if m.loading {
		m.stale = true
		return nil
	}
	m.loading = true
	m.deps.Store.Invalidate(m.resource.Name)
	return m.fetch()
}

// Update handles messages
func (m ResourceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case rowsLoadedMsg:
		if msg.resource != m.resource.Name || msg.gen != m.gen {
			return m, nil
		}
		return m.handleRows(msg)

	case fetchRetryMsg:
		if msg.resource != m.resource.Name || msg.gen != m.gen {
			return m, nil
		}
		return m, m.fetch()

	case RefreshMsg:
		if msg.Resource != m.resource.Name {
			return m, nil
		}
		return m, (&m).refresh()

	case dialogSubmittedMsg:
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		return m, cmd

	case deleteResultMsg:
		if msg.resource != m.resource.Name {
			return m, nil
		}
		var cmd tea.Cmd
		m.remove, cmd = m.remove.Update(msg)
		if msg.err != nil {
			m.notice = domain.Notification{Message: "Delete failed: " + errorText(msg.err), Severity: domain.SeverityError}
			return m, cmd
		}
		m.selection.Clear()
		m.notice = domain.Notification{
			Message:  "Deleted " + english.Plural(len(msg.ids), strings.ToLower(domain.Title(m.resource.Name)), ""),
			Severity: domain.SeveritySuccess,
		}
		return m, cmd

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.create, cmd = m.create.Update(msg)
		cmds = append(cmds, cmd)
		m.remove, cmd = m.remove.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if m.create.IsOpen() || m.remove.IsOpen() || m.showHelp || m.filterMode {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleRows stores a fetch result and re-derives the view.
func (m ResourceModel) handleRows(msg rowsLoadedMsg) (tea.Model, tea.Cmd) {
	log := m.deps.Log.WithField("resource", m.resource.Name)
	switch {
	case errors.Is(msg.err, store.ErrFetchInFlight):
		gen, name := m.gen, m.resource.Name
		return m, tea.Tick(fetchRetryDelay, func(time.Time) tea.Msg {
			return fetchRetryMsg{resource: name, gen: gen}
		})
	case errors.Is(msg.err, context.Canceled):
		m.loading = false
		return m, nil
	case msg.err != nil:
		m.loading = false
		log.WithError(msg.err).Warn("failed to load rows")
		if signOutOnUnauthorized(m.deps.Bus, msg.err) {
			return m, nil
		}
		m.notice = domain.Notification{Message: "Load failed: " + errorText(msg.err), Severity: domain.SeverityError}
		return m, nil
	}

	m.loading = false
	m.rows = msg.rows
	var cmd tea.Cmd
	if m.stale {
		m.stale = false
		cmd = (&m).refresh()
	}
	if dropped := m.selection.Prune(table.IDs(m.rows, m.resource.PrimaryField)); dropped > 0 {
		log.WithField("dropped", dropped).Debug("selection pruned")
	}
	(&m).applyView()
	return m, cmd
}

// applyView derives the visible page from rows, filter, sort and pager.
func (m *ResourceModel) applyView() {
	m.page = table.Project(m.rows, m.resource.Columns, m.filter, m.sort, &m.pager)
	if m.cursor >= len(m.page.Rows) {
		m.cursor = len(m.page.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// handleKeyPress processes keyboard input
func (m ResourceModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.create.IsOpen() {
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		return m, cmd
	}
	if m.remove.IsOpen() {
		var cmd tea.Cmd
		m.remove, cmd = m.remove.Update(msg)
		return m, cmd
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Back) || msg.String() == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filter = m.filterInput.Value()
			m.pager.Page = 0
			(&m).applyView()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filter)
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, func() tea.Msg { return QuitMsg{} }
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Back):
		if m.filter != "" {
			m.filter = ""
			m.filterInput.SetValue("")
			(&m).applyView()
			return m, nil
		}
		return m, func() tea.Msg { return NavigateMsg{Screen: ScreenMenu} }
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.page.Rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.NextPage):
		if m.pager.Next(m.page.Total()) {
			(&m).applyView()
		}
	case key.Matches(msg, m.keymap.PrevPage):
		if m.pager.Prev() {
			(&m).applyView()
		}
	case key.Matches(msg, m.keymap.PageSize):
		m.pager.CycleSize()
		(&m).applyView()
	case key.Matches(msg, m.keymap.Sort):
		idx := int(msg.Runes[0] - '1')
		(&m).clickHeader(idx)
	case key.Matches(msg, m.keymap.Toggle):
		(&m).toggleRow(m.cursor)
	case key.Matches(msg, m.keymap.SelectAll):
		(&m).toggleAll()
	case key.Matches(msg, m.keymap.Filter):
		// Filtering is only offered while nothing is selected.
		if m.selection.Count() == 0 {
			m.filterMode = true
			return m, m.filterInput.Focus()
		}
	case key.Matches(msg, m.keymap.Refresh):
		m.notice = domain.Notification{}
		return m, (&m).refresh()
	case key.Matches(msg, m.keymap.Create):
		return m, (&m).create.Open()
	case key.Matches(msg, m.keymap.Delete):
		if m.selection.Count() > 0 {
			(&m).remove.Open(m.selection.IDs())
		}
	case key.Matches(msg, m.keymap.Edit):
		(&m).editSelected()
	case key.Matches(msg, m.keymap.View):
		if row, ok := m.cursorRow(); ok {
			resource := m.resource
			return m, func() tea.Msg { return openDetailMsg{resource: resource, row: row} }
		}
	}

	return m, nil
}

// clickHeader applies a sort click on the column at idx.
func (m *ResourceModel) clickHeader(idx int) {
	if idx < 0 || idx >= len(m.resource.Columns) {
		return
	}
	m.sort = m.sort.Click(m.resource.Columns[idx].Key)
	m.applyView()
}

// toggleRow flips the selection of the visible row at idx.
func (m *ResourceModel) toggleRow(idx int) {
	if idx < 0 || idx >= len(m.page.Rows) {
		return
	}
	m.selection.Toggle(m.page.Rows[idx].ID(m.resource.PrimaryField))
}

// toggleAll behaves like the header checkbox: anything short of all rows
// selected selects all, otherwise clears.
func (m *ResourceModel) toggleAll() {
	ids := table.IDs(m.page.Matching, m.resource.PrimaryField)
	checked := m.selection.HeaderState(len(ids)) != table.Checked
	m.selection.SelectAll(checked, ids)
}

// editSelected opens the single selected record in the web console.
func (m *ResourceModel) editSelected() {
	if m.selection.Count() != 1 || m.deps.RecordURL == nil {
		return
	}
	url := m.deps.RecordURL(m.resource.Name, m.selection.IDs()[0])
	if err := m.deps.OpenURL(url); err != nil {
		m.notice = domain.Notification{Message: "Could not open browser: " + err.Error(), Severity: domain.SeverityWarning}
		return
	}
	m.notice = domain.Notification{Message: "Opened " + url, Severity: domain.SeverityInfo}
}

func (m ResourceModel) cursorRow() (domain.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Rows) {
		return nil, false
	}
	return m.page.Rows[m.cursor], true
}

// handleMouse maps clicks onto the header and body rows.
func (m ResourceModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	row := msg.Y - tableHeaderRow
	switch {
	case row == 0 && msg.X < cursorWidth+checkboxWidth:
		(&m).toggleAll()
	case row == 0:
		(&m).clickHeader(columnAt(m.resource.Columns, width, msg.X))
	case row > 0 && row <= len(m.page.Rows):
		m.cursor = row - 1
		(&m).toggleRow(m.cursor)
	}
	return m, nil
}

// columnAt returns the index of the column under screen x, or -1.
func columnAt(columns []domain.Column, width, x int) int {
	pos := cursorWidth + checkboxWidth + columnGap
	for i, w := range columnWidths(columns, width) {
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + columnGap
	}
	return -1
}

// View renders the screen
func (m ResourceModel) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}
	height := m.height
	if height == 0 {
		height = defaultHeight
	}

	var fetchedAt time.Time
	if at, ok := m.deps.Store.FetchedAt(m.resource.Name); ok {
		fetchedAt = at
	}
	bar := toolbar{
		title:     domain.Title(m.resource.Name),
		selected:  m.selection.Count(),
		filter:    m.filter,
		fetchedAt: fetchedAt,
	}

	sections := []string{bar.Render(width)}

	switch {
	case m.create.IsOpen():
		sections = append(sections, m.create.View())
	case m.remove.IsOpen():
		sections = append(sections, m.remove.View())
	case m.showHelp:
		sections = append(sections, m.help.View(width))
	case m.loading && len(m.rows) == 0:
		msg := m.spinner.View() + " Loading..."
		sections = append(sections, lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, msg))
	default:
		view := tableView{
			resource:  m.resource,
			page:      m.page,
			pager:     m.pager,
			selection: m.selection,
			sort:      m.sort,
			cursor:    m.cursor,
			width:     width,
		}
		sections = append(sections, view.Render())
	}

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}
	status := renderNotice(m.notice)
	if m.loading && len(m.rows) > 0 {
		status = m.spinner.View() + " refreshing " + status
	}
	if status != "" {
		sections = append(sections, status)
	}
	if !m.create.IsOpen() && !m.remove.IsOpen() && !m.showHelp {
		sections = append(sections, HelpStyle.Render(m.help.ShortView(width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
