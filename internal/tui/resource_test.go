package tui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/adminctl/internal/api"
	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/store"
	"github.com/robby/adminctl/internal/table"
)

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	rows      map[string][]domain.Row
	nav       []domain.NavItem
	sessionOK bool

	listErr   error
	createErr error
	deleteErr error
	loginErr  error

	lists   int
	created []map[string]any
	deleted [][]string
	logins  []string
	signups []map[string]any
	resets  int
	tokens  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rows: map[string][]domain.Row{
			domain.ResourceDepartment: {
				{"id": float64(1), "name": "Ops", "description": "Operations"},
				{"id": float64(2), "name": "Eng", "description": "Engineering"},
				{"id": float64(3), "name": "Admin", "description": "Administration"},
			},
			domain.ResourceMember: {
				{"id": float64(10), "first_name": "Ada", "email": "ada@example.com"},
				{"id": float64(11), "first_name": "Alan", "email": "alan@example.com"},
			},
		},
		nav: []domain.NavItem{
			{Name: domain.ResourceDepartment, Enabled: true},
			{Name: domain.ResourceMember, Enabled: true},
			{Name: domain.ResourceRole, Enabled: false},
		},
	}
}

func (f *fakeBackend) ListResource(_ context.Context, resource string) ([]domain.Row, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows[resource], nil
}

func (f *fakeBackend) CreateResource(_ context.Context, resource string, values map[string]any) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, values)
	return nil
}

func (f *fakeBackend) DeleteResources(_ context.Context, resource string, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids)
	return nil
}

func (f *fakeBackend) NavSettings(context.Context) ([]domain.NavItem, error) {
	return f.nav, nil
}

func (f *fakeBackend) CheckSession(context.Context) (bool, error) {
	return f.sessionOK, nil
}

func (f *fakeBackend) Login(_ context.Context, email, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.logins = append(f.logins, email)
	f.sessionOK = true
	return nil
}

func (f *fakeBackend) Signup(_ context.Context, values map[string]any) error {
	f.signups = append(f.signups, values)
	return nil
}

func (f *fakeBackend) RequestPasswordReset(context.Context, string) error {
	return nil
}

func (f *fakeBackend) ResetPassword(_ context.Context, token, _ string) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeBackend) ResetSession() error {
	f.resets++
	f.sessionOK = false
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and returns the messages it produced, expanding batches.
// Only use it on commands that return immediately.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func newDepartmentModel(t *testing.T, backend Backend, bus eventbus.Bus) (ResourceModel, *store.Store) {
	t.Helper()
	resource, ok := domain.LookupResource(domain.ResourceDepartment)
	require.True(t, ok)

	s := store.New(backend, nil)
	m := NewResourceModel(context.Background(), resource, ResourceDeps{
		Backend:  backend,
		Store:    s,
		Bus:      bus,
		PageSize: 10,
	})
	_ = (&m).Mount()
	m = updateResource(t, m, m.fetch()())
	require.False(t, m.loading)
	return m, s
}

func updateResource(t *testing.T, m ResourceModel, msg tea.Msg) ResourceModel {
	t.Helper()
	model, _ := m.Update(msg)
	rm, ok := model.(ResourceModel)
	require.True(t, ok)
	return rm
}

func visibleNames(m ResourceModel) []string {
	names := make([]string, len(m.page.Rows))
	for i, r := range m.page.Rows {
		names[i] = r.Text("name")
	}
	return names
}

func TestResourceModel_LoadsRows(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	assert.Len(t, m.page.Rows, 3)
	assert.Equal(t, []string{"Ops", "Eng", "Admin"}, visibleNames(m))
	assert.Contains(t, m.View(), "Department")
}

func TestResourceModel_ToggleRows(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = updateResource(t, m, runes("x"))

	assert.ElementsMatch(t, []string{"1", "3"}, m.Selection().IDs())
	assert.Equal(t, table.Indeterminate, m.Selection().HeaderState(3))
}

func TestResourceModel_SelectAllThenClear(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, runes("a"))
	assert.Equal(t, 3, m.Selection().Count())
	assert.Equal(t, table.Checked, m.Selection().HeaderState(3))

	m = updateResource(t, m, runes("a"))
	assert.Equal(t, 0, m.Selection().Count())
}

func TestResourceModel_SortCycle(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, runes("2"))
	assert.Equal(t, []string{"Admin", "Eng", "Ops"}, visibleNames(m))

	m = updateResource(t, m, runes("2"))
	assert.Equal(t, []string{"Ops", "Eng", "Admin"}, visibleNames(m))

	m = updateResource(t, m, runes("2"))
	assert.False(t, m.sort.Active())
	assert.Equal(t, []string{"Ops", "Eng", "Admin"}, visibleNames(m))
}

func TestResourceModel_FilterOnlyWithoutSelection(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("/"))
	assert.False(t, m.filterMode)

	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("/"))
	assert.True(t, m.filterMode)

	m = updateResource(t, m, runes("eng"))
	m = updateResource(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"Eng"}, visibleNames(m))

	m = updateResource(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Len(t, m.page.Rows, 3)
}

func TestResourceModel_DeleteFailureKeepsSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Ops"},{"id":2,"name":"Eng"}]}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"department is still in use"}`)
		}
	}))
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL, nil)
	require.NoError(t, err)

	bus := eventbus.NewRecorder()
	m, _ := newDepartmentModel(t, client, bus)
	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("d"))
	require.True(t, m.remove.IsOpen())
	assert.Equal(t, "Delete 1 department?", m.remove.Prompt())

	m = updateResource(t, m, runes("y"))
	m = updateResource(t, m, m.remove.deleteCmd()())

	assert.Equal(t, []string{"1"}, m.Selection().IDs())
	assert.True(t, m.remove.IsOpen())
	assert.Equal(t, domain.SeverityError, m.remove.Notice().Severity)
	assert.Equal(t, "department is still in use", m.remove.Notice().Message)
	assert.Equal(t, domain.SeverityError, m.notice.Severity)
	assert.Empty(t, bus.Published(eventbus.TopicRefresh))
}

func TestResourceModel_DeleteSuccessClearsAndRefreshes(t *testing.T) {
	backend := newFakeBackend()
	bus := eventbus.NewRecorder()
	m, s := newDepartmentModel(t, backend, bus)

	m = updateResource(t, m, runes("a"))
	m = updateResource(t, m, runes("d"))
	assert.Equal(t, "Delete 3 departments?", m.remove.Prompt())
	m = updateResource(t, m, runes("y"))
	m = updateResource(t, m, m.remove.deleteCmd()())

	require.Len(t, backend.deleted, 1)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, backend.deleted[0])
	assert.Equal(t, 0, m.Selection().Count())
	assert.False(t, m.remove.IsOpen())
	assert.Equal(t, "Deleted 3 departments", m.notice.Message)

	refreshes := bus.Published(eventbus.TopicRefresh)
	require.Len(t, refreshes, 1)
	assert.Equal(t, domain.ResourceDepartment, refreshes[0].Resource)

	_, err := s.Fetch(context.Background(), domain.ResourceDepartment)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.lists)
}

func TestResourceModel_DeleteCanceled(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newDepartmentModel(t, backend, eventbus.NewRecorder())

	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("d"))
	m = updateResource(t, m, runes("n"))

	assert.False(t, m.remove.IsOpen())
	assert.Equal(t, 1, m.Selection().Count())
	assert.Empty(t, backend.deleted)
}

func TestResourceModel_CreateValidation(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newDepartmentModel(t, backend, eventbus.NewRecorder())

	m = updateResource(t, m, runes("c"))
	require.True(t, m.create.IsOpen())

	m = updateResource(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Department name is required", m.create.Binding().Error("name"))
	assert.Equal(t, "Fix 1 field before submitting", m.create.Notice().Message)
	assert.Empty(t, backend.created)
}

func TestResourceModel_CreateSubmits(t *testing.T) {
	backend := newFakeBackend()
	bus := eventbus.NewRecorder()
	m, _ := newDepartmentModel(t, backend, bus)

	m = updateResource(t, m, runes("c"))
	m = updateResource(t, m, runes("Sales"))
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ResourceModel)

	var submitted *dialogSubmittedMsg
	for _, msg := range collect(cmd) {
		if s, ok := msg.(dialogSubmittedMsg); ok {
			submitted = &s
		}
	}
	require.NotNil(t, submitted)
	require.NoError(t, submitted.err)

	m = updateResource(t, m, *submitted)
	require.Len(t, backend.created, 1)
	assert.Equal(t, "Sales", backend.created[0]["name"])
	assert.Equal(t, "Department created", m.create.Notice().Message)
	assert.Empty(t, m.create.Binding().String("name"))
	assert.Len(t, bus.Published(eventbus.TopicRefresh), 1)
}

func TestResourceModel_CreateFailureShowsServerMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = &api.Error{Status: http.StatusConflict, Message: "name already taken"}
	m, _ := newDepartmentModel(t, backend, eventbus.NewRecorder())

	m = updateResource(t, m, runes("c"))
	m = updateResource(t, m, runes("Ops"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range collect(cmd) {
		m = updateResource(t, m, msg)
	}

	assert.True(t, m.create.IsOpen())
	assert.Equal(t, "name already taken", m.create.Notice().Message)
	assert.Equal(t, "Ops", m.create.Binding().String("name"))
}

func TestResourceModel_RefreshDeferredWhileLoading(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newDepartmentModel(t, backend, eventbus.NewRecorder())

	m.loading = true
	m = updateResource(t, m, RefreshMsg{Resource: domain.ResourceDepartment})
	assert.True(t, m.stale)

	model, cmd := m.Update(rowsLoadedMsg{resource: domain.ResourceDepartment, gen: m.gen, rows: backend.rows[domain.ResourceDepartment]})
	m = model.(ResourceModel)
	assert.False(t, m.stale)
	assert.True(t, m.loading)
	require.NotNil(t, cmd)
}

func TestResourceModel_IgnoresResultsAfterUnmount(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())
	m = updateResource(t, m, runes("x"))

	gen := m.gen
	(&m).Unmount()
	assert.Equal(t, 0, m.Selection().Count())

	m = updateResource(t, m, rowsLoadedMsg{resource: domain.ResourceDepartment, gen: gen, rows: nil})
	assert.Len(t, m.rows, 3)
}

func TestResourceModel_PrunesSelectionOnReload(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newDepartmentModel(t, backend, eventbus.NewRecorder())
	m = updateResource(t, m, runes("a"))

	fresh := backend.rows[domain.ResourceDepartment][:1]
	m = updateResource(t, m, rowsLoadedMsg{resource: domain.ResourceDepartment, gen: m.gen, rows: fresh})

	assert.Equal(t, []string{"1"}, m.Selection().IDs())
}

func TestResourceModel_UnauthorizedLoadSignsOut(t *testing.T) {
	backend := newFakeBackend()
	bus := eventbus.NewRecorder()
	m, _ := newDepartmentModel(t, backend, bus)

	unauthorized := &api.Error{Status: http.StatusUnauthorized, Message: "unauthorized"}
	m = updateResource(t, m, rowsLoadedMsg{resource: domain.ResourceDepartment, gen: m.gen, err: unauthorized})

	assert.Len(t, bus.Published(eventbus.TopicSignedOut), 1)
	assert.True(t, m.notice.Empty())
}

func TestResourceModel_LoadErrorShowsNotice(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, rowsLoadedMsg{resource: domain.ResourceDepartment, gen: m.gen, err: errors.New("connection refused")})

	assert.Equal(t, domain.SeverityError, m.notice.Severity)
	assert.True(t, strings.HasPrefix(m.notice.Message, "Load failed"))
	assert.Len(t, m.rows, 3)
}

func TestResourceModel_EditOpensSingleSelection(t *testing.T) {
	backend := newFakeBackend()
	resource, _ := domain.LookupResource(domain.ResourceDepartment)
	var opened []string
	m := NewResourceModel(context.Background(), resource, ResourceDeps{
		Backend:   backend,
		Store:     store.New(backend, nil),
		Bus:       eventbus.NewRecorder(),
		PageSize:  10,
		RecordURL: func(resource, id string) string { return "https://admin.example.com/" + resource + "/" + id },
		OpenURL: func(url string) error {
			opened = append(opened, url)
			return nil
		},
	})
	_ = (&m).Mount()
	m = updateResource(t, m, m.fetch()())

	m = updateResource(t, m, runes("e"))
	assert.Empty(t, opened)

	m = updateResource(t, m, runes("x"))
	m = updateResource(t, m, runes("e"))
	assert.Equal(t, []string{"https://admin.example.com/department/1"}, opened)
}

func TestResourceModel_PageSizeCycles(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())
	before := m.pager.Size

	m = updateResource(t, m, runes("+"))
	assert.NotEqual(t, before, m.pager.Size)
}

func TestColumnAt(t *testing.T) {
	resource, _ := domain.LookupResource(domain.ResourceDepartment)

	assert.Equal(t, -1, columnAt(resource.Columns, 80, 0))
	assert.Equal(t, 0, columnAt(resource.Columns, 80, cursorWidth+checkboxWidth+columnGap))
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestResourceModel_RowClickTogglesSelection(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, click(20, tableHeaderRow+2))
	assert.Equal(t, []string{"2"}, m.Selection().IDs())
	assert.Equal(t, 1, m.cursor)

	m = updateResource(t, m, click(1, tableHeaderRow+2))
	assert.Empty(t, m.Selection().IDs())

	// Clicks below the last row do nothing.
	m = updateResource(t, m, click(20, tableHeaderRow+10))
	assert.Empty(t, m.Selection().IDs())
}

func TestResourceModel_HeaderClicks(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, click(cursorWidth, tableHeaderRow))
	assert.ElementsMatch(t, []string{"1", "2", "3"}, m.Selection().IDs())

	m = updateResource(t, m, click(cursorWidth, tableHeaderRow))
	assert.Empty(t, m.Selection().IDs())

	m = updateResource(t, m, click(cursorWidth+checkboxWidth+columnGap, tableHeaderRow))
	assert.Equal(t, table.Sort{Column: "id", Direction: table.Asc}, m.sort)
	assert.Empty(t, m.Selection().IDs())
}

func TestResourceModel_IgnoresOtherMouseEvents(t *testing.T) {
	m, _ := newDepartmentModel(t, newFakeBackend(), eventbus.NewRecorder())

	m = updateResource(t, m, tea.MouseMsg{X: 20, Y: tableHeaderRow + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = updateResource(t, m, tea.MouseMsg{X: 20, Y: tableHeaderRow + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})

	assert.Empty(t, m.Selection().IDs())
}
