package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/robby/adminctl/internal/auth"
	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/logging"
	"github.com/robby/adminctl/internal/store"
)

// screenDetail is the row detail view; it is reached from a resource screen only.
const screenDetail = "detail"

// AppDeps are the collaborators of the whole console.
type AppDeps struct {
	Backend   Backend
	Store     *store.Store
	Bus       eventbus.Bus
	Log       *logrus.Logger
	PageSize  int
	RecordURL func(resource, id string) string
	OpenURL   func(url string) error
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from the session check -> sign in -> menu -> screens.
type AppModel struct {
	// Dependencies
	deps    AppDeps
	ctx     context.Context
	sub     *eventbus.Subscription
	session *auth.Service

	// Current state
	screen     string
	current    tea.Model
	err        error
	loadingMsg string
	nav        []domain.NavItem

	// Cached models to preserve state across screen transitions
	resources    map[string]*ResourceModel
	detailReturn string
}

// NewAppModel creates the app and subscribes it to refresh and sign-out events.
func NewAppModel(ctx context.Context, deps AppDeps) AppModel {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return AppModel{
		deps:       deps,
		ctx:        ctx,
		sub:        deps.Bus.Subscribe(eventbus.TopicRefresh, eventbus.TopicSignedOut),
		session:    auth.NewService(deps.Backend, deps.Log),
		loadingMsg: "Checking session...",
		resources:  make(map[string]*ResourceModel),
	}
}

// Screen returns the name of the screen being shown.
func (m AppModel) Screen() string {
	return m.screen
}

// Current returns the model of the screen being shown.
func (m AppModel) Current() tea.Model {
	return m.current
}

// Init checks the session and starts listening on the bus.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.checkSession(), waitForEvent(m.ctx, m.sub))
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			m.sub.Close()
			return m, tea.Quit
		}
		if m.err != nil {
			if msg.String() != "r" {
				return m, nil
			}
			m.err = nil
			if m.nav == nil {
				m.loadingMsg = "Loading navigation..."
				return m, m.loadNav()
			}
			return m, (&m).navigate(ScreenMenu)
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		m.sub.Close()
		return m, tea.Quit

	case sessionCheckedMsg:
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("session check failed")
		}
		if !msg.ok {
			return m, (&m).showSignIn(domain.Notification{})
		}
		m.loadingMsg = "Loading navigation..."
		return m, m.loadNav()

	case signedInMsg:
		m.loadingMsg = "Loading navigation..."
		return m, m.loadNav()

	case navLoadedMsg:
		if msg.err != nil {
			if signOutOnUnauthorized(m.deps.Bus, msg.err) {
				return m, nil
			}
			m.err = fmt.Errorf("failed to load navigation: %w", msg.err)
			return m, nil
		}
		m.nav = msg.items
		return m, (&m).navigate(ScreenMenu)

	case busEventMsg:
		cmds := []tea.Cmd{waitForEvent(m.ctx, m.sub)}
		switch msg.event.Topic {
		case eventbus.TopicRefresh:
			refresh := RefreshMsg{Resource: msg.event.Resource}
			if m.screen == screenDetail && m.detailReturn == refresh.Resource {
				cmds = append(cmds, (&m).updateResource(refresh.Resource, refresh))
			} else {
				cmds = append(cmds, (&m).forward(refresh))
			}
		case eventbus.TopicSignedOut:
			cmds = append(cmds, (&m).signOut())
		}
		return m, tea.Batch(cmds...)

	case NavigateMsg:
		return m, (&m).navigate(msg.Screen)

	case rowsLoadedMsg:
		return m, (&m).updateResource(msg.resource, msg)

	case fetchRetryMsg:
		return m, (&m).updateResource(msg.resource, msg)

	case deleteResultMsg:
		return m, (&m).updateResource(msg.resource, msg)

	case countsLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.deps.Log.WithError(msg.err).Warn("failed to load counts")
			if signOutOnUnauthorized(m.deps.Bus, msg.err) {
				return m, nil
			}
		}

	case openDetailMsg:
		m.detailReturn = m.screen
		m.screen = screenDetail
		detail := NewDetailModel(msg.resource, msg.row)
		m.current = detail
		return m, detail.Init()

	case closeDetailMsg:
		// Return to the resource screen without remounting it
		m.screen = m.detailReturn
		if rm, ok := m.resources[m.screen]; ok {
			m.current = *rm
		}
		return m, tea.WindowSize()
	}

	return m, (&m).forward(msg)
}

// forward delegates msg to the current screen's model and keeps the cached
// resource model in sync.
func (m *AppModel) forward(msg tea.Msg) tea.Cmd {
	if m.current == nil {
		return nil
	}
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	if rm, ok := m.current.(ResourceModel); ok {
		m.resources[rm.Resource().Name] = &rm
	}
	return cmd
}

// updateResource delivers msg to the screen of resource even when another
// screen is in front, so fetches started before opening a detail view land.
func (m *AppModel) updateResource(name string, msg tea.Msg) tea.Cmd {
	if m.screen == name {
		return m.forward(msg)
	}
	rm, ok := m.resources[name]
	if !ok {
		return nil
	}
	model, cmd := rm.Update(msg)
	updated := model.(ResourceModel)
	m.resources[name] = &updated
	return cmd
}

// leave unmounts the current screen.
func (m *AppModel) leave() {
	switch cur := m.current.(type) {
	case ResourceModel:
		cur.Unmount()
		m.resources[cur.Resource().Name] = &cur
	case DetailModel:
		if rm, ok := m.resources[m.detailReturn]; ok {
			rm.Unmount()
		}
	case DashboardModel:
		cur.Unmount()
	}
	m.current = nil
}

// navigate switches to screen, which is a Screen constant or a resource name.
func (m *AppModel) navigate(screen string) tea.Cmd {
	switch screen {
	case ScreenLogin, ScreenRegister, ScreenRequestReset, ScreenResetPassword:
		cmd := m.showSignIn(domain.Notification{})
		return tea.Batch(cmd, m.forward(NavigateMsg{Screen: screen}))

	case ScreenLogout:
		m.deps.Log.Info("signing out")
		m.deps.Bus.Publish(eventbus.SignedOut())
		return nil
	}

	if m.screen != screen {
		m.leave()
	}
	m.err = nil

	switch screen {
	case ScreenMenu:
		menu := NewMenuModel(m.nav)
		m.screen, m.current = ScreenMenu, menu
		return menu.Init()

	case ScreenDashboard:
		dash := NewDashboardModel(m.ctx, m.deps.Store, m.enabledResources())
		m.screen, m.current = ScreenDashboard, dash
		return dash.Init()
	}

	resource, ok := domain.LookupResource(screen)
	if !ok {
		m.err = fmt.Errorf("unknown screen %q", screen)
		return nil
	}
	rm, ok := m.resources[screen]
	if !ok {
		model := NewResourceModel(m.ctx, resource, ResourceDeps{
			Backend:   m.deps.Backend,
			Store:     m.deps.Store,
			Bus:       m.deps.Bus,
			Log:       m.deps.Log,
			PageSize:  m.deps.PageSize,
			RecordURL: m.deps.RecordURL,
			OpenURL:   m.deps.OpenURL,
		})
		rm = &model
	}
	cmd := rm.Mount()
	m.resources[screen] = rm
	m.screen, m.current = screen, *rm
	return cmd
}

// enabledResources lists the resource screens offered by the menu.
func (m AppModel) enabledResources() []string {
	var out []string
	for _, s := range MenuItems(m.nav) {
		if _, ok := domain.LookupResource(s); ok {
			out = append(out, s)
		}
	}
	return out
}

// showSignIn replaces the current screen with the login page.
func (m *AppModel) showSignIn(notice domain.Notification) tea.Cmd {
	if m.current != nil {
		if _, ok := m.current.(SignInModel); ok {
			return nil
		}
		m.leave()
	}
	signIn := NewSignInModel(m.ctx, m.deps.Backend)
	cmd := signIn.Init()
	signIn.Notify(notice)
	m.screen, m.current = ScreenLogin, signIn
	m.err = nil
	return cmd
}

// signOut drops the session and every cached list and shows the login page.
func (m *AppModel) signOut() tea.Cmd {
	if _, ok := m.current.(SignInModel); ok {
		return nil
	}
	m.leave()
	if err := m.session.SignOut(); err != nil {
		m.deps.Log.WithError(err).Warn("failed to reset session")
	}
	m.deps.Store.Reset()
	m.resources = make(map[string]*ResourceModel)
	m.nav = nil
	return m.showSignIn(domain.Notification{Message: "Signed out", Severity: domain.SeverityInfo})
}

// View renders the current screen.
func (m AppModel) View() string {
	// Show error if present
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress r to retry or Ctrl+C to quit", m.err))
	}

	// Delegate to current screen
	if m.current != nil {
		return m.current.View()
	}

	// Show loading state
	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// checkSession creates a command that asks the API whether the stored
// credentials are still valid.
func (m AppModel) checkSession() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		err := session.Check(ctx)
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return sessionCheckedMsg{}
		}
		return sessionCheckedMsg{ok: err == nil, err: err}
	}
}

// loadNav creates a command to fetch the navigation flags.
func (m AppModel) loadNav() tea.Cmd {
	backend, ctx := m.deps.Backend, m.ctx
	return func() tea.Msg {
		items, err := backend.NavSettings(ctx)
		return navLoadedMsg{items: items, err: err}
	}
}
