package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/form"
)

// signInPages lists the pages in the order their shortcuts are shown.
var signInPages = []string{ScreenLogin, ScreenRegister, ScreenRequestReset, ScreenResetPassword}

// SignInModel hosts the pages reachable without a session: login,
// registration, and the two password reset steps. Each page is a FormDialog
// that stays open.
type SignInModel struct {
	page    string
	dialogs map[string]FormDialog
}

// NewSignInModel creates the pages, starting on login.
func NewSignInModel(ctx context.Context, backend Backend) SignInModel {
	dialogs := map[string]FormDialog{
		ScreenLogin: NewFormDialog(ctx, DialogOptions{
			Title:  "Sign in",
			Fields: domain.LoginFields(),
			Submit: func(ctx context.Context, v form.Values, _ map[string]any) error {
				return backend.Login(ctx, v.String("email"), v.String("password"))
			},
			Success:   "Signed in",
			OnSuccess: func() tea.Msg { return signedInMsg{} },
		}),
		ScreenRegister: NewFormDialog(ctx, DialogOptions{
			Title:  "Create an account",
			Fields: domain.RegisterFields(),
			Submit: func(ctx context.Context, _ form.Values, payload map[string]any) error {
				return backend.Signup(ctx, payload)
			},
			Success: "Account created",
			OnSuccess: func() tea.Msg {
				return signInPageMsg{page: ScreenLogin, notice: domain.Notification{Message: "Account created. Sign in to continue.", Severity: domain.SeveritySuccess}}
			},
		}),
		ScreenRequestReset: NewFormDialog(ctx, DialogOptions{
			Title:  "Forgot password",
			Fields: domain.RequestResetFields(),
			Submit: func(ctx context.Context, v form.Values, _ map[string]any) error {
				return backend.RequestPasswordReset(ctx, v.String("email"))
			},
			Success: "Check your inbox for a reset link",
		}),
		ScreenResetPassword: NewFormDialog(ctx, DialogOptions{
			Title:  "Choose a new password",
			Fields: domain.ResetPasswordFields(),
			Submit: func(ctx context.Context, v form.Values, _ map[string]any) error {
				return backend.ResetPassword(ctx, v.String("token"), v.String("password"))
			},
			Success: "Password updated",
			OnSuccess: func() tea.Msg {
				return signInPageMsg{page: ScreenLogin, notice: domain.Notification{Message: "Password updated. Sign in with the new password.", Severity: domain.SeveritySuccess}}
			},
		}),
	}
	return SignInModel{page: ScreenLogin, dialogs: dialogs}
}

// Page returns the page being shown.
func (m SignInModel) Page() string {
	return m.page
}

// Dialog returns the form of page.
func (m SignInModel) Dialog(page string) FormDialog {
	return m.dialogs[page]
}

// Init opens the current page.
func (m SignInModel) Init() tea.Cmd {
	d := m.dialogs[m.page]
	cmd := d.Open()
	m.dialogs[m.page] = d
	return tea.Batch(tea.WindowSize(), cmd)
}

// Notify posts a notification on the current page.
func (m *SignInModel) Notify(n domain.Notification) {
	d := m.dialogs[m.page]
	d.Notify(n)
	m.dialogs[m.page] = d
}

// show switches to page and optionally posts a notification on it.
func (m *SignInModel) show(page string, notice domain.Notification) tea.Cmd {
	if _, ok := m.dialogs[page]; !ok {
		return nil
	}
	if prev, ok := m.dialogs[m.page]; ok && page != m.page {
		prev.Cancel()
		m.dialogs[m.page] = prev
	}
	m.page = page
	d := m.dialogs[page]
	cmd := d.Open()
	if !notice.Empty() {
		d.Notify(notice)
	}
	m.dialogs[page] = d
	return cmd
}

// Update handles messages
func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signInPageMsg:
		return m, (&m).show(msg.page, msg.notice)

	case NavigateMsg:
		return m, (&m).show(msg.Screen, domain.Notification{})

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			return m, (&m).show(ScreenRegister, domain.Notification{})
		case "ctrl+f":
			return m, (&m).show(ScreenRequestReset, domain.Notification{})
		case "ctrl+t":
			return m, (&m).show(ScreenResetPassword, domain.Notification{})
		case "esc":
			if m.page == ScreenLogin {
				return m, func() tea.Msg { return QuitMsg{} }
			}
			return m, (&m).show(ScreenLogin, domain.Notification{})
		}
	}

	// Submit results, spinner ticks and remaining keys go to every page;
	// each dialog ignores what is not addressed to it.
	var cmds []tea.Cmd
	for _, page := range signInPages {
		d := m.dialogs[page]
		if _, isKey := msg.(tea.KeyMsg); isKey && page != m.page {
			continue
		}
		var cmd tea.Cmd
		d, cmd = d.Update(msg)
		m.dialogs[page] = d
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the current page and its links.
func (m SignInModel) View() string {
	links := map[string]string{
		ScreenLogin:         "esc sign in",
		ScreenRegister:      "ctrl+r register",
		ScreenRequestReset:  "ctrl+f forgot password",
		ScreenResetPassword: "ctrl+t have a reset token",
	}
	var shown []string
	for _, page := range signInPages {
		if page == m.page {
			continue
		}
		shown = append(shown, links[page])
	}
	if m.page == ScreenLogin {
		shown = append(shown, "esc quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Admin Console"),
		m.dialogs[m.page].View(),
		HelpStyle.Render(strings.Join(shown, " • ")),
	)
}
