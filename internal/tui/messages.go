// Package tui provides Bubble Tea models for the interactive console.
package tui

import (
	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
)

// Screen names used by NavigateMsg besides resource names.
const (
	ScreenDashboard     = "dashboard"
	ScreenLogout        = "logout"
	ScreenMenu          = "menu"
	ScreenLogin         = "login"
	ScreenRegister      = "register"
	ScreenRequestReset  = "request_reset"
	ScreenResetPassword = "reset_password"
)

// NavigateMsg asks the app to switch to a screen. Screen is either one of the
// Screen constants or a resource name.
type NavigateMsg struct {
	Screen string
}

// ErrorMsg is emitted when an unrecoverable error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// RefreshMsg tells the current screen that resource changed on the server.
type RefreshMsg struct {
	Resource string
}

// Internal messages.
type (
	sessionCheckedMsg struct {
		ok  bool
		err error
	}

	navLoadedMsg struct {
		items []domain.NavItem
		err   error
	}

	busEventMsg struct {
		event eventbus.Event
	}

	rowsLoadedMsg struct {
		resource string
		gen      int
		rows     []domain.Row
		err      error
	}

	fetchRetryMsg struct {
		resource string
		gen      int
	}

	dialogSubmittedMsg struct {
		dialogID string
		err      error
	}

	deleteResultMsg struct {
		resource string
		ids      []string
		err      error
	}

	countsLoadedMsg struct {
		mount  string
		gen    int
		counts map[string]int
		err    error
	}

	openDetailMsg struct {
		resource domain.Resource
		row      domain.Row
	}

	closeDetailMsg struct{}
)

type (
	signedInMsg struct{}

	signInPageMsg struct {
		page   string
		notice domain.Notification
	}
)
