package tui

import (
	"context"
	"errors"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robby/adminctl/internal/api"
	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/store"
)

// Backend is the admin API as seen by the screens. *api.Client satisfies it.
type Backend interface {
	store.Lister
	CreateResource(ctx context.Context, resource string, values map[string]any) error
	DeleteResources(ctx context.Context, resource string, ids []string) error
	NavSettings(ctx context.Context) ([]domain.NavItem, error)

	CheckSession(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, values map[string]any) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ResetSession() error
}

var _ Backend = (*api.Client)(nil)

// errorText is the message shown to the user for err.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return api.Message(err)
}

// signOutOnUnauthorized publishes TopicSignedOut when the API rejected the
// session, and reports whether it did.
func signOutOnUnauthorized(bus eventbus.Bus, err error) bool {
	if !api.IsStatus(err, http.StatusUnauthorized) {
		return false
	}
	bus.Publish(eventbus.SignedOut())
	return true
}

// waitForEvent blocks on sub and delivers its next event as a busEventMsg.
// It returns nil once the subscription or ctx is done.
func waitForEvent(ctx context.Context, sub *eventbus.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, err := sub.Next(ctx)
		if err != nil {
			return nil
		}
		return busEventMsg{event: ev}
	}
}
