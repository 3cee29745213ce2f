package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/store"
)

// DeleteDialog confirms and performs the removal of the selected rows.
type DeleteDialog struct {
	resource domain.Resource
	backend  Backend
	store    *store.Store
	bus      eventbus.Bus
	ctx      context.Context
	spinner  spinner.Model

	ids      []string
	notice   domain.Notification
	open     bool
	deleting bool
}

// NewDeleteDialog creates a closed delete dialog for resource.
func NewDeleteDialog(ctx context.Context, resource domain.Resource, backend Backend, s *store.Store, bus eventbus.Bus) DeleteDialog {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return DeleteDialog{
		resource: resource,
		backend:  backend,
		store:    s,
		bus:      bus,
		ctx:      ctx,
		spinner:  sp,
	}
}

// Open shows the dialog for a snapshot of ids.
func (d *DeleteDialog) Open(ids []string) {
	d.ids = append([]string(nil), ids...)
	d.notice = domain.Notification{}
	d.open = true
	d.deleting = false
}

// IsOpen reports whether the dialog is visible.
func (d DeleteDialog) IsOpen() bool {
	return d.open
}

// Notice returns the current notification.
func (d DeleteDialog) Notice() domain.Notification {
	return d.notice
}

// Close hides the dialog.
func (d *DeleteDialog) Close() {
	d.open = false
	d.deleting = false
	d.ids = nil
}

// Prompt is the confirmation question, pluralized on the number of rows.
func (d DeleteDialog) Prompt() string {
	noun := strings.ToLower(domain.Title(d.resource.Name))
	return fmt.Sprintf("Delete %s?", english.Plural(len(d.ids), noun, ""))
}

// Update handles confirmation keys and the delete result.
func (d DeleteDialog) Update(msg tea.Msg) (DeleteDialog, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		if msg.resource != d.resource.Name {
			return d, nil
		}
		d.deleting = false
		if msg.err != nil {
			d.notice = domain.Notification{Message: errorText(msg.err), Severity: domain.SeverityError}
			return d, nil
		}
		d.Close()
		return d, nil

	case spinner.TickMsg:
		if !d.deleting {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if !d.open || d.deleting {
			return d, nil
		}
		switch msg.String() {
		case "y", "enter":
			d.deleting = true
			d.notice = domain.Notification{}
			return d, tea.Batch(d.spinner.Tick, d.deleteCmd())
		case "n", "esc":
			d.Close()
		}
	}
	return d, nil
}

// deleteCmd sends the delete request. On success the cached list is
// invalidated and a refresh is broadcast before the result is reported.
func (d DeleteDialog) deleteCmd() tea.Cmd {
	ids := append([]string(nil), d.ids...)
	resource, backend, st, bus, ctx := d.resource.Name, d.backend, d.store, d.bus, d.ctx
	return func() tea.Msg {
		err := backend.DeleteResources(ctx, resource, ids)
		if err != nil {
			signOutOnUnauthorized(bus, err)
			return deleteResultMsg{resource: resource, ids: ids, err: err}
		}
		st.Invalidate(resource)
		bus.Publish(eventbus.Refresh(resource))
		return deleteResultMsg{resource: resource, ids: ids}
	}
}

// View renders the confirmation box.
func (d DeleteDialog) View() string {
	var b strings.Builder
	b.WriteString(ErrorStyle.Render(d.Prompt()))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("This cannot be undone."))
	b.WriteString("\n\n")
	switch {
	case d.deleting:
		b.WriteString(d.spinner.View() + " Deleting...")
	case !d.notice.Empty():
		b.WriteString(renderNotice(d.notice))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("y/enter confirm • n/esc cancel"))
	return dangerDialogStyle.Render(b.String())
}
