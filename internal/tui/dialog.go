package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"
	"github.com/google/uuid"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/form"
)

// SubmitFunc sends a valid form. values holds every field, payload only the
// fields that are sent to the server.
type SubmitFunc func(ctx context.Context, values form.Values, payload map[string]any) error

// DialogOptions configures a FormDialog.
type DialogOptions struct {
	Title   string
	Fields  []form.Field
	Submit  SubmitFunc
	Success string // Notification shown after a successful submit

	// OnSuccess, when set, is emitted after a successful submit.
	OnSuccess func() tea.Msg
}

// FormDialog renders a declarative field list, validates it and submits it.
// It is used by the create dialogs and by the sign-in pages.
type FormDialog struct {
	id        string
	title     string
	binding   *form.Binding
	inputs    []textinput.Model // Indexed like the fields; zero value for non-text fields
	focus     int
	notice    domain.Notification
	submit    SubmitFunc
	success   string
	onSuccess func() tea.Msg
	ctx       context.Context
	spinner   spinner.Model

	open       bool
	submitting bool
}

// NewFormDialog creates a closed dialog.
func NewFormDialog(ctx context.Context, opts DialogOptions) FormDialog {
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	d := FormDialog{
		id:        uuid.NewString(),
		title:     opts.Title,
		binding:   form.NewBinding(opts.Fields),
		inputs:    make([]textinput.Model, len(opts.Fields)),
		submit:    opts.Submit,
		success:   opts.Success,
		onSuccess: opts.OnSuccess,
		ctx:       ctx,
		spinner:   sp,
	}
	for i, f := range opts.Fields {
		tf, ok := f.(form.TextField)
		if !ok {
			continue
		}
		ti := textinput.New()
		ti.Placeholder = tf.Placeholder
		ti.Prompt = "> "
		ti.CharLimit = 256
		ti.Width = 40
		if tf.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		d.inputs[i] = ti
	}
	d.syncInputs()
	return d
}

// Open shows the dialog with a cleared notification and focus on the first field.
func (d *FormDialog) Open() tea.Cmd {
	d.open = true
	d.notice = domain.Notification{}
	d.focus = 0
	return d.focusCurrent()
}

// IsOpen reports whether the dialog is visible.
func (d FormDialog) IsOpen() bool {
	return d.open
}

// Binding exposes the bound values and errors.
func (d FormDialog) Binding() *form.Binding {
	return d.binding
}

// Notice returns the current notification.
func (d FormDialog) Notice() domain.Notification {
	return d.notice
}

// Notify replaces the current notification.
func (d *FormDialog) Notify(n domain.Notification) {
	d.notice = n
}

// Cancel resets the bound state and closes the dialog.
func (d *FormDialog) Cancel() {
	d.reset()
	d.open = false
	d.submitting = false
}

func (d *FormDialog) reset() {
	d.binding.Reset()
	d.syncInputs()
	d.notice = domain.Notification{}
	d.focus = 0
}

// syncInputs copies the bound text values into the text inputs.
func (d *FormDialog) syncInputs() {
	for i, f := range d.binding.Fields() {
		if f.Kind() == form.KindText {
			d.inputs[i].SetValue(d.binding.String(f.Name()))
		}
	}
}

func (d *FormDialog) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range d.inputs {
		if d.binding.Fields()[i].Kind() != form.KindText {
			continue
		}
		if i == d.focus {
			cmd = d.inputs[i].Focus()
		} else {
			d.inputs[i].Blur()
		}
	}
	return cmd
}

func (d *FormDialog) moveFocus(delta int) tea.Cmd {
	n := len(d.binding.Fields())
	if n == 0 {
		return nil
	}
	d.focus = (d.focus + delta + n) % n
	return d.focusCurrent()
}

// Update handles keys while open and the result of a submit.
func (d FormDialog) Update(msg tea.Msg) (FormDialog, tea.Cmd) {
	switch msg := msg.(type) {
	case dialogSubmittedMsg:
		if msg.dialogID != d.id {
			return d, nil
		}
		d.submitting = false
		if msg.err != nil {
			d.notice = domain.Notification{Message: errorText(msg.err), Severity: domain.SeverityError}
			return d, nil
		}
		d.reset()
		d.notice = domain.Notification{Message: d.success, Severity: domain.SeveritySuccess}
		if d.onSuccess != nil {
			return d, d.onSuccess
		}
		return d, d.focusCurrent()

	case spinner.TickMsg:
		if !d.submitting {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if !d.open || d.submitting {
			return d, nil
		}
		return d.handleKey(msg)
	}
	return d, nil
}

func (d FormDialog) handleKey(msg tea.KeyMsg) (FormDialog, tea.Cmd) {
	fields := d.binding.Fields()
	if len(fields) == 0 {
		if msg.String() == "esc" {
			d.Cancel()
		}
		return d, nil
	}
	current := fields[d.focus]

	switch msg.String() {
	case "esc":
		d.Cancel()
		return d, nil
	case "tab", "down":
		return d, (&d).moveFocus(1)
	case "shift+tab", "up":
		return d, (&d).moveFocus(-1)
	case "enter":
		return (&d).trySubmit()
	}

	switch f := current.(type) {
	case form.Checkbox:
		if msg.String() == " " || msg.String() == "x" {
			d.binding.Set(f.Key, !d.binding.Bool(f.Key))
		}
		return d, nil

	case form.Select:
		if len(f.Options) == 0 {
			return d, nil
		}
		idx := f.OptionIndex(d.binding.String(f.Key))
		switch msg.String() {
		case "left", "h":
			idx = (idx - 1 + len(f.Options)) % len(f.Options)
		case "right", "l", " ":
			idx = (idx + 1) % len(f.Options)
		default:
			return d, nil
		}
		d.binding.Set(f.Key, f.Options[idx].Value)
		return d, nil

	case form.TextField:
		var cmd tea.Cmd
		before := d.inputs[d.focus].Value()
		d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
		if after := d.inputs[d.focus].Value(); after != before {
			d.binding.Set(f.Key, after)
		}
		return d, cmd
	}
	return d, nil
}

// trySubmit validates and, when valid, starts the submit command.
func (d *FormDialog) trySubmit() (FormDialog, tea.Cmd) {
	if !d.binding.Validate() {
		n := len(d.binding.Errors())
		d.notice = domain.Notification{
			Message:  fmt.Sprintf("Fix %s before submitting", english.Plural(n, "field", "")),
			Severity: domain.SeverityWarning,
		}
		return *d, nil
	}
	if d.submit == nil {
		return *d, nil
	}

	d.submitting = true
	d.notice = domain.Notification{}
	id, ctx, submit := d.id, d.ctx, d.submit
	values, payload := d.binding.Values(), d.binding.Payload()
	return *d, tea.Batch(d.spinner.Tick, func() tea.Msg {
		return dialogSubmittedMsg{dialogID: id, err: submit(ctx, values, payload)}
	})
}

// View renders the dialog body: legends, fields, inline errors and the notice.
func (d FormDialog) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(d.title))
	b.WriteString("\n")

	idx := 0
	for _, group := range form.Groups(d.binding.Fields()) {
		if group.Legend != "" {
			b.WriteString(legendStyle.Render(group.Legend))
			b.WriteString("\n")
		}
		for _, f := range group.Fields {
			b.WriteString(d.renderField(idx, f))
			idx++
		}
	}

	b.WriteString("\n")
	switch {
	case d.submitting:
		b.WriteString(d.spinner.View() + " Submitting...")
	case !d.notice.Empty():
		b.WriteString(renderNotice(d.notice))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab next • enter submit • esc cancel"))
	return dialogStyle.Render(b.String())
}

func (d FormDialog) renderField(idx int, f form.Field) string {
	focused := idx == d.focus
	label := f.Label()
	if focused {
		label = SelectedItemStyle.Render(label)
	} else {
		label = PromptStyle.Render(label)
	}

	var line string
	switch field := f.(type) {
	case form.TextField:
		line = label + "\n" + d.inputs[idx].View()
	case form.Checkbox:
		box := "[ ]"
		if d.binding.Bool(field.Key) {
			box = "[x]"
		}
		line = box + " " + label
	case form.Select:
		value := d.binding.String(field.Key)
		shown := value
		if i := field.OptionIndex(value); i >= 0 {
			shown = field.Options[i].Label
		}
		line = label + "  ‹ " + shown + " ›"
	}

	if msg := d.binding.Error(f.Name()); msg != "" {
		line += "\n" + ErrorStyle.Render("  "+msg)
	}
	return line + "\n"
}
