// Package form provides the declarative field schema used by every dialog in the
// console. A screen describes its form as a list of fields; a single renderer
// interprets that list and a Binding owns the current values and errors.
package form

// Kind identifies which variant a Field is.
type Kind int

const (
	KindText Kind = iota
	KindCheckbox
	KindSelect
)

// Field is a tagged variant: TextField, Checkbox or Select.
// The unexported marker method keeps the set of variants closed.
type Field interface {
	Name() string
	Label() string
	Legend() string
	Kind() Kind
	Rules() []Rule
	Default() any
	// Omit reports whether the field is excluded from submitted payloads.
	Omit() bool

	field()
}

// TextField is a single-line text input.
type TextField struct {
	Key         string
	Title       string
	Group       string // Legend the field is rendered under
	Placeholder string
	Secret      bool // Render as a password input
	Initial     string
	Transient   bool // Validated but never sent (e.g. confirm_password)
	Validators  []Rule
}

func (f TextField) Name() string   { return f.Key }
func (f TextField) Label() string  { return labelOr(f.Title, f.Key) }
func (f TextField) Legend() string { return f.Group }
func (f TextField) Kind() Kind     { return KindText }
func (f TextField) Rules() []Rule  { return f.Validators }
func (f TextField) Default() any   { return f.Initial }
func (f TextField) Omit() bool     { return f.Transient }
func (TextField) field()           {}

// Checkbox is a boolean toggle.
type Checkbox struct {
	Key        string
	Title      string
	Group      string
	Initial    bool
	Validators []Rule
}

func (f Checkbox) Name() string   { return f.Key }
func (f Checkbox) Label() string  { return labelOr(f.Title, f.Key) }
func (f Checkbox) Legend() string { return f.Group }
func (f Checkbox) Kind() Kind     { return KindCheckbox }
func (f Checkbox) Rules() []Rule  { return f.Validators }
func (f Checkbox) Default() any   { return f.Initial }
func (f Checkbox) Omit() bool     { return false }
func (Checkbox) field()           {}

// Option is one choice of a Select field.
type Option struct {
	Value string
	Label string
}

// Select picks one value out of a fixed option list.
type Select struct {
	Key        string
	Title      string
	Group      string
	Options    []Option
	Initial    string
	Validators []Rule
}

func (f Select) Name() string   { return f.Key }
func (f Select) Label() string  { return labelOr(f.Title, f.Key) }
func (f Select) Legend() string { return f.Group }
func (f Select) Kind() Kind     { return KindSelect }
func (f Select) Rules() []Rule  { return f.Validators }
func (f Select) Omit() bool     { return false }
func (Select) field()           {}

// Default returns the initial value, or the first option when none is set.
func (f Select) Default() any {
	if f.Initial != "" || len(f.Options) == 0 {
		return f.Initial
	}
	return f.Options[0].Value
}

// OptionIndex returns the position of value in the option list, or -1.
func (f Select) OptionIndex(value string) int {
	for i, opt := range f.Options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

// Group is a run of fields sharing one legend, in declaration order.
type Group struct {
	Legend string
	Fields []Field
}

// Groups splits fields into consecutive legend groups.
// Fields without a legend form groups with an empty Legend.
func Groups(fields []Field) []Group {
	var groups []Group
	for _, f := range fields {
		if n := len(groups); n > 0 && groups[n-1].Legend == f.Legend() {
			groups[n-1].Fields = append(groups[n-1].Fields, f)
			continue
		}
		groups = append(groups, Group{Legend: f.Legend(), Fields: []Field{f}})
	}
	return groups
}

func labelOr(label, key string) string {
	if label != "" {
		return label
	}
	return key
}
