package form

// Binding owns the current values and validation errors of one form instance.
type Binding struct {
	fields []Field
	values Values
	errors Errors
}

// NewBinding creates a binding populated with every field's default value.
func NewBinding(fields []Field) *Binding {
	b := &Binding{fields: fields}
	b.Reset()
	return b
}

// Fields returns the schema the binding was created with.
func (b *Binding) Fields() []Field {
	return b.fields
}

// Field looks up a field by name.
func (b *Binding) Field(name string) (Field, bool) {
	for _, f := range b.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Set stores a value and clears any error previously reported for the field.
func (b *Binding) Set(name string, value any) {
	b.values[name] = value
	delete(b.errors, name)
}

// Value returns the current value of a field.
func (b *Binding) Value(name string) any {
	return b.values[name]
}

// String returns the current value of a text or select field.
func (b *Binding) String(name string) string {
	s, _ := b.values[name].(string)
	return s
}

// Bool returns the current value of a checkbox.
func (b *Binding) Bool(name string) bool {
	v, _ := b.values[name].(bool)
	return v
}

// Values returns a copy of every current value, transient fields included.
func (b *Binding) Values() Values {
	out := make(Values, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Payload returns the values that are sent to the server.
func (b *Binding) Payload() map[string]any {
	out := make(map[string]any, len(b.fields))
	for _, f := range b.fields {
		if f.Omit() {
			continue
		}
		out[f.Name()] = b.values[f.Name()]
	}
	return out
}

// Validate runs every rule, records the failures and reports whether the form is valid.
func (b *Binding) Validate() bool {
	b.errors = Validate(b.fields, b.values)
	return len(b.errors) == 0
}

// Error returns the message currently shown for a field, or "".
func (b *Binding) Error(name string) string {
	return b.errors[name]
}

// Errors returns a copy of the current field errors.
func (b *Binding) Errors() Errors {
	out := make(Errors, len(b.errors))
	for k, v := range b.errors {
		out[k] = v
	}
	return out
}

// Reset restores every field to its default and clears all errors.
func (b *Binding) Reset() {
	b.values = make(Values, len(b.fields))
	for _, f := range b.fields {
		b.values[f.Name()] = f.Default()
	}
	b.errors = Errors{}
}
