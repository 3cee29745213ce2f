// Package table holds the pure state machines behind the console's tables:
// row selection, column sorting, paging and the derived visible page.
// Nothing here renders or performs I/O.
package table

// CheckState is the state of a tri-state checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Indeterminate
)

// Selection tracks which rows are selected, by primary-field value.
// It has set semantics; the order of IDs is not meaningful.
type Selection struct {
	ids []string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Toggle removes id if it is selected, otherwise adds it.
func (s *Selection) Toggle(id string) {
	if i := s.index(id); i >= 0 {
		last := len(s.ids) - 1
		s.ids[i] = s.ids[last]
		s.ids = s.ids[:last]
		return
	}
	s.ids = append(s.ids, id)
}

// SelectAll replaces the selection with a snapshot of ids when checked,
// and clears it otherwise.
func (s *Selection) SelectAll(checked bool, ids []string) {
	if !checked {
		s.Clear()
		return
	}
	s.ids = make([]string, len(ids))
	copy(s.ids, ids)
}

// Clear deselects every row.
func (s *Selection) Clear() {
	s.ids = nil
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	return s.index(id) >= 0
}

// Count returns the number of selected rows.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns a copy of the selected identities.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Prune drops every selected identity that is not in ids.
// It returns the number of identities dropped.
func (s *Selection) Prune(ids []string) int {
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}
	kept := s.ids[:0]
	for _, id := range s.ids {
		if _, ok := live[id]; ok {
			kept = append(kept, id)
		}
	}
	dropped := len(s.ids) - len(kept)
	s.ids = kept
	return dropped
}

// HeaderState returns the select-all checkbox state for a table of rowCount rows.
func (s *Selection) HeaderState(rowCount int) CheckState {
	n := len(s.ids)
	switch {
	case n == 0 || rowCount == 0:
		return Unchecked
	case n < rowCount:
		return Indeterminate
	default:
		return Checked
	}
}

func (s *Selection) index(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
