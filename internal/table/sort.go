package table

import (
	"sort"
	"strings"

	"github.com/robby/adminctl/internal/domain"
)

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Sort is the active sort column (empty for none) and its direction.
type Sort struct {
	Column    string
	Direction Direction
}

// Active reports whether a column is being sorted on.
func (s Sort) Active() bool {
	return s.Column != ""
}

// Click applies a header click on column and returns the next state:
// a new column sorts ascending, a second click descending, a third clears.
func (s Sort) Click(column string) Sort {
	switch {
	case s.Column != column:
		return Sort{Column: column, Direction: Asc}
	case s.Direction == Asc:
		return Sort{Column: column, Direction: Desc}
	default:
		return Sort{Direction: Asc}
	}
}

// Apply returns rows ordered by the active column. The input is not modified.
// Without an active column the original order is kept.
func (s Sort) Apply(rows []domain.Row, columns []domain.Column) []domain.Row {
	out := make([]domain.Row, len(rows))
	copy(out, rows)
	if !s.Active() {
		return out
	}

	kind := domain.ColumnText
	for _, c := range columns {
		if c.Key == s.Column {
			kind = c.Kind
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], s.Column, kind)
		if s.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compare orders two rows on key. Values that cannot be parsed for the
// column kind fall back to text comparison.
func compare(a, b domain.Row, key string, kind domain.ColumnKind) int {
	switch kind {
	case domain.ColumnNumber:
		x, okx := a.Number(key)
		y, oky := b.Number(key)
		if okx && oky {
			return cmpFloat(x, y)
		}
	case domain.ColumnDate:
		x, okx := a.Time(key)
		y, oky := b.Time(key)
		if okx && oky {
			return x.Compare(y)
		}
	}
	return strings.Compare(strings.ToLower(a.Text(key)), strings.ToLower(b.Text(key)))
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
