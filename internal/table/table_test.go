package table

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/adminctl/internal/domain"
)

func createTestRows() []domain.Row {
	return []domain.Row{
		{"id": 3.0, "name": "Finance", "created_at": "2024-02-01T00:00:00Z"},
		{"id": 1.0, "name": "engineering", "created_at": "2024-03-01T00:00:00Z"},
		{"id": 10.0, "name": "HR", "created_at": "2023-12-24T00:00:00Z"},
		{"id": 2.0, "name": "Design", "created_at": "2024-01-15T00:00:00Z"},
	}
}

var testColumns = []domain.Column{
	{Key: "id", Kind: domain.ColumnNumber},
	{Key: "name"},
	{Key: "created_at", Kind: domain.ColumnDate},
}

func TestSelection_OddToggleCountsStaySelected(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		s := NewSelection()
		counts := map[string]int{}
		for i := 0; i < 40; i++ {
			id := ids[rng.Intn(len(ids))]
			s.Toggle(id)
			counts[id]++
		}

		var want []string
		for id, n := range counts {
			if n%2 == 1 {
				want = append(want, id)
			}
		}
		got := s.IDs()
		sort.Strings(want)
		sort.Strings(got)
		assert.Equal(t, fmt.Sprint(want), fmt.Sprint(got), "round %d", round)
	}
}

func TestSelection_SelectAllThenDeselectAll(t *testing.T) {
	s := NewSelection()
	s.Toggle("x")
	s.Toggle("y")

	s.SelectAll(true, []string{"1", "2", "3"})
	assert.Equal(t, 3, s.Count())
	assert.False(t, s.IsSelected("x"))

	s.SelectAll(false, []string{"1", "2", "3"})
	assert.Equal(t, 0, s.Count())
}

func TestSelection_SelectAllIsSnapshot(t *testing.T) {
	ids := []string{"1", "2"}
	s := NewSelection()
	s.SelectAll(true, ids)

	ids[0] = "changed"

	assert.True(t, s.IsSelected("1"))
}

func TestSelection_HeaderState(t *testing.T) {
	s := NewSelection()
	assert.Equal(t, Unchecked, s.HeaderState(3))

	s.Toggle("1")
	assert.Equal(t, Indeterminate, s.HeaderState(3))

	s.SelectAll(true, []string{"1", "2", "3"})
	assert.Equal(t, Checked, s.HeaderState(3))

	assert.Equal(t, Unchecked, s.HeaderState(0))
}

func TestSelection_Prune(t *testing.T) {
	s := NewSelection()
	s.SelectAll(true, []string{"1", "2", "3"})

	dropped := s.Prune([]string{"2", "3", "4"})

	assert.Equal(t, 1, dropped)
	assert.False(t, s.IsSelected("1"))
	assert.True(t, s.IsSelected("2"))
	assert.True(t, s.IsSelected("3"))
}

func TestSort_ClickSequence(t *testing.T) {
	var s Sort

	s = s.Click("name")
	assert.Equal(t, Sort{Column: "name", Direction: Asc}, s)

	s = s.Click("name")
	assert.Equal(t, Sort{Column: "name", Direction: Desc}, s)

	s = s.Click("name")
	assert.False(t, s.Active())
	assert.Equal(t, Asc, s.Direction)
}

func TestSort_ClickOtherColumnRestartsAscending(t *testing.T) {
	s := Sort{Column: "name", Direction: Desc}

	s = s.Click("id")

	assert.Equal(t, Sort{Column: "id", Direction: Asc}, s)
}

func TestSort_Apply(t *testing.T) {
	rows := createTestRows()

	t.Run("numeric", func(t *testing.T) {
		sorted := Sort{Column: "id"}.Apply(rows, testColumns)
		assert.Equal(t, []string{"1", "2", "3", "10"}, IDs(sorted, "id"))
	})

	t.Run("text is case-insensitive", func(t *testing.T) {
		sorted := Sort{Column: "name", Direction: Desc}.Apply(rows, testColumns)
		assert.Equal(t, []string{"HR", "Finance", "engineering", "Design"}, texts(sorted, "name"))
	})

	t.Run("dates", func(t *testing.T) {
		sorted := Sort{Column: "created_at"}.Apply(rows, testColumns)
		assert.Equal(t, []string{"10", "2", "3", "1"}, IDs(sorted, "id"))
	})

	t.Run("inactive keeps order and copies", func(t *testing.T) {
		sorted := Sort{}.Apply(rows, testColumns)
		assert.Equal(t, IDs(rows, "id"), IDs(sorted, "id"))
		sorted[0] = domain.Row{"id": 99.0}
		assert.Equal(t, "3", rows[0].ID("id"))
	})
}

func TestPager(t *testing.T) {
	p := NewPager(2)

	assert.Equal(t, 3, p.Pages(5))
	assert.True(t, p.Next(5))
	assert.True(t, p.Next(5))
	assert.False(t, p.Next(5))
	assert.Equal(t, 2, p.Page)

	start, end := p.Bounds(5)
	assert.Equal(t, 4, start)
	assert.Equal(t, 5, end)
	assert.Equal(t, 1, p.EmptyRows(5))

	p.Clamp(3)
	assert.Equal(t, 1, p.Page)

	assert.True(t, p.Prev())
	assert.False(t, p.Prev())
	assert.Equal(t, 0, p.EmptyRows(1))

	p.SetSize(0)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 1, p.Pages(0))
}

func TestPager_CycleSize(t *testing.T) {
	p := NewPager(10)
	p.Page = 3

	p.CycleSize()
	assert.Equal(t, 25, p.Size)
	assert.Equal(t, 0, p.Page)

	p.CycleSize()
	assert.Equal(t, 5, p.Size)

	p = NewPager(7)
	p.CycleSize()
	assert.Equal(t, 5, p.Size)
}

func TestFilter(t *testing.T) {
	rows := createTestRows()

	assert.Len(t, Filter(rows, testColumns, ""), 4)
	assert.Equal(t, []string{"1"}, IDs(Filter(rows, testColumns, "engin"), "id"))
	assert.Equal(t, []string{"10"}, IDs(Filter(rows, testColumns, "hr"), "id"))
	assert.Empty(t, Filter(rows, testColumns, "zzz"))
}

func TestProject(t *testing.T) {
	rows := createTestRows()
	p := NewPager(3)
	p.Page = 5

	page := Project(rows, testColumns, "", Sort{Column: "id"}, &p)

	require.Equal(t, 1, p.Page, "pager is clamped to the last page")
	assert.Equal(t, 4, page.Total())
	assert.Equal(t, 3, page.Start)
	assert.Equal(t, []string{"10"}, IDs(page.Rows, "id"))
	assert.Equal(t, 2, page.Padding)
}

func texts(rows []domain.Row, key string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text(key)
	}
	return out
}
