package table

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/robby/adminctl/internal/domain"
)

// Page is the visible slice of a table after filtering, sorting and paging.
type Page struct {
	Rows     []domain.Row // Rows of the current page
	Matching []domain.Row // Every row that passed the filter, in sorted order
	Start    int          // Index of Rows[0] within Matching
	Padding  int          // Blank rows to render after Rows
}

// Total returns the number of rows that passed the filter.
func (p Page) Total() int {
	return len(p.Matching)
}

// Filter keeps rows where any column value fuzzily matches query.
// An empty query keeps every row.
func Filter(rows []domain.Row, columns []domain.Column, query string) []domain.Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		for _, c := range columns {
			if fuzzy.MatchFold(query, row.Text(c.Key)) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Project derives the visible page. It clamps the pager to the filtered total.
func Project(rows []domain.Row, columns []domain.Column, query string, s Sort, p *Pager) Page {
	matching := s.Apply(Filter(rows, columns, query), columns)
	p.Clamp(len(matching))
	start, end := p.Bounds(len(matching))
	return Page{
		Rows:     matching[start:end],
		Matching: matching,
		Start:    start,
		Padding:  p.EmptyRows(len(matching)),
	}
}

// IDs returns the identities of rows.
func IDs(rows []domain.Row, primaryField string) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID(primaryField)
	}
	return ids
}
