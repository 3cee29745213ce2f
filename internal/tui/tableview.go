package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/table"
)

// Layout constants
const (
	checkboxWidth  = 4 // "[x] "
	cursorWidth    = 2 // "> "
	minFlexWidth   = 10
	columnGap      = 1
	defaultWidth   = 80
	defaultHeight  = 24
	tableHeaderRow = 1 // Screen line of the table header, below the toolbar
)

// Checkbox glyphs for the header and rows.
const (
	glyphUnchecked     = "[ ]"
	glyphChecked       = "[x]"
	glyphIndeterminate = "[-]"
)

// tableView is everything needed to draw one table frame.
type tableView struct {
	resource  domain.Resource
	page      table.Page
	pager     table.Pager
	selection *table.Selection
	sort      table.Sort
	cursor    int // Index into page.Rows
	width     int
	now       time.Time
}

// columnWidths assigns fixed widths first and shares the rest between
// flexible columns.
func columnWidths(columns []domain.Column, total int) []int {
	widths := make([]int, len(columns))
	remaining := total - cursorWidth - checkboxWidth
	flex := 0
	for i, c := range columns {
		if c.Width > 0 {
			widths[i] = c.Width
			remaining -= c.Width + columnGap
		} else {
			flex++
		}
	}
	for i, c := range columns {
		if c.Width > 0 {
			continue
		}
		w := minFlexWidth
		if flex > 0 {
			if share := remaining/flex - columnGap; share > w {
				w = share
			}
		}
		widths[i] = w
	}
	return widths
}

func checkGlyph(state table.CheckState) string {
	switch state {
	case table.Checked:
		return glyphChecked
	case table.Indeterminate:
		return glyphIndeterminate
	default:
		return glyphUnchecked
	}
}

// fit truncates s to width cells and pads it to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = truncate.StringWithTail(s, uint(width), "…")
	return lipgloss.NewStyle().Width(width).Render(s)
}

// cellText formats one value for display.
func cellText(row domain.Row, c domain.Column, now time.Time) string {
	if c.Kind == domain.ColumnDate {
		if t, ok := row.Time(c.Key); ok {
			return humanize.RelTime(t, now, "ago", "from now")
		}
	}
	return row.Text(c.Key)
}

// headerLabel is the column label, its sort key and the direction arrow.
func headerLabel(i int, c domain.Column, s table.Sort) string {
	label := c.Label
	if i < 9 {
		label = fmt.Sprintf("%d·%s", i+1, label)
	}
	if s.Column == c.Key {
		if s.Direction == table.Asc {
			label += " ▲"
		} else {
			label += " ▼"
		}
	}
	return label
}

// renderHeader draws the tri-state checkbox and the sortable labels.
func (v tableView) renderHeader(widths []int) string {
	state := v.selection.HeaderState(len(v.page.Matching))
	cells := []string{strings.Repeat(" ", cursorWidth) + checkGlyph(state) + " "}
	for i, c := range v.resource.Columns {
		cells = append(cells, headerCellStyle.Render(fit(headerLabel(i, c, v.sort), widths[i])))
	}
	return strings.Join(cells, strings.Repeat(" ", columnGap))
}

// renderRow draws one data row.
func (v tableView) renderRow(idx int, row domain.Row, widths []int) string {
	id := row.ID(v.resource.PrimaryField)
	selected := v.selection.IsSelected(id)

	prefix := "  "
	if idx == v.cursor {
		prefix = "> "
	}
	glyph := glyphUnchecked
	if selected {
		glyph = glyphChecked
	}

	cells := []string{prefix + glyph + " "}
	for i, c := range v.resource.Columns {
		cells = append(cells, fit(cellText(row, c, v.now), widths[i]))
	}
	line := strings.Join(cells, strings.Repeat(" ", columnGap))

	switch {
	case idx == v.cursor:
		return SelectedItemStyle.Render(line)
	case selected:
		return checkedRowStyle.Render(line)
	default:
		return NormalItemStyle.Render(line)
	}
}

// Render draws header, body, padding rows and pagination controls.
func (v tableView) Render() string {
	width := v.width
	if width <= 0 {
		width = defaultWidth
	}
	if v.now.IsZero() {
		v.now = time.Now()
	}
	widths := columnWidths(v.resource.Columns, width)

	lines := []string{v.renderHeader(widths)}
	if len(v.page.Rows) == 0 && v.page.Total() == 0 {
		lines = append(lines, dimStyle.Render("  No rows"))
	}
	for i, row := range v.page.Rows {
		lines = append(lines, v.renderRow(i, row, widths))
	}
	for i := 0; i < v.page.Padding; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, v.renderPagination())
	return strings.Join(lines, "\n")
}

// renderPagination draws the page dots and the visible row range.
func (v tableView) renderPagination() string {
	total := v.page.Total()
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = v.pager.Size
	p.SetTotalPages(total)
	p.Page = v.pager.Page

	rangeText := "rows 0 of 0"
	if total > 0 {
		first := v.page.Start + 1
		last := v.page.Start + len(v.page.Rows)
		rangeText = fmt.Sprintf("rows %d-%d of %s", first, last, humanize.Comma(int64(total)))
	}
	return fmt.Sprintf("%s  %s  %s",
		p.View(),
		dimStyle.Render(rangeText),
		dimStyle.Render(fmt.Sprintf("%d per page", v.pager.Size)),
	)
}

// toolbar describes the actions available for the current selection.
type toolbar struct {
	title     string
	selected  int
	filter    string
	fetchedAt time.Time
	now       time.Time
}

// Render draws the toolbar line: the title and hints with nothing selected,
// the selection count and its actions otherwise.
func (t toolbar) Render(width int) string {
	var left string
	var hints []string
	switch {
	case t.selected == 0:
		left = TitleStyle.UnsetMarginBottom().Render(t.title)
		if t.filter != "" {
			left += " " + dimStyle.Render("/"+t.filter)
		}
		hints = []string{"/ filter", "r refresh", "c create"}
	case t.selected == 1:
		left = toolbarActionStyle.Render("1 selected")
		hints = []string{"e edit", "d delete", "r refresh"}
	default:
		left = toolbarActionStyle.Render(fmt.Sprintf("%s selected", humanize.Comma(int64(t.selected))))
		hints = []string{"d delete", "r refresh"}
	}

	right := strings.Join(hints, " • ")
	if !t.fetchedAt.IsZero() {
		now := t.now
		if now.IsZero() {
			now = time.Now()
		}
		right = "updated " + humanize.RelTime(t.fetchedAt, now, "ago", "from now") + " | " + right
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}
