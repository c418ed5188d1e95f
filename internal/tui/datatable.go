// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
)

// Column describes one data table column for rows of type T.
type Column[T any] struct {
	// Key is the server-side sort field name ("" for unsortable columns).
	Key string
	// Title is the i18n message ID for the header label.
	Title string
	Width int
	// Format renders the cell for a row. The table knows nothing about the
	// row type beyond this function.
	Format func(T) string
	// Sortable marks the column as a sort target.
	Sortable bool
}

// DataTable is the generic sortable/selectable grid behind every list view.
// Sorting and pagination semantics live in the list controller; the table
// renders state and translates key presses.
type DataTable[T any] struct {
	columns []Column[T]
	inner   table.Model
	rows    []T
	rowID   func(T) int

	selected   map[int]bool // keyed by rowID
	selectable bool

	sortField  string
	sortOrder  listctl.Order
	sortCursor int // index into sortable columns

	loading bool
	spin    spinner.Model

	emptyTitle string
	emptyHint  string
}

// NewDataTable builds a table. rowID must return a stable identifier per
// row; pass nil for tables without row selection.
func NewDataTable[T any](columns []Column[T], rowID func(T) int) DataTable[T] {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(currentPalette().subtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(currentPalette().text).
		Background(currentPalette().highlight).
		Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	d := DataTable[T]{
		columns:    columns,
		inner:      t,
		rowID:      rowID,
		selectable: rowID != nil,
		selected:   map[int]bool{},
		sortOrder:  listctl.Asc,
		spin:       sp,
		emptyTitle: "table.empty_title",
		emptyHint:  "table.empty_hint",
	}
	d.refreshColumns()
	return d
}

// SetEmptyState overrides the i18n message IDs for the empty rendering.
func (d *DataTable[T]) SetEmptyState(titleID, hintID string) {
	d.emptyTitle = titleID
	d.emptyHint = hintID
}

// SetSize fits the table into the given content area.
func (d *DataTable[T]) SetSize(width, height int) {
	d.inner.SetWidth(width)
	d.inner.SetHeight(height)
}

// SetSortState mirrors the controller's sort so the header indicator and
// sort cursor stay truthful.
func (d *DataTable[T]) SetSortState(field string, order listctl.Order) {
	d.sortField = field
	d.sortOrder = order
	for i, c := range d.sortableColumns() {
		if c.Key == field {
			d.sortCursor = i
		}
	}
	d.refreshColumns()
}

// SetLoading toggles the loading overlay; headers stay in place. Returns the
// spinner tick command when entering the loading state.
func (d *DataTable[T]) SetLoading(loading bool) tea.Cmd {
	was := d.loading
	d.loading = loading
	if loading && !was {
		return d.spin.Tick
	}
	return nil
}

// SetRows replaces the rendered rows. Selections for rows that are no longer
// rendered are dropped, matching select-all's "currently rendered" scope.
func (d *DataTable[T]) SetRows(rows []T) {
	d.rows = rows
	if d.selectable {
		keep := map[int]bool{}
		for _, r := range rows {
			id := d.rowID(r)
			if d.selected[id] {
				keep[id] = true
			}
		}
		d.selected = keep
	}
	d.refreshRows()
}

// Rows returns the rendered rows.
func (d *DataTable[T]) Rows() []T { return d.rows }

// CurrentRow returns the row under the cursor.
func (d *DataTable[T]) CurrentRow() (T, bool) {
	var zero T
	i := d.inner.Cursor()
	if i < 0 || i >= len(d.rows) {
		return zero, false
	}
	return d.rows[i], true
}

// ToggleCurrent flips selection of the row under the cursor.
func (d *DataTable[T]) ToggleCurrent() {
	if !d.selectable {
		return
	}
	row, ok := d.CurrentRow()
	if !ok {
		return
	}
	id := d.rowID(row)
	if d.selected[id] {
		delete(d.selected, id)
	} else {
		d.selected[id] = true
	}
	d.refreshRows()
}

// ToggleAll selects every rendered row, or clears the selection when all
// rows are already selected.
func (d *DataTable[T]) ToggleAll() {
	if !d.selectable || len(d.rows) == 0 {
		return
	}
	if d.AllSelected() {
		d.selected = map[int]bool{}
	} else {
		for _, r := range d.rows {
			d.selected[d.rowID(r)] = true
		}
	}
	d.refreshRows()
}

// SelectedIDs returns the ids of all selected rows.
func (d *DataTable[T]) SelectedIDs() []int {
	ids := make([]int, 0, len(d.selected))
	for id := range d.selected {
		ids = append(ids, id)
	}
	return ids
}

// SelectedCount returns how many rendered rows are selected.
func (d *DataTable[T]) SelectedCount() int { return len(d.selected) }

// AllSelected reports whether every rendered row is selected.
func (d *DataTable[T]) AllSelected() bool {
	return len(d.rows) > 0 && len(d.selected) == len(d.rows)
}

// Indeterminate reports the classic some-but-not-all selection state.
func (d *DataTable[T]) Indeterminate() bool {
	return len(d.selected) > 0 && len(d.selected) < len(d.rows)
}

// ClearSelection drops all selections.
func (d *DataTable[T]) ClearSelection() {
	d.selected = map[int]bool{}
	d.refreshRows()
}

// sortableColumns returns the columns that can be sort targets.
func (d *DataTable[T]) sortableColumns() []Column[T] {
	var cols []Column[T]
	for _, c := range d.columns {
		if c.Sortable && c.Key != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// NextSortTarget advances the sort cursor to the next sortable column and
// returns its key ("" when nothing is sortable).
func (d *DataTable[T]) NextSortTarget() string {
	cols := d.sortableColumns()
	if len(cols) == 0 {
		return ""
	}
	d.sortCursor = (d.sortCursor + 1) % len(cols)
	d.refreshColumns()
	return cols[d.sortCursor].Key
}

// SortTarget returns the key of the column under the sort cursor.
func (d *DataTable[T]) SortTarget() string {
	cols := d.sortableColumns()
	if len(cols) == 0 {
		return ""
	}
	if d.sortCursor >= len(cols) {
		d.sortCursor = 0
	}
	return cols[d.sortCursor].Key
}

// Update forwards navigation and spinner messages to the embedded bubbles.
func (d *DataTable[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case spinner.TickMsg:
		if !d.loading {
			return nil
		}
		var cmd tea.Cmd
		d.spin, cmd = d.spin.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	d.inner, cmd = d.inner.Update(msg)
	return cmd
}

// refreshColumns rebuilds the header row with sort indicators.
func (d *DataTable[T]) refreshColumns() {
	target := d.SortTarget()
	cols := make([]table.Column, 0, len(d.columns)+1)
	if d.selectable {
		cols = append(cols, table.Column{Title: d.headerCheckbox(), Width: 3})
	}
	for _, c := range d.columns {
		title := i18n.T(c.Title)
		if c.Key != "" && c.Key == d.sortField {
			if d.sortOrder == listctl.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		} else if c.Sortable && c.Key == target {
			title += " ·"
		}
		cols = append(cols, table.Column{Title: title, Width: c.Width})
	}
	d.inner.SetColumns(cols)
	d.refreshRows()
}

// headerCheckbox renders the select-all state: [x] all, [~] some, [ ] none.
func (d *DataTable[T]) headerCheckbox() string {
	switch {
	case d.AllSelected():
		return "[x]"
	case d.Indeterminate():
		return "[~]"
	default:
		return "[ ]"
	}
}

func (d *DataTable[T]) refreshRows() {
	rows := make([]table.Row, 0, len(d.rows))
	for _, r := range d.rows {
		cells := make(table.Row, 0, len(d.columns)+1)
		if d.selectable {
			mark := "[ ]"
			if d.selected[d.rowID(r)] {
				mark = "[x]"
			}
			cells = append(cells, mark)
		}
		for _, c := range d.columns {
			cells = append(cells, c.Format(r))
		}
		rows = append(rows, cells)
	}
	d.inner.SetRows(rows)
	if d.selectable {
		// Header checkbox depends on the selection; keep it current without
		// recursing through refreshColumns.
		cols := d.inner.Columns()
		if len(cols) > 0 {
			cols[0].Title = d.headerCheckbox()
			d.inner.SetColumns(cols)
		}
	}
}

// View renders the grid, the loading overlay, or the empty state.
func (d *DataTable[T]) View() string {
	if d.loading {
		// Keep the headers during background refresh for layout stability.
		header := d.inner.View()
		if len(d.rows) == 0 {
			if i := strings.Index(header, "\n"); i > 0 {
				header = header[:i]
			}
		}
		return header + "\n" + d.spin.View() + " " + helpStyle.Render(i18n.T("table.loading"))
	}
	if len(d.rows) == 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render(i18n.T(d.emptyTitle)) + "\n")
		b.WriteString(helpStyle.Render(i18n.T(d.emptyHint)) + "\n")
		return b.String()
	}
	return d.inner.View()
}

// FooterView renders the pagination line for the current controller state.
func FooterView(page, pageCount, total, limit, selected int) string {
	s := fmt.Sprintf("%s %d/%d · %d %s · ⊞ %d",
		i18n.T("table.page"), page+1, pageCount, total, i18n.T("table.total"), limit)
	if selected > 0 {
		s += fmt.Sprintf(" · %d %s", selected, i18n.T("table.selected"))
	}
	return helpStyle.Render(s)
}
