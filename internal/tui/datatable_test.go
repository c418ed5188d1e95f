// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"sort"
	"strings"
	"testing"

	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
)

type testRow struct {
	ID   int
	Name string
}

func testColumns() []Column[testRow] {
	return []Column[testRow]{
		{Key: "name", Title: "users.header.username", Width: 10, Sortable: true,
			Format: func(r testRow) string { return r.Name }},
		{Title: "users.header.email", Width: 10,
			Format: func(r testRow) string { return "-" }},
		{Key: "last_login", Title: "users.header.last_login", Width: 10, Sortable: true,
			Format: func(r testRow) string { return "-" }},
	}
}

func testRows() []testRow {
	return []testRow{{1, "alice"}, {2, "bob"}, {3, "carol"}}
}

func init() {
	i18n.Init("en")
}

func TestToggleCurrentAndClear(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })
	d.SetRows(testRows())

	d.ToggleCurrent()
	if d.SelectedCount() != 1 {
		t.Fatalf("expected one selected row, got %d", d.SelectedCount())
	}
	if !d.Indeterminate() {
		t.Fatalf("one of three selected should be indeterminate")
	}
	d.ToggleCurrent()
	if d.SelectedCount() != 0 {
		t.Fatalf("second toggle should deselect")
	}

	d.ToggleAll()
	d.ClearSelection()
	if d.SelectedCount() != 0 {
		t.Fatalf("clear left selections behind")
	}
}

func TestToggleAllCycle(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })
	d.SetRows(testRows())

	d.ToggleAll()
	if !d.AllSelected() || d.Indeterminate() {
		t.Fatalf("toggle-all should select every rendered row")
	}
	ids := d.SelectedIDs()
	sort.Ints(ids)
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected selected ids %v", ids)
	}

	d.ToggleAll()
	if d.SelectedCount() != 0 {
		t.Fatalf("toggle-all on a full selection should clear it")
	}

	// Partial selection: toggle-all completes it instead of clearing.
	d.ToggleCurrent()
	d.ToggleAll()
	if !d.AllSelected() {
		t.Fatalf("toggle-all on a partial selection should select the rest")
	}
}

func TestSetRowsDropsStaleSelections(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })
	d.SetRows(testRows())
	d.ToggleAll()

	// A new page renders different rows; only surviving ids stay selected.
	d.SetRows([]testRow{{2, "bob"}, {4, "dave"}})
	ids := d.SelectedIDs()
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only row 2 to stay selected, got %v", ids)
	}
}

func TestSelectionDisabledWithoutRowID(t *testing.T) {
	d := NewDataTable(testColumns(), nil)
	d.SetRows(testRows())
	d.ToggleCurrent()
	d.ToggleAll()
	if d.SelectedCount() != 0 {
		t.Fatalf("selection must be inert without a row id")
	}
}

func TestSortTargetCycle(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })

	if d.SortTarget() != "name" {
		t.Fatalf("first sortable column should be the initial target, got %q", d.SortTarget())
	}
	if got := d.NextSortTarget(); got != "last_login" {
		t.Fatalf("expected last_login next, got %q", got)
	}
	if got := d.NextSortTarget(); got != "name" {
		t.Fatalf("cursor should wrap around, got %q", got)
	}
}

func TestSortStateFollowsController(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })
	d.SetSortState("last_login", listctl.Desc)
	if d.SortTarget() != "last_login" {
		t.Fatalf("sort cursor should follow the active column")
	}
}

func TestEmptyAndLoadingViews(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })

	view := d.View()
	if !strings.Contains(view, i18n.T("table.empty_title")) {
		t.Fatalf("empty view missing the empty state: %q", view)
	}

	if cmd := d.SetLoading(true); cmd == nil {
		t.Fatalf("entering the loading state should start the spinner")
	}
	if cmd := d.SetLoading(true); cmd != nil {
		t.Fatalf("already loading; no second spinner tick")
	}
	view = d.View()
	if !strings.Contains(view, i18n.T("table.loading")) {
		t.Fatalf("loading view missing the loading line: %q", view)
	}
	d.SetLoading(false)
}

func TestCurrentRowBounds(t *testing.T) {
	d := NewDataTable(testColumns(), func(r testRow) int { return r.ID })
	if _, ok := d.CurrentRow(); ok {
		t.Fatalf("empty table has no current row")
	}
	d.SetRows(testRows())
	row, ok := d.CurrentRow()
	if !ok || row.ID != 1 {
		t.Fatalf("expected the first row under the cursor, got %+v", row)
	}
}

func TestFooterView(t *testing.T) {
	s := FooterView(0, 5, 123, 25, 0)
	for _, want := range []string{"1/5", "123", "25"} {
		if !strings.Contains(s, want) {
			t.Fatalf("footer %q missing %q", s, want)
		}
	}
	if strings.Contains(s, i18n.T("table.selected")) {
		t.Fatalf("footer should omit the selection count when nothing is selected")
	}
	s = FooterView(1, 5, 123, 25, 4)
	if !strings.Contains(s, "4 "+i18n.T("table.selected")) {
		t.Fatalf("footer %q missing the selection count", s)
	}
}
