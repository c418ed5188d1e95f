// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package listctl

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
)

type row struct {
	ID   int
	Name string
}

// fakeFetcher records the pages it was asked for and serves canned results.
type fakeFetcher struct {
	pages []api.Page
	list  api.List[row]
	err   error
}

func (f *fakeFetcher) fetch(_ context.Context, p api.Page) (api.List[row], error) {
	f.pages = append(f.pages, p)
	return f.list, f.err
}

func (f *fakeFetcher) lastPage(t *testing.T) api.Page {
	t.Helper()
	if len(f.pages) == 0 {
		t.Fatalf("no fetch recorded")
	}
	return f.pages[len(f.pages)-1]
}

// run executes a command and feeds the resulting message back into the
// controller, mimicking one turn of the bubbletea loop.
func run(t *testing.T, c *Controller[row], cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	if _, handled := c.Update(msg); !handled {
		t.Fatalf("controller did not claim its own message %T", msg)
	}
}

func TestLoadCommitsResult(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Items: []row{{1, "a"}, {2, "b"}}, Total: 2}}
	c := New(f.fetch)

	cmd := c.Load()
	if !c.Loading {
		t.Fatalf("Load should set Loading")
	}
	run(t, c, cmd)

	if c.Loading {
		t.Fatalf("Loading should clear after the result commits")
	}
	if len(c.Data) != 2 || c.Total != 2 {
		t.Fatalf("unexpected state: %d rows, total %d", len(c.Data), c.Total)
	}
	if c.Err != nil {
		t.Fatalf("unexpected error: %v", c.Err)
	}
}

func TestLoadRecordsError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	c := New(f.fetch)

	run(t, c, c.Load())
	if c.Err == nil {
		t.Fatalf("expected the fetch error to surface")
	}

	// A subsequent success clears it.
	f.err = nil
	f.list = api.List[row]{Items: []row{{1, "a"}}, Total: 1}
	run(t, c, c.Load())
	if c.Err != nil {
		t.Fatalf("error should clear on success, got %v", c.Err)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Items: []row{{1, "old"}}, Total: 1}}
	c := New(f.fetch)

	first := c.Load()
	f.list = api.List[row]{Items: []row{{2, "new"}}, Total: 1}
	second := c.Load()

	// The slow first response arrives after the second fetch was issued.
	firstMsg := first()
	if _, handled := c.Update(firstMsg); !handled {
		t.Fatalf("stale message should still be claimed")
	}
	if !c.Loading {
		t.Fatalf("stale response must not clear the loading state")
	}
	if len(c.Data) != 0 {
		t.Fatalf("stale response must not commit data")
	}

	run(t, c, second)
	if len(c.Data) != 1 || c.Data[0].Name != "new" {
		t.Fatalf("newest response should win, got %+v", c.Data)
	}
}

func TestSearchDebounceCommitsTrimmedTerm(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 0}}
	c := New(f.fetch, WithDebounce[row](time.Millisecond))

	cmd := c.SetSearch("  alpha  ")
	msg := cmd()
	loadCmd, handled := c.Update(msg)
	if !handled || loadCmd == nil {
		t.Fatalf("debounced term of length >= 3 should fetch")
	}
	if c.Search() != "alpha" {
		t.Fatalf("committed term should be trimmed, got %q", c.Search())
	}
	run(t, c, loadCmd)
	if got := f.lastPage(t).Search; got != "alpha" {
		t.Fatalf("fetch used search %q", got)
	}
}

func TestShortSearchTermIsSuppressed(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f.fetch, WithDebounce[row](time.Millisecond))

	for _, term := range []string{"a", "ab", " ab "} {
		msg := c.SetSearch(term)()
		loadCmd, handled := c.Update(msg)
		if !handled {
			t.Fatalf("debounce message not claimed for %q", term)
		}
		if loadCmd != nil {
			t.Fatalf("term %q should not fetch", term)
		}
	}
	if len(f.pages) != 0 {
		t.Fatalf("suppressed terms must not reach the server")
	}
}

func TestClearedSearchFetches(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f.fetch, WithDebounce[row](time.Millisecond))

	// Commit a real search first.
	msg := c.SetSearch("alpha")()
	loadCmd, _ := c.Update(msg)
	run(t, c, loadCmd)

	// Clearing it fetches again with an empty term.
	msg = c.SetSearch("")()
	loadCmd, _ = c.Update(msg)
	if loadCmd == nil {
		t.Fatalf("clearing the search should fetch")
	}
	run(t, c, loadCmd)
	if got := f.lastPage(t).Search; got != "" {
		t.Fatalf("cleared search still sent %q", got)
	}
}

func TestSupersededDebounceTickIsIgnored(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f.fetch, WithDebounce[row](time.Millisecond))

	first := c.SetSearch("alpha")
	second := c.SetSearch("alphabet")

	// The older tick arrives; it must not commit.
	loadCmd, handled := c.Update(first())
	if !handled {
		t.Fatalf("old tick should still be claimed")
	}
	if loadCmd != nil || c.Search() != "" {
		t.Fatalf("superseded keystroke must not commit")
	}

	loadCmd, _ = c.Update(second())
	if loadCmd == nil || c.Search() != "alphabet" {
		t.Fatalf("newest keystroke should commit, search=%q", c.Search())
	}
}

func TestSearchResetsPage(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 100}}
	c := New(f.fetch, WithDebounce[row](time.Millisecond))
	run(t, c, c.Load())
	run(t, c, c.NextPage())
	if c.Page() != 1 {
		t.Fatalf("expected page 1, got %d", c.Page())
	}

	msg := c.SetSearch("alpha")()
	loadCmd, _ := c.Update(msg)
	if loadCmd == nil {
		t.Fatalf("expected a fetch")
	}
	if c.Page() != 0 {
		t.Fatalf("search must reset to the first page, got %d", c.Page())
	}
}

func TestSetLimitResetsPage(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 100}}
	c := New(f.fetch)
	run(t, c, c.Load())
	run(t, c, c.NextPage())

	if cmd := c.SetLimit(c.Limit()); cmd != nil {
		t.Fatalf("unchanged limit should be a no-op")
	}
	cmd := c.SetLimit(50)
	if cmd == nil || c.Page() != 0 || c.Limit() != 50 {
		t.Fatalf("limit change should refetch from page 0, page=%d limit=%d", c.Page(), c.Limit())
	}
}

func TestSetFilterResetsPage(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 100}}
	c := New(f.fetch)
	run(t, c, c.Load())
	run(t, c, c.NextPage())

	cmd := c.SetFilter("role", "admin")
	if cmd == nil || c.Page() != 0 {
		t.Fatalf("filter change should refetch from page 0")
	}
	if c.Filter("role") != "admin" {
		t.Fatalf("filter not recorded")
	}
	if cmd := c.SetFilter("role", "admin"); cmd != nil {
		t.Fatalf("unchanged filter should be a no-op")
	}
	run(t, c, c.SetFilter("role", ""))
	if c.Filter("role") != "" {
		t.Fatalf("empty value should remove the filter")
	}
}

func TestToggleSort(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f.fetch, WithSort[row]("name", Asc))

	run(t, c, c.ToggleSort("name"))
	if field, order := c.Sort(); field != "name" || order != Desc {
		t.Fatalf("same column should flip direction, got %s %s", field, order)
	}
	run(t, c, c.ToggleSort("name"))
	if _, order := c.Sort(); order != Asc {
		t.Fatalf("second toggle should flip back to asc")
	}
	run(t, c, c.ToggleSort("email"))
	if field, order := c.Sort(); field != "email" || order != Asc {
		t.Fatalf("new column should start ascending, got %s %s", field, order)
	}
	if got := f.lastPage(t); got.Sort != "email" || got.Order != "asc" {
		t.Fatalf("fetch used sort %s %s", got.Sort, got.Order)
	}
}

func TestPageClamping(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 100}}
	c := New(f.fetch) // limit 25, 4 pages
	run(t, c, c.Load())

	if cmd := c.PrevPage(); cmd != nil {
		t.Fatalf("cannot go before the first page")
	}
	run(t, c, c.SetPage(99))
	if c.Page() != 3 {
		t.Fatalf("page should clamp to the last page, got %d", c.Page())
	}
	if cmd := c.NextPage(); cmd != nil {
		t.Fatalf("cannot go past the last page")
	}
}

func TestShrunkenTotalRefetchesClampedPage(t *testing.T) {
	f := &fakeFetcher{list: api.List[row]{Total: 100}}
	c := New(f.fetch)
	run(t, c, c.Load())
	run(t, c, c.SetPage(3))

	// Rows were deleted elsewhere; the server now reports a single page.
	f.list = api.List[row]{Items: nil, Total: 10}
	cmd := c.Load()
	msg := cmd()
	refetch, handled := c.Update(msg)
	if !handled || refetch == nil {
		t.Fatalf("expected a refetch for the clamped page")
	}
	if c.Page() != 0 {
		t.Fatalf("page should clamp to 0, got %d", c.Page())
	}
	run(t, c, refetch)
	if got := f.lastPage(t).Page; got != 0 {
		t.Fatalf("refetch requested page %d", got)
	}
}

func TestForeignMessagesAreNotClaimed(t *testing.T) {
	f := &fakeFetcher{}
	a := New(f.fetch)
	b := New(f.fetch)

	msg := a.Load()()
	if _, handled := b.Update(msg); handled {
		t.Fatalf("controller claimed another controller's result")
	}
	if _, handled := b.Update("unrelated"); handled {
		t.Fatalf("controller claimed an unrelated message")
	}
}

func TestPageCount(t *testing.T) {
	c := New[row](nil)
	if c.PageCount() != 1 {
		t.Fatalf("empty listing should have one page")
	}
	c.Total = 100
	if c.PageCount() != 4 {
		t.Fatalf("expected 4 pages, got %d", c.PageCount())
	}
	c.Total = 101
	if c.PageCount() != 5 {
		t.Fatalf("expected 5 pages, got %d", c.PageCount())
	}
}
