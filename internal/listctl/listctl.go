// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package listctl implements the pagination/sort/search controller behind
// every table view. It owns the listing parameters, debounces free-text
// search, and tags every fetch with a monotonically increasing epoch so a
// slow response can never overwrite the state of a newer one.
package listctl

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
)

// DebounceDelay is how long typing must pause before a search fires.
const DebounceDelay = 300 * time.Millisecond

// MinSearchLen is the shortest non-empty search the server is asked to run.
// Terms of length 1-2 are suppressed to keep substring scans cheap; an empty
// term (cleared search) always fetches.
const MinSearchLen = 3

// DefaultLimit is the starting page size.
const DefaultLimit = 25

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Fetcher loads one page of a resource.
type Fetcher[T any] func(ctx context.Context, p api.Page) (api.List[T], error)

// nextID hands out controller identities so concurrent controllers in one
// program can tell their messages apart.
var nextID atomic.Uint64

// ResultMsg carries a completed fetch back to the controller.
type ResultMsg[T any] struct {
	id    uint64
	epoch uint64
	list  api.List[T]
	err   error
}

// debounceMsg fires when the search quiet period elapses.
type debounceMsg struct {
	id   uint64
	seq  uint64
	term string
}

// Controller drives one paginated listing. It is not safe for concurrent
// use; in the TUI it lives inside a single bubbletea model.
type Controller[T any] struct {
	fetch    Fetcher[T]
	id       uint64
	page     int
	limit    int
	sort     string
	order    Order
	search   string // committed, fetchable term
	typed    string // raw term awaiting debounce
	seq      uint64 // debounce sequence; only the newest tick commits
	epoch    uint64 // fetch epoch; only the newest response commits
	filters  map[string]string
	debounce time.Duration

	// Data, Total, Loading and Err are the derived view state.
	Data    []T
	Total   int
	Loading bool
	Err     error
}

// Option tweaks a controller at construction time.
type Option[T any] func(*Controller[T])

// WithLimit sets the initial page size.
func WithLimit[T any](limit int) Option[T] {
	return func(c *Controller[T]) { c.limit = limit }
}

// WithSort sets the initial sort column and direction.
func WithSort[T any](field string, order Order) Option[T] {
	return func(c *Controller[T]) { c.sort, c.order = field, order }
}

// WithDebounce overrides the debounce delay; tests use a short value.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *Controller[T]) { c.debounce = d }
}

// New builds a controller around fetch.
func New[T any](fetch Fetcher[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fetch:    fetch,
		id:       nextID.Add(1),
		limit:    DefaultLimit,
		order:    Asc,
		filters:  map[string]string{},
		debounce: DebounceDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page returns the zero-based page index.
func (c *Controller[T]) Page() int { return c.page }

// Limit returns the page size.
func (c *Controller[T]) Limit() int { return c.limit }

// Sort returns the active sort column ("" when unsorted) and direction.
func (c *Controller[T]) Sort() (string, Order) { return c.sort, c.order }

// Search returns the committed search term.
func (c *Controller[T]) Search() string { return c.search }

// Typed returns the raw term as typed, before debounce/guard.
func (c *Controller[T]) Typed() string { return c.typed }

// PageCount returns the number of pages for the current total and limit.
func (c *Controller[T]) PageCount() int {
	if c.Total == 0 || c.limit <= 0 {
		return 1
	}
	return (c.Total + c.limit - 1) / c.limit
}

// Load issues a fetch for the current parameters. Any response from an
// earlier Load still in flight will be discarded on arrival.
func (c *Controller[T]) Load() tea.Cmd {
	c.epoch++
	c.Loading = true
	epoch := c.epoch
	id := c.id
	p := api.Page{
		Page:    c.page,
		Limit:   c.limit,
		Search:  c.search,
		Sort:    c.sort,
		Order:   string(c.order),
		Filters: c.filters,
	}
	if c.sort == "" {
		p.Order = ""
	}
	fetch := c.fetch
	return func() tea.Msg {
		list, err := fetch(context.Background(), p)
		return ResultMsg[T]{id: id, epoch: epoch, list: list, err: err}
	}
}

// SetSearch records a keystroke's worth of search input and schedules the
// debounced commit. Nothing is fetched until the quiet period elapses.
func (c *Controller[T]) SetSearch(term string) tea.Cmd {
	c.typed = term
	c.seq++
	seq := c.seq
	id := c.id
	return tea.Tick(c.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id, seq: seq, term: term}
	})
}

// fetchable applies the length guard to a trimmed search term.
func fetchable(term string) bool {
	n := len(strings.TrimSpace(term))
	return n == 0 || n >= MinSearchLen
}

// SetLimit changes the page size and goes back to the first page.
func (c *Controller[T]) SetLimit(limit int) tea.Cmd {
	if limit <= 0 || limit == c.limit {
		return nil
	}
	c.limit = limit
	c.page = 0
	return c.Load()
}

// SetPage jumps to a page, clamped to the known page range.
func (c *Controller[T]) SetPage(page int) tea.Cmd {
	if page < 0 {
		page = 0
	}
	if max := c.PageCount() - 1; page > max {
		page = max
	}
	if page == c.page {
		return nil
	}
	c.page = page
	return c.Load()
}

// NextPage advances one page if there is one.
func (c *Controller[T]) NextPage() tea.Cmd { return c.SetPage(c.page + 1) }

// PrevPage goes back one page if there is one.
func (c *Controller[T]) PrevPage() tea.Cmd { return c.SetPage(c.page - 1) }

// ToggleSort sorts by field. Selecting the active column flips the
// direction; selecting a new column starts ascending.
func (c *Controller[T]) ToggleSort(field string) tea.Cmd {
	if field == "" {
		return nil
	}
	if c.sort == field {
		if c.order == Asc {
			c.order = Desc
		} else {
			c.order = Asc
		}
	} else {
		c.sort = field
		c.order = Asc
	}
	return c.Load()
}

// SetFilter sets an entity-specific filter (empty value removes it) and
// goes back to the first page.
func (c *Controller[T]) SetFilter(key, value string) tea.Cmd {
	if c.filters[key] == value {
		return nil
	}
	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}
	c.page = 0
	return c.Load()
}

// Filter returns the current value of an entity-specific filter.
func (c *Controller[T]) Filter(key string) string { return c.filters[key] }

// Update handles the controller's own messages. The returned bool reports
// whether the message belonged to this controller.
func (c *Controller[T]) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.id != c.id {
			return nil, false
		}
		// Older ticks are superseded keystrokes.
		if msg.seq != c.seq {
			return nil, true
		}
		if !fetchable(msg.term) {
			return nil, true
		}
		term := strings.TrimSpace(msg.term)
		if term == c.search {
			return nil, true
		}
		c.search = term
		c.page = 0
		return c.Load(), true
	case ResultMsg[T]:
		if msg.id != c.id {
			return nil, false
		}
		// A stale response from a superseded fetch; drop it.
		if msg.epoch != c.epoch {
			return nil, true
		}
		c.Loading = false
		if msg.err != nil {
			c.Err = msg.err
			return nil, true
		}
		c.Err = nil
		c.Data = msg.list.Items
		c.Total = msg.list.Total
		// The total can shrink underneath us (rows deleted elsewhere);
		// clamp and refetch if the current page fell off the end.
		if max := c.PageCount() - 1; c.page > max {
			c.page = max
			return c.Load(), true
		}
		return nil, true
	}
	return nil, false
}
