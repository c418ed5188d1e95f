// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
	"github.com/terradesk/terradesk/internal/model"
)

// pageSizes are the page-size steps every list view cycles through.
var pageSizes = []int{10, 25, 50, 100}

// roleFilters is the cycle for the users role filter.
var roleFilters = []string{"", "admin", "user"}

type usersViewState int

const (
	usersListState usersViewState = iota
	usersFormState
	usersConfirmDeleteState
)

// userDeletedMsg reports a finished delete batch.
type userDeletedMsg struct {
	count int
	err   error
}

// apiKeyRotatedMsg carries a freshly issued API key.
type apiKeyRotatedMsg struct {
	key string
	err error
}

// usersModel is the user management view.
type usersModel struct {
	deps Deps

	state usersViewState
	ctl   *listctl.Controller[model.User]
	tbl   DataTable[model.User]

	search      textinput.Model
	isSearching bool

	form userFormModel

	// Delete confirmation state.
	deleteIDs     []int
	deleteLabel   string
	confirmCursor int // 0 no, 1 yes

	status statusMsg
}

func userColumns() []Column[model.User] {
	return []Column[model.User]{
		{Key: "username", Title: "users.header.username", Width: 18, Sortable: true,
			Format: func(u model.User) string { return u.Username }},
		{Key: "email", Title: "users.header.email", Width: 26, Sortable: true,
			Format: func(u model.User) string { return u.Email }},
		{Key: "role", Title: "users.header.role", Width: 8, Sortable: true,
			Format: func(u model.User) string {
				if u.IsAdmin() {
					return specialStyle.Render(string(u.Role))
				}
				return string(u.Role)
			}},
		{Title: "users.header.active", Width: 7,
			Format: func(u model.User) string { return yesNo(u.IsActive) }},
		{Title: "users.header.groups", Width: 20,
			Format: func(u model.User) string { return truncate(strings.Join(u.Groups, ","), 20) }},
		{Key: "last_login", Title: "users.header.last_login", Width: 19, Sortable: true,
			Format: func(u model.User) string { return formatTimePtr(u.LastLogin) }},
	}
}

func newUsersModel(deps Deps) (*usersModel, tea.Cmd) {
	search := textinput.New()
	search.Placeholder = i18n.T("common.search")
	search.CharLimit = 64

	m := &usersModel{
		deps:   deps,
		ctl:    listctl.New(deps.Client.ListUsers, listctl.WithSort[model.User]("username", listctl.Asc)),
		tbl:    NewDataTable(userColumns(), func(u model.User) int { return u.ID }),
		search: search,
	}
	m.tbl.SetSortState(m.ctl.Sort())
	loadCmd := m.ctl.Load()
	return m, tea.Batch(loadCmd, m.tbl.SetLoading(true))
}

func (m *usersModel) Update(msg tea.Msg) tea.Cmd {
	// Controller messages first; they may arrive in any view state.
	if cmd, handled := m.ctl.Update(msg); handled {
		m.syncTable()
		return tea.Batch(cmd, m.tbl.SetLoading(m.ctl.Loading))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.tbl.SetSize(msg.Width-4, msg.Height-10)
		return nil
	case statusMsg:
		m.status = msg
		return nil
	case userDeletedMsg:
		m.state = usersListState
		if msg.err != nil {
			return statusErr(msg.err)
		}
		m.tbl.ClearSelection()
		return tea.Batch(statusOK(i18n.T("users.deleted")), m.ctl.Load(), m.tbl.SetLoading(true))
	case userSavedMsg:
		if msg.canceled {
			m.state = usersListState
			return nil
		}
		if msg.err != nil {
			// The form stays open and renders the failure inline.
			m.form.applyError(msg.err)
			return nil
		}
		m.state = usersListState
		text := i18n.T("users.updated")
		if msg.created {
			text = i18n.T("users.created")
		}
		return tea.Batch(statusOK(text), m.ctl.Load(), m.tbl.SetLoading(true))
	case apiKeyRotatedMsg:
		if msg.err != nil {
			return statusErr(msg.err)
		}
		if err := clipboard.WriteAll(msg.key); err != nil {
			return statusErr(err)
		}
		return statusOK(i18n.T("users.api_key_copied"))
	}

	switch m.state {
	case usersFormState:
		return m.form.Update(msg)
	case usersConfirmDeleteState:
		return m.updateConfirm(msg)
	}
	return m.updateList(msg)
}

func (m *usersModel) syncTable() {
	m.tbl.SetRows(m.ctl.Data)
	m.tbl.SetSortState(m.ctl.Sort())
}

func (m *usersModel) updateList(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.tbl.Update(msg)
	}

	if m.isSearching {
		switch keyMsg.String() {
		case "esc":
			m.isSearching = false
			m.search.SetValue("")
			m.search.Blur()
			return m.ctl.SetSearch("")
		case "enter":
			m.isSearching = false
			m.search.Blur()
			return nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return tea.Batch(cmd, m.ctl.SetSearch(m.search.Value()))
		}
	}

	switch keyMsg.String() {
	case "q", "esc":
		return func() tea.Msg { return backToMenuMsg{} }
	case "/":
		m.isSearching = true
		m.status = statusMsg{}
		return m.search.Focus()
	case "r":
		return tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
	case "s":
		if target := m.tbl.SortTarget(); target != "" {
			cmd := m.ctl.ToggleSort(target)
			m.tbl.SetSortState(m.ctl.Sort())
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "tab":
		m.tbl.NextSortTarget()
		return nil
	case " ":
		m.tbl.ToggleCurrent()
		return nil
	case "a":
		m.tbl.ToggleAll()
		return nil
	case "]", "right":
		return m.withLoading(m.ctl.NextPage())
	case "[", "left":
		return m.withLoading(m.ctl.PrevPage())
	case "+":
		return m.withLoading(m.ctl.SetLimit(nextPageSize(m.ctl.Limit())))
	case "f":
		next := nextInCycle(roleFilters, m.ctl.Filter("role"))
		return m.withLoading(m.ctl.SetFilter("role", next))
	case "n":
		m.form = newUserFormModel(m.deps, nil)
		m.state = usersFormState
		return m.form.Focus()
	case "e":
		if row, ok := m.tbl.CurrentRow(); ok {
			m.form = newUserFormModel(m.deps, &row)
			m.state = usersFormState
			return m.form.Focus()
		}
		return nil
	case "y":
		if row, ok := m.tbl.CurrentRow(); ok {
			return rotateAPIKeyCmd(m.deps.Client, row.ID)
		}
		return nil
	case "d":
		ids := m.tbl.SelectedIDs()
		label := fmt.Sprintf("%d", len(ids))
		if len(ids) == 0 {
			row, ok := m.tbl.CurrentRow()
			if !ok {
				return nil
			}
			ids = []int{row.ID}
			label = row.Username
		}
		m.deleteIDs = ids
		m.deleteLabel = label
		m.confirmCursor = 0
		m.state = usersConfirmDeleteState
		return nil
	}
	return m.tbl.Update(msg)
}

// withLoading pairs a controller command with the loading overlay. A nil
// controller command (no state change) leaves the table alone.
func (m *usersModel) withLoading(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.tbl.SetLoading(true))
}

func (m *usersModel) updateConfirm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "esc", "n":
		m.state = usersListState
		return nil
	case "left", "right", "tab":
		m.confirmCursor = (m.confirmCursor + 1) % 2
		return nil
	case "y":
		m.state = usersListState
		return deleteUsersCmd(m.deps.Client, m.deleteIDs)
	case "enter":
		if m.confirmCursor == 1 {
			m.state = usersListState
			return deleteUsersCmd(m.deps.Client, m.deleteIDs)
		}
		m.state = usersListState
		return nil
	}
	return nil
}

func deleteUsersCmd(client *api.Client, ids []int) tea.Cmd {
	return func() tea.Msg {
		for _, id := range ids {
			if err := client.DeleteUser(context.Background(), id); err != nil {
				return userDeletedMsg{err: err}
			}
		}
		return userDeletedMsg{count: len(ids)}
	}
}

func rotateAPIKeyCmd(client *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		key, err := client.RotateAPIKey(context.Background(), id)
		return apiKeyRotatedMsg{key: key, err: err}
	}
}

// nextPageSize cycles through the standard page sizes.
func nextPageSize(current int) int {
	for i, s := range pageSizes {
		if s == current {
			return pageSizes[(i+1)%len(pageSizes)]
		}
	}
	return pageSizes[0]
}

// nextInCycle advances through a filter cycle.
func nextInCycle(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (m *usersModel) View() string {
	switch m.state {
	case usersFormState:
		return m.form.View()
	case usersConfirmDeleteState:
		return m.confirmView()
	}
	return m.listView()
}

func (m *usersModel) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("👤 "+i18n.T("users.title")) + "\n")

	if m.isSearching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if role := m.ctl.Filter("role"); role != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s: %s", i18n.T("users.filter_role"), role)) + "\n")
	}

	if m.ctl.Err != nil {
		b.WriteString(errorStyle.Render(errorText(m.ctl.Err)) + "\n")
	} else {
		b.WriteString(m.tbl.View() + "\n")
		b.WriteString(FooterView(m.ctl.Page(), m.ctl.PageCount(), m.ctl.Total, m.ctl.Limit(), m.tbl.SelectedCount()) + "\n")
	}

	if m.status.text != "" {
		style := successStyle
		if m.status.isErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status.text) + "\n")
	}

	b.WriteString(helpStyle.Render("/ " + i18n.T("common.keys.search") + " · s " + i18n.T("common.keys.sort") +
		" · space/a " + i18n.T("common.keys.select") + " · [/] " + i18n.T("common.keys.page") +
		" · n/e/d/y/f · q " + i18n.T("common.keys.back")))
	return b.String()
}

func (m *usersModel) confirmView() string {
	question := fmt.Sprintf(i18n.T("users.confirm_delete"), m.deleteLabel)
	noBtn := activeButtonStyle.Render(i18n.T("common.no"))
	yesBtn := buttonStyle.Render(i18n.T("common.yes"))
	if m.confirmCursor == 1 {
		noBtn = buttonStyle.Render(i18n.T("common.no"))
		yesBtn = activeButtonStyle.Render(i18n.T("common.yes"))
	}
	return dialogBoxStyle.Render(specialStyle.Render(question) + "\n\n" + noBtn + "  " + yesBtn)
}
