// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
	"github.com/terradesk/terradesk/internal/model"
)

type groupsViewState int

const (
	groupsListState groupsViewState = iota
	groupsFormState
	groupsConfirmDeleteState
)

type groupSavedMsg struct {
	created  bool
	canceled bool
	err      error
}

type groupDeletedMsg struct {
	err error
}

// groupsModel is the group management view.
type groupsModel struct {
	deps Deps

	state groupsViewState
	ctl   *listctl.Controller[model.Group]
	tbl   DataTable[model.Group]

	search      textinput.Model
	isSearching bool

	// Form state.
	editing  *model.Group
	name     textinput.Model
	desc     textinput.Model
	formErr  string
	focus    int // 0 name, 1 description
	working  bool
	toDelete model.Group

	status statusMsg
}

func groupColumns() []Column[model.Group] {
	return []Column[model.Group]{
		{Key: "name", Title: "groups.header.name", Width: 20, Sortable: true,
			Format: func(g model.Group) string { return g.Name }},
		{Title: "groups.header.description", Width: 32,
			Format: func(g model.Group) string { return truncate(g.Description, 32) }},
		{Key: "members", Title: "groups.header.members", Width: 9, Sortable: true,
			Format: func(g model.Group) string { return strconv.Itoa(len(g.Members)) }},
		{Title: "groups.header.models", Width: 8,
			Format: func(g model.Group) string { return strconv.Itoa(g.ModelCount) }},
		{Title: "groups.header.zones", Width: 7,
			Format: func(g model.Group) string { return strconv.Itoa(g.ZoneCount) }},
	}
}

func newGroupsModel(deps Deps) (*groupsModel, tea.Cmd) {
	search := textinput.New()
	search.Placeholder = i18n.T("common.search")
	search.CharLimit = 64

	m := &groupsModel{
		deps:   deps,
		ctl:    listctl.New(deps.Client.ListGroups, listctl.WithSort[model.Group]("name", listctl.Asc)),
		tbl:    NewDataTable(groupColumns(), func(g model.Group) int { return g.ID }),
		search: search,
	}
	m.tbl.SetSortState(m.ctl.Sort())
	return m, tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
}

func (m *groupsModel) Update(msg tea.Msg) tea.Cmd {
	if cmd, handled := m.ctl.Update(msg); handled {
		m.tbl.SetRows(m.ctl.Data)
		m.tbl.SetSortState(m.ctl.Sort())
		return tea.Batch(cmd, m.tbl.SetLoading(m.ctl.Loading))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.tbl.SetSize(msg.Width-4, msg.Height-10)
		return nil
	case statusMsg:
		m.status = msg
		return nil
	case groupSavedMsg:
		if msg.canceled {
			m.state = groupsListState
			return nil
		}
		if msg.err != nil {
			m.working = false
			m.formErr = errorText(msg.err)
			return nil
		}
		m.state = groupsListState
		m.working = false
		text := i18n.T("groups.updated")
		if msg.created {
			text = i18n.T("groups.created")
		}
		return tea.Batch(statusOK(text), m.ctl.Load(), m.tbl.SetLoading(true))
	case groupDeletedMsg:
		m.state = groupsListState
		if msg.err != nil {
			return statusErr(msg.err)
		}
		return tea.Batch(statusOK(i18n.T("groups.deleted")), m.ctl.Load(), m.tbl.SetLoading(true))
	}

	switch m.state {
	case groupsFormState:
		return m.updateForm(msg)
	case groupsConfirmDeleteState:
		return m.updateConfirm(msg)
	}
	return m.updateList(msg)
}

func (m *groupsModel) updateList(msg tea.Msg) tea.Cmd {
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
	case "]", "right":
		if cmd := m.ctl.NextPage(); cmd != nil {
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "[", "left":
		if cmd := m.ctl.PrevPage(); cmd != nil {
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "+":
		if cmd := m.ctl.SetLimit(nextPageSize(m.ctl.Limit())); cmd != nil {
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "n":
		m.openForm(nil)
		return m.name.Focus()
	case "e":
		if row, ok := m.tbl.CurrentRow(); ok {
			m.openForm(&row)
			return m.name.Focus()
		}
		return nil
	case "d":
		if row, ok := m.tbl.CurrentRow(); ok {
			m.toDelete = row
			m.state = groupsConfirmDeleteState
		}
		return nil
	}
	return m.tbl.Update(msg)
}

func (m *groupsModel) openForm(editing *model.Group) {
	m.name = textinput.New()
	m.name.Placeholder = i18n.T("groups.form.name")
	m.name.CharLimit = 64
	m.desc = textinput.New()
	m.desc.Placeholder = i18n.T("groups.form.description")
	m.desc.CharLimit = 256
	m.editing = editing
	if editing != nil {
		m.name.SetValue(editing.Name)
		m.desc.SetValue(editing.Description)
	}
	m.focus = 0
	m.formErr = ""
	m.working = false
	m.state = groupsFormState
}

func (m *groupsModel) updateForm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFormInputs(msg)
	}
	if m.working {
		return nil
	}
	switch keyMsg.String() {
	case "esc":
		m.state = groupsListState
		return nil
	case "tab", "down", "shift+tab", "up":
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.desc.Blur()
			return m.name.Focus()
		}
		m.name.Blur()
		return m.desc.Focus()
	case "enter":
		return m.submitForm()
	}
	return m.updateFormInputs(msg)
}

func (m *groupsModel) updateFormInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return cmd
}

func (m *groupsModel) submitForm() tea.Cmd {
	name := strings.TrimSpace(m.name.Value())
	if name == "" {
		m.formErr = i18n.T("groups.form.name")
		return nil
	}
	req := api.GroupRequest{Name: name, Description: strings.TrimSpace(m.desc.Value())}
	m.working = true
	m.formErr = ""
	client := m.deps.Client
	if m.editing == nil {
		return func() tea.Msg {
			_, err := client.CreateGroup(context.Background(), req)
			return groupSavedMsg{created: true, err: err}
		}
	}
	id := m.editing.ID
	return func() tea.Msg {
		_, err := client.UpdateGroup(context.Background(), id, req)
		return groupSavedMsg{err: err}
	}
}

func (m *groupsModel) updateConfirm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "esc", "n":
		m.state = groupsListState
		return nil
	case "y", "enter":
		m.state = groupsListState
		id := m.toDelete.ID
		client := m.deps.Client
		return func() tea.Msg {
			return groupDeletedMsg{err: client.DeleteGroup(context.Background(), id)}
		}
	}
	return nil
}

func (m *groupsModel) View() string {
	switch m.state {
	case groupsFormState:
		return m.formView()
	case groupsConfirmDeleteState:
		question := fmt.Sprintf(i18n.T("groups.confirm_delete"), m.toDelete.Name)
		return dialogBoxStyle.Render(specialStyle.Render(question) + "\n\n" +
			helpStyle.Render("y / n"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("👥 "+i18n.T("groups.title")) + "\n")
	if m.isSearching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if m.ctl.Err != nil {
		b.WriteString(errorStyle.Render(errorText(m.ctl.Err)) + "\n")
	} else {
		b.WriteString(m.tbl.View() + "\n")
		b.WriteString(FooterView(m.ctl.Page(), m.ctl.PageCount(), m.ctl.Total, m.ctl.Limit(), 0) + "\n")
	}
	if m.status.text != "" {
		style := successStyle
		if m.status.isErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status.text) + "\n")
	}
	b.WriteString(helpStyle.Render("/ " + i18n.T("common.keys.search") + " · s " + i18n.T("common.keys.sort") +
		" · [/] " + i18n.T("common.keys.page") + " · n/e/d · q " + i18n.T("common.keys.back")))
	return b.String()
}

func (m *groupsModel) formView() string {
	title := i18n.T("groups.form.new_title")
	if m.editing != nil {
		title = i18n.T("groups.form.edit_title")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(i18n.T("groups.form.name") + "\n" + m.name.View() + "\n\n")
	b.WriteString(i18n.T("groups.form.description") + "\n" + m.desc.View() + "\n")
	if m.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.formErr) + "\n")
	}
	if m.working {
		b.WriteString(helpStyle.Render(i18n.T("table.loading")) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter "+i18n.T("common.save")+" · esc "+i18n.T("common.cancel")))
	return dialogBoxStyle.Render(b.String())
}
