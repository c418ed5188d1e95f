// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
	"github.com/terradesk/terradesk/internal/model"
)

// accessFilters is the cycle for the catalog access filter.
var accessFilters = []string{"", "public", "private"}

type catalogViewState int

const (
	catalogListState catalogViewState = iota
	catalogGrantState
)

type accessToggledMsg struct {
	err error
}

// catalogModel is the 3D model catalog view: browse, flip public/private,
// and manage per-user/per-group grants.
type catalogModel struct {
	deps Deps

	state catalogViewState
	ctl   *listctl.Controller[model.CatalogModel]
	tbl   DataTable[model.CatalogModel]

	search      textinput.Model
	isSearching bool

	grant grantModel

	status statusMsg
}

func catalogColumns() []Column[model.CatalogModel] {
	return []Column[model.CatalogModel]{
		{Key: "name", Title: "catalog.header.name", Width: 26, Sortable: true,
			Format: func(cm model.CatalogModel) string { return cm.Name }},
		{Key: "type", Title: "catalog.header.type", Width: 12, Sortable: true,
			Format: func(cm model.CatalogModel) string { return cm.Type }},
		{Key: "access", Title: "catalog.header.access", Width: 9, Sortable: true,
			Format: func(cm model.CatalogModel) string {
				if cm.Access == model.AccessPrivate {
					return specialStyle.Render(i18n.T("catalog.access_private"))
				}
				return i18n.T("catalog.access_public")
			}},
		{Title: "catalog.header.users", Width: 18,
			Format: func(cm model.CatalogModel) string { return truncate(strings.Join(cm.Users, ","), 18) }},
		{Title: "catalog.header.groups", Width: 18,
			Format: func(cm model.CatalogModel) string { return truncate(strings.Join(cm.Groups, ","), 18) }},
	}
}

func newCatalogModel(deps Deps) (*catalogModel, tea.Cmd) {
	search := textinput.New()
	search.Placeholder = i18n.T("common.search")
	search.CharLimit = 64

	m := &catalogModel{
		deps:   deps,
		ctl:    listctl.New(deps.Client.ListCatalogModels, listctl.WithSort[model.CatalogModel]("name", listctl.Asc)),
		tbl:    NewDataTable(catalogColumns(), func(cm model.CatalogModel) int { return cm.ID }),
		search: search,
	}
	m.tbl.SetSortState(m.ctl.Sort())
	return m, tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
}

func (m *catalogModel) Update(msg tea.Msg) tea.Cmd {
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
	case accessToggledMsg:
		if msg.err != nil {
			return statusErr(msg.err)
		}
		return tea.Batch(statusOK(i18n.T("catalog.access_toggled")), m.ctl.Load(), m.tbl.SetLoading(true))
	case grantDoneMsg:
		if msg.canceled {
			m.state = catalogListState
			return nil
		}
		if msg.err != nil {
			var cmd tea.Cmd
			m.grant, cmd = m.grant.Update(msg)
			return cmd
		}
		m.state = catalogListState
		text := i18n.T("catalog.granted")
		if msg.revoke {
			text = i18n.T("catalog.revoked")
		}
		return tea.Batch(statusOK(text), m.ctl.Load(), m.tbl.SetLoading(true))
	}

	if m.state == catalogGrantState {
		var cmd tea.Cmd
		m.grant, cmd = m.grant.Update(msg)
		return cmd
	}
	return m.updateList(msg)
}

func (m *catalogModel) updateList(msg tea.Msg) tea.Cmd {
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
	case "f":
		next := nextInCycle(accessFilters, m.ctl.Filter("access"))
		if cmd := m.ctl.SetFilter("access", next); cmd != nil {
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "p":
		if row, ok := m.tbl.CurrentRow(); ok {
			return toggleAccessCmd(m.deps.Client, row)
		}
		return nil
	case "g":
		return m.openGrant(false)
	case "x":
		return m.openGrant(true)
	}
	return m.tbl.Update(msg)
}

func toggleAccessCmd(client *api.Client, row model.CatalogModel) tea.Cmd {
	next := model.AccessPrivate
	if row.Access == model.AccessPrivate {
		next = model.AccessPublic
	}
	return func() tea.Msg {
		return accessToggledMsg{err: client.SetModelAccess(context.Background(), row.ID, next)}
	}
}

func (m *catalogModel) openGrant(revoke bool) tea.Cmd {
	row, ok := m.tbl.CurrentRow()
	if !ok {
		return nil
	}
	key := "zones.grant_title"
	if revoke {
		key = "zones.revoke_title"
	}
	client := m.deps.Client
	id := row.ID
	m.grant = newGrantModel(fmt.Sprintf(i18n.T(key), row.Name), revoke,
		func(grant api.PermissionGrant, revoke bool) tea.Cmd {
			return func() tea.Msg {
				var err error
				if revoke {
					err = client.RevokeModel(context.Background(), id, grant)
				} else {
					err = client.GrantModel(context.Background(), id, grant)
				}
				return grantDoneMsg{revoke: revoke, err: err}
			}
		})
	m.state = catalogGrantState
	return m.grant.Focus()
}

func (m *catalogModel) View() string {
	if m.state == catalogGrantState {
		return m.grant.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🏙  "+i18n.T("catalog.title")) + "\n")
	if m.isSearching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if access := m.ctl.Filter("access"); access != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s: %s", i18n.T("catalog.filter_access"), access)) + "\n")
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
		" · [/] " + i18n.T("common.keys.page") + " · p/f/g/x · q " + i18n.T("common.keys.back")))
	return b.String()
}
