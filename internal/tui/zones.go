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

type zonesViewState int

const (
	zonesListState zonesViewState = iota
	zonesConfirmDeleteState
	zonesGrantState
)

type zoneDeletedMsg struct {
	err error
}

// zonesModel is the zone management view. Zones are created by uploading
// geometry through the platform web tools; the console only lists, deletes
// and manages their permission grants.
type zonesModel struct {
	deps Deps

	state zonesViewState
	ctl   *listctl.Controller[model.Zone]
	tbl   DataTable[model.Zone]

	search      textinput.Model
	isSearching bool

	grant    grantModel
	toDelete model.Zone

	status statusMsg
}

func zoneColumns() []Column[model.Zone] {
	return []Column[model.Zone]{
		{Key: "name", Title: "zones.header.name", Width: 24, Sortable: true,
			Format: func(z model.Zone) string { return z.Name }},
		{Key: "area_km2", Title: "zones.header.area", Width: 12, Sortable: true,
			Format: func(z model.Zone) string { return fmt.Sprintf("%.2f km²", z.AreaKm2) }},
		{Title: "zones.header.users", Width: 22,
			Format: func(z model.Zone) string { return truncate(strings.Join(z.Users, ","), 22) }},
		{Title: "zones.header.groups", Width: 22,
			Format: func(z model.Zone) string { return truncate(strings.Join(z.Groups, ","), 22) }},
	}
}

func newZonesModel(deps Deps) (*zonesModel, tea.Cmd) {
	search := textinput.New()
	search.Placeholder = i18n.T("common.search")
	search.CharLimit = 64

	m := &zonesModel{
		deps:   deps,
		ctl:    listctl.New(deps.Client.ListZones, listctl.WithSort[model.Zone]("name", listctl.Asc)),
		tbl:    NewDataTable(zoneColumns(), func(z model.Zone) int { return z.ID }),
		search: search,
	}
	m.tbl.SetSortState(m.ctl.Sort())
	return m, tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
}

func (m *zonesModel) Update(msg tea.Msg) tea.Cmd {
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
	case zoneDeletedMsg:
		m.state = zonesListState
		if msg.err != nil {
			return statusErr(msg.err)
		}
		return tea.Batch(statusOK(i18n.T("zones.deleted")), m.ctl.Load(), m.tbl.SetLoading(true))
	case grantDoneMsg:
		if msg.canceled {
			m.state = zonesListState
			return nil
		}
		if msg.err != nil {
			var cmd tea.Cmd
			m.grant, cmd = m.grant.Update(msg)
			return cmd
		}
		m.state = zonesListState
		text := i18n.T("zones.granted")
		if msg.revoke {
			text = i18n.T("zones.revoked")
		}
		return tea.Batch(statusOK(text), m.ctl.Load(), m.tbl.SetLoading(true))
	}

	switch m.state {
	case zonesGrantState:
		var cmd tea.Cmd
		m.grant, cmd = m.grant.Update(msg)
		return cmd
	case zonesConfirmDeleteState:
		return m.updateConfirm(msg)
	}
	return m.updateList(msg)
}

func (m *zonesModel) updateList(msg tea.Msg) tea.Cmd {
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
	case "g":
		return m.openGrant(false)
	case "x":
		return m.openGrant(true)
	case "d":
		if row, ok := m.tbl.CurrentRow(); ok {
			m.toDelete = row
			m.state = zonesConfirmDeleteState
		}
		return nil
	}
	return m.tbl.Update(msg)
}

func (m *zonesModel) openGrant(revoke bool) tea.Cmd {
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
					err = client.RevokeZone(context.Background(), id, grant)
				} else {
					err = client.GrantZone(context.Background(), id, grant)
				}
				return grantDoneMsg{revoke: revoke, err: err}
			}
		})
	m.state = zonesGrantState
	return m.grant.Focus()
}

func (m *zonesModel) updateConfirm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "esc", "n":
		m.state = zonesListState
		return nil
	case "y", "enter":
		m.state = zonesListState
		id := m.toDelete.ID
		client := m.deps.Client
		return func() tea.Msg {
			return zoneDeletedMsg{err: client.DeleteZone(context.Background(), id)}
		}
	}
	return nil
}

func (m *zonesModel) View() string {
	switch m.state {
	case zonesGrantState:
		return m.grant.View()
	case zonesConfirmDeleteState:
		question := fmt.Sprintf(i18n.T("zones.confirm_delete"), m.toDelete.Name)
		return dialogBoxStyle.Render(specialStyle.Render(question) + "\n\n" +
			helpStyle.Render("y / n"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🗺  "+i18n.T("zones.title")) + "\n")
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
		" · [/] " + i18n.T("common.keys.page") + " · g/x/d · q " + i18n.T("common.keys.back")))
	return b.String()
}
