// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
)

// grantDoneMsg reports the outcome of a grant or revoke call.
type grantDoneMsg struct {
	revoke   bool
	canceled bool
	err      error
}

// grantModel is a small dialog shared by the zone and catalog views: pick
// user or group, type a name, submit. The submit callback owns the actual
// API call so the dialog stays resource-agnostic.
type grantModel struct {
	title   string
	revoke  bool
	name    textinput.Model
	isGroup bool
	working bool
	errLine string
	submit  func(grant api.PermissionGrant, revoke bool) tea.Cmd
}

func newGrantModel(title string, revoke bool, submit func(api.PermissionGrant, bool) tea.Cmd) grantModel {
	name := textinput.New()
	name.CharLimit = 64
	name.Placeholder = i18n.T("zones.grant_user")
	return grantModel{title: title, revoke: revoke, name: name, submit: submit}
}

func (m grantModel) Focus() tea.Cmd { return m.name.Focus() }

func (m grantModel) Update(msg tea.Msg) (grantModel, tea.Cmd) {
	switch msg := msg.(type) {
	case grantDoneMsg:
		if msg.err != nil {
			m.working = false
			m.errLine = errorText(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		if m.working {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return grantDoneMsg{canceled: true} }
		case "tab":
			m.isGroup = !m.isGroup
			if m.isGroup {
				m.name.Placeholder = i18n.T("zones.grant_group")
			} else {
				m.name.Placeholder = i18n.T("zones.grant_user")
			}
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.name.Value())
			if name == "" {
				return m, nil
			}
			grant := api.PermissionGrant{User: name}
			if m.isGroup {
				grant = api.PermissionGrant{Group: name}
			}
			m.working = true
			m.errLine = ""
			return m, m.submit(grant, m.revoke)
		}
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m grantModel) View() string {
	kind := i18n.T("zones.grant_user")
	if m.isGroup {
		kind = i18n.T("zones.grant_group")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	b.WriteString(selectedItemStyle.Render(kind) + "\n")
	b.WriteString(m.name.View() + "\n")
	if m.errLine != "" {
		b.WriteString("\n" + errorStyle.Render(m.errLine) + "\n")
	}
	if m.working {
		b.WriteString(helpStyle.Render(i18n.T("table.loading")) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab · enter · esc "+i18n.T("common.cancel")))
	return dialogBoxStyle.Render(b.String())
}
