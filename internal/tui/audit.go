// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
	"github.com/terradesk/terradesk/internal/model"
)

// auditModel is the read-only audit trail view.
type auditModel struct {
	deps Deps

	ctl *listctl.Controller[model.AuditEntry]
	tbl DataTable[model.AuditEntry]

	search      textinput.Model
	isSearching bool
}

// auditActionStyled color-codes actions by their verb prefix so destructive
// entries stand out when scanning the trail.
func auditActionStyled(action string) string {
	switch {
	case strings.HasPrefix(action, "delete") || strings.HasPrefix(action, "revoke"):
		return errorStyle.Render(action)
	case strings.HasPrefix(action, "create") || strings.HasPrefix(action, "grant"):
		return successStyle.Render(action)
	case strings.HasPrefix(action, "login") || strings.HasPrefix(action, "logout"):
		return specialStyle.Render(action)
	default:
		return action
	}
}

func auditColumns() []Column[model.AuditEntry] {
	return []Column[model.AuditEntry]{
		{Key: "timestamp", Title: "audit.header.timestamp", Width: 19, Sortable: true,
			Format: func(e model.AuditEntry) string { return formatTime(e.Timestamp) }},
		{Key: "actor", Title: "audit.header.actor", Width: 16, Sortable: true,
			Format: func(e model.AuditEntry) string { return e.Actor }},
		{Key: "action", Title: "audit.header.action", Width: 20, Sortable: true,
			Format: func(e model.AuditEntry) string { return auditActionStyled(e.Action) }},
		{Title: "audit.header.target", Width: 24,
			Format: func(e model.AuditEntry) string {
				if e.Target == nil {
					return ""
				}
				return truncate(e.Target.String(), 24)
			}},
		{Title: "audit.header.ip", Width: 15,
			Format: func(e model.AuditEntry) string { return e.IP }},
	}
}

func newAuditModel(deps Deps) (*auditModel, tea.Cmd) {
	search := textinput.New()
	search.Placeholder = i18n.T("common.search")
	search.CharLimit = 64

	m := &auditModel{
		deps: deps,
		ctl: listctl.New(deps.Client.ListAudit,
			listctl.WithSort[model.AuditEntry]("timestamp", listctl.Desc),
			listctl.WithLimit[model.AuditEntry](50)),
		tbl: NewDataTable(auditColumns(), func(e model.AuditEntry) int { return int(e.Timestamp.UnixNano()) }),
		search: search,
	}
	m.tbl.SetSortState(m.ctl.Sort())
	return m, tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
}

func (m *auditModel) Update(msg tea.Msg) tea.Cmd {
	if cmd, handled := m.ctl.Update(msg); handled {
		m.tbl.SetRows(m.ctl.Data)
		m.tbl.SetSortState(m.ctl.Sort())
		return tea.Batch(cmd, m.tbl.SetLoading(m.ctl.Loading))
	}

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.tbl.SetSize(msg.Width-4, msg.Height-10)
		return nil
	}

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
	}
	return m.tbl.Update(msg)
}

func (m *auditModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🧾 "+i18n.T("audit.title")) + "\n")
	if m.isSearching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if m.ctl.Err != nil {
		b.WriteString(errorStyle.Render(errorText(m.ctl.Err)) + "\n")
	} else {
		b.WriteString(m.tbl.View() + "\n")
		b.WriteString(FooterView(m.ctl.Page(), m.ctl.PageCount(), m.ctl.Total, m.ctl.Limit(), 0) + "\n")
	}
	b.WriteString(helpStyle.Render("/ " + i18n.T("common.keys.search") + " · s " + i18n.T("common.keys.sort") +
		" · [/] " + i18n.T("common.keys.page") + " · r " + i18n.T("common.refresh") + " · q " + i18n.T("common.keys.back")))
	return b.String()
}
