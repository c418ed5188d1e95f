// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/listctl"
	"github.com/terradesk/terradesk/internal/model"
)

// levelFilters is the cycle for the log level filter.
var levelFilters = []string{"", "error", "warning", "info", "debug"}

type logsViewState int

const (
	logsListState logsViewState = iota
	logsDetailState
)

// logsModel is the read-only system log view. Entries have no identity, so
// the table runs without row selection; enter opens a scrollable detail.
type logsModel struct {
	deps Deps

	state logsViewState
	ctl   *listctl.Controller[model.LogEntry]
	tbl   DataTable[model.LogEntry]

	detail viewport.Model

	width, height int
}

func levelStyled(level string) string {
	switch strings.ToLower(level) {
	case "error", "fatal":
		return errorStyle.Render(level)
	case "warning", "warn":
		return specialStyle.Render(level)
	default:
		return level
	}
}

func logColumns() []Column[model.LogEntry] {
	return []Column[model.LogEntry]{
		{Key: "timestamp", Title: "logs.header.time", Width: 19, Sortable: true,
			Format: func(e model.LogEntry) string { return formatTime(e.Timestamp) }},
		{Key: "level", Title: "logs.header.level", Width: 8, Sortable: true,
			Format: func(e model.LogEntry) string { return levelStyled(e.Level) }},
		{Key: "category", Title: "logs.header.category", Width: 14, Sortable: true,
			Format: func(e model.LogEntry) string { return e.Category }},
		{Title: "logs.header.message", Width: 48,
			Format: func(e model.LogEntry) string { return truncate(e.Message, 48) }},
	}
}

func newLogsModel(deps Deps) (*logsModel, tea.Cmd) {
	m := &logsModel{
		deps: deps,
		ctl: listctl.New(deps.Client.ListLogs,
			listctl.WithSort[model.LogEntry]("timestamp", listctl.Desc),
			listctl.WithLimit[model.LogEntry](50)),
		tbl: NewDataTable(logColumns(), func(e model.LogEntry) int { return int(e.Timestamp.UnixNano()) }),
	}
	m.tbl.SetSortState(m.ctl.Sort())
	return m, tea.Batch(m.ctl.Load(), m.tbl.SetLoading(true))
}

func (m *logsModel) Update(msg tea.Msg) tea.Cmd {
	if cmd, handled := m.ctl.Update(msg); handled {
		m.tbl.SetRows(m.ctl.Data)
		m.tbl.SetSortState(m.ctl.Sort())
		return tea.Batch(cmd, m.tbl.SetLoading(m.ctl.Loading))
	}

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = msg.Width, msg.Height
		m.tbl.SetSize(msg.Width-4, msg.Height-10)
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 6
		return nil
	}

	if m.state == logsDetailState {
		return m.updateDetail(msg)
	}
	return m.updateList(msg)
}

func (m *logsModel) updateList(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.tbl.Update(msg)
	}

	switch keyMsg.String() {
	case "q", "esc":
		return func() tea.Msg { return backToMenuMsg{} }
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
		next := nextInCycle(levelFilters, m.ctl.Filter("level"))
		if cmd := m.ctl.SetFilter("level", next); cmd != nil {
			return tea.Batch(cmd, m.tbl.SetLoading(true))
		}
		return nil
	case "enter":
		if row, ok := m.tbl.CurrentRow(); ok {
			m.openDetail(row)
		}
		return nil
	}
	return m.tbl.Update(msg)
}

func (m *logsModel) openDetail(e model.LogEntry) {
	var b strings.Builder
	b.WriteString(formatTime(e.Timestamp) + "  " + levelStyled(e.Level) + "  " + e.Category + "\n\n")
	b.WriteString(e.Message + "\n")
	if len(e.Detail) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, e.Detail, "", "  "); err == nil {
			b.WriteString("\n" + pretty.String() + "\n")
		} else {
			b.WriteString("\n" + string(e.Detail) + "\n")
		}
	}

	width, height := m.width-4, m.height-6
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	m.detail = viewport.New(width, height)
	m.detail.SetContent(b.String())
	m.state = logsDetailState
}

func (m *logsModel) updateDetail(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc", "enter":
			m.state = logsListState
			return nil
		}
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return cmd
}

func (m *logsModel) View() string {
	if m.state == logsDetailState {
		return titleStyle.Render(i18n.T("logs.detail_title")) + "\n" +
			m.detail.View() + "\n" +
			helpStyle.Render("↑/↓ · esc "+i18n.T("common.keys.back"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 "+i18n.T("logs.title")) + "\n")
	if level := m.ctl.Filter("level"); level != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s: %s", i18n.T("logs.filter_level"), level)) + "\n")
	}
	if m.ctl.Err != nil {
		b.WriteString(errorStyle.Render(errorText(m.ctl.Err)) + "\n")
	} else {
		b.WriteString(m.tbl.View() + "\n")
		b.WriteString(FooterView(m.ctl.Page(), m.ctl.PageCount(), m.ctl.Total, m.ctl.Limit(), 0) + "\n")
	}
	b.WriteString(helpStyle.Render("enter · s " + i18n.T("common.keys.sort") + " · f · [/] " +
		i18n.T("common.keys.page") + " · r " + i18n.T("common.refresh") + " · q " + i18n.T("common.keys.back")))
	return b.String()
}
