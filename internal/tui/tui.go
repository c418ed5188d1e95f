// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// This file is the main entry point for the TUI, containing the top-level
// model that acts as a router to all other sub-views.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/logging"
	"github.com/terradesk/terradesk/internal/model"
	"github.com/terradesk/terradesk/internal/session"
	"github.com/terradesk/terradesk/internal/statestore"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	loginView viewState = iota
	// menuView is the dashboard and navigation menu.
	menuView
	usersView
	groupsView
	zonesView
	catalogView
	logsView
	auditView
	languageView
)

// adminOnly lists the views gated on the admin role.
var adminOnly = map[viewState]bool{
	usersView: true,
	logsView:  true,
	auditView: true,
}

// idleCheckInterval is how often the router polls the inactivity clock.
const idleCheckInterval = 30 * time.Second

// idleTickMsg drives the inactivity check.
type idleTickMsg struct{}

// sessionResumedMsg reports the startup validation of a persisted token.
type sessionResumedMsg struct {
	user model.User
	err  error
}

// dashboardDataMsg carries the health summary for the menu view.
type dashboardDataMsg struct {
	health model.Health
	audit  []model.AuditEntry
	err    error
}

// languageChangedMsg signals that the UI should be rebuilt with new labels.
type languageChangedMsg struct{}

// Deps are the explicit dependencies every view works against. There is no
// ambient context: the router owns these and hands them down.
type Deps struct {
	Client *api.Client
	Guard  *session.Guard
	Store  statestore.Store
}

// mainModel is the top-level model. It acts as a state machine and router,
// delegating updates and view rendering to the currently active sub-model.
type mainModel struct {
	deps  Deps
	state viewState
	// pending remembers the view the user asked for before being bounced to
	// login, for the post-login redirect.
	pending viewState

	login    loginModel
	menu     menuModel
	users    *usersModel
	groups   *groupsModel
	zones    *zonesModel
	catalog  *catalogModel
	logs     *logsModel
	audit    *auditModel
	language languageModel

	dashboard     dashboardDataMsg
	width, height int
	status        string
	idleInterval  time.Duration
}

// menuModel holds the state for the main menu.
type menuModel struct {
	choices []menuChoice
	cursor  int
}

type menuChoice struct {
	labelID string
	target  viewState
	action  string // non-view actions: "theme", "logout", "quit"
}

// languageModel holds the state for the language selection menu.
type languageModel struct {
	codes  []string
	labels map[string]string
	cursor int
}

func buildMenu() menuModel {
	return menuModel{
		choices: []menuChoice{
			{labelID: "menu.users", target: usersView},
			{labelID: "menu.groups", target: groupsView},
			{labelID: "menu.zones", target: zonesView},
			{labelID: "menu.catalog", target: catalogView},
			{labelID: "menu.logs", target: logsView},
			{labelID: "menu.audit", target: auditView},
			{labelID: "menu.language", target: languageView},
			{labelID: "menu.theme", action: "theme"},
			{labelID: "menu.logout", action: "logout"},
			{labelID: "menu.quit", action: "quit"},
		},
	}
}

func buildLanguageModel() languageModel {
	labels := i18n.GetAvailableLocales()
	codes := make([]string, 0, len(labels))
	for code := range labels {
		codes = append(codes, code)
	}
	// Stable order regardless of map iteration.
	sort.Strings(codes)
	return languageModel{codes: codes, labels: labels}
}

// initialModel creates the starting state: the login view, unless a
// persisted token is waiting for validation.
func initialModel(deps Deps) mainModel {
	return mainModel{
		deps:         deps,
		state:        loginView,
		pending:      menuView,
		login:        newLoginModel(deps),
		menu:         buildMenu(),
		language:     buildLanguageModel(),
		idleInterval: idleCheckInterval,
	}
}

// Run starts the TUI and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(initialModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m mainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.idleTick()}
	if m.deps.Guard.HasStoredToken() {
		cmds = append(cmds, resumeSessionCmd(m.deps.Client))
	}
	return tea.Batch(cmds...)
}

func (m mainModel) idleTick() tea.Cmd {
	return tea.Tick(m.idleInterval, func(time.Time) tea.Msg { return idleTickMsg{} })
}

// resumeSessionCmd validates a restored token against the server.
func resumeSessionCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Validate(context.Background())
		return sessionResumedMsg{user: user, err: err}
	}
}

// refreshDashboardCmd loads the health summary and recent audit entries.
func refreshDashboardCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		health, err := client.Health(context.Background())
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		recent, err := client.ListAudit(context.Background(), api.Page{Page: 0, Limit: 5, Sort: "timestamp", Order: "desc"})
		if err != nil {
			return dashboardDataMsg{health: health, err: err}
		}
		return dashboardDataMsg{health: health, audit: recent.Items}
	}
}

// Update is the main message loop. It handles global concerns (quit,
// inactivity, session teardown) and delegates the rest to the active view.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Any keystroke counts as activity for the inactivity timer.
		m.deps.Guard.Touch()
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.deps.Guard.Touch()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case idleTickMsg:
		if m.deps.Guard.IdleExpired(time.Now()) {
			logging.Infof("session: inactivity timeout, logging out")
			m.deps.Guard.Logout(session.ReasonInactivity)
		}
		return m.afterUpdate(nil, m.idleTick())
	case sessionResumedMsg:
		if msg.err != nil {
			// The 401 hook has already cleared the stored token.
			logging.Debugf("session: resume failed: %v", msg.err)
			m.login = newLoginModel(m.deps)
			return m, nil
		}
		m.deps.Guard.Resume(msg.user)
		m.state = menuView
		return m, refreshDashboardCmd(m.deps.Client)
	case loginSuccessMsg:
		m.deps.Guard.Login(msg.token, msg.user)
		next := m.pending
		if adminOnly[next] && !m.deps.Guard.IsAdmin() {
			next = menuView
		}
		m.pending = menuView
		if next == menuView {
			m.state = menuView
			return m, refreshDashboardCmd(m.deps.Client)
		}
		return m.openView(next)
	case dashboardDataMsg:
		m.dashboard = msg
		return m, nil
	case languageChangedMsg:
		// Rebuild label-bearing models so the new language takes effect.
		m.menu = buildMenu()
		m.language = buildLanguageModel()
		m.state = menuView
		return m, refreshDashboardCmd(m.deps.Client)
	case backToMenuMsg:
		m.state = menuView
		m.status = ""
		return m, refreshDashboardCmd(m.deps.Client)
	}

	var cmd tea.Cmd
	switch m.state {
	case loginView:
		m.login, cmd = m.login.Update(msg)
	case menuView:
		return m.updateMenu(msg)
	case usersView:
		cmd = m.users.Update(msg)
	case groupsView:
		cmd = m.groups.Update(msg)
	case zonesView:
		cmd = m.zones.Update(msg)
	case catalogView:
		cmd = m.catalog.Update(msg)
	case logsView:
		cmd = m.logs.Update(msg)
	case auditView:
		cmd = m.audit.Update(msg)
	case languageView:
		return m.updateLanguage(msg)
	}
	return m.afterUpdate(cmd)
}

// afterUpdate enforces the session gate after every message: if the guard
// dropped to unauthenticated while a gated view is active, bounce to login
// and remember where the user was.
func (m mainModel) afterUpdate(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	if m.state != loginView && m.deps.Guard.State() != session.Authenticated {
		m.pending = m.state
		m.state = loginView
		m.login = newLoginModel(m.deps)
	}
	return m, tea.Batch(cmds...)
}

func (m mainModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(m.menu.choices)-1 {
			m.menu.cursor++
		}
	case "r":
		return m, refreshDashboardCmd(m.deps.Client)
	case "q":
		return m, tea.Quit
	case "enter":
		choice := m.menu.choices[m.menu.cursor]
		switch choice.action {
		case "quit":
			return m, tea.Quit
		case "logout":
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.deps.Client.Logout(ctx); err != nil {
				logging.Debugf("logout request failed: %v", err)
			}
			m.deps.Guard.Logout(session.ReasonManual)
			return m.afterUpdate(nil)
		case "theme":
			mode := ToggleTheme()
			if err := m.deps.Store.SetTheme(mode); err != nil {
				logging.Warnf("could not persist theme: %v", err)
			}
			return m, nil
		default:
			return m.openView(choice.target)
		}
	}
	return m, nil
}

// openView constructs and enters a sub-view, applying the role gate.
func (m mainModel) openView(target viewState) (tea.Model, tea.Cmd) {
	if adminOnly[target] && !m.deps.Guard.IsAdmin() {
		// Non-admins land back on the dashboard with a visible notice
		// instead of being logged out.
		m.status = i18n.T("menu.admin_only")
		m.state = menuView
		return m, nil
	}
	m.status = ""
	var cmd tea.Cmd
	switch target {
	case usersView:
		m.users, cmd = newUsersModel(m.deps)
	case groupsView:
		m.groups, cmd = newGroupsModel(m.deps)
	case zonesView:
		m.zones, cmd = newZonesModel(m.deps)
	case catalogView:
		m.catalog, cmd = newCatalogModel(m.deps)
	case logsView:
		m.logs, cmd = newLogsModel(m.deps)
	case auditView:
		m.audit, cmd = newAuditModel(m.deps)
	case languageView:
		m.state = languageView
		return m, nil
	default:
		m.state = menuView
		return m, nil
	}
	m.state = target
	if m.width > 0 {
		cmd = tea.Batch(cmd, func() tea.Msg {
			return tea.WindowSizeMsg{Width: m.width, Height: m.height}
		})
	}
	return m, cmd
}

func (m mainModel) updateLanguage(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if m.language.cursor > 0 {
			m.language.cursor--
		}
	case "down", "j":
		if m.language.cursor < len(m.language.codes)-1 {
			m.language.cursor++
		}
	case "q", "esc":
		m.state = menuView
		return m, nil
	case "enter":
		code := m.language.codes[m.language.cursor]
		i18n.SetLang(code)
		if err := m.deps.Store.SetLanguage(code); err != nil {
			logging.Warnf("could not persist language: %v", err)
		}
		return m, func() tea.Msg { return languageChangedMsg{} }
	}
	return m, nil
}

func (m mainModel) View() string {
	switch m.state {
	case loginView:
		return docStyle.Render(m.login.View())
	case menuView:
		return docStyle.Render(m.menuView())
	case usersView:
		return docStyle.Render(m.users.View())
	case groupsView:
		return docStyle.Render(m.groups.View())
	case zonesView:
		return docStyle.Render(m.zones.View())
	case catalogView:
		return docStyle.Render(m.catalog.View())
	case logsView:
		return docStyle.Render(m.logs.View())
	case auditView:
		return docStyle.Render(m.audit.View())
	case languageView:
		return docStyle.Render(m.languageView())
	}
	return ""
}

func (m mainModel) menuView() string {
	var b strings.Builder
	b.WriteString(mainTitleStyle.Render("🌍 "+i18n.T("app.name")) + "\n")
	b.WriteString(helpStyle.Render(i18n.T("app.tagline")) + "\n\n")

	b.WriteString(m.dashboardView())
	b.WriteString("\n")

	user := m.deps.Guard.CurrentUser()
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s (%s)", user.Username, user.Role)) + "\n\n")

	for i, choice := range m.menu.choices {
		if adminOnly[choice.target] && !m.deps.Guard.IsAdmin() {
			b.WriteString("  " + helpStyle.Render(i18n.T(choice.labelID)) + "\n")
			continue
		}
		cursor := "  "
		label := itemStyle.Render(i18n.T(choice.labelID))
		if m.menu.cursor == i {
			cursor = "▸ "
			label = selectedItemStyle.Render(i18n.T(choice.labelID))
		}
		b.WriteString(cursor + label + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + specialStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ · enter · r "+i18n.T("common.refresh")+" · q "+i18n.T("menu.quit")))
	return b.String()
}

func (m mainModel) dashboardView() string {
	var b strings.Builder
	if m.dashboard.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %s", i18n.T("dashboard.health"), i18n.T("dashboard.unreachable"))) + "\n")
		return b.String()
	}
	h := m.dashboard.health
	b.WriteString(fmt.Sprintf("%s: %s · %s %d · %s %d · %s %d · %s %d\n",
		i18n.T("dashboard.health"), successStyle.Render(i18n.T("dashboard.healthy")),
		i18n.T("dashboard.users"), h.UserCount,
		i18n.T("dashboard.groups"), h.GroupCount,
		i18n.T("dashboard.zones"), h.ZoneCount,
		i18n.T("dashboard.models"), h.ModelCount))
	if len(m.dashboard.audit) > 0 {
		b.WriteString(helpStyle.Render(i18n.T("dashboard.recent_audit")) + "\n")
		for _, e := range m.dashboard.audit {
			b.WriteString(helpStyle.Render(fmt.Sprintf("  %s  %s  %s", formatTime(e.Timestamp), e.Actor, e.Action)) + "\n")
		}
	}
	return b.String()
}

func (m mainModel) languageView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("menu.language")) + "\n\n")
	for i, code := range m.language.codes {
		cursor := "  "
		label := itemStyle.Render(m.language.labels[code])
		if m.language.cursor == i {
			cursor = "▸ "
			label = selectedItemStyle.Render(m.language.labels[code])
		}
		b.WriteString(cursor + label + "\n")
	}
	return b.String()
}
