// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/i18n"
	"github.com/terradesk/terradesk/internal/model"
	"github.com/terradesk/terradesk/internal/session"
)

// loginSuccessMsg hands the fresh credentials to the router.
type loginSuccessMsg struct {
	token string
	user  model.User
}

// loginFailedMsg carries a login failure back to the form.
type loginFailedMsg struct {
	err error
}

// loginModel is the sign-in form.
type loginModel struct {
	deps     Deps
	username textinput.Model
	password textinput.Model
	focus    int // 0 username, 1 password
	working  bool
	notice   string
	errLine  string
}

func newLoginModel(deps Deps) loginModel {
	username := textinput.New()
	username.Placeholder = i18n.T("login.username")
	username.Focus()
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = i18n.T("login.password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	m := loginModel{deps: deps, username: username, password: password}

	// Tell the user why the previous session ended.
	switch deps.Guard.LastReason() {
	case session.ReasonExpired, session.ReasonInactivity:
		m.notice = i18n.T("login.expired")
	case session.ReasonForbidden:
		m.notice = i18n.T("login.forbidden")
	}
	return m
}

// loginCmd performs the credential exchange.
func loginCmd(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := client.Login(context.Background(), username, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return loginSuccessMsg{token: res.Token, user: res.User}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginFailedMsg:
		m.working = false
		if api.IsUnauthorized(msg.err) {
			// Bad credentials stay an inline banner; no redirect loop.
			m.errLine = i18n.T("login.failed")
		} else {
			m.errLine = errorText(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		if m.working {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.username.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.username.Blur()
			}
			return m, nil
		case "enter":
			username := strings.TrimSpace(m.username.Value())
			password := m.password.Value()
			if username == "" || password == "" {
				return m, nil
			}
			m.working = true
			m.errLine = ""
			return m, loginCmd(m.deps.Client, username, password)
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔐 "+i18n.T("login.title")) + "\n\n")
	if m.notice != "" {
		b.WriteString(specialStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString(i18n.T("login.username") + "\n")
	b.WriteString(m.username.View() + "\n\n")
	b.WriteString(i18n.T("login.password") + "\n")
	b.WriteString(m.password.View() + "\n\n")
	if m.working {
		b.WriteString(helpStyle.Render(i18n.T("login.working")) + "\n")
	}
	if m.errLine != "" {
		b.WriteString(errorStyle.Render(m.errLine) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab · enter · ctrl+c"))
	return b.String()
}
