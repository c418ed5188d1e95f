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
)

// userSavedMsg reports a finished create/update, or a canceled form.
type userSavedMsg struct {
	user     model.User
	created  bool
	canceled bool
	err      error
}

// userFormModel is the create/edit dialog for a user.
type userFormModel struct {
	deps     Deps
	editing  *model.User // nil when creating
	username textinput.Model
	email    textinput.Model
	password textinput.Model
	role     model.Role
	active   bool
	focus    int // 0 username, 1 email, 2 password (create only), 3 role, 4 active, 5 save, 6 cancel
	errLine  string
	working  bool
}

func newUserFormModel(deps Deps, editing *model.User) userFormModel {
	username := textinput.New()
	username.Placeholder = i18n.T("users.form.username")
	username.CharLimit = 64

	email := textinput.New()
	email.Placeholder = i18n.T("users.form.email")
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = i18n.T("login.password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	m := userFormModel{
		deps:     deps,
		editing:  editing,
		username: username,
		email:    email,
		password: password,
		role:     model.RoleUser,
		active:   true,
	}
	if editing != nil {
		m.username.SetValue(editing.Username)
		m.email.SetValue(editing.Email)
		m.role = editing.Role
		m.active = editing.IsActive
	}
	return m
}

// fieldCount is the number of focusable fields; password only exists on create.
func (m *userFormModel) fieldCount() int {
	if m.editing == nil {
		return 7
	}
	return 6
}

// fieldAt maps the focus index onto a logical field, hiding the password
// slot when editing.
func (m *userFormModel) fieldAt(focus int) int {
	if m.editing != nil && focus >= 2 {
		return focus + 1
	}
	return focus
}

func (m *userFormModel) Focus() tea.Cmd {
	m.focus = 0
	return m.username.Focus()
}

func (m *userFormModel) applyError(err error) {
	m.working = false
	m.errLine = errorText(err)
	if api.IsConflict(err) {
		m.errLine = i18n.T("users.form.username") + ": " + errorText(err)
	}
}

func (m *userFormModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg)
	}
	if m.working {
		return nil
	}

	switch keyMsg.String() {
	case "esc":
		return func() tea.Msg { return userSavedMsg{canceled: true} }
	case "tab", "down":
		return m.setFocus((m.focus + 1) % m.fieldCount())
	case "shift+tab", "up":
		return m.setFocus((m.focus + m.fieldCount() - 1) % m.fieldCount())
	case "enter", " ":
		switch m.fieldAt(m.focus) {
		case 3: // role toggle
			if m.role == model.RoleAdmin {
				m.role = model.RoleUser
			} else {
				m.role = model.RoleAdmin
			}
			return nil
		case 4: // active toggle
			m.active = !m.active
			return nil
		case 5: // save
			if keyMsg.String() == "enter" {
				return m.submit()
			}
			return nil
		case 6: // cancel
			if keyMsg.String() == "enter" {
				return func() tea.Msg { return userSavedMsg{canceled: true} }
			}
			return nil
		}
		if keyMsg.String() == "enter" {
			return m.setFocus(m.focus + 1)
		}
	}
	return m.updateInputs(msg)
}

func (m *userFormModel) setFocus(focus int) tea.Cmd {
	if focus >= m.fieldCount() {
		focus = 0
	}
	m.focus = focus
	m.username.Blur()
	m.email.Blur()
	m.password.Blur()
	switch m.fieldAt(focus) {
	case 0:
		return m.username.Focus()
	case 1:
		return m.email.Focus()
	case 2:
		return m.password.Focus()
	}
	return nil
}

func (m *userFormModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.fieldAt(m.focus) {
	case 0:
		m.username, cmd = m.username.Update(msg)
	case 1:
		m.email, cmd = m.email.Update(msg)
	case 2:
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

func (m *userFormModel) submit() tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	email := strings.TrimSpace(m.email.Value())
	if username == "" || email == "" {
		m.errLine = i18n.T("users.form.username") + " / " + i18n.T("users.form.email")
		return nil
	}
	req := api.UserRequest{
		Username: username,
		Email:    email,
		Role:     m.role,
		IsActive: m.active,
	}
	m.working = true
	m.errLine = ""
	client := m.deps.Client
	if m.editing == nil {
		req.Password = m.password.Value()
		return func() tea.Msg {
			user, err := client.CreateUser(context.Background(), req)
			return userSavedMsg{user: user, created: true, err: err}
		}
	}
	id := m.editing.ID
	return func() tea.Msg {
		user, err := client.UpdateUser(context.Background(), id, req)
		return userSavedMsg{user: user, err: err}
	}
}

func (m *userFormModel) View() string {
	title := i18n.T("users.form.new_title")
	if m.editing != nil {
		title = i18n.T("users.form.edit_title")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(i18n.T("users.form.username") + "\n" + m.username.View() + "\n\n")
	b.WriteString(i18n.T("users.form.email") + "\n" + m.email.View() + "\n\n")
	if m.editing == nil {
		b.WriteString(i18n.T("login.password") + "\n" + m.password.View() + "\n\n")
	}

	roleLabel := i18n.T("users.form.role_user")
	if m.role == model.RoleAdmin {
		roleLabel = i18n.T("users.form.role_admin")
	}
	b.WriteString(m.toggleLine(3, i18n.T("users.header.role"), roleLabel))
	b.WriteString(m.toggleLine(4, i18n.T("users.form.active"), yesNo(m.active)))

	save := buttonStyle.Render(i18n.T("common.save"))
	cancel := buttonStyle.Render(i18n.T("common.cancel"))
	switch m.fieldAt(m.focus) {
	case 5:
		save = activeButtonStyle.Render(i18n.T("common.save"))
	case 6:
		cancel = activeButtonStyle.Render(i18n.T("common.cancel"))
	}
	b.WriteString("\n" + save + "  " + cancel + "\n")

	if m.errLine != "" {
		b.WriteString("\n" + errorStyle.Render(m.errLine) + "\n")
	}
	if m.working {
		b.WriteString(helpStyle.Render(i18n.T("table.loading")) + "\n")
	}
	return dialogBoxStyle.Render(b.String())
}

func (m *userFormModel) toggleLine(field int, label, value string) string {
	marker := "  "
	style := itemStyle
	if m.fieldAt(m.focus) == field {
		marker = "▸ "
		style = selectedItemStyle
	}
	return marker + style.Render(label+": "+value) + "\n"
}
