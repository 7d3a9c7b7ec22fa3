package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/velsgot/velsgot/internal/admin/app"
	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

type usersModel struct {
	app *app.App

	width  int
	height int

	Done bool

	state usersState

	list list.Model
	err  error

	selected *user.User

	form *huh.Form

	roleChoice string
	roleSave   bool

	banConfirm bool

	status string
}

type usersState int

const (
	usersStateList usersState = iota
	usersStateDetail
	usersStateSetRole
	usersStateBan
)

type userItem struct {
	id    int64
	title string
	desc  string
}

func (i userItem) Title() string       { return i.title }
func (i userItem) Description() string { return i.desc }
func (i userItem) FilterValue() string { return i.title }

func newUsersModel(a *app.App) *usersModel {
	m := &usersModel{app: a, state: usersStateList}
	m.reloadList()
	return m
}

func (m *usersModel) reloadList() {
	users, err := m.app.Accounts.List()
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(users))
	for _, u := range users {
		label, _ := u.Role.Label()
		desc := label
		if !u.CanWrite {
			desc += " · muted"
		}
		if u.Contact != "" {
			desc += " · " + u.Contact
		}
		items = append(items, userItem{id: u.ID, title: u.Nickname, desc: desc})
	}

	l := list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	l.Title = "Users"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true) // nickname search, like the panel's "find by nick"
	m.list = l
}

func (m *usersModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *usersModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.err = nil
				m.state = usersStateList
				m.form = nil
				m.selected = nil
				m.reloadList()
			}
		}
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			if m.state == usersStateList && !m.list.SettingFilter() {
				m.Done = true
				return nil
			}
		case "esc":
			if m.state != usersStateList {
				m.back()
				return nil
			}
		}
	}

	switch m.state {
	case usersStateList:
		return m.updateList(msg)
	case usersStateDetail:
		return m.updateDetail(msg)
	case usersStateSetRole:
		return m.updateSetRole(msg)
	case usersStateBan:
		return m.updateBan(msg)
	}
	return nil
}

func (m *usersModel) back() {
	m.form = nil
	switch m.state {
	case usersStateDetail:
		m.state = usersStateList
		m.selected = nil
		m.reloadList()
	default:
		m.state = usersStateDetail
	}
}

func (m *usersModel) updateList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && !m.list.SettingFilter() {
		if it, ok := m.list.SelectedItem().(userItem); ok {
			u, err := m.app.Accounts.GetByID(it.id)
			if err != nil {
				m.err = err
				return nil
			}
			m.selected = u
			m.status = ""
			m.state = usersStateDetail
		}
	}
	return cmd
}

func (m *usersModel) updateDetail(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.selected == nil {
		return nil
	}

	switch key.String() {
	case "m":
		// Toggle the write privilege, the panel's mute button.
		if !role.CanMute(m.app.Operator, m.selected.Role) {
			m.status = "not permitted"
			return nil
		}
		allowed := !m.selected.CanWrite
		if err := m.app.Accounts.UpdateWritePrivilege(m.selected.ID, allowed); err != nil {
			m.err = err
			return nil
		}
		m.selected.CanWrite = allowed
		if allowed {
			m.status = "unmuted"
		} else {
			m.status = "muted"
		}
	case "r":
		m.roleChoice = string(m.selected.Role)
		m.roleSave = false
		m.form = buildRoleForm(&m.roleChoice, &m.roleSave)
		m.state = usersStateSetRole
	case "b":
		if !role.CanRemoveUser(m.app.Operator, m.selected.Role) {
			m.status = "not permitted"
			return nil
		}
		m.banConfirm = false
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %s permanently?", m.selected.Nickname)).
				Value(&m.banConfirm),
		))
		m.state = usersStateBan
	case "c":
		if err := clipboard.WriteAll(fmt.Sprintf("%d", m.selected.ID)); err != nil {
			m.status = "clipboard unavailable"
		} else {
			m.status = "id copied"
		}
	}
	return nil
}

func buildRoleForm(choice *string, save *bool) *huh.Form {
	opts := make([]huh.Option[string], 0, len(role.All()))
	for _, r := range role.All() {
		label, _ := r.Label()
		opts = append(opts, huh.NewOption(label, string(r)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Role").Options(opts...).Value(choice),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Save changes?").Value(save),
		),
	)
}

func (m *usersModel) updateSetRole(msg tea.Msg) tea.Cmd {
	cmd, completed := m.updateForm(msg)
	if !completed {
		return cmd
	}

	if m.roleSave && m.selected != nil {
		newRole, err := role.Parse(m.roleChoice)
		if err != nil {
			m.err = err
			return nil
		}
		if err := m.app.Accounts.UpdateRole(m.selected.ID, newRole); err != nil {
			m.err = err
			return nil
		}
		m.selected.Role = newRole
		m.status = "role updated"
	}
	m.form = nil
	m.state = usersStateDetail
	return nil
}

func (m *usersModel) updateBan(msg tea.Msg) tea.Cmd {
	cmd, completed := m.updateForm(msg)
	if !completed {
		return cmd
	}

	if m.banConfirm && m.selected != nil {
		if err := m.app.Accounts.Delete(m.selected.ID); err != nil {
			m.err = err
			return nil
		}
		m.form = nil
		m.selected = nil
		m.state = usersStateList
		m.reloadList()
		return nil
	}
	m.form = nil
	m.state = usersStateDetail
	return nil
}

// updateForm advances the active huh form. Reports completion.
func (m *usersModel) updateForm(msg tea.Msg) (tea.Cmd, bool) {
	if m.form == nil {
		return nil, true
	}
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil, false
	}
	m.form = f
	return cmd, m.form.State == huh.StateCompleted
}

func (m *usersModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Users error: %v\n\nPress Enter/Esc to go back.", m.err)
	}

	switch m.state {
	case usersStateList:
		return m.list.View()
	case usersStateDetail:
		return m.detailView()
	case usersStateSetRole, usersStateBan:
		if m.form == nil {
			return "Loading..."
		}
		return m.form.View()
	}
	return ""
}

func (m *usersModel) detailView() string {
	if m.selected == nil {
		return "No user selected."
	}
	u := m.selected
	label, _ := u.Role.Label()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(u.Nickname))
	fmt.Fprintf(&b, "  ID:       %d\n", u.ID)
	fmt.Fprintf(&b, "  Role:     %s\n", label)
	fmt.Fprintf(&b, "  Contact:  %s\n", u.Contact)
	if u.CanWrite {
		fmt.Fprintf(&b, "  Status:   can write\n")
	} else {
		fmt.Fprintf(&b, "  Status:   muted\n")
	}
	fmt.Fprintf(&b, "\n  Access:\n")
	for _, grant := range role.Capabilities(u.Role) {
		fmt.Fprintf(&b, "    - %s\n", grant)
	}
	if m.status != "" {
		fmt.Fprintf(&b, "\n  %s\n", mutedStyle.Render(m.status))
	}
	b.WriteString("\n(m mute/unmute · r role · b ban · c copy id · esc back)")
	return b.String()
}
