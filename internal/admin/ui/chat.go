package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/velsgot/velsgot/internal/admin/app"
	"github.com/velsgot/velsgot/internal/role"
)

type chatModel struct {
	app *app.App

	width  int
	height int

	Done bool

	list list.Model
	err  error

	form      *huh.Form
	confirm   bool
	confirmOp string // "delete" or "clear"
	pendingID int64
}

type messageItem struct {
	id    int64
	title string
	desc  string
}

func (i messageItem) Title() string       { return i.title }
func (i messageItem) Description() string { return i.desc }
func (i messageItem) FilterValue() string { return i.title }

func newChatModel(a *app.App) *chatModel {
	m := &chatModel{app: a}
	m.reloadList()
	return m
}

func (m *chatModel) reloadList() {
	msgs, err := m.app.Archive.Load()
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(msgs))
	for _, msg := range msgs {
		label, _ := msg.Author.Role.Label()
		items = append(items, messageItem{
			id:    msg.ID,
			title: msg.Text,
			desc: fmt.Sprintf("#%d · %s [%s] · %s",
				msg.ID, msg.Author.Nickname, label, msg.CreatedAt.Format("2006-01-02 15:04")),
		})
	}

	l := list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	l.Title = fmt.Sprintf("Chat Log (%d messages)", len(msgs))
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	m.list = l
}

func (m *chatModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *chatModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.err = nil
				m.form = nil
				m.reloadList()
			}
		}
		return nil
	}

	if m.form != nil {
		return m.updateConfirm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch key.String() {
		case "q", "esc":
			m.Done = true
			return nil
		case "d":
			// Single-message delete is creator-only, same as in the
			// live room.
			if !role.CanDeleteMessage(m.app.Operator) {
				return nil
			}
			if it, ok := m.list.SelectedItem().(messageItem); ok {
				m.pendingID = it.id
				m.confirmOp = "delete"
				m.confirm = false
				m.form = huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete message #%d?", it.id)).
						Description(it.title).
						Value(&m.confirm),
				))
			}
			return nil
		case "C":
			if !role.CanClearChat(m.app.Operator) {
				return nil
			}
			m.confirmOp = "clear"
			m.confirm = false
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Clear the entire chat log?").
					Value(&m.confirm),
			))
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *chatModel) updateConfirm(msg tea.Msg) tea.Cmd {
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	if m.form.State != huh.StateCompleted {
		return cmd
	}

	if m.confirm {
		var err error
		switch m.confirmOp {
		case "delete":
			err = m.app.Archive.Delete(m.pendingID)
		case "clear":
			err = m.app.Archive.Clear()
		}
		if err != nil {
			m.err = err
			return nil
		}
	}
	m.form = nil
	m.reloadList()
	return nil
}

func (m *chatModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Chat log error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	if m.form != nil {
		return m.form.View()
	}
	return m.list.View() + "\n" + mutedStyle.Render("(d delete · C clear all · esc back)")
}
