package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/velsgot/velsgot/internal/admin/app"
)

type screen int

const (
	screenHome screen = iota
	screenStream
	screenUsers
	screenChat
)

type rootModel struct {
	app *app.App

	width  int
	height int

	active screen

	homeList list.Model
	err      error

	stream *streamModel
	users  *usersModel
	chat   *chatModel
}

type menuItem struct {
	title string
	desc  string
	to    screen
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func NewRootModel(a *app.App) tea.Model {
	items := []list.Item{
		menuItem{title: "Users", desc: "Search, mute, ban, change roles", to: screenUsers},
		menuItem{title: "Chat Log", desc: "Browse, delete messages, clear", to: screenChat},
		menuItem{title: "Stream", desc: "Title, video source, chat on/off", to: screenStream},
		menuItem{title: "Quit", desc: "Exit", to: -1},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "VELSGOT Moderation"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return &rootModel{
		app:      a,
		active:   screenHome,
		homeList: l,
	}
}

func (m *rootModel) Init() tea.Cmd {
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.homeList.SetSize(msg.Width, msg.Height-2)
		if m.stream != nil {
			m.stream.SetSize(msg.Width, msg.Height)
		}
		if m.users != nil {
			m.users.SetSize(msg.Width, msg.Height)
		}
		if m.chat != nil {
			m.chat.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	switch m.active {
	case screenHome:
		return m.updateHome(msg)
	case screenStream:
		if m.stream == nil {
			m.stream = newStreamModel(m.app)
			m.stream.SetSize(m.width, m.height)
		}
		cmd := m.stream.Update(msg)
		if m.stream.Done {
			m.active = screenHome
			m.stream = nil
		}
		return m, cmd
	case screenUsers:
		if m.users == nil {
			m.users = newUsersModel(m.app)
			m.users.SetSize(m.width, m.height)
		}
		cmd := m.users.Update(msg)
		if m.users.Done {
			m.active = screenHome
			m.users = nil
		}
		return m, cmd
	case screenChat:
		if m.chat == nil {
			m.chat = newChatModel(m.app)
			m.chat.SetSize(m.width, m.height)
		}
		cmd := m.chat.Update(msg)
		if m.chat.Done {
			m.active = screenHome
			m.chat = nil
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *rootModel) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if it, ok := m.homeList.SelectedItem().(menuItem); ok {
				if it.to == -1 {
					return m, tea.Quit
				}
				m.active = it.to
				return m, nil
			}
		}
	}

	return m, cmd
}

func (m *rootModel) View() string {
	if m.err != nil {
		return errStyle.Render("Error: ") + m.err.Error()
	}

	switch m.active {
	case screenHome:
		return m.homeList.View()
	case screenStream:
		if m.stream == nil {
			return "Loading stream settings..."
		}
		return m.stream.View()
	case screenUsers:
		if m.users == nil {
			return "Loading users..."
		}
		return m.users.View()
	case screenChat:
		if m.chat == nil {
			return "Loading chat log..."
		}
		return m.chat.View()
	default:
		return titleStyle.Render("Unknown screen") + "\n" + fmt.Sprint(m.active)
	}
}
