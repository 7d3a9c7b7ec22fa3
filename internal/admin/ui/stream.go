package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/velsgot/velsgot/internal/admin/app"
	"github.com/velsgot/velsgot/internal/db"
	"github.com/velsgot/velsgot/internal/role"
)

type streamModel struct {
	app *app.App

	width  int
	height int

	Done bool

	form *huh.Form
	err  error

	title       string
	videoURL    string
	chatEnabled bool
	save        bool
}

func newStreamModel(a *app.App) *streamModel {
	m := &streamModel{app: a}

	settings, err := a.DB.GetStreamSettings()
	if err != nil {
		m.err = err
		return m
	}

	m.title = settings.Title
	m.videoURL = settings.VideoURL
	m.chatEnabled = settings.ChatEnabled

	m.form = buildStreamForm(a, &m.title, &m.videoURL, &m.chatEnabled, &m.save)
	return m
}

func buildStreamForm(a *app.App, title, videoURL *string, chatEnabled, save *bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().Title("Stream Title").Value(title).Validate(nonEmpty("title")),
	}
	// The same matrix the chat server consults: the video source is
	// senior-admin-and-up, chat toggling is creator-only.
	if role.CanChangeVideo(a.Operator) {
		fields = append(fields, huh.NewInput().Title("Video URL").Value(videoURL))
	}
	if role.CanToggleChat(a.Operator) {
		fields = append(fields, huh.NewConfirm().Title("Chat Enabled").Value(chatEnabled))
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewConfirm().Title("Save changes?").Value(save),
		),
	)
}

func (m *streamModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *streamModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.Done = true
			}
		}
		return nil
	}

	if m.form == nil {
		m.form = buildStreamForm(m.app, &m.title, &m.videoURL, &m.chatEnabled, &m.save)
	}

	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	if m.form.State == huh.StateCompleted {
		if m.save {
			settings := &db.StreamSettings{
				Title:       strings.TrimSpace(m.title),
				VideoURL:    strings.TrimSpace(m.videoURL),
				ChatEnabled: m.chatEnabled,
			}
			if err := m.app.DB.UpdateStreamSettings(settings); err != nil {
				m.err = err
				return nil
			}
		}
		m.Done = true
		return nil
	}

	return cmd
}

func (m *streamModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Stream settings error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	return m.form.View() + "\n\n(esc to go back)"
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}
