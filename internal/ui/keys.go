package ui

import (
	"context"
	"errors"
	"strings"

	"inboxpilot/internal/api"
	"inboxpilot/internal/domain"
	"inboxpilot/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	TabImportant  key.Binding
	TabGeneral    key.Binding
	TabFlagged    key.Binding
	RunAgent      key.Binding
	StopAgent     key.Binding
	Edit          key.Binding
	Send          key.Binding
	Copy          key.Binding
	Notifications key.Binding
	History       key.Binding
	Profile       key.Binding
	Settings      key.Binding
	Logout        key.Binding
	Back          key.Binding
	Quit          key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		TabImportant: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "important"),
		),
		TabGeneral: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "general"),
		),
		TabFlagged: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "flagged"),
		),
		RunAgent: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run agent"),
		),
		StopAgent: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop agent"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit reply"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send reply"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy draft"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notifications"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "profile"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.RunAgent, k.Edit, k.Send, k.Notifications, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.TabImportant, k.TabGeneral, k.TabFlagged},
		{k.RunAgent, k.StopAgent, k.Edit, k.Send, k.Copy},
		{k.Notifications, k.History, k.Profile, k.Settings, k.Logout, k.Quit},
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays capture input before any screen.
	if m.pinOpen {
		return m.handlePinKey(msg)
	}
	if m.editing {
		return m.handleEditorKey(msg)
	}
	if m.choosing {
		return m.handleModelPickerKey(msg)
	}

	switch m.screen {
	case screenIntro:
		return m.handleIntroKey(msg)
	case screenSignup, screenLogin, screenTelegramLink:
		return m.handleFormKey(msg)
	case screenDashboard:
		return m.handleDashboardKey(msg)
	case screenHistory, screenProfile, screenSettings:
		return m.handleSubViewKey(msg)
	}
	return m, nil
}

func (m Model) handlePinKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.controller.PinCancelled(m.controller.Generation())
		m.pinOpen = false
		m.pinInput.Blur()
		m.status = "Agent start cancelled"
		return m, nil
	case "enter":
		pin := strings.TrimSpace(m.pinInput.Value())
		if pin == "" || m.pinSubmitted {
			return m, nil
		}
		m.pinSubmitted = true
		return m, m.submitPinCmd(m.controller.Generation(), pin)
	}
	var cmd tea.Cmd
	m.pinInput, cmd = m.pinInput.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.editor.Blur()
		m.renderDetail()
		return m, nil
	case "ctrl+s":
		selected, ok := m.selectedMessage()
		if !ok {
			m.editing = false
			return m, nil
		}
		m.editing = false
		m.editor.Blur()
		if m.pendingSend[selected.ID] {
			return m, nil
		}
		m.pendingSend[selected.ID] = true
		return m, m.sendReplyCmd(selected, m.editor.Value())
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleModelPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.choosing = false
		m.controller.CancelChoice()
		return m, nil
	case "up", "k":
		if m.modelCursor > 0 {
			m.modelCursor--
		}
		return m, nil
	case "down", "j":
		if m.modelCursor < len(m.models)-1 {
			m.modelCursor++
		}
		return m, nil
	case "enter":
		choice := m.models[m.modelCursor]
		gen, ok := m.controller.Start(choice)
		if !ok {
			m.choosing = false
			return m, nil
		}
		m.choosing = false
		m.agentBusy = true
		m.status = "Starting agent with " + choice + "..."
		return m, tea.Batch(m.startAgentCmd(gen, choice), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) handleIntroKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.screen = screenSignup
		m.form = signupForm()
		m.formFocus = 0
		return m, nil
	case "l":
		m.screen = screenLogin
		m.form = loginForm()
		m.formFocus = 0
		return m, nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		switch m.screen {
		case screenTelegramLink:
			m.screen = screenSignup
			m.form = signupForm()
		default:
			m.screen = screenIntro
			m.form = nil
		}
		m.formFocus = 0
		return m, nil
	case "tab", "down":
		m.focusField((m.formFocus + 1) % len(m.form))
		return m, nil
	case "shift+tab", "up":
		m.focusField((m.formFocus - 1 + len(m.form)) % len(m.form))
		return m, nil
	case "enter":
		if m.formFocus < len(m.form)-1 {
			m.focusField(m.formFocus + 1)
			return m, nil
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(idx int) {
	for i := range m.form {
		m.form[i].Blur()
	}
	m.formFocus = idx
	m.form[idx].Focus()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	values := make([]string, len(m.form))
	for i, f := range m.form {
		values[i] = strings.TrimSpace(f.Value())
	}

	switch m.screen {
	case screenLogin:
		if values[0] == "" || values[1] == "" {
			m.status = "Username and password are required"
			return m, nil
		}
		return m, m.loginCmd(domain.Credentials{Username: values[0], Password: values[1]})
	case screenSignup:
		if values[0] == "" || values[2] == "" {
			m.status = "Username and password are required"
			return m, nil
		}
		return m, m.registerCmd(domain.Registration{
			Username: values[0],
			Email:    values[1],
			Password: values[2],
		})
	case screenTelegramLink:
		if values[0] == "" {
			m.status = "A phone number is required"
			return m, nil
		}
		return m, m.linkTelegramCmd(domain.TelegramLink{
			MobileNumber: values[0],
			APIID:        values[1],
			APIHash:      values[2],
		})
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The open notification panel owns navigation and per-item delete.
	if m.notifOpen {
		switch msg.String() {
		case "up", "k":
			if m.notifCursor > 0 {
				m.notifCursor--
			}
			return m, nil
		case "down", "j":
			if m.notifCursor < len(m.notifications)-1 {
				m.notifCursor++
			}
			return m, nil
		case "d":
			return m.deleteSelectedNotification()
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.TabImportant):
		m.category = domain.CategoryImportant
		m.renderCategory()
		return m, nil
	case key.Matches(msg, m.keys.TabGeneral):
		m.category = domain.CategoryGeneral
		m.renderCategory()
		return m, nil
	case key.Matches(msg, m.keys.TabFlagged):
		m.category = domain.CategoryFlagged
		m.renderCategory()
		return m, nil
	case key.Matches(msg, m.keys.RunAgent):
		if m.controller.Choose() {
			m.choosing = true
			m.modelCursor = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.StopAgent):
		return m.stopAgent()
	case key.Matches(msg, m.keys.Notifications):
		m.notifOpen = !m.notifOpen
		m.notifCursor = 0
		if m.notifOpen && m.loopsActive {
			return m, m.fetchNotificationsCmd(m.notifLoopGen)
		}
		return m, nil
	case key.Matches(msg, m.keys.History):
		return m.switchTo(screenHistory, m.fetchHistoryCmd())
	case key.Matches(msg, m.keys.Profile):
		return m.switchTo(screenProfile, m.fetchProfileCmd())
	case key.Matches(msg, m.keys.Settings):
		return m.switchTo(screenSettings, m.fetchSettingsCmd())
	case key.Matches(msg, m.keys.Edit):
		selected, ok := m.selectedMessage()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editor.SetValue(selected.AIReply)
		m.editor.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		selected, ok := m.selectedMessage()
		if !ok {
			return m, nil
		}
		return m, m.copyDraftCmd(selected.AIReply)
	case key.Matches(msg, m.keys.Send):
		if m.notifOpen {
			return m.markAllNotificationsRead()
		}
		selected, ok := m.selectedMessage()
		if !ok || m.pendingSend[selected.ID] {
			return m, nil
		}
		m.pendingSend[selected.ID] = true
		return m, m.sendReplyCmd(selected, selected.AIReply)
	}

	if msg.String() == "c" && m.notifOpen {
		m.notifications = nil
		m.unread = false
		return m, m.clearNotificationsCmd()
	}

	prev, _ := m.selectedMessage()
	var cmd tea.Cmd
	m.msgList, cmd = m.msgList.Update(msg)
	if cur, ok := m.selectedMessage(); ok && cur.ID != prev.ID {
		m.renderDetail()
	}
	return m, cmd
}

func (m Model) deleteSelectedNotification() (tea.Model, tea.Cmd) {
	if len(m.notifications) == 0 {
		return m, nil
	}
	target := m.notifications[m.notifCursor]
	kept := make([]domain.Notification, 0, len(m.notifications)-1)
	kept = append(kept, m.notifications[:m.notifCursor]...)
	kept = append(kept, m.notifications[m.notifCursor+1:]...)
	m.notifications = kept
	if m.notifCursor >= len(kept) && m.notifCursor > 0 {
		m.notifCursor--
	}
	m.unread = domain.AnyUnread(kept)
	return m, m.deleteNotificationCmd(target.ID)
}

func (m Model) markAllNotificationsRead() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for i, n := range m.notifications {
		if !n.Read {
			cmds = append(cmds, m.markNotificationReadCmd(n.ID))
			m.notifications[i].Read = true
		}
	}
	m.unread = false
	return m, tea.Batch(cmds...)
}

// stopAgent issues the stop command and synchronously cancels the start
// flow and both loops, so a late "running" observation cannot resurrect a
// stopped agent.
func (m Model) stopAgent() (tea.Model, tea.Cmd) {
	m.controller.Stop()
	m.stopLoops()
	m.agentBusy = false
	m.choosing = false
	m.pinOpen = false
	m.pinInput.Blur()
	return m, m.stopAgentCmd()
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	return m.forceLogout("Logged out")
}

func (m Model) switchTo(target screen, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.screen = target
	m.notifOpen = false
	_ = m.sess.Set(session.KeyLastView, target.String())
	return m, cmd
}

func (m Model) handleSubViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Settings owns a single path input; route typing there while focused.
	if m.screen == screenSettings && len(m.form) == 1 && m.form[0].Focused() {
		switch msg.String() {
		case "esc":
			m.form = nil
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.form[0].Value())
			m.form = nil
			if path == "" {
				return m, nil
			}
			return m, m.uploadDatasetCmd(path)
		}
		var cmd tea.Cmd
		m.form[0], cmd = m.form[0].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m.switchTo(screenDashboard, nil)
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}

	if m.screen == screenSettings {
		switch msg.String() {
		case "a":
			return m, m.toggleAutoReplyCmd(!m.settings.AutoReply)
		case "u":
			input := textinput.New()
			input.Placeholder = "path/to/dataset.json"
			input.Prompt = "Upload: "
			input.Focus()
			m.form = []textinput.Model{input}
			return m, nil
		case "d":
			return m, m.downloadDatasetCmd()
		case "t":
			m.status = "Training requested"
			return m, m.requestTrainingCmd()
		}
	}
	return m, nil
}

func (m Model) requestTrainingCmd() tea.Cmd {
	return func() tea.Msg {
		settings, err := m.client.UpdateAgentSettings(context.Background(),
			map[string]any{"agent_training_status": "requested"})
		return settingsMsg{settings: settings, err: err}
	}
}

func loginForm() []textinput.Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword

	return []textinput.Model{username, password}
}

func signupForm() []textinput.Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword

	return []textinput.Model{username, email, password}
}

func telegramForm() []textinput.Model {
	phone := textinput.New()
	phone.Placeholder = "+15551234567"
	phone.Prompt = "Phone:    "
	phone.Focus()

	apiID := textinput.New()
	apiID.Placeholder = "api id"
	apiID.Prompt = "API id:   "

	apiHash := textinput.New()
	apiHash.Placeholder = "api hash"
	apiHash.Prompt = "API hash: "

	return []textinput.Model{phone, apiID, apiHash}
}

func asAPIError(err error) (*api.APIError, bool) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
