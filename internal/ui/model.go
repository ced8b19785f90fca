// Package ui drives the whole client: onboarding, login, the dashboard with
// its category tabs and reply review flow, the notification panel, and the
// agent start/stop lifecycle. Every network call and timer is a tea.Cmd;
// results come back as typed messages tagged with the generation counter
// that was current when the work was issued, so late resumptions after a
// stop or logout fall through as no-ops instead of mutating dead state.
package ui

import (
	"context"
	"fmt"
	"time"

	"inboxpilot/internal/agent"
	"inboxpilot/internal/api"
	"inboxpilot/internal/clipboard"
	"inboxpilot/internal/config"
	"inboxpilot/internal/dataset"
	"inboxpilot/internal/domain"
	"inboxpilot/internal/inbox"
	"inboxpilot/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Polling cadence for the two sync loops and the reply confirmation delay.
const (
	messageLoopInterval      = 20 * time.Second
	notificationLoopInterval = 30 * time.Second
	replyConfirmDelay        = 1500 * time.Millisecond
)

type screen int

const (
	screenIntro screen = iota
	screenSignup
	screenTelegramLink
	screenLogin
	screenDashboard
	screenHistory
	screenProfile
	screenSettings
)

func (s screen) String() string {
	switch s {
	case screenIntro:
		return "intro"
	case screenSignup:
		return "signup"
	case screenTelegramLink:
		return "telegram"
	case screenLogin:
		return "login"
	case screenDashboard:
		return "dashboard"
	case screenHistory:
		return "history"
	case screenProfile:
		return "profile"
	case screenSettings:
		return "settings"
	default:
		return "unknown"
	}
}

func screenFromName(name string) (screen, bool) {
	for _, s := range []screen{screenDashboard, screenHistory, screenProfile, screenSettings} {
		if s.String() == name {
			return s, true
		}
	}
	return screenIntro, false
}

// AuthExpiredMsg is sent from the gateway's OnAuthExpired callback when a
// token refresh fails mid-session.
type AuthExpiredMsg struct{}

type loginMsg struct {
	auth domain.AuthResponse
	err  error
}
type registerMsg struct {
	auth domain.AuthResponse
	err  error
}
type linkMsg struct {
	settings domain.AgentSettings
	err      error
}
type agentStartedMsg struct {
	gen int
	err error
}
type graceElapsedMsg struct{ gen int }
type pinCheckMsg struct {
	gen      int
	required bool
	err      error
}
type pinSubmitMsg struct {
	gen int
	err error
}
type agentPollTickMsg struct{ gen int }
type agentStatusMsg struct {
	gen     int
	running bool
	err     error
}
type agentStoppedMsg struct{ err error }
type messageTickMsg struct{ gen int }
type messagesMsg struct {
	gen  int
	msgs []domain.Message
	err  error
}
type notificationTickMsg struct{ gen int }
type notificationsMsg struct {
	gen   int
	items []domain.Notification
	err   error
}
type notificationActionMsg struct{ err error }
type historyMsg struct {
	msgs []domain.Message
	err  error
}
type profileMsg struct {
	profile domain.Profile
	err     error
}
type settingsMsg struct {
	settings domain.AgentSettings
	err      error
}
type replySentMsg struct {
	id  int64
	err error
}
type cardRemovalMsg struct{ id int64 }
type datasetUploadMsg struct {
	result domain.DatasetResult
	err    error
}
type datasetDownloadMsg struct {
	path string
	err  error
}
type copyMsg struct{ err error }

type messageItem struct {
	m domain.Message
}

func (i messageItem) Title() string {
	return i.m.ContactUsername
}

func (i messageItem) Description() string {
	return previewLine(i.m)
}

func (i messageItem) FilterValue() string {
	return i.m.ContactUsername + " " + i.m.Body
}

type Model struct {
	cfg        config.AppConfig
	client     *api.Client
	sess       *session.Store
	datasets   *dataset.Manager
	controller *agent.Controller

	screen   screen
	width    int
	height   int
	help     help.Model
	spinner  spinner.Model
	keys     keyMap
	glamour  string

	// Onboarding and login forms.
	form      []textinput.Model
	formFocus int

	// Dashboard state.
	category     domain.Category
	msgList      list.Model
	detail       viewport.Model
	editor       textarea.Model
	editing      bool
	lastSnapshot []domain.Message
	renderedIDs  []int64
	seen         *inbox.SeenSet
	pendingSend  map[int64]bool

	// Agent start flow.
	pinInput     textinput.Model
	pinOpen      bool
	pinSubmitted bool
	agentBusy    bool
	models       []string
	modelCursor  int
	choosing     bool

	// Sync loop generations. Bumping a generation orphans every timer tick
	// issued under the previous one; an orphaned tick is dropped without
	// rescheduling, which is both "stop" and "never two timers".
	msgLoopGen   int
	notifLoopGen int
	loopsActive  bool

	notifications []domain.Notification
	notifOpen     bool
	notifCursor   int
	unread        bool

	history  []domain.Message
	profile  domain.Profile
	settings domain.AgentSettings

	status string
	err    error
}

func NewModel(cfg config.AppConfig, client *api.Client, sess *session.Store, datasets *dataset.Manager) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 40, 20)
	l.Title = "Inbox"
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	vp := viewport.New(60, 20)
	vp.SetContent("No message selected")

	sp := spinner.New()
	sp.Spinner = spinner.Points

	ta := textarea.New()
	ta.Placeholder = "Edit the reply..."
	ta.CharLimit = 2000

	pin := textinput.New()
	pin.Placeholder = "12345"
	pin.CharLimit = 8
	pin.Prompt = "PIN: "

	m := Model{
		cfg:        cfg,
		client:     client,
		sess:       sess,
		datasets:   datasets,
		controller: agent.NewController(),

		screen:  screenIntro,
		help:    help.New(),
		spinner: sp,
		keys:    defaultKeys(),
		glamour: config.DefaultGlamourStyle,

		category:    domain.CategoryImportant,
		msgList:     l,
		detail:      vp,
		editor:      ta,
		pinInput:    pin,
		seen:        inbox.NewSeenSet(),
		pendingSend: make(map[int64]bool),
		models:      []string{"mistral-classifier", "llama-assist"},
	}

	if sess.HasSession() {
		m.screen = screenDashboard
		if name, ok := sess.Get(session.KeyLastView); ok {
			if restored, valid := screenFromName(name); valid {
				m.screen = restored
			}
		}
		if sess.GetBool(session.KeyAgentRunning) {
			m.controller.SetRunning()
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.screen != screenIntro && m.controller.State() == agent.Running {
		cmds = append(cmds, m.startLoops()...)
		cmds = append(cmds, m.fetchMessagesCmd(m.msgLoopGen))
	}
	return tea.Batch(cmds...)
}

func (m Model) username() string {
	name, _ := m.sess.Get(session.KeyUsername)
	return name
}

// --- command constructors ---

func (m Model) loginCmd(creds domain.Credentials) tea.Cmd {
	return func() tea.Msg {
		auth, err := m.client.Login(context.Background(), creds)
		return loginMsg{auth: auth, err: err}
	}
}

func (m Model) registerCmd(reg domain.Registration) tea.Cmd {
	return func() tea.Msg {
		auth, err := m.client.Register(context.Background(), reg)
		return registerMsg{auth: auth, err: err}
	}
}

func (m Model) linkTelegramCmd(link domain.TelegramLink) tea.Cmd {
	return func() tea.Msg {
		settings, err := m.client.LinkTelegram(context.Background(), link)
		return linkMsg{settings: settings, err: err}
	}
}

func (m Model) startAgentCmd(gen int, model string) tea.Cmd {
	return func() tea.Msg {
		err := m.client.StartAgent(context.Background(), m.username(), model)
		return agentStartedMsg{gen: gen, err: err}
	}
}

// graceCmd is the deliberate backend-latency accommodation: the timer has
// no cancellation path, so the elapsed message may arrive after a stop and
// must then be ignored by its stale generation.
func graceCmd(gen int) tea.Cmd {
	return tea.Tick(agent.GraceDelay, func(time.Time) tea.Msg {
		return graceElapsedMsg{gen: gen}
	})
}

func (m Model) pinCheckCmd(gen int) tea.Cmd {
	return func() tea.Msg {
		settings, err := m.client.AgentSettings(context.Background())
		return pinCheckMsg{gen: gen, required: settings.PinRequired, err: err}
	}
}

func (m Model) submitPinCmd(gen int, pin string) tea.Cmd {
	return func() tea.Msg {
		err := m.client.SubmitPin(context.Background(), pin)
		return pinSubmitMsg{gen: gen, err: err}
	}
}

func agentPollTickCmd(gen int) tea.Cmd {
	return tea.Tick(agent.PollInterval, func(time.Time) tea.Msg {
		return agentPollTickMsg{gen: gen}
	})
}

func (m Model) agentStatusCmd(gen int) tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.AgentStatus(context.Background(), m.username())
		return agentStatusMsg{gen: gen, running: status.Active(), err: err}
	}
}

func (m Model) stopAgentCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.client.StopAgent(context.Background(), m.username())
		return agentStoppedMsg{err: err}
	}
}

func messageTickCmd(gen int) tea.Cmd {
	return tea.Tick(messageLoopInterval, func(time.Time) tea.Msg {
		return messageTickMsg{gen: gen}
	})
}

func (m Model) fetchMessagesCmd(gen int) tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.client.Messages(context.Background(), false)
		return messagesMsg{gen: gen, msgs: msgs, err: err}
	}
}

func notificationTickCmd(gen int) tea.Cmd {
	return tea.Tick(notificationLoopInterval, func(time.Time) tea.Msg {
		return notificationTickMsg{gen: gen}
	})
}

func (m Model) fetchNotificationsCmd(gen int) tea.Cmd {
	return func() tea.Msg {
		items, err := m.client.Notifications(context.Background())
		return notificationsMsg{gen: gen, items: items, err: err}
	}
}

func (m Model) newMessageNotificationCmd(msg domain.Message) tea.Cmd {
	return func() tea.Msg {
		err := m.client.CreateNotification(context.Background(),
			"New message", "From "+msg.ContactUsername)
		return notificationActionMsg{err: err}
	}
}

func (m Model) markNotificationReadCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return notificationActionMsg{err: m.client.MarkNotificationRead(context.Background(), id)}
	}
}

func (m Model) deleteNotificationCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return notificationActionMsg{err: m.client.DeleteNotification(context.Background(), id)}
	}
}

func (m Model) clearNotificationsCmd() tea.Cmd {
	return func() tea.Msg {
		return notificationActionMsg{err: m.client.ClearNotifications(context.Background())}
	}
}

func (m Model) fetchHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.client.Messages(context.Background(), true)
		return historyMsg{msgs: msgs, err: err}
	}
}

func (m Model) fetchProfileCmd() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.client.Profile(context.Background())
		return profileMsg{profile: profile, err: err}
	}
}

func (m Model) fetchSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		settings, err := m.client.AgentSettings(context.Background())
		return settingsMsg{settings: settings, err: err}
	}
}

func (m Model) toggleAutoReplyCmd(enabled bool) tea.Cmd {
	return func() tea.Msg {
		settings, err := m.client.UpdateAgentSettings(context.Background(),
			map[string]any{"agent_auto_reply": enabled})
		return settingsMsg{settings: settings, err: err}
	}
}

func (m Model) sendReplyCmd(msg domain.Message, reply string) tea.Cmd {
	return func() tea.Msg {
		err := m.client.PatchMessage(context.Background(), msg.ID, domain.MessagePatch{
			ReplyMessage: reply,
			Score:        msg.Score,
			Replied:      true,
		})
		return replySentMsg{id: msg.ID, err: err}
	}
}

func cardRemovalCmd(id int64) tea.Cmd {
	return tea.Tick(replyConfirmDelay, func(time.Time) tea.Msg {
		return cardRemovalMsg{id: id}
	})
}

func (m Model) uploadDatasetCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.datasets.Upload(context.Background(), m.username(), path)
		return datasetUploadMsg{result: result, err: err}
	}
}

func (m Model) downloadDatasetCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := m.datasets.Download(context.Background(), m.username())
		return datasetDownloadMsg{path: path, err: err}
	}
}

func (m Model) copyDraftCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return copyMsg{err: clipboard.Copy(ctx, text)}
	}
}

// --- sync loop control ---

// startLoops (re)starts both sync loops. Bumping the generations first
// guarantees at most one live timer chain per loop no matter how often
// this is called.
func (m *Model) startLoops() []tea.Cmd {
	m.msgLoopGen++
	m.notifLoopGen++
	m.loopsActive = true
	return []tea.Cmd{
		messageTickCmd(m.msgLoopGen),
		m.fetchNotificationsCmd(m.notifLoopGen),
		notificationTickCmd(m.notifLoopGen),
	}
}

func (m *Model) stopLoops() {
	m.msgLoopGen++
	m.notifLoopGen++
	m.loopsActive = false
}

// --- update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case AuthExpiredMsg:
		return m.forceLogout("Session expired, please log in again")

	case loginMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Login failed: " + userFacing(msg.err)
			break
		}
		m.err = nil
		m.status = "Welcome back, " + msg.auth.Username
		m.screen = screenDashboard
		_ = m.sess.Set(session.KeyLastView, m.screen.String())

	case registerMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Sign-up failed: " + userFacing(msg.err)
			break
		}
		m.err = nil
		m.screen = screenTelegramLink
		m.form = telegramForm()
		m.formFocus = 0

	case linkMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Could not link account: " + userFacing(msg.err)
			break
		}
		m.err = nil
		_ = m.sess.SetBool(session.KeyOnboarded, true)
		m.status = "Telegram account linked"
		m.screen = screenDashboard
		_ = m.sess.Set(session.KeyLastView, m.screen.String())

	case agentStartedMsg:
		if msg.err != nil {
			m.controller.StartFailed(msg.gen)
			m.agentBusy = false
			m.status = "Could not start agent: " + userFacing(msg.err)
			break
		}
		cmds = append(cmds, graceCmd(msg.gen))

	case graceElapsedMsg:
		if msg.gen != m.controller.Generation() {
			break
		}
		cmds = append(cmds, m.pinCheckCmd(msg.gen))

	case pinCheckMsg:
		if msg.gen != m.controller.Generation() {
			break
		}
		if msg.err != nil {
			m.controller.StartFailed(msg.gen)
			m.agentBusy = false
			m.status = "Could not check agent status: " + userFacing(msg.err)
			break
		}
		m.controller.PinCheck(msg.gen, msg.required, time.Now())
		if m.controller.State() == agent.PinPending {
			m.agentBusy = false
			m.pinOpen = true
			m.pinInput.SetValue("")
			m.pinInput.Focus()
			break
		}
		cmds = append(cmds, agentPollTickCmd(msg.gen))

	case pinSubmitMsg:
		m.pinSubmitted = false
		if msg.gen != m.controller.Generation() {
			break
		}
		if msg.err != nil {
			// Wrong PIN: the prompt stays open for another attempt.
			m.status = "Incorrect PIN: " + userFacing(msg.err)
			break
		}
		m.controller.PinAccepted(msg.gen, time.Now())
		m.pinOpen = false
		m.pinInput.Blur()
		m.agentBusy = true
		m.status = "PIN accepted, waiting for agent..."
		cmds = append(cmds, agentPollTickCmd(msg.gen))

	case agentPollTickMsg:
		if msg.gen != m.controller.Generation() {
			break
		}
		cmds = append(cmds, m.agentStatusCmd(msg.gen))

	case agentStatusMsg:
		if msg.err != nil {
			// A failed status check during start polling is retried on the
			// next tick; the 60s budget bounds the whole attempt.
			if msg.gen == m.controller.Generation() && m.controller.State() == agent.Starting {
				cmds = append(cmds, agentPollTickCmd(msg.gen))
			}
			break
		}
		switch m.controller.PollResult(msg.gen, msg.running, time.Now()) {
		case agent.PollRunning:
			m.agentBusy = false
			m.status = "Agent is running"
			_ = m.sess.SetBool(session.KeyAgentRunning, true)
			cmds = append(cmds, m.startLoops()...)
			cmds = append(cmds, m.fetchMessagesCmd(m.msgLoopGen))
		case agent.PollContinue:
			cmds = append(cmds, agentPollTickCmd(msg.gen))
		case agent.PollTimedOut:
			m.agentBusy = false
			m.status = "Agent did not come up in time"
		}

	case agentStoppedMsg:
		if msg.err != nil {
			m.status = "Could not stop agent: " + userFacing(msg.err)
			break
		}
		m.status = "Agent stopped"
		_ = m.sess.SetBool(session.KeyAgentRunning, false)

	case messageTickMsg:
		if msg.gen != m.msgLoopGen {
			break
		}
		cmds = append(cmds, m.fetchMessagesCmd(msg.gen), messageTickCmd(msg.gen))

	case messagesMsg:
		if msg.gen != m.msgLoopGen {
			break
		}
		if msg.err != nil {
			// Background refresh failures never alert.
			m.err = msg.err
			break
		}
		m.err = nil
		cmds = append(cmds, m.applyMessages(msg.msgs)...)

	case notificationTickMsg:
		if msg.gen != m.notifLoopGen {
			break
		}
		cmds = append(cmds, m.fetchNotificationsCmd(msg.gen), notificationTickCmd(msg.gen))

	case notificationsMsg:
		if msg.gen != m.notifLoopGen {
			break
		}
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.notifications = msg.items
		if m.notifCursor >= len(msg.items) {
			m.notifCursor = 0
		}
		m.unread = domain.AnyUnread(msg.items)

	case notificationActionMsg:
		if msg.err != nil {
			m.err = msg.err
		}

	case historyMsg:
		if msg.err != nil {
			m.status = "Could not load history: " + userFacing(msg.err)
			break
		}
		m.history = msg.msgs

	case profileMsg:
		if msg.err != nil {
			m.status = "Could not load profile: " + userFacing(msg.err)
			break
		}
		m.profile = msg.profile

	case settingsMsg:
		if msg.err != nil {
			m.status = "Settings update failed: " + userFacing(msg.err)
			break
		}
		m.settings = msg.settings
		_ = m.sess.SetBool(session.KeyAutoReply, msg.settings.AutoReply)

	case replySentMsg:
		delete(m.pendingSend, msg.id)
		if msg.err != nil {
			m.status = "Could not send reply: " + userFacing(msg.err)
			break
		}
		m.status = "Reply sent"
		cmds = append(cmds, cardRemovalCmd(msg.id))

	case cardRemovalMsg:
		m.removeFromSnapshot(msg.id)

	case datasetUploadMsg:
		if msg.err != nil {
			m.status = "Upload failed: " + userFacing(msg.err)
			break
		}
		m.status = fmt.Sprintf("Dataset uploaded (%s, %d added)", msg.result.Status, msg.result.Added)

	case datasetDownloadMsg:
		if msg.err != nil {
			m.status = "Download failed: " + userFacing(msg.err)
			break
		}
		m.status = "Dataset saved to " + msg.path

	case copyMsg:
		if msg.err != nil {
			m.status = "Could not copy: " + userFacing(msg.err)
		} else {
			m.status = "Draft copied to clipboard"
		}

	case tea.KeyMsg:
		model, cmd := m.handleKey(msg)
		return model, cmd
	}

	if m.agentBusy {
		var spin tea.Cmd
		m.spinner, spin = m.spinner.Update(msg)
		cmds = append(cmds, spin)
	}

	return m, tea.Batch(cmds...)
}

// applyMessages replaces the rendered card set with the latest snapshot:
// the displayed id set always equals exactly the filtered id set of the
// most recent response, with new ids notifying once each.
func (m *Model) applyMessages(msgs []domain.Message) []tea.Cmd {
	var cmds []tea.Cmd

	fresh := m.seen.MarkNew(msgs)
	byID := make(map[int64]domain.Message, len(msgs))
	for _, msg := range msgs {
		byID[msg.ID] = msg
	}
	for _, id := range fresh {
		cmds = append(cmds, m.newMessageNotificationCmd(byID[id]))
	}

	m.lastSnapshot = msgs
	m.renderCategory()
	return cmds
}

// renderCategory rebuilds the visible list for the selected tab from the
// last snapshot, preserving the selection when its id survived the diff.
func (m *Model) renderCategory() {
	visible := inbox.Filter(m.lastSnapshot, m.category)
	diff := inbox.DiffIDs(m.renderedIDs, visible)

	var selectedID int64 = -1
	if item, ok := m.msgList.SelectedItem().(messageItem); ok {
		selectedID = item.m.ID
	}

	items := make([]list.Item, 0, len(visible))
	ids := make([]int64, 0, len(visible))
	selectIdx := 0
	for idx, msg := range visible {
		items = append(items, messageItem{m: msg})
		ids = append(ids, msg.ID)
		if msg.ID == selectedID {
			selectIdx = idx
		}
	}
	m.msgList.SetItems(items)
	m.renderedIDs = ids
	if len(items) > 0 {
		m.msgList.Select(selectIdx)
	}
	m.renderDetail()

	if len(diff.Added) > 0 || len(diff.Removed) > 0 {
		m.status = fmt.Sprintf("Inbox updated: %d new, %d resolved", len(diff.Added), len(diff.Removed))
	}
}

func (m *Model) removeFromSnapshot(id int64) {
	kept := m.lastSnapshot[:0]
	for _, msg := range m.lastSnapshot {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	m.lastSnapshot = kept
	m.renderCategory()
}

func (m *Model) selectedMessage() (domain.Message, bool) {
	item, ok := m.msgList.SelectedItem().(messageItem)
	if !ok {
		return domain.Message{}, false
	}
	return item.m, true
}

// forceLogout is the single logout path: loops halted and start-flow
// generations invalidated before the session is cleared, so no orphaned
// timer fires an authenticated call with no credentials.
func (m Model) forceLogout(status string) (tea.Model, tea.Cmd) {
	m.stopLoops()
	m.controller.Stop()
	_ = m.sess.Clear()

	m.screen = screenIntro
	m.pinOpen = false
	m.notifOpen = false
	m.editing = false
	m.choosing = false
	m.agentBusy = false
	m.lastSnapshot = nil
	m.renderedIDs = nil
	m.seen = inbox.NewSeenSet()
	m.msgList.SetItems(nil)
	m.notifications = nil
	m.unread = false
	m.history = nil
	m.status = status
	return m, nil
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	left, right := m.paneWidths()
	bodyHeight := m.height - 4
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	m.msgList.SetSize(left-2, bodyHeight-2)
	m.detail.Width = right - 2
	m.detail.Height = bodyHeight - 2
	m.editor.SetWidth(right - 4)
	m.editor.SetHeight(6)
}

func (m *Model) paneWidths() (int, int) {
	left := m.width / 3
	if left < 30 {
		left = 30
	}
	if left > m.width-30 {
		left = m.width - 30
	}
	if left < 20 {
		left = 20
	}
	right := m.width - left - 1
	if right < 20 {
		right = 20
	}
	return left, right
}

func userFacing(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Detail
	}
	return err.Error()
}
