package ui

import (
	"path/filepath"
	"reflect"
	"testing"

	"inboxpilot/internal/agent"
	"inboxpilot/internal/api"
	"inboxpilot/internal/config"
	"inboxpilot/internal/dataset"
	"inboxpilot/internal/domain"
	"inboxpilot/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, seed map[string]string) Model {
	t.Helper()
	sess, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	for k, v := range seed {
		if err := sess.Set(k, v); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}

	client := api.NewClient("http://127.0.0.1:1", sess)
	return NewModel(config.AppConfig{}, client, sess, dataset.New(client, t.TempDir()))
}

func loggedInSeed() map[string]string {
	return map[string]string{
		session.KeyAccessToken:  "tok",
		session.KeyRefreshToken: "ref",
		session.KeyUsername:     "ava",
	}
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestStartLoopsTwiceLeavesOneActiveTimer(t *testing.T) {
	m := newTestModel(t, loggedInSeed())

	m.startLoops()
	firstGen := m.msgLoopGen
	m.startLoops()
	if m.msgLoopGen == firstGen {
		t.Fatalf("restart must bump the loop generation")
	}

	// A tick from the first chain is dropped and not rescheduled.
	m, cmd := step(t, m, messageTickMsg{gen: firstGen})
	if cmd != nil {
		t.Fatalf("stale tick must not reschedule")
	}

	// The live chain keeps ticking.
	_, cmd = step(t, m, messageTickMsg{gen: m.msgLoopGen})
	if cmd == nil {
		t.Fatalf("current tick should fetch and reschedule")
	}
}

func TestStoppedLoopDropsLateResults(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.startLoops()
	gen := m.msgLoopGen
	m.stopLoops()

	m, cmd := step(t, m, messagesMsg{gen: gen, msgs: []domain.Message{{ID: 9, IsImportant: true}}})
	if cmd != nil {
		t.Fatalf("late poll result must not schedule work")
	}
	if len(m.renderedIDs) != 0 {
		t.Fatalf("late poll result must not render cards, got %v", m.renderedIDs)
	}
}

func TestPollReplacesDisplayedSet(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.startLoops()
	gen := m.msgLoopGen

	m, _ = step(t, m, messagesMsg{gen: gen, msgs: []domain.Message{
		{ID: 1, IsImportant: true},
		{ID: 2, IsImportant: true},
	}})
	if !reflect.DeepEqual(m.renderedIDs, []int64{1, 2}) {
		t.Fatalf("first poll: got %v", m.renderedIDs)
	}

	// id 1 disappears, id 5 appears; display equals the latest snapshot.
	m, _ = step(t, m, messagesMsg{gen: gen, msgs: []domain.Message{
		{ID: 2, IsImportant: true},
		{ID: 5, IsImportant: true},
	}})
	if !reflect.DeepEqual(m.renderedIDs, []int64{2, 5}) {
		t.Fatalf("second poll: got %v", m.renderedIDs)
	}
}

func TestNewMessagesNotifyOncePerID(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.startLoops()
	gen := m.msgLoopGen

	snapshot := []domain.Message{{ID: 1, IsImportant: true}}
	cmds := m.applyMessages(snapshot)
	if len(cmds) != 1 {
		t.Fatalf("first observation should notify once, got %d", len(cmds))
	}

	cmds = m.applyMessages(snapshot)
	if len(cmds) != 0 {
		t.Fatalf("repeat observation must not notify, got %d", len(cmds))
	}
	_ = gen
}

func TestCategoryFilterScenario(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.startLoops()

	msgs := []domain.Message{
		{ID: 1, IsImportant: true},
		{ID: 2, IsImportant: false, IsToxic: false},
	}
	m, _ = step(t, m, messagesMsg{gen: m.msgLoopGen, msgs: msgs})

	if !reflect.DeepEqual(m.renderedIDs, []int64{1}) {
		t.Fatalf("important tab: got %v", m.renderedIDs)
	}

	m.category = domain.CategoryGeneral
	m.renderCategory()
	if !reflect.DeepEqual(m.renderedIDs, []int64{2}) {
		t.Fatalf("general tab: got %v", m.renderedIDs)
	}
}

func startAgentFlow(t *testing.T, m Model) (Model, int) {
	t.Helper()
	if !m.controller.Choose() {
		t.Fatalf("choose should succeed from stopped")
	}
	gen, ok := m.controller.Start("mistral-classifier")
	if !ok {
		t.Fatalf("start should succeed")
	}
	m.agentBusy = true

	m, cmd := step(t, m, agentStartedMsg{gen: gen})
	if cmd == nil {
		t.Fatalf("successful start must schedule the grace wait")
	}
	return m, gen
}

func TestPinRequiredShowsPromptBeforeRunning(t *testing.T) {
	m, gen := startAgentFlow(t, newTestModel(t, loggedInSeed()))

	m, _ = step(t, m, pinCheckMsg{gen: gen, required: true})
	if !m.pinOpen {
		t.Fatalf("PIN challenge must open the prompt")
	}
	if m.controller.State() != agent.PinPending {
		t.Fatalf("expected PinPending, got %s", m.controller.State())
	}

	// A stray running observation must not skip the PIN gate.
	m, _ = step(t, m, agentStatusMsg{gen: gen, running: true})
	if m.controller.State() != agent.PinPending {
		t.Fatalf("running observation during PIN must be ignored, got %s", m.controller.State())
	}

	m, cmd := step(t, m, pinSubmitMsg{gen: gen})
	if m.pinOpen {
		t.Fatalf("accepted PIN should close the prompt")
	}
	if m.controller.State() != agent.Starting {
		t.Fatalf("accepted PIN should resume starting, got %s", m.controller.State())
	}
	if cmd == nil {
		t.Fatalf("accepted PIN should begin status polling")
	}

	m, _ = step(t, m, agentStatusMsg{gen: gen, running: true})
	if m.controller.State() != agent.Running {
		t.Fatalf("expected Running, got %s", m.controller.State())
	}
	if !m.loopsActive {
		t.Fatalf("reaching Running must start the sync loops")
	}
}

func TestNoPinSkipsStraightToPolling(t *testing.T) {
	m, gen := startAgentFlow(t, newTestModel(t, loggedInSeed()))

	m, cmd := step(t, m, pinCheckMsg{gen: gen, required: false})
	if m.pinOpen {
		t.Fatalf("no PIN challenge should not open the prompt")
	}
	if m.controller.State() != agent.Starting {
		t.Fatalf("expected Starting, got %s", m.controller.State())
	}
	if cmd == nil {
		t.Fatalf("expected a poll tick to be scheduled")
	}
}

func TestWrongPinKeepsPromptOpen(t *testing.T) {
	m, gen := startAgentFlow(t, newTestModel(t, loggedInSeed()))
	m, _ = step(t, m, pinCheckMsg{gen: gen, required: true})

	m, cmd := step(t, m, pinSubmitMsg{gen: gen, err: &api.APIError{Status: 400, Detail: "invalid pin"}})
	if !m.pinOpen {
		t.Fatalf("wrong PIN must leave the prompt open")
	}
	if m.controller.State() != agent.PinPending {
		t.Fatalf("wrong PIN must not transition, got %s", m.controller.State())
	}
	if cmd != nil {
		t.Fatalf("wrong PIN must not begin polling")
	}
}

func TestStopCancelsStartPolling(t *testing.T) {
	m, gen := startAgentFlow(t, newTestModel(t, loggedInSeed()))
	m, _ = step(t, m, pinCheckMsg{gen: gen, required: false})

	updated, _ := m.stopAgent()
	m = updated.(Model)
	if m.controller.State() != agent.Stopped {
		t.Fatalf("expected Stopped, got %s", m.controller.State())
	}

	// The cancelled poll's late answer must not resurrect the agent.
	m, _ = step(t, m, agentStatusMsg{gen: gen, running: true})
	if m.controller.State() != agent.Stopped {
		t.Fatalf("late running observation must be ignored, got %s", m.controller.State())
	}
	if m.loopsActive {
		t.Fatalf("loops must stay stopped")
	}

	// So must the uncancellable grace wait's resumption.
	m, cmd := step(t, m, graceElapsedMsg{gen: gen})
	if cmd != nil {
		t.Fatalf("stale grace wait must be a no-op")
	}
	_ = m
}

func TestStartFailureReturnsToStopped(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	if !m.controller.Choose() {
		t.Fatalf("choose should succeed")
	}
	gen, _ := m.controller.Start("mistral-classifier")

	m, cmd := step(t, m, agentStartedMsg{gen: gen, err: &api.APIError{Status: 500, Detail: "boom"}})
	if m.controller.State() != agent.Stopped {
		t.Fatalf("failed start should stop, got %s", m.controller.State())
	}
	if cmd != nil {
		t.Fatalf("failed start must not schedule the grace wait")
	}
}

func TestLoginRoutesToDashboard(t *testing.T) {
	m := newTestModel(t, nil)
	if m.screen != screenIntro {
		t.Fatalf("fresh session should land on intro, got %s", m.screen)
	}

	m, _ = step(t, m, loginMsg{auth: domain.AuthResponse{
		Access: "acc", Refresh: "ref", Username: "ava", IsOnboarded: true,
	}})
	if m.screen != screenDashboard {
		t.Fatalf("login should route to dashboard, got %s", m.screen)
	}
}

func TestReplySentRemovesCardAfterConfirmDelay(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.startLoops()
	m, _ = step(t, m, messagesMsg{gen: m.msgLoopGen, msgs: []domain.Message{
		{ID: 1, IsImportant: true},
		{ID: 2, IsImportant: true},
	}})

	m, cmd := step(t, m, replySentMsg{id: 1})
	if cmd == nil {
		t.Fatalf("sent reply should schedule card removal")
	}
	if !reflect.DeepEqual(m.renderedIDs, []int64{1, 2}) {
		t.Fatalf("card stays until the confirmation delay, got %v", m.renderedIDs)
	}

	m, _ = step(t, m, cardRemovalMsg{id: 1})
	if !reflect.DeepEqual(m.renderedIDs, []int64{2}) {
		t.Fatalf("card should be gone after the delay, got %v", m.renderedIDs)
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNotificationPanelDeletesSelected(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.notifications = []domain.Notification{
		{ID: 1, Title: "first"},
		{ID: 2, Title: "second", Read: true},
	}
	m.notifOpen = true

	m, _ = step(t, m, keyRunes("j"))
	if m.notifCursor != 1 {
		t.Fatalf("expected cursor on second item, got %d", m.notifCursor)
	}

	m, cmd := step(t, m, keyRunes("d"))
	if cmd == nil {
		t.Fatalf("delete should issue the backend call")
	}
	if len(m.notifications) != 1 || m.notifications[0].ID != 1 {
		t.Fatalf("expected only the first notification left, got %+v", m.notifications)
	}
	if m.notifCursor != 0 {
		t.Fatalf("cursor should clamp to the remaining item, got %d", m.notifCursor)
	}
	if !m.unread {
		t.Fatalf("unread marker should track the surviving unread item")
	}
}

func TestNotificationDeleteOnEmptyPanelIsNoOp(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	m.notifOpen = true

	m, cmd := step(t, m, keyRunes("d"))
	if cmd != nil {
		t.Fatalf("delete with no notifications must not issue a call")
	}
	if len(m.notifications) != 0 {
		t.Fatalf("unexpected notifications %+v", m.notifications)
	}
}

func TestAuthExpiredForcesLogout(t *testing.T) {
	m := newTestModel(t, loggedInSeed())
	if m.screen != screenDashboard {
		t.Fatalf("stored session should land on dashboard, got %s", m.screen)
	}
	m.startLoops()

	m, _ = step(t, m, AuthExpiredMsg{})
	if m.screen != screenIntro {
		t.Fatalf("expired auth should route to intro, got %s", m.screen)
	}
	if m.loopsActive {
		t.Fatalf("expired auth must stop the loops")
	}
	if m.sess.HasSession() {
		t.Fatalf("expired auth must clear the session")
	}
}

func TestLastViewRestoredOnStart(t *testing.T) {
	seed := loggedInSeed()
	seed[session.KeyLastView] = "settings"
	m := newTestModel(t, seed)
	if m.screen != screenSettings {
		t.Fatalf("expected restored settings view, got %s", m.screen)
	}
}
