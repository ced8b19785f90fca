package ui

import (
	"fmt"
	"strings"

	"inboxpilot/internal/domain"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	unreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)
)

func panelStyle(active bool) lipgloss.Style {
	border := lipgloss.NormalBorder()
	color := lipgloss.Color("240")
	if active {
		color = lipgloss.Color("39")
	}
	return lipgloss.NewStyle().
		Border(border, true).
		BorderForeground(color).
		Padding(0, 1)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	var body string
	switch m.screen {
	case screenIntro:
		body = m.introView()
	case screenSignup:
		body = m.formView("Create your account", "enter: next field · esc: back")
	case screenLogin:
		body = m.formView("Log in", "enter: submit · esc: back")
	case screenTelegramLink:
		body = m.formView("Connect your Telegram account", "enter: link · esc: back")
	case screenDashboard:
		body = m.dashboardView()
	case screenHistory:
		body = m.historyView()
	case screenProfile:
		body = m.profileView()
	case screenSettings:
		body = m.settingsView()
	}

	if m.pinOpen {
		body = m.overlay(body, m.pinModalView())
	} else if m.choosing {
		body = m.overlay(body, m.modelPickerView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.statusLine(), body)
}

func (m Model) statusLine() string {
	status := "inboxpilot"
	if name := m.username(); name != "" {
		status += "  @" + name
	}
	status += "  agent=" + m.controller.State().String()
	if m.agentBusy {
		status += "  " + m.spinner.View()
	}
	if m.unread {
		status += "  " + unreadStyle.Render("●")
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + shorten(m.status, 70)
	}
	return statusStyle.Render(status)
}

func (m Model) introView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("inboxpilot") + "\n\n")
	b.WriteString("Triage your social inbox with AI-drafted replies.\n\n")
	b.WriteString("enter  get started\n")
	b.WriteString("l      log in\n")
	b.WriteString("q      quit\n")
	return modalStyle.Render(b.String())
}

func (m Model) formView(title, hint string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for _, f := range m.form {
		b.WriteString(f.View() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(hint))
	if m.err != nil {
		b.WriteString("\n" + alertStyle.Render(userFacing(m.err)))
	}
	return modalStyle.Render(b.String())
}

func (m Model) dashboardView() string {
	left, right := m.paneWidths()
	bodyHeight := m.height - 4
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	listPane := panelStyle(true).Width(left).Height(bodyHeight).Render(
		m.tabsView() + "\n" + m.msgList.View())

	var rightContent string
	switch {
	case m.notifOpen:
		rightContent = m.notificationPanelView()
	case m.editing:
		rightContent = titleStyle.Render("Edit reply") + "\n\n" +
			m.editor.View() + "\n\n" +
			dimStyle.Render("ctrl+s: save & send · esc: cancel")
	default:
		rightContent = m.detail.View()
	}
	detailPane := panelStyle(false).Width(right).Height(bodyHeight).Render(rightContent)

	body := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m Model) tabsView() string {
	var tabs []string
	for _, cat := range []domain.Category{
		domain.CategoryImportant,
		domain.CategoryGeneral,
		domain.CategoryFlagged,
	} {
		label := string(cat)
		if cat == m.category {
			label = titleStyle.Render("[" + label + "]")
		} else {
			label = dimStyle.Render(label)
		}
		tabs = append(tabs, label)
	}
	return strings.Join(tabs, " ")
}

func (m Model) notificationPanelView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notifications") + "\n\n")
	if len(m.notifications) == 0 {
		b.WriteString(dimStyle.Render("Nothing here yet."))
		return b.String()
	}
	for i, n := range m.notifications {
		cursor := "  "
		if i == m.notifCursor {
			cursor = "> "
		}
		marker := "  "
		if !n.Read {
			marker = unreadStyle.Render("● ")
		}
		b.WriteString(cursor + marker + n.Title + "\n")
		if n.Body != "" {
			b.WriteString("    " + dimStyle.Render(shorten(n.Body, m.detail.Width-6)) + "\n")
		}
	}
	b.WriteString("\n" + dimStyle.Render("enter: mark all read · d: delete · c: clear · n: close"))
	return b.String()
}

func (m Model) historyView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reply history") + "\n\n")
	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("No replies sent yet."))
	}
	for _, msg := range m.history {
		b.WriteString("@" + msg.ContactUsername + "  " + dimStyle.Render(msg.Timestamp) + "\n")
		b.WriteString("  " + shorten(msg.Body, m.width-6) + "\n")
		b.WriteString("  " + dimStyle.Render("↳ ") + shorten(msg.AIReply, m.width-8) + "\n\n")
	}
	b.WriteString(dimStyle.Render("esc: back"))
	return panelStyle(true).Width(m.width - 2).Height(m.height - 4).Render(b.String())
}

func (m Model) profileView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n\n")
	b.WriteString("Username:      " + m.profile.Username + "\n")
	b.WriteString("Email:         " + m.profile.Email + "\n")
	b.WriteString("Telegram:      " + m.profile.TelegramMobileNumber + "\n")
	b.WriteString("Plan:          " + m.profile.SubscriptionPlan + "\n")
	b.WriteString("Training:      " + m.profile.AgentTrainingStatus + "\n")
	b.WriteString("\n" + dimStyle.Render("esc: back"))
	return panelStyle(true).Width(m.width - 2).Height(m.height - 4).Render(b.String())
}

func (m Model) settingsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n\n")
	auto := "off"
	if m.settings.AutoReply {
		auto = "on"
	}
	b.WriteString("a  auto-reply: " + auto + "\n")
	b.WriteString("u  upload training dataset\n")
	b.WriteString("d  download dataset\n")
	b.WriteString("t  retrain model\n")
	if len(m.form) == 1 {
		b.WriteString("\n" + m.form[0].View() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("esc: back"))
	return panelStyle(true).Width(m.width - 2).Height(m.height - 4).Render(b.String())
}

func (m Model) pinModalView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Telegram verification") + "\n\n")
	b.WriteString("Enter the one-time PIN sent to your Telegram app.\n\n")
	b.WriteString(m.pinInput.View() + "\n\n")
	b.WriteString(dimStyle.Render("enter: verify · esc: cancel"))
	return modalStyle.Render(b.String())
}

func (m Model) modelPickerView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose a model") + "\n\n")
	for i, name := range m.models {
		cursor := "  "
		if i == m.modelCursor {
			cursor = "> "
		}
		b.WriteString(cursor + name + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter: start agent · esc: cancel"))
	return modalStyle.Render(b.String())
}

// overlay floats a modal over the current body.
func (m Model) overlay(body, modal string) string {
	return lipgloss.Place(m.width, lipgloss.Height(body), lipgloss.Center, lipgloss.Center, modal)
}

// renderDetail rebuilds the right pane for the selected card.
func (m *Model) renderDetail() {
	selected, ok := m.selectedMessage()
	if !ok {
		m.detail.SetContent(dimStyle.Render("No messages in this category."))
		return
	}

	md := buildCardMarkdown(selected)
	wrap := m.detail.Width - 2
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamour),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.detail.SetContent(md)
		return
	}
	if out, renderErr := r.Render(md); renderErr == nil {
		m.detail.SetContent(out)
	} else {
		m.detail.SetContent(md)
	}
	m.detail.GotoTop()
}

func buildCardMarkdown(msg domain.Message) string {
	var b strings.Builder
	b.WriteString("## @" + msg.ContactUsername + "\n\n")
	b.WriteString(msg.Body + "\n\n")
	b.WriteString(fmt.Sprintf("_%s · confidence %.0f%%_\n\n", msg.Sentiment, msg.Score*100))
	b.WriteString("### Suggested reply\n\n")
	if strings.TrimSpace(msg.AIReply) == "" {
		b.WriteString("_No draft yet._\n")
	} else {
		b.WriteString("> " + strings.ReplaceAll(msg.AIReply, "\n", "\n> ") + "\n")
	}
	return b.String()
}

// previewLine flattens a message body into one width-safe list line.
func previewLine(msg domain.Message) string {
	body := strings.Join(strings.Fields(msg.Body), " ")
	tags := ""
	if msg.IsToxic {
		tags = alertStyle.Render("[flagged] ")
	}
	return tags + ansi.Truncate(body, 56, "...")
}

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 3 {
		n = 3
	}
	return ansi.Truncate(s, n, "...")
}
