package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mindcare-backend/internal/client"
)

var providers = []string{"groq", "gemini", "grok", "ollama"}

type Model struct {
	ctx     context.Context
	ctrl    *client.Controller
	prefs   *client.Preferences
	initial client.Mode

	input   textinput.Model
	spinner spinner.Model

	mode     client.Mode
	messages []client.Message
	lines    []string // rendered transcript
	offset   int      // scroll offset into lines
	busy     bool

	voiceState      client.VoiceState
	voiceStatus     string
	voiceTranscript string
	voiceReply      string
	replyVisible    bool

	badge    *client.Badge
	alert    string
	notice   string
	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, ctrl *client.Controller, prefs *client.Preferences, initial client.Mode) Model {
	in := textinput.New()
	in.Placeholder = client.T(prefs.Language(), "chat_placeholder")
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:             ctx,
		ctrl:            ctrl,
		prefs:           prefs,
		initial:         initial,
		input:           in,
		spinner:         sp,
		mode:            client.ModeChat,
		voiceTranscript: "...",
		width:           100,
		height:          30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.switchModeCmd(m.initial))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-6)
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case appendMsg:
		m.messages = append(m.messages, client.Message(msg))
		m.relayout()
		m.scrollToBottom()
		return m, nil

	case clearMsg:
		m.messages = nil
		m.relayout()
		return m, nil

	case busyMsg:
		m.busy = bool(msg)
		return m, nil

	case modeMsg:
		m.mode = client.Mode(msg)
		if m.mode == client.ModeChat {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, nil

	case voiceStateMsg:
		m.voiceState = client.VoiceState(msg)
		return m, nil

	case voiceStatusMsg:
		m.voiceStatus = string(msg)
		return m, nil

	case voiceTranscriptMsg:
		m.voiceTranscript = string(msg)
		return m, nil

	case voiceReplyMsg:
		m.voiceReply = msg.text
		m.replyVisible = msg.visible
		return m, nil

	case sentimentMsg:
		b := client.Badge(msg)
		m.badge = &b
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// the alert is modal; any key dismisses it
	if m.alert != "" {
		if key == "ctrl+c" {
			return m.quit()
		}
		m.alert = ""
		return m, nil
	}

	switch key {
	case "ctrl+c", "esc":
		return m.quit()

	case "tab":
		next := client.ModeVoice
		if m.mode == client.ModeVoice {
			next = client.ModeChat
		}
		return m, m.switchModeCmd(next)

	case "ctrl+n":
		return m, m.newChatCmd()

	case "ctrl+r":
		return m, m.historyCmd()

	case "ctrl+p":
		return m.cycleProvider(), nil

	case "ctrl+l":
		return m.cycleLanguage(), nil

	case "pgup":
		m.scrollUp(m.transcriptRows())
		return m, nil

	case "pgdown":
		m.scrollDown(m.transcriptRows())
		return m, nil
	}

	if m.mode == client.ModeVoice {
		if key == "enter" || key == " " {
			return m, m.toggleVoiceCmd()
		}
		return m, nil
	}

	switch key {
	case "enter":
		text := m.input.Value()
		m.input.Reset()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.notice = ""
		return m, m.sendCmd(text)

	case "up":
		m.scrollUp(1)
		return m, nil

	case "down":
		m.scrollDown(1)
		return m, nil

	case "f1", "f2", "f3", "alt+1", "alt+2", "alt+3":
		idx := int(key[len(key)-1] - '1')
		if actions := client.QuickActions(m.prefs.Language()); idx < len(actions) {
			return m, m.sendCmd(actions[idx])
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Close()
	return m, tea.Quit
}

func (m Model) cycleProvider() Model {
	next := providers[(indexOf(providers, m.prefs.Provider())+1)%len(providers)]
	if err := m.ctrl.SetProvider(next); err != nil {
		m.notice = "Failed to save provider: " + err.Error()
		return m
	}
	m.notice = "Provider: " + next
	return m
}

func (m Model) cycleLanguage() Model {
	next := client.Languages[(indexOf(client.Languages, m.prefs.Language())+1)%len(client.Languages)]
	if err := m.ctrl.SetLanguage(next); err != nil {
		m.notice = "Failed to save language: " + err.Error()
		return m
	}
	m.input.Placeholder = client.T(next, "chat_placeholder")
	m.notice = "Language: " + next
	return m
}

// Commands. Results reach the model through ProgramView.

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Send(ctx, text)
		return nil
	}
}

func (m Model) switchModeCmd(mode client.Mode) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.SwitchMode(mode)
		return nil
	}
}

func (m Model) toggleVoiceCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		err := ctrl.ToggleVoice(ctx)
		if err != nil && !errors.Is(err, client.ErrRecognitionUnsupported) && !errors.Is(err, client.ErrVoiceBusy) {
			return noticeMsg("Voice: " + err.Error())
		}
		return nil
	}
}

func (m Model) newChatCmd() tea.Cmd {
	ctx, ctrl, lang := m.ctx, m.ctrl, m.prefs.Language()
	return func() tea.Msg {
		if err := ctrl.NewChat(ctx); err != nil {
			return noticeMsg(err.Error())
		}
		return noticeMsg(client.T(lang, "chat_new"))
	}
}

func (m Model) historyCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		n, err := ctrl.LoadHistory(ctx)
		switch {
		case errors.Is(err, client.ErrNotLoggedIn):
			return noticeMsg("Log in with `mindcare-chat login` to load history")
		case errors.Is(err, client.ErrNoSession):
			return noticeMsg("No conversation to load yet")
		case err != nil:
			return noticeMsg(err.Error())
		}
		return noticeMsg(fmt.Sprintf("Loaded %d messages", n))
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.alert != "" {
		box := alertStyle.Render(m.alert + "\n\n" + dimStyle.Render("Press any key"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")
	if m.mode == client.ModeVoice {
		b.WriteString(m.viewVoice())
	} else {
		b.WriteString(m.viewChat())
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder

	rows := m.transcriptRows()
	end := min(m.offset+rows, len(m.lines))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.lines[i] + "\n")
	}
	for i := max(0, end-m.offset); i < rows; i++ {
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(" " + m.spinner.View() + dimStyle.Render(client.T(m.prefs.Language(), "chat_thinking")))
	}
	b.WriteString("\n")
	b.WriteString(m.renderQuickActions() + "\n")
	b.WriteString(statusBarStyle.Render(">") + " " + m.input.View() + "\n")
	return b.String()
}

func (m Model) viewVoice() string {
	var mic string
	switch m.voiceState {
	case client.VoiceListening:
		mic = micListeningStyle.Render("( ● )  Enter to stop")
	case client.VoiceFinalizing:
		mic = micBusyStyle.Render("( " + m.spinner.View() + ")")
	default:
		mic = micIdleStyle.Render("( ○ )  Enter to speak")
	}

	width := min(72, max(20, m.width-4))
	parts := []string{
		mic,
		"",
		voiceStatusStyle.Render(m.voiceStatus),
		"",
		voiceTranscriptStyle.Width(width).Align(lipgloss.Center).Render(m.voiceTranscript),
	}
	if m.replyVisible {
		parts = append(parts, "", replyBoxStyle.Width(width).Render(m.voiceReply))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.width, max(1, m.height-2), lipgloss.Center, lipgloss.Center, content) + "\n"
}

func (m Model) renderTitle() string {
	tabs := []string{modeInactiveStyle.Render("Chat"), modeInactiveStyle.Render("Voice")}
	if m.mode == client.ModeVoice {
		tabs[1] = modeActiveStyle.Render("Voice")
	} else {
		tabs[0] = modeActiveStyle.Render("Chat")
	}

	title := titleStyle.Render("MindCare Navigator") + strings.Join(tabs, "")
	title += dimStyle.Render(fmt.Sprintf("  %s · %s", m.prefs.Provider(), m.prefs.Language()))
	if m.badge != nil {
		badge := lipgloss.NewStyle().Foreground(lipgloss.Color(m.badge.Color)).Bold(true)
		title += "  " + badge.Render(m.badge.Icon+" "+m.badge.Text)
	}
	return title
}

func (m Model) renderQuickActions() string {
	var chips []string
	for i, a := range client.QuickActions(m.prefs.Language()) {
		chips = append(chips, chipStyle.Render(fmt.Sprintf("F%d %s", i+1, a)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderHelp() string {
	help := "  Enter: send  F1-F3: quick reply  Tab: voice  ^N: new chat  ^R: history  ^P: provider  ^L: language  Esc: quit"
	if m.mode == client.ModeVoice {
		help = "  Enter/Space: mic  Tab: chat  ^N: new chat  ^P: provider  ^L: language  Esc: quit"
	}
	out := helpStyle.Render(help)
	if m.notice != "" {
		out += noticeStyle.Render("  " + m.notice)
	}
	return out
}

// chat view chrome: title, typing line, quick actions (3), input, help
const chatChromeRows = 7

func (m Model) transcriptRows() int {
	return max(1, m.height-chatChromeRows)
}

func (m *Model) relayout() {
	m.lines = renderTranscript(m.messages, m.width)
	m.clampOffset()
}

func (m *Model) scrollUp(n int) {
	m.offset -= n
	m.clampOffset()
}

func (m *Model) scrollDown(n int) {
	m.offset += n
	m.clampOffset()
}

func (m *Model) scrollToBottom() {
	m.offset = len(m.lines) - m.transcriptRows()
	m.clampOffset()
}

func (m *Model) clampOffset() {
	maxOffset := max(0, len(m.lines)-m.transcriptRows())
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
