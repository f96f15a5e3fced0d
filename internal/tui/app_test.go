package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mindcare-backend/internal/client"
)

func newTestModel(t *testing.T) (Model, *client.Preferences) {
	t.Helper()
	prefs := client.NewPreferences(client.NewMemoryStore())
	ctrl := client.NewController(client.NewAPIClient("http://127.0.0.1:1", nil), prefs, &ProgramView{}, nil, nil)
	t.Cleanup(ctrl.Close)
	m := NewModel(context.Background(), ctrl, prefs, client.ModeChat)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), prefs
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestViewMessagesUpdateModel(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(m, appendMsg(client.Message{Text: "I feel anxious", Sender: client.SenderUser}))
	m, _ = update(m, appendMsg(client.Message{Text: "Let's breathe together.", Sender: client.SenderAI}))
	m, _ = update(m, busyMsg(true))
	m, _ = update(m, sentimentMsg(client.Badge{Icon: "😟", Color: "#EF6C00", Text: "You seem anxious"}))

	if len(m.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.messages))
	}
	if !m.busy || m.badge == nil {
		t.Fatal("expected busy state and badge")
	}
	out := m.View()
	for _, want := range []string{"I feel anxious", "Let's breathe together.", "You seem anxious"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m, _ = update(m, clearMsg{})
	if len(m.messages) != 0 || len(m.lines) != 0 {
		t.Fatal("expected transcript to be cleared")
	}
}

func TestVoiceModeView(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(m, modeMsg(client.ModeVoice))
	m, _ = update(m, voiceStateMsg(client.VoiceListening))
	m, _ = update(m, voiceStatusMsg("Listening..."))
	m, _ = update(m, voiceReplyMsg{text: "hidden reply", visible: false})

	if m.input.Focused() {
		t.Fatal("expected input to blur in voice mode")
	}
	out := m.View()
	if !strings.Contains(out, "Listening...") {
		t.Error("expected status in view")
	}
	if strings.Contains(out, "hidden reply") {
		t.Error("hidden reply must not render")
	}

	m, _ = update(m, voiceReplyMsg{text: "shown reply", visible: true})
	if !strings.Contains(m.View(), "shown reply") {
		t.Error("expected reply box in view")
	}
}

func TestEnterSendsInput(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("blank input must not send")
	}

	m.input.SetValue("hello there")
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to reset, got %q", m.input.Value())
	}
}

func TestQuickActionKeys(t *testing.T) {
	m, _ := newTestModel(t)

	if _, cmd := update(m, tea.KeyMsg{Type: tea.KeyF2}); cmd == nil {
		t.Fatal("expected F2 to send a quick action")
	}
	if !strings.Contains(m.View(), client.T("en", "quick_resources")) {
		t.Error("expected quick actions to render")
	}
}

func TestAlertIsModal(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(m, alertMsg("Speech recognition is not supported on this device."))
	if !strings.Contains(m.View(), "not supported") {
		t.Fatal("expected alert to render")
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Fatal("dismissing the alert must not run a command")
	}
	if m.alert != "" {
		t.Fatal("expected alert to be dismissed")
	}
	if m.input.Value() != "" {
		t.Fatal("the dismissing key must not reach the input")
	}
}

func TestCyclePreferences(t *testing.T) {
	m, prefs := newTestModel(t)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if prefs.Provider() != "gemini" {
		t.Fatalf("expected gemini after groq, got %q", prefs.Provider())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if prefs.Language() != "hi" {
		t.Fatalf("expected hi after en, got %q", prefs.Language())
	}
	if m.input.Placeholder != client.T("hi", "chat_placeholder") {
		t.Fatalf("expected localized placeholder, got %q", m.input.Placeholder)
	}
}

func TestScrollFollowsNewMessages(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 20; i++ {
		m, _ = update(m, appendMsg(client.Message{Text: "line", Sender: client.SenderUser}))
	}

	bottom := len(m.lines) - m.transcriptRows()
	if m.offset != bottom {
		t.Fatalf("expected offset %d, got %d", bottom, m.offset)
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.offset >= bottom {
		t.Fatal("expected pgup to scroll back")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	if len(lines) < 3 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for _, l := range lines {
		if len([]rune(l)) > 9 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("expected no lines for empty text")
	}
}

func TestProgramViewBeforeAttach(t *testing.T) {
	var v ProgramView
	// must not block or panic without a program
	v.AppendMessage(client.Message{Text: "x", Sender: client.SenderAI})
	v.Alert("x")
}
