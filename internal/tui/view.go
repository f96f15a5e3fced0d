package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"mindcare-backend/internal/client"
)

// Messages posted by ProgramView. Each mirrors one client.View method.
type (
	appendMsg          client.Message
	clearMsg           struct{}
	busyMsg            bool
	modeMsg            client.Mode
	voiceStateMsg      client.VoiceState
	voiceStatusMsg     string
	voiceTranscriptMsg string
	sentimentMsg       client.Badge
	alertMsg           string
	noticeMsg          string
)

type voiceReplyMsg struct {
	text    string
	visible bool
}

// ProgramView implements client.View by forwarding every update into the
// bubbletea event loop. Updates posted before Attach are dropped.
type ProgramView struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func (v *ProgramView) Attach(p *tea.Program) {
	v.mu.Lock()
	v.send = p.Send
	v.mu.Unlock()
}

func (v *ProgramView) post(msg tea.Msg) {
	v.mu.RLock()
	send := v.send
	v.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (v *ProgramView) AppendMessage(m client.Message) { v.post(appendMsg(m)) }

func (v *ProgramView) ClearMessages() { v.post(clearMsg{}) }

func (v *ProgramView) SetBusy(busy bool) { v.post(busyMsg(busy)) }

func (v *ProgramView) SetMode(mode client.Mode) { v.post(modeMsg(mode)) }

func (v *ProgramView) SetVoiceState(s client.VoiceState) { v.post(voiceStateMsg(s)) }

func (v *ProgramView) SetVoiceStatus(text string) { v.post(voiceStatusMsg(text)) }

func (v *ProgramView) SetVoiceTranscript(text string) { v.post(voiceTranscriptMsg(text)) }

func (v *ProgramView) SetVoiceReply(text string, visible bool) {
	v.post(voiceReplyMsg{text: text, visible: visible})
}

func (v *ProgramView) SetSentiment(b client.Badge) { v.post(sentimentMsg(b)) }

func (v *ProgramView) Alert(text string) { v.post(alertMsg(text)) }
