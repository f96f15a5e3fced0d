package client

import "sync"

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one rendered chat bubble.
type Message struct {
	Text   string
	Sender Sender
}

// Transcript is the client's in-memory view of the conversation.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func (t *Transcript) Append(m Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

func (t *Transcript) Clear() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}

func (t *Transcript) Replace(msgs []Message) {
	t.mu.Lock()
	t.messages = append([]Message(nil), msgs...)
	t.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
