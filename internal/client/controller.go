package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"mindcare-backend/internal/models"
)

type Mode string

const (
	ModeChat  Mode = "chat"
	ModeVoice Mode = "voice"
)

// View renders controller state. Methods are called from background
// goroutines, so implementations must be safe for concurrent use.
type View interface {
	AppendMessage(m Message)
	ClearMessages()
	SetBusy(busy bool)
	SetMode(mode Mode)
	SetVoiceState(state VoiceState)
	SetVoiceStatus(text string)
	SetVoiceTranscript(text string)
	SetVoiceReply(text string, visible bool)
	SetSentiment(b Badge)
	Alert(text string)
}

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrNoSession   = errors.New("no conversation yet")
)

type chatAPI interface {
	Chat(ctx context.Context, token string, req models.ChatRequest) (*models.ChatResponse, error)
	NewChat(ctx context.Context, token string) (string, error)
	Sessions(ctx context.Context, token string) ([]string, error)
	History(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error)
}

type Controller struct {
	api        chatAPI
	prefs      *Preferences
	view       View
	transcript *Transcript
	voice      *VoiceCapture
	speaker    *Speaker

	mu   sync.Mutex
	mode Mode
	busy int
}

// NewController wires the chat widget. recognizer and synth may be nil.
func NewController(api chatAPI, prefs *Preferences, view View, recognizer Recognizer, synth Synthesizer) *Controller {
	c := &Controller{
		api:        api,
		prefs:      prefs,
		view:       view,
		transcript: &Transcript{},
		mode:       ModeChat,
	}
	c.speaker = NewSpeaker(synth, c.playbackDone)
	c.voice = NewVoiceCapture(recognizer, VoiceHooks{
		OnChange:  c.voiceChanged,
		OnInterim: view.SetVoiceTranscript,
		OnFinal: func(ctx context.Context, text string) {
			view.SetVoiceTranscript(text)
			c.Send(ctx, text)
		},
	})
	return c
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Messages() []Message {
	return c.transcript.Messages()
}

func (c *Controller) VoiceState() VoiceState {
	return c.voice.State()
}

// Send posts one user turn and renders the reply. It reports false when
// text is blank. Any failure renders the localized fallback reply instead.
func (c *Controller) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	lang := c.prefs.Language()

	c.appendMessage(Message{Text: text, Sender: SenderUser})

	c.beginBusy()
	resp, err := c.api.Chat(ctx, c.prefs.AuthToken(), models.ChatRequest{
		Message:   text,
		Provider:  c.prefs.Provider(),
		Lang:      lang,
		SessionID: c.prefs.SessionID(),
	})
	c.endBusy()

	reply := T(lang, "chat_fallback")
	if err != nil {
		log.Printf("[chat] request failed: %v", err)
	} else {
		if r := strings.TrimSpace(resp.Reply); r != "" {
			reply = r
		}
		if resp.SessionID != "" && c.prefs.SessionID() == "" {
			if err := c.prefs.SetSessionID(resp.SessionID); err != nil {
				log.Printf("[chat] failed to store session id: %v", err)
			}
		}
		if badge, ok := BadgeFor(resp.Sentiment, lang); ok {
			c.view.SetSentiment(badge)
		}
	}

	c.appendMessage(Message{Text: reply, Sender: SenderAI})
	if c.Mode() == ModeVoice {
		c.view.SetVoiceStatus("")
		c.view.SetVoiceReply(reply, true)
	}
	c.speaker.Speak(reply, lang)
	return true
}

// SwitchMode changes between the chat and voice views. Unknown modes mean
// chat.
func (c *Controller) SwitchMode(mode Mode) {
	if mode != ModeVoice {
		mode = ModeChat
	}
	c.voice.Stop()

	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	c.view.SetMode(mode)
	if mode == ModeVoice {
		c.view.SetVoiceStatus(T(c.prefs.Language(), "voice_click_to_start"))
		c.view.SetVoiceTranscript("...")
		c.view.SetVoiceReply("", false)
	}
}

// ToggleVoice starts or cancels a voice capture.
func (c *Controller) ToggleVoice(ctx context.Context) error {
	lang := c.prefs.Language()
	err := c.voice.Toggle(ctx, RecognitionLocale(lang))
	switch {
	case errors.Is(err, ErrRecognitionUnsupported):
		c.view.Alert(T(lang, "voice_unsupported"))
	case errors.Is(err, ErrVoiceBusy):
		c.view.SetVoiceStatus(T(lang, "voice_busy"))
	}
	return err
}

func (c *Controller) NewChat(ctx context.Context) error {
	id, err := c.api.NewChat(ctx, c.prefs.AuthToken())
	if err != nil {
		return fmt.Errorf("new chat: %w", err)
	}
	if err := c.prefs.SetSessionID(id); err != nil {
		return fmt.Errorf("failed to store session id: %w", err)
	}
	c.transcript.Clear()
	c.view.ClearMessages()
	return nil
}

// LoadHistory replaces the transcript with the stored session's log and
// returns the number of turns.
func (c *Controller) LoadHistory(ctx context.Context) (int, error) {
	token := c.prefs.AuthToken()
	if token == "" {
		return 0, ErrNotLoggedIn
	}
	id := c.prefs.SessionID()
	if id == "" {
		return 0, ErrNoSession
	}

	turns, err := c.api.History(ctx, token, id)
	if err != nil {
		return 0, fmt.Errorf("history: %w", err)
	}

	msgs := make([]Message, 0, len(turns))
	for _, t := range turns {
		sender := SenderUser
		if t.Role == models.RoleAssistant {
			sender = SenderAI
		}
		msgs = append(msgs, Message{Text: t.Content, Sender: sender})
	}
	c.transcript.Replace(msgs)
	c.view.ClearMessages()
	for _, m := range msgs {
		c.view.AppendMessage(m)
	}
	return len(msgs), nil
}

func (c *Controller) Sessions(ctx context.Context) ([]string, error) {
	token := c.prefs.AuthToken()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	ids, err := c.api.Sessions(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	return ids, nil
}

func (c *Controller) SetProvider(provider string) error {
	return c.prefs.SetProvider(provider)
}

func (c *Controller) SetLanguage(lang string) error {
	return c.prefs.SetLanguage(lang)
}

// Close stops capture and playback.
func (c *Controller) Close() {
	c.voice.Stop()
	c.speaker.Cancel()
}

func (c *Controller) appendMessage(m Message) {
	c.transcript.Append(m)
	c.view.AppendMessage(m)
}

func (c *Controller) beginBusy() {
	c.mu.Lock()
	c.busy++
	first := c.busy == 1
	c.mu.Unlock()
	if first {
		c.view.SetBusy(true)
	}
}

func (c *Controller) endBusy() {
	c.mu.Lock()
	c.busy--
	last := c.busy == 0
	c.mu.Unlock()
	if last {
		c.view.SetBusy(false)
	}
}

func (c *Controller) voiceChanged(from, to VoiceState, err error) {
	lang := c.prefs.Language()
	c.view.SetVoiceState(to)

	switch to {
	case VoiceListening:
		c.speaker.Cancel()
		c.view.SetVoiceStatus(T(lang, "chat_listening"))
		c.view.SetVoiceTranscript("...")
		c.view.SetVoiceReply("", false)
	case VoiceFinalizing:
		c.view.SetVoiceStatus(T(lang, "voice_processing"))
	case VoiceIdle:
		switch {
		case err != nil:
			log.Printf("[voice] capture failed: %v", err)
			c.view.SetVoiceStatus(T(lang, "voice_error"))
		case from == VoiceFinalizing:
			// The reply is on screen; playbackDone resets the status.
			if !c.speaker.Playing() {
				c.playbackDone()
			}
		default:
			c.view.SetVoiceStatus(T(lang, "voice_click_to_start"))
		}
	}
}

func (c *Controller) playbackDone() {
	if c.Mode() != ModeVoice || c.voice.State() == VoiceListening {
		return
	}
	c.view.SetVoiceStatus(T(c.prefs.Language(), "voice_click_to_start"))
}

// LaunchMode reads the mode query parameter from a launch URL or bare query
// string.
func LaunchMode(raw string) Mode {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ModeChat
	}

	var q url.Values
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		q = u.Query()
	} else if parsed, err := url.ParseQuery(strings.TrimPrefix(raw, "?")); err == nil {
		q = parsed
	}
	if q.Get("mode") == string(ModeVoice) {
		return ModeVoice
	}
	return ModeChat
}
