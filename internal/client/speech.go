package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
)

var (
	ErrRecognitionUnsupported = errors.New("speech recognition is not supported")
	ErrSpeechUnsupported      = errors.New("speech synthesis is not configured")
)

// RecognitionEvent is one update from a capture backend. Err set means the
// capture failed; Final set means Transcript is the finished utterance.
type RecognitionEvent struct {
	Transcript string
	Final      bool
	Err        error
}

// Recognizer captures one utterance. The returned channel is closed when
// capture ends; cancelling ctx stops it.
type Recognizer interface {
	Listen(ctx context.Context, locale string) (<-chan RecognitionEvent, error)
}

// Synthesizer speaks text aloud and blocks until playback finishes or ctx
// is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text, locale string) error
}

type audioUploader interface {
	Transcribe(ctx context.Context, token string, audio []byte, filename, lang string) (string, error)
}

// ExecRecognizer records a clip with an external command reading from the
// microphone and writing WAV to stdout, then sends it to the transcription
// endpoint.
type ExecRecognizer struct {
	command  []string
	uploader audioUploader
	token    func() string
}

func NewExecRecognizer(command string, uploader audioUploader, token func() string) *ExecRecognizer {
	if token == nil {
		token = func() string { return "" }
	}
	return &ExecRecognizer{command: strings.Fields(command), uploader: uploader, token: token}
}

// Available reports whether the record command can be found.
func (r *ExecRecognizer) Available() bool {
	if len(r.command) == 0 || r.uploader == nil {
		return false
	}
	_, err := exec.LookPath(r.command[0])
	return err == nil
}

func (r *ExecRecognizer) Listen(ctx context.Context, locale string) (<-chan RecognitionEvent, error) {
	if !r.Available() {
		return nil, ErrRecognitionUnsupported
	}

	events := make(chan RecognitionEvent, 1)
	go func() {
		defer close(events)

		var audio bytes.Buffer
		cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
		cmd.Stdout = &audio
		if err := cmd.Run(); err != nil {
			if ctx.Err() == nil {
				events <- RecognitionEvent{Err: fmt.Errorf("record: %w", err)}
			}
			return
		}
		if audio.Len() == 0 {
			return
		}

		text, err := r.uploader.Transcribe(ctx, r.token(), audio.Bytes(), "speech.wav", localeLang(locale))
		if err != nil {
			if ctx.Err() == nil {
				events <- RecognitionEvent{Err: fmt.Errorf("transcribe: %w", err)}
			}
			return
		}
		if text = strings.TrimSpace(text); text != "" {
			events <- RecognitionEvent{Transcript: text, Final: true}
		}
	}()
	return events, nil
}

// ExecSynthesizer runs a TTS command. Arguments may contain {text},
// {locale} (hi-IN) and {lang} (hi) placeholders; without {text} the text
// is written to stdin.
type ExecSynthesizer struct {
	command []string
}

func NewExecSynthesizer(command string) *ExecSynthesizer {
	return &ExecSynthesizer{command: strings.Fields(command)}
}

func (s *ExecSynthesizer) Speak(ctx context.Context, text, locale string) error {
	if len(s.command) == 0 {
		return ErrSpeechUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	args, usesText := expandArgs(s.command[1:], text, locale)
	cmd := exec.CommandContext(ctx, s.command[0], args...)
	if !usesText {
		cmd.Stdin = strings.NewReader(text)
	}
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("%s: %w", s.command[0], err)
	}
	return nil
}

func expandArgs(args []string, text, locale string) ([]string, bool) {
	usesText := false
	out := make([]string, len(args))
	for i, a := range args {
		if strings.Contains(a, "{text}") {
			usesText = true
		}
		a = strings.ReplaceAll(a, "{locale}", locale)
		a = strings.ReplaceAll(a, "{lang}", localeLang(locale))
		out[i] = strings.ReplaceAll(a, "{text}", text)
	}
	return out, usesText
}

func localeLang(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}

// Speaker plays one utterance at a time. Starting a new one, or calling
// Cancel, stops whatever is playing.
type Speaker struct {
	synth  Synthesizer
	onDone func()

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSpeaker accepts a nil synth, in which case playback ends immediately.
// onDone runs when an utterance finishes without being superseded.
func NewSpeaker(synth Synthesizer, onDone func()) *Speaker {
	return &Speaker{synth: synth, onDone: onDone}
}

// Speak starts playback of text in the voice for lang. The returned channel
// yields the playback result once.
func (s *Speaker) Speak(text, lang string) <-chan error {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer cancel()

		var err error
		if s.synth != nil {
			err = s.synth.Speak(ctx, text, SpeechLocale(lang))
		}
		if err != nil && !errors.Is(err, ErrSpeechUnsupported) {
			log.Printf("[speech] playback failed: %v", err)
		}

		s.mu.Lock()
		current := s.gen == gen
		if current {
			s.cancel = nil
		}
		s.mu.Unlock()

		if current && s.onDone != nil {
			s.onDone()
		}
		done <- err
		close(done)
	}()
	return done
}

func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Playing reports whether an utterance is in progress.
func (s *Speaker) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
