package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestExpandArgs(t *testing.T) {
	args, usesText := expandArgs([]string{"-v", "{lang}", "--locale={locale}", "{text}"}, "stay calm", "hi-IN")
	if !usesText {
		t.Fatal("expected {text} to be detected")
	}
	want := []string{"-v", "hi", "--locale=hi-IN", "stay calm"}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}

	if _, usesText := expandArgs([]string{"-v", "{lang}"}, "x", "en-US"); usesText {
		t.Fatal("expected stdin mode without {text}")
	}
}

func TestExecRecognizerUnsupported(t *testing.T) {
	tests := []string{"", "definitely-not-a-recorder-binary -q"}
	for _, cmd := range tests {
		r := NewExecRecognizer(cmd, NewAPIClient("http://unused", nil), nil)
		if _, err := r.Listen(context.Background(), "en-US"); !errors.Is(err, ErrRecognitionUnsupported) {
			t.Errorf("%q: expected ErrRecognitionUnsupported, got %v", cmd, err)
		}
	}
}

func TestExecSynthesizerUnconfigured(t *testing.T) {
	s := NewExecSynthesizer("")
	if err := s.Speak(context.Background(), "hello", "en-US"); !errors.Is(err, ErrSpeechUnsupported) {
		t.Fatalf("expected ErrSpeechUnsupported, got %v", err)
	}
}

// blockingSynth plays until cancelled.
type blockingSynth struct {
	mu      sync.Mutex
	started []string
}

func (b *blockingSynth) Speak(ctx context.Context, text, locale string) error {
	b.mu.Lock()
	b.started = append(b.started, text)
	b.mu.Unlock()
	<-ctx.Done()
	return nil
}

func TestSpeakerCancelsPriorUtterance(t *testing.T) {
	synth := &blockingSynth{}
	var doneCalls int
	var mu sync.Mutex
	s := NewSpeaker(synth, func() {
		mu.Lock()
		doneCalls++
		mu.Unlock()
	})

	first := s.Speak("first", "en")
	waitFor(t, "first playback", s.Playing)
	second := s.Speak("second", "en")

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("expected first utterance to be cancelled")
	}
	if !s.Playing() {
		t.Fatal("expected second utterance to be playing")
	}

	s.Cancel()
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("expected second utterance to be cancelled")
	}

	mu.Lock()
	defer mu.Unlock()
	if doneCalls != 0 {
		t.Fatalf("superseded playback must not report done, got %d", doneCalls)
	}
}

func TestSpeakerWithoutSynth(t *testing.T) {
	done := make(chan struct{})
	s := NewSpeaker(nil, func() { close(done) })

	if err := <-s.Speak("hello", "en"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected onDone")
	}
}
