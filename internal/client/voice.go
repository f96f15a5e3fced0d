package client

import (
	"context"
	"errors"
	"sync"
)

type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceListening
	VoiceFinalizing
)

func (s VoiceState) String() string {
	switch s {
	case VoiceListening:
		return "listening"
	case VoiceFinalizing:
		return "finalizing"
	default:
		return "idle"
	}
}

var ErrVoiceBusy = errors.New("voice: previous utterance is still being answered")

// VoiceHooks receive capture progress. They run outside the capture lock and
// may call back into the VoiceCapture.
type VoiceHooks struct {
	// OnChange reports every transition. err is set when a backend failure
	// forced the return to idle.
	OnChange  func(from, to VoiceState, err error)
	OnInterim func(text string)
	// OnFinal handles the finished transcript. The capture stays in
	// Finalizing until it returns.
	OnFinal func(ctx context.Context, text string)
}

// VoiceCapture allows at most one capture at a time.
type VoiceCapture struct {
	recognizer Recognizer
	hooks      VoiceHooks

	mu     sync.Mutex
	state  VoiceState
	gen    uint64
	cancel context.CancelFunc
}

func NewVoiceCapture(r Recognizer, hooks VoiceHooks) *VoiceCapture {
	return &VoiceCapture{recognizer: r, hooks: hooks}
}

func (v *VoiceCapture) State() VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Toggle starts a capture when idle and cancels it when listening. ctx
// bounds both the capture and the send of its transcript.
func (v *VoiceCapture) Toggle(ctx context.Context, locale string) error {
	v.mu.Lock()
	switch v.state {
	case VoiceFinalizing:
		v.mu.Unlock()
		return ErrVoiceBusy
	case VoiceListening:
		v.stopLocked()
		v.mu.Unlock()
		v.notify(VoiceListening, VoiceIdle, nil)
		return nil
	}

	if v.recognizer == nil {
		v.mu.Unlock()
		return ErrRecognitionUnsupported
	}

	captureCtx, cancel := context.WithCancel(ctx)
	events, err := v.recognizer.Listen(captureCtx, locale)
	if err != nil {
		cancel()
		v.mu.Unlock()
		return err
	}
	v.gen++
	gen := v.gen
	v.state = VoiceListening
	v.cancel = cancel
	v.mu.Unlock()

	v.notify(VoiceIdle, VoiceListening, nil)
	go v.consume(ctx, gen, events)
	return nil
}

// Stop cancels a capture in progress. A transcript already being answered
// is left to finish.
func (v *VoiceCapture) Stop() {
	v.mu.Lock()
	if v.state != VoiceListening {
		v.mu.Unlock()
		return
	}
	v.stopLocked()
	v.mu.Unlock()
	v.notify(VoiceListening, VoiceIdle, nil)
}

func (v *VoiceCapture) stopLocked() {
	v.state = VoiceIdle
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *VoiceCapture) consume(ctx context.Context, gen uint64, events <-chan RecognitionEvent) {
	for ev := range events {
		switch {
		case ev.Err != nil:
			if v.transition(gen, VoiceListening, VoiceIdle) {
				v.notify(VoiceListening, VoiceIdle, ev.Err)
			}
		case ev.Final:
			if !v.transition(gen, VoiceListening, VoiceFinalizing) {
				continue
			}
			v.notify(VoiceListening, VoiceFinalizing, nil)
			if v.hooks.OnFinal != nil {
				v.hooks.OnFinal(ctx, ev.Transcript)
			}
			if v.transition(gen, VoiceFinalizing, VoiceIdle) {
				v.notify(VoiceFinalizing, VoiceIdle, nil)
			}
		default:
			if v.isListening(gen) && v.hooks.OnInterim != nil {
				v.hooks.OnInterim(ev.Transcript)
			}
		}
	}

	// Capture ended with nothing final.
	if v.transition(gen, VoiceListening, VoiceIdle) {
		v.notify(VoiceListening, VoiceIdle, nil)
	}
}

// transition moves from one state to another if gen is still the live
// capture. Leaving Listening stops the backend.
func (v *VoiceCapture) transition(gen uint64, from, to VoiceState) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gen != gen || v.state != from {
		return false
	}
	v.state = to
	if from == VoiceListening && v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	return true
}

func (v *VoiceCapture) isListening(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen == gen && v.state == VoiceListening
}

func (v *VoiceCapture) notify(from, to VoiceState, err error) {
	if v.hooks.OnChange != nil {
		v.hooks.OnChange(from, to, err)
	}
}
