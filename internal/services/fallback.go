package services

import (
	"strings"
	"unicode"
)

// FallbackReply is the canned answer used when no provider produced one.
func FallbackReply(message string) string {
	words := wordSet(message)

	switch {
	case words.any("hello", "hi", "hey"):
		return "Hello! I’m here to support you. How are you feeling today?"
	case words.any("stress", "stressed", "overwhelmed"):
		return "I’m sorry you’re feeling stressed. Want to try a simple 4-7-8 breathing exercise together?"
	case words.any("resources", "help", "support"):
		return "I can help explore support options. Are you looking for local helplines, clinics, or online groups?"
	case words.any("breathing"):
		return "Let’s try the 4-7-8 technique: inhale 4s, hold 7s, exhale 8s. Shall we start?"
	default:
		return "I hear you. Could you share a bit more? I’m here to listen and help you navigate options."
	}
}

type words map[string]struct{}

func wordSet(text string) words {
	set := make(words)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}

func (w words) any(candidates ...string) bool {
	for _, c := range candidates {
		if _, ok := w[c]; ok {
			return true
		}
	}
	return false
}
