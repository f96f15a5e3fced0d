package services

import (
	"strings"
	"testing"
)

func TestFallbackReply(t *testing.T) {
	tests := []struct {
		message string
		prefix  string
	}{
		{"Hi there", "Hello!"},
		{"HEY, anyone?", "Hello!"},
		{"I'm so overwhelmed at work", "I’m sorry you’re feeling stressed."},
		{"where can I find support", "I can help explore support options."},
		{"teach me breathing", "Let’s try the 4-7-8 technique"},
		{"this is hard", "I hear you."},
		{"", "I hear you."},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			if got := FallbackReply(tc.message); !strings.HasPrefix(got, tc.prefix) {
				t.Fatalf("FallbackReply(%q) = %q, want prefix %q", tc.message, got, tc.prefix)
			}
		})
	}
}

func TestFallbackReply_GreetingWinsOverStress(t *testing.T) {
	got := FallbackReply("hello, I am stressed")
	if !strings.HasPrefix(got, "Hello!") {
		t.Fatalf("expected greeting to take priority, got %q", got)
	}
}
