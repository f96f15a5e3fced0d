package sentiment

import "testing"

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		reply    string
		expected Label
	}{
		{"stress is anxious", "I've been feeling a bit stressed lately.", "", Anxious},
		{"lonely is sad", "I feel so lonely and sad tonight", "", Sad},
		{"thanks is happy", "Thank you, that really helped!", "", Happy},
		{"frustration is angry", "I'm so frustrated with my boss, I hate this", "", Angry},
		{"relief is calm", "The breathing helped, I feel calm and relaxed", "", Calm},
		{"no signal is neutral", "What are your opening hours?", "They are 9 to 5.", Neutral},
		{"empty is neutral", "   ", "", Neutral},
		{"negated happy is not happy", "I am not happy", "", Neutral},
		{"hindi stress", "मुझे बहुत तनाव है", "", Anxious},
		{"marathi calm", "आता मला शांत वाटतंय", "", Calm},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Analyze(tc.user, tc.reply)
			if got.Label != tc.expected {
				t.Fatalf("expected %s, got %s (score %d)", tc.expected, got.Label, got.Score)
			}
		})
	}
}

func TestAnalyze_ReplyBreaksTies(t *testing.T) {
	// "sad" and "worried" score the same; the reply leans sad.
	got := Analyze("sad and worried", "It sounds lonely, I'm sorry you feel sad.")
	if got.Label != Sad {
		t.Fatalf("expected reply to break tie towards sad, got %s", got.Label)
	}

	got = Analyze("sad and worried", "")
	if got.Label != Anxious {
		t.Fatalf("expected priority order to prefer anxious over sad, got %s", got.Label)
	}
}

func TestAnalyze_WholeWordsOnly(t *testing.T) {
	// "mad" inside "made" and "down" inside "download" must not count.
	got := Analyze("I made a download list", "")
	if got.Label != Neutral {
		t.Fatalf("expected neutral, got %s", got.Label)
	}
}

func TestParse(t *testing.T) {
	if l, ok := Parse(" Happy "); !ok || l != Happy {
		t.Fatalf("expected happy, got %s (%v)", l, ok)
	}
	if l, ok := Parse("ecstatic"); ok || l != Neutral {
		t.Fatalf("expected unknown label to map to neutral, got %s (%v)", l, ok)
	}
}
