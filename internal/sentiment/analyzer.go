// Package sentiment tags a chat turn with the user's mood.
package sentiment

import (
	"strings"
	"unicode"
)

// Label is the mood attached to a reply.
type Label string

const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Anxious Label = "anxious"
	Angry   Label = "angry"
	Calm    Label = "calm"
	Neutral Label = "neutral"
)

// Labels lists every label in tie-break priority order.
var Labels = []Label{Angry, Anxious, Sad, Happy, Calm, Neutral}

// Parse maps a wire value to a Label. Unknown values report false.
func Parse(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return Neutral, false
}

// Decision is the outcome of Analyze.
type Decision struct {
	Label Label
	Score int
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "glad", "great", "awesome", "amazing", "excited", "thank you", "thanks",
		"grateful", "joy", "wonderful", "good news", "proud", "love",
		"खुश", "आनंद", "धन्यवाद", "आनंदी", "छान",
	},
	Sad: {
		"sad", "depressed", "lonely", "alone", "hopeless", "cry", "crying", "upset",
		"hurt", "grief", "miss", "empty", "worthless", "heartbroken", "down",
		"दुखी", "उदास", "अकेला", "रोना", "एकटा", "दु:ख",
	},
	Anxious: {
		"anxious", "anxiety", "stress", "stressed", "worried", "worry", "nervous", "panic",
		"overwhelmed", "scared", "afraid", "fear", "tense", "can't sleep", "restless",
		"चिंता", "तनाव", "घबराहट", "डर", "ताण", "भीती",
	},
	Angry: {
		"angry", "furious", "mad", "annoyed", "frustrated", "hate", "rage", "irritated",
		"fed up", "sick of",
		"गुस्सा", "नाराज़", "राग", "चिडचिड",
	},
	Calm: {
		"calm", "relaxed", "peaceful", "better", "okay now", "fine now", "relieved",
		"grounded", "at ease", "rested",
		"शांत", "आराम", "बेहतर", "बरं",
	},
}

// Analyze classifies the user's message. The assistant reply only breaks
// ties between equally scored labels.
func Analyze(userMessage, reply string) Decision {
	user := scoreText(userMessage)

	best, bestScore := pick(user, nil)
	if bestScore == 0 {
		return Decision{Label: Neutral}
	}

	tied := 0
	for _, s := range user {
		if s == bestScore {
			tied++
		}
	}
	if tied > 1 {
		replyScores := scoreText(reply)
		best, _ = pick(user, replyScores)
	}

	return Decision{Label: best, Score: bestScore}
}

// pick returns the highest scoring label; bonus scores only count among
// labels tied for the top primary score.
func pick(primary, bonus map[Label]int) (Label, int) {
	top := 0
	for _, s := range primary {
		if s > top {
			top = s
		}
	}
	if top == 0 {
		return Neutral, 0
	}

	best := Neutral
	bestBonus := -1
	for _, label := range Labels {
		if primary[label] != top {
			continue
		}
		if bonus[label] > bestBonus {
			best = label
			bestBonus = bonus[label]
		}
	}
	return best, top
}

func scoreText(text string) map[Label]int {
	normalized := strings.ToLower(strings.TrimSpace(text))
	scores := make(map[Label]int)
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			scores[label] += 2 * countAffirmed(normalized, word)
		}
	}
	return scores
}

// countAffirmed counts whole-word occurrences of word that are not directly
// negated ("not happy", "don't feel calm" style negations are skipped).
func countAffirmed(text, word string) int {
	n := 0
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			break
		}
		pos := start + idx
		end := pos + len(word)
		start = end

		if !isBoundary(text, pos-1) || !isBoundary(text, end) {
			continue
		}
		if negated(text[:pos]) {
			continue
		}
		n++
	}
	return n
}

func isBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := rune(text[i])
	if c >= 0x80 {
		// Devanagari words are matched as substrings.
		return true
	}
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '\''
}

var negations = []string{"not ", "n't ", "never ", "no longer "}

func negated(prefix string) bool {
	prefix = strings.TrimRight(prefix, " ")
	if prefix == "" {
		return false
	}
	words := strings.Fields(prefix)
	// look back over at most two words: "not happy", "not feeling happy"
	from := len(words) - 2
	if from < 0 {
		from = 0
	}
	window := strings.Join(words[from:], " ") + " "
	for _, neg := range negations {
		if strings.Contains(window, neg) {
			return true
		}
	}
	return false
}
