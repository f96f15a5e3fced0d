package client

import "mindcare-backend/internal/sentiment"

// Badge is the mood indicator shown next to the latest reply.
type Badge struct {
	Label sentiment.Label
	Icon  string
	Color string // hex
	Text  string
}

var badgeStyles = map[sentiment.Label]struct{ icon, color string }{
	sentiment.Happy:   {"😊", "#2E7D32"},
	sentiment.Sad:     {"😢", "#1565C0"},
	sentiment.Anxious: {"😟", "#EF6C00"},
	sentiment.Angry:   {"😠", "#C62828"},
	sentiment.Calm:    {"😌", "#00838F"},
	sentiment.Neutral: {"🙂", "#757575"},
}

// BadgeFor builds the badge for a sentiment tag. Empty or unknown tags
// report false and leave the current badge alone.
func BadgeFor(tag, lang string) (Badge, bool) {
	label, ok := sentiment.Parse(tag)
	if !ok {
		return Badge{}, false
	}
	st := badgeStyles[label]
	return Badge{
		Label: label,
		Icon:  st.icon,
		Color: st.color,
		Text:  T(lang, "sentiment_"+string(label)),
	}, true
}
