package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SourceCitation ties part of an assistant answer back to a document the
// model was actually shown.
type SourceCitation struct {
	Document   string  `json:"document"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
}

// Thread is a linear, append-only conversation.
type Thread struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one turn in a thread. Assistant messages may carry the source
// citations the orchestration layer produced for them.
type Message struct {
	ID        string           `json:"id"`
	ThreadID  string           `json:"threadId"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Sources   []SourceCitation `json:"sources,omitempty"`
	Badge     string           `json:"badge,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ConfidenceBadge maps the average citation confidence to the badge shown
// next to an assistant message.
func ConfidenceBadge(sources []SourceCitation) string {
	if len(sources) == 0 {
		return ""
	}
	var sum float64
	for _, s := range sources {
		sum += s.Confidence
	}
	switch avg := sum / float64(len(sources)); {
	case avg >= 0.75:
		return "high"
	case avg >= 0.5:
		return "medium"
	default:
		return "low"
	}
}
