package domain

import "fmt"

// TruncationMarker is appended to a packed source whose content was cut, so
// a model (or a human reviewer) can tell truncation from document end.
const TruncationMarker = "\n\n[content truncated]"

// SourceHeader is the delimiter naming a document inside a packed prompt.
// The budgeter charges its length against the ceiling.
func SourceHeader(title string) string {
	return fmt.Sprintf("\n\n=== %s ===\n", title)
}

// PackedSource is one document as shaped by the content budgeter: named,
// possibly truncated, ready to be spliced into a prompt.
type PackedSource struct {
	Title     string
	Content   string
	Locator   string
	Truncated bool
}

// AskRequest is the provider-neutral shape of one question. Sources are
// already budgeted; adapters never truncate.
type AskRequest struct {
	Question string
	// Context carries situational framing such as recent conversation turns.
	Context string
	Sources []PackedSource
}

// AskResponse is what the three-operation capability surface hands back for
// an ask call. Content is always best-effort populated; Sources may be empty
// when the provider's reply could not be parsed as structured output.
type AskResponse struct {
	Content      string
	Sources      []SourceCitation
	Model        string
	UsedFallback bool
}
