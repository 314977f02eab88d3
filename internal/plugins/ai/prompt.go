package ai

import (
	"fmt"
	"strings"

	"github.com/SamWheatley/rainier/internal/domain"
)

const askSystemPrompt = `You are a research analyst answering questions about a corpus of interview transcripts and research documents.
Ground every claim in the source documents you are given. Cite only documents that appear in the SOURCE DOCUMENTS section, using their exact titles.
Respond with a single JSON object of the form:
{"answer": "<your answer>", "sources": [{"document": "<exact source title>", "excerpt": "<short supporting quote>", "confidence": <0..1>}]}
Return only JSON, no markdown fences and no commentary.`

// BuildAskPrompt renders an AskRequest into the system and user strings a
// vendor adapter feeds its SDK.
func BuildAskPrompt(req *domain.AskRequest) (system, user string) {
	var b strings.Builder
	if len(req.Sources) > 0 {
		b.WriteString("SOURCE DOCUMENTS:")
		b.WriteString(RenderSources(req.Sources))
		b.WriteString("\n\n")
	}
	if req.Context != "" {
		b.WriteString("CONVERSATION CONTEXT:\n")
		b.WriteString(req.Context)
		b.WriteString("\n\n")
	}
	b.WriteString("QUESTION:\n")
	b.WriteString(req.Question)
	return askSystemPrompt, b.String()
}

// RenderSources joins packed sources with their headers. The budgeter has
// already charged the header lengths, so the result never exceeds the
// ceiling it packed for.
func RenderSources(sources []domain.PackedSource) string {
	var b strings.Builder
	for _, s := range sources {
		b.WriteString(domain.SourceHeader(s.Title))
		b.WriteString(s.Content)
	}
	return b.String()
}

// BuildExtractPrompt asks for clean readable text from raw file content.
func BuildExtractPrompt(raw, filename string) (system, user string) {
	system = "You clean up raw file content into readable plain text. Remove markup, tool artifacts, timestamps and speaker noise, but preserve the substance verbatim. Reply with the cleaned text only."
	user = fmt.Sprintf("Filename: %s\n\nContent:\n%s", filename, raw)
	return system, user
}

// BuildTitlePrompt asks for a short conversation title.
func BuildTitlePrompt(firstMessage string) (system, user string) {
	system = "Summarize the user's message into a conversation title of at most six words. Reply with the title only, no quotes."
	user = firstMessage
	return system, user
}

// CleanTitle normalizes a generated title; empty results fall back to
// DefaultTitle.
func CleanTitle(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.Trim(t, `"'`)
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if len(t) > 80 {
		t = strings.TrimSpace(t[:80])
	}
	if t == "" {
		return DefaultTitle
	}
	return t
}
