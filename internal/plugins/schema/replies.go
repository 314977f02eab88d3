package schema

import (
	"encoding/json"
	"strings"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
)

// askReply is the structured shape adapters request for chat answers.
type askReply struct {
	Answer  string `json:"answer"`
	Sources []struct {
		Document   string  `json:"document"`
		Excerpt    string  `json:"excerpt"`
		Confidence float64 `json:"confidence"`
	} `json:"sources"`
}

// ParseAskReply decodes a provider's chat reply. When the reply is the
// requested {answer, sources} object the answer text and citations come
// back; anything else returns the raw content with no citations. Parsing
// never fails the call.
func ParseAskReply(raw string) (string, []domain.SourceCitation) {
	cleaned, ok := ExtractJSON(raw)
	if !ok {
		return raw, nil
	}
	var reply askReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		// The brace island was not actually JSON; prose answers can
		// contain brace pairs, so the full reply must survive.
		return raw, nil
	}
	if strings.TrimSpace(reply.Answer) == "" {
		// Structured synthesis replies land here: valid JSON without an
		// answer field. Hand back the cleaned JSON for the caller.
		return cleaned, nil
	}
	sources := make([]domain.SourceCitation, 0, len(reply.Sources))
	for _, s := range reply.Sources {
		if s.Document == "" {
			continue
		}
		sources = append(sources, domain.SourceCitation{
			Document:   s.Document,
			Excerpt:    s.Excerpt,
			Confidence: clamp01(s.Confidence),
		})
	}
	return reply.Answer, sources
}

// InsightItem is one entry of a category array in a batch synthesis reply.
type InsightItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Sources     []string `json:"sources"`
}

// categoryKeys maps the canonical categories to the array names the batch
// prompt requests.
var categoryKeys = map[domain.Category]string{
	domain.CategoryTheme:          "themes",
	domain.CategoryBias:           "biases",
	domain.CategoryPattern:        "patterns",
	domain.CategoryRecommendation: "recommendations",
}

// ParseInsightBatch decodes the four parallel category arrays of a batch
// synthesis reply. Each category is decoded independently so one malformed
// array degrades to empty without discarding the other three.
func ParseInsightBatch(raw string) map[domain.Category][]InsightItem {
	out := make(map[domain.Category][]InsightItem, len(categoryKeys))
	for _, c := range domain.Categories {
		out[c] = nil
	}

	cleaned, ok := ExtractJSON(raw)
	if !ok {
		debuglog.Log("insight batch reply contained no JSON, returning empty categories\n")
		return out
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		debuglog.Log("insight batch envelope did not parse: %v\n", err)
		return out
	}
	for cat, key := range categoryKeys {
		payload, found := envelope[key]
		if !found {
			continue
		}
		var items []InsightItem
		if err := json.Unmarshal(payload, &items); err != nil {
			debuglog.Debug(debuglog.Basic, "category %s malformed, degrading to empty: %v\n", cat, err)
			continue
		}
		for i := range items {
			items[i].Confidence = clamp01(items[i].Confidence)
		}
		out[cat] = items
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
