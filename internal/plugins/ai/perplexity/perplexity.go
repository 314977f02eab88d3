// Package perplexity synthesizes a web-context pseudo-document for the
// open-web chat mode, using Perplexity's search-grounded completions.
// It is deliberately not a Vendor: it augments source lists, it does not
// answer questions.
package perplexity

import (
	"context"
	"fmt"
	"strings"

	perplexityapi "github.com/sgaunet/perplexity-go/v2"

	"github.com/SamWheatley/rainier/internal/domain"
)

const (
	searchModel = "sonar"
	maxTokens   = 800
)

// WebContextTitle names the pseudo-document appended to a source list.
const WebContextTitle = "Web Context"

type Client struct {
	api *perplexityapi.Client
}

func NewClient(apiKey string) *Client {
	return &Client{api: perplexityapi.NewClient(apiKey)}
}

// SearchContext researches the question on the open web and returns a
// summary with its citations, formatted as document text.
func (c *Client) SearchContext(ctx context.Context, question string) (string, error) {
	_ = ctx // the SDK manages its own transport deadline

	req := perplexityapi.NewCompletionRequest(
		perplexityapi.WithModel(searchModel),
		perplexityapi.WithMaxTokens(maxTokens),
		perplexityapi.WithMessages([]perplexityapi.Message{
			{
				Role:    "system",
				Content: "Summarize current, factual web context relevant to the user's research question. Be concise and neutral.",
			},
			{Role: "user", Content: question},
		}),
	)
	resp, err := c.api.SendCompletionRequest(req)
	if err != nil {
		return "", domain.NewProviderError("perplexity", 0, err)
	}

	content := resp.GetLastContent()
	if strings.TrimSpace(content) == "" {
		return "", domain.NewProviderError("perplexity", 0, fmt.Errorf("empty web context"))
	}
	return FormatContext(content, citationLines(resp)), nil
}

type citation struct {
	title string
	url   string
}

func citationLines(resp *perplexityapi.CompletionResponse) []citation {
	results := resp.GetSearchResults()
	out := make([]citation, 0, len(results))
	for _, r := range results {
		out = append(out, citation{title: r.Title, url: r.URL})
	}
	return out
}

// FormatContext renders the summary plus its citations the way they appear
// inside a packed pseudo-document.
func FormatContext(content string, citations []citation) string {
	if len(citations) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\nCitations:\n")
	for i, c := range citations {
		fmt.Fprintf(&b, "- [%d] %s %s\n", i+1, c.title, c.url)
	}
	return b.String()
}
