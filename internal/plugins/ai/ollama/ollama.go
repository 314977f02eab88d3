// Package ollama implements the capability surface on a local Ollama
// server. Useful for analyzing sensitive transcripts without sending them
// to a hosted provider.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollamaapi "github.com/ollama/ollama/api"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/schema"
)

const (
	providerName = "ollama"
	defaultModel = "llama3.1"
	defaultHost  = "http://localhost:11434"

	// Local models run with much smaller context windows than the hosted
	// providers.
	contextBudget = 24000
	temperature   = 0.3
)

var _ ai.Vendor = (*Client)(nil)

type Client struct {
	model string
	api   *ollamaapi.Client
}

// NewClient builds the Ollama vendor; its nominated alternate is OpenAI.
func NewClient(host string) (*Client, error) {
	if host == "" {
		host = defaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &Client{
		model: defaultModel,
		api:   ollamaapi.NewClient(u, http.DefaultClient),
	}, nil
}

func (c *Client) GetName() string      { return providerName }
func (c *Client) ContextBudget() int   { return contextBudget }
func (c *Client) FallbackName() string { return "openai" }

func (c *Client) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	system, user := ai.BuildAskPrompt(req)
	raw, err := c.complete(ctx, system, user, true)
	if err != nil {
		return nil, err
	}
	answer, sources := schema.ParseAskReply(raw)
	return &domain.AskResponse{Content: answer, Sources: sources, Model: c.model}, nil
}

func (c *Client) ExtractCleanText(ctx context.Context, raw, filename string) (string, error) {
	system, user := ai.BuildExtractPrompt(raw, filename)
	text, err := c.complete(ctx, system, user, false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return raw, nil
	}
	return text, nil
}

func (c *Client) SummarizeToTitle(ctx context.Context, firstMessage string) string {
	system, user := ai.BuildTitlePrompt(firstMessage)
	text, err := c.complete(ctx, system, user, false)
	if err != nil {
		debuglog.Debug(debuglog.Basic, "%s title generation failed: %v\n", providerName, err)
		return ai.DefaultTitle
	}
	return ai.CleanTitle(text)
}

func (c *Client) complete(ctx context.Context, system, user string, forceJSON bool) (string, error) {
	stream := false
	req := &ollamaapi.ChatRequest{
		Model:  c.model,
		Stream: &stream,
		Messages: []ollamaapi.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Options: map[string]any{"temperature": temperature},
	}
	if forceJSON {
		req.Format = json.RawMessage(`"json"`)
	}

	var b strings.Builder
	err := c.api.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", c.wrapErr(err)
	}
	if b.Len() == 0 {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("response contained no content"))
	}
	return b.String(), nil
}

func (c *Client) wrapErr(err error) error {
	status := 0
	var serr ollamaapi.StatusError
	if errors.As(err, &serr) {
		status = serr.StatusCode
	}
	return domain.NewProviderError(providerName, status, err)
}
