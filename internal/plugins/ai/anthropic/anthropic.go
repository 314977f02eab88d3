// Package anthropic implements the capability surface on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicapi "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/schema"
)

const (
	providerName = "anthropic"
	defaultModel = "claude-sonnet-4-20250514"

	contextBudget = 72000
	maxTokens     = 1500
	temperature   = 0.3
)

var _ ai.Vendor = (*Client)(nil)

type Client struct {
	model string
	api   anthropicapi.Client
}

// NewClient builds the Anthropic vendor; its nominated alternate is OpenAI.
func NewClient(apiKey string) *Client {
	return &Client{
		model: defaultModel,
		api:   anthropicapi.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (c *Client) GetName() string      { return providerName }
func (c *Client) ContextBudget() int   { return contextBudget }
func (c *Client) FallbackName() string { return "openai" }

func (c *Client) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	system, user := ai.BuildAskPrompt(req)
	raw, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	answer, sources := schema.ParseAskReply(raw)
	return &domain.AskResponse{Content: answer, Sources: sources, Model: c.model}, nil
}

func (c *Client) ExtractCleanText(ctx context.Context, raw, filename string) (string, error) {
	system, user := ai.BuildExtractPrompt(raw, filename)
	text, err := c.complete(ctx, system, user)
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
	text, err := c.complete(ctx, system, user)
	if err != nil {
		debuglog.Debug(debuglog.Basic, "%s title generation failed: %v\n", providerName, err)
		return ai.DefaultTitle
	}
	return ai.CleanTitle(text)
}

// complete issues one messages call. Anthropic has no JSON response mode,
// so structure is enforced by the system prompt alone and recovered by the
// schema package.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropicapi.MessageNewParams{
		Model:       anthropicapi.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropicapi.Float(temperature),
		System:      []anthropicapi.TextBlockParam{{Text: system}},
		Messages: []anthropicapi.MessageParam{
			anthropicapi.NewUserMessage(anthropicapi.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", c.wrapErr(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropicapi.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("response contained no text blocks"))
	}
	return b.String(), nil
}

func (c *Client) wrapErr(err error) error {
	status := 0
	var apierr *anthropicapi.Error
	if errors.As(err, &apierr) {
		status = apierr.StatusCode
	}
	return domain.NewProviderError(providerName, status, err)
}
