// Package openai implements the capability surface on the OpenAI chat
// completions API. Grok reuses this client through NewClientCompatible,
// since the xAI API is wire-compatible.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaiapi "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/schema"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o"

	contextBudget = 48000
	maxTokens     = 1500
	temperature   = 0.3
)

var _ ai.Vendor = (*Client)(nil)

type Client struct {
	name     string
	model    string
	budget   int
	fallback string

	api openaiapi.Client
}

// NewClient builds the OpenAI vendor; its nominated alternate is Anthropic.
func NewClient(apiKey string) *Client {
	return NewClientCompatible(providerName, "", apiKey, defaultModel, contextBudget, "anthropic")
}

// NewClientCompatible builds a client for any OpenAI-compatible endpoint.
func NewClientCompatible(name, baseURL, apiKey, model string, budget int, fallback string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		name:     name,
		model:    model,
		budget:   budget,
		fallback: fallback,
		api:      openaiapi.NewClient(opts...),
	}
}

func (c *Client) GetName() string      { return c.name }
func (c *Client) ContextBudget() int   { return c.budget }
func (c *Client) FallbackName() string { return c.fallback }

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
		debuglog.Debug(debuglog.Basic, "%s title generation failed: %v\n", c.name, err)
		return ai.DefaultTitle
	}
	return ai.CleanTitle(text)
}

func (c *Client) complete(ctx context.Context, system, user string, forceJSON bool) (string, error) {
	params := openaiapi.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openaiapi.ChatCompletionMessageParamUnion{
			openaiapi.SystemMessage(system),
			openaiapi.UserMessage(user),
		},
		MaxTokens:   openaiapi.Int(maxTokens),
		Temperature: openaiapi.Float(temperature),
	}
	if forceJSON {
		params.ResponseFormat = openaiapi.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewProviderError(c.name, 0, fmt.Errorf("response contained no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) wrapErr(err error) error {
	status := 0
	var apierr *openaiapi.Error
	if errors.As(err, &apierr) {
		status = apierr.StatusCode
	}
	return domain.NewProviderError(c.name, status, err)
}
