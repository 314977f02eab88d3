// Package gemini implements the capability surface on the Gemini API via
// google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/schema"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"

	contextBudget = 96000
	maxTokens     = 1500
	temperature   = float32(0.3)
)

var _ ai.Vendor = (*Client)(nil)

type Client struct {
	model  string
	apiKey string

	mu  sync.Mutex
	api *genai.Client
}

// NewClient builds the Gemini vendor; its nominated alternate is OpenAI.
// The SDK client is created lazily because genai.NewClient wants a context.
func NewClient(apiKey string) *Client {
	return &Client{model: defaultModel, apiKey: apiKey}
}

func (c *Client) GetName() string      { return providerName }
func (c *Client) ContextBudget() int   { return contextBudget }
func (c *Client) FallbackName() string { return "openai" }

func (c *Client) ensure(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.NewProviderError(providerName, 0, err)
	}
	c.api = api
	return api, nil
}

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
	api, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if forceJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := api.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", c.wrapErr(err)
	}
	text := resp.Text()
	if text == "" {
		return "", domain.NewProviderError(providerName, 0, fmt.Errorf("response contained no text"))
	}
	return text, nil
}

func (c *Client) wrapErr(err error) error {
	status := 0
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		status = apierr.Code
	}
	return domain.NewProviderError(providerName, status, err)
}
