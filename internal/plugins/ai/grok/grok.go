// Package grok implements the capability surface on the xAI API, which is
// wire-compatible with OpenAI chat completions.
package grok

import (
	"github.com/SamWheatley/rainier/internal/plugins/ai/openai"
)

const (
	baseURL       = "https://api.x.ai/v1"
	defaultModel  = "grok-4"
	contextBudget = 40000
)

// Client is an OpenAI-compatible client pointed at xAI. Its nominated
// alternate is OpenAI.
type Client struct {
	*openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		Client: openai.NewClientCompatible("grok", baseURL, apiKey, defaultModel, contextBudget, "openai"),
	}
}
